package main

import (
	"net/http"
	"strings"

	"middleware-loja/middleware/ratelimit/domain"
)

// classifyStorefront mapeia as rotas da loja para (categoria, ação) da
// tabela de políticas. Rota desconhecida cai em leitura/escrita genérica de
// API pelo método.
//
// O desfecho de login (sucesso/falha) não é classificável aqui: quem reporta
// é o handler de login via Limiter.ReportLogin.
func classifyStorefront(r *http.Request) (domain.Category, domain.Action) {
	path := r.URL.Path

	switch {
	case strings.HasPrefix(path, "/api/auth/logout"):
		return domain.CategoryAuth, domain.ActionLogout
	case strings.HasPrefix(path, "/api/auth/password-reset"):
		return domain.CategoryAuth, domain.ActionPasswordReset
	case strings.HasPrefix(path, "/api/auth/"):
		return domain.CategoryAuth, domain.ActionSession

	case strings.HasPrefix(path, "/api/payment/webhook"):
		return domain.CategoryPayment, domain.ActionWebhook
	case strings.HasPrefix(path, "/api/orders"):
		if r.Method == http.MethodPost {
			return domain.CategoryPayment, domain.ActionCreateOrder
		}
		return domain.CategoryPayment, domain.ActionCheckStatus

	case strings.HasPrefix(path, "/api/cart"):
		switch r.Method {
		case http.MethodPost:
			return domain.CategoryCart, domain.ActionCartAdd
		case http.MethodPut, http.MethodPatch:
			return domain.CategoryCart, domain.ActionCartUpdate
		case http.MethodDelete:
			return domain.CategoryCart, domain.ActionCartRemove
		}
		return domain.CategoryAPI, domain.ActionAuthenticatedRead

	case strings.HasPrefix(path, "/api/search"):
		return domain.CategoryAPI, domain.ActionSearch
	case strings.HasPrefix(path, "/api/upload"):
		return domain.CategoryAPI, domain.ActionUpload
	}

	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return domain.CategoryAPI, domain.ActionPublicRead
	}
	return domain.CategoryAPI, domain.ActionWrite
}
