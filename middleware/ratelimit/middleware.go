package ratelimit

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"middleware-loja/middleware/ratelimit/application"
	"middleware-loja/middleware/ratelimit/domain"
	"middleware-loja/middleware/ratelimit/infra"
)

// UserInfo são os sinais de identidade que o colaborador consegue extrair do
// request. Campos ausentes ficam vazios.
type UserInfo struct {
	UserID    string
	Email     string
	SessionID string
}

// IdentityResolver extrai identidade de um request. O segundo retorno indica
// se algum sinal foi resolvido.
type IdentityResolver func(r *http.Request) (UserInfo, bool)

// Classifier mapeia um request para (categoria, ação) da tabela de políticas.
type Classifier func(r *http.Request) (domain.Category, domain.Action)

type Options struct {
	// Policies é a tabela estática; nil usa domain.DefaultTable().
	Policies domain.Table
	// Stats recebe cada decisão (best-effort; erro é ignorado).
	Stats domain.StatsStore
	// Identity resolve userId/email/sessão. nil usa o cookie SessionCookie
	// (só sessão, sem identidade autenticada).
	Identity      IdentityResolver
	SessionCookie string
	// AddressHeaders define os headers de proxy/CDN confiados, em ordem.
	// nil usa a lista padrão; passe uma slice vazia para confiar só em
	// RemoteAddr (sem proxy na frente).
	AddressHeaders      []string
	AddRateLimitHeaders bool
	// Logf recebe os erros absorvidos pelo fail-open. nil usa log.Printf.
	Logf func(format string, args ...any)
}

// Limiter é a instância única do rate limit adaptativo: dona de todos os
// caches e contadores, construída uma vez no composition root.
type Limiter struct {
	svc      *application.Service
	windows  *infra.WindowCounter
	blocks   *infra.BlockList
	logins   *infra.LoginTracker
	suspects *infra.Detector
	counters domain.Counters
	stats    domain.StatsStore

	identity      IdentityResolver
	sessionCookie string
	addrHeaders   []string
	addHeaders    bool
}

func New(opts Options) *Limiter {
	l := &Limiter{
		stats:         opts.Stats,
		identity:      opts.Identity,
		sessionCookie: opts.SessionCookie,
		addrHeaders:   opts.AddressHeaders,
		addHeaders:    opts.AddRateLimitHeaders,
	}
	if l.sessionCookie == "" {
		l.sessionCookie = "session_id"
	}
	if l.addrHeaders == nil {
		l.addrHeaders = defaultAddressHeaders
	}

	policies := opts.Policies
	if policies == nil {
		policies = domain.DefaultTable()
	}
	logf := opts.Logf
	if logf == nil {
		logf = log.Printf
	}

	l.windows = infra.NewWindowCounter(3000, time.Hour)
	l.blocks = infra.NewBlockList(500, 30*time.Minute)
	l.logins = infra.NewLoginTracker(l.blocks, &l.counters)
	l.suspects = infra.NewDetector()

	l.svc = &application.Service{
		Policies: policies,
		Windows:  l.windows,
		Blocks:   l.blocks,
		Logins:   l.logins,
		Suspects: l.suspects,
		Counters: &l.counters,
		Logf:     logf,
	}
	return l
}

// Opções por rota.

type routeOptions struct {
	custom  *domain.Policy
	extract IdentityResolver
	onAllow func(UserInfo)
	onDeny  func(UserInfo)
}

type RouteOption func(*routeOptions)

// WithPolicy substitui a tabela por uma política avulsa nesta rota.
func WithPolicy(p domain.Policy) RouteOption {
	return func(ro *routeOptions) { ro.custom = &p }
}

// WithUserExtractor troca o resolver de identidade só nesta rota.
func WithUserExtractor(fn IdentityResolver) RouteOption {
	return func(ro *routeOptions) { ro.extract = fn }
}

// WithOnAllow registra o hook chamado depois do handler admitido.
func WithOnAllow(fn func(UserInfo)) RouteOption {
	return func(ro *routeOptions) { ro.onAllow = fn }
}

// WithOnDeny registra o hook chamado em negação por cota/bloqueio/suspeita
// (não dispara no 401 de auth exigida).
func WithOnDeny(fn func(UserInfo)) RouteOption {
	return func(ro *routeOptions) { ro.onDeny = fn }
}

// Require devolve o middleware para uma rota de classificação fixa.
func (l *Limiter) Require(category domain.Category, action domain.Action, opts ...RouteOption) func(next http.Handler) http.Handler {
	return l.Middleware(func(*http.Request) (domain.Category, domain.Action) {
		return category, action
	}, opts...)
}

// Middleware devolve o middleware com classificação dinâmica por request
// (uso típico: gateway na frente de uma API inteira).
func (l *Limiter) Middleware(classify Classifier, opts ...RouteOption) func(next http.Handler) http.Handler {
	ro := routeOptions{}
	for _, opt := range opts {
		opt(&ro)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cat, act := classify(r)
			ui := l.resolveIdentity(r, ro.extract)
			sig := domain.Signals{
				Address:   clientAddress(r, l.addrHeaders),
				UserID:    ui.UserID,
				Email:     ui.Email,
				SessionID: ui.SessionID,
			}

			dec := l.svc.Evaluate(domain.Request{
				Signals:  sig,
				Category: cat,
				Action:   act,
				Custom:   ro.custom,
			})

			if l.stats != nil {
				_ = l.stats.Record(r.Context(), domain.StatsEvent{
					Key:     string(cat) + "." + string(act),
					Action:  act,
					Allowed: dec.Allowed,
					Reason:  dec.Reason,
					At:      time.Now(),
				})
			}

			if !dec.Allowed {
				if ro.onDeny != nil && dec.Reason != domain.ReasonAuthRequired {
					ro.onDeny(ui)
				}
				l.writeDenied(w, dec)
				return
			}

			if l.addHeaders {
				w.Header().Set("X-RateLimit-Limit", formatInt(dec.Limit))
				w.Header().Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
				w.Header().Set("X-RateLimit-Reset", formatUnix(dec.ResetAt))
			}

			next.ServeHTTP(w, r)

			if ro.onAllow != nil {
				ro.onAllow(ui)
			}
		})
	}
}

// ReportLogin repassa o desfecho de uma autenticação decidido pelo handler
// de login (5 falhas do mesmo par endereço+email bloqueiam o par; sucesso
// zera o contador e concede confiança temporária).
func (l *Limiter) ReportLogin(r *http.Request, email, userID string, success bool) {
	addr := clientAddress(r, l.addrHeaders)
	l.svc.ReportLogin(addr, email, userID, success)
}

// StartJanitor inicia a varredura periódica (2 em 2 minutos) dos caches e do
// log de suspeita. Pare cancelando o contexto.
func (l *Limiter) StartJanitor(ctx infra.DoneContext) {
	infra.NewSweeper(2*time.Minute, l.windows, l.blocks, l.logins, l.suspects).Start(ctx)
}

func (l *Limiter) resolveIdentity(r *http.Request, override IdentityResolver) UserInfo {
	resolver := override
	if resolver == nil {
		resolver = l.identity
	}
	if resolver != nil {
		if ui, ok := resolver(r); ok {
			return ui
		}
		return UserInfo{}
	}

	// fallback: só o cookie de sessão (identidade anônima).
	if c, err := r.Cookie(l.sessionCookie); err == nil && c.Value != "" {
		return UserInfo{SessionID: c.Value}
	}
	return UserInfo{}
}

type deniedBody struct {
	Error       string `json:"error"`
	RetryAfter  int    `json:"retryAfter,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Remaining   int    `json:"remaining"`
	Reset       int64  `json:"reset,omitempty"`
	Occurrences int    `json:"occurrences,omitempty"`
}

func (l *Limiter) writeDenied(w http.ResponseWriter, dec domain.Decision) {
	status := http.StatusTooManyRequests
	if dec.Reason == domain.ReasonAuthRequired {
		status = http.StatusUnauthorized
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", formatSeconds(dec.RetryAfter))
		w.Header().Set("X-RateLimit-Limit", formatInt(dec.Limit))
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", formatUnix(dec.ResetAt))
	}
	w.WriteHeader(status)

	body := deniedBody{Error: string(dec.Reason)}
	if status == http.StatusTooManyRequests {
		body.RetryAfter = int(dec.RetryAfter.Seconds())
		body.Limit = dec.Limit
		body.Reset = dec.ResetAt.Unix()
		body.Occurrences = dec.Occurrences
	}
	_ = json.NewEncoder(w).Encode(body)
}
