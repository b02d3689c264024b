package domain

// Políticas estáticas por (categoria, ação).
//
// Categoria e ação são enumerações fechadas: erro de digitação vira erro de
// compilação no call site, não uma política permissiva silenciosa. Overrides
// dinâmicos entram como *Policy avulso (ver Request.Custom).

import "time"

type Category string

const (
	CategoryAuth    Category = "auth"
	CategoryPayment Category = "payment"
	CategoryAPI     Category = "api"
	CategoryCart    Category = "cart"
)

// Action é o nome da ação usado no prefixo da chave de contagem e no log do
// detector de atividade suspeita.
type Action string

const (
	ActionLoginFailure  Action = "login_failure"
	ActionLoginSuccess  Action = "login_success"
	ActionLogout        Action = "logout"
	ActionSession       Action = "session"
	ActionPasswordReset Action = "password_reset"

	ActionWebhook     Action = "webhook"
	ActionCreateOrder Action = "create_order"
	ActionCheckStatus Action = "check_status"

	ActionPublicRead        Action = "public_read"
	ActionAuthenticatedRead Action = "authenticated_read"
	ActionWrite             Action = "write"
	ActionUpload            Action = "upload"
	ActionSearch            Action = "search"

	ActionCartAdd    Action = "add"
	ActionCartUpdate Action = "update"
	ActionCartRemove Action = "remove"
)

// KeyStrategy escolhe quais sinais de identidade particionam a contagem.
type KeyStrategy string

const (
	KeyByIP      KeyStrategy = "ip"
	KeyByUser    KeyStrategy = "user"
	KeyByIPEmail KeyStrategy = "ip+email"
	KeyByIPUser  KeyStrategy = "ip+user"
	KeyBySession KeyStrategy = "session"
)

// Policy é a configuração estática de uma ação: cota (Points) dentro de
// Window, duração do bloqueio ao estourar padrões de abuso (BlockFor == 0
// significa "nunca bloqueável", ex: carrinho), estratégia de chave e
// exigência de identidade autenticada.
type Policy struct {
	Points      int
	Window      time.Duration
	BlockFor    time.Duration
	Keys        KeyStrategy
	RequireAuth bool
}

// Route identifica uma entrada da tabela de políticas.
type Route struct {
	Category Category
	Action   Action
}

type Table map[Route]Policy

// Lookup busca a política de (c, a). O segundo retorno indica se a rota
// existe na tabela; quem chama decide o fallback (ver DefaultPolicy).
func (t Table) Lookup(c Category, a Action) (Policy, bool) {
	p, ok := t[Route{Category: c, Action: a}]
	return p, ok
}

// DefaultPolicy é o fallback permissivo de leitura para rotas fora da tabela.
var DefaultPolicy = Policy{Points: 300, Window: time.Minute, Keys: KeyByIP}

// DefaultTable retorna a tabela padrão da loja.
//
// cart.* usa BlockFor 0 de propósito: abusar do carrinho leva 429 pela
// janela, nunca bloqueio de endereço (cliente legítimo clicando demais não
// pode perder a loja inteira).
func DefaultTable() Table {
	return Table{
		{CategoryAuth, ActionLoginFailure}:  {Points: 5, Window: 15 * time.Minute, BlockFor: 30 * time.Minute, Keys: KeyByIPEmail},
		{CategoryAuth, ActionLoginSuccess}:  {Points: 10, Window: 15 * time.Minute, Keys: KeyByIP},
		{CategoryAuth, ActionLogout}:        {Points: 30, Window: time.Minute, Keys: KeyByUser, RequireAuth: true},
		{CategoryAuth, ActionSession}:       {Points: 60, Window: time.Minute, Keys: KeyBySession},
		{CategoryAuth, ActionPasswordReset}: {Points: 3, Window: time.Hour, BlockFor: 30 * time.Minute, Keys: KeyByIPEmail},

		{CategoryPayment, ActionWebhook}:     {Points: 100, Window: time.Minute, Keys: KeyByIP},
		{CategoryPayment, ActionCreateOrder}: {Points: 10, Window: time.Minute, BlockFor: 5 * time.Minute, Keys: KeyByUser, RequireAuth: true},
		{CategoryPayment, ActionCheckStatus}: {Points: 30, Window: time.Minute, Keys: KeyByUser, RequireAuth: true},

		{CategoryAPI, ActionPublicRead}:        {Points: 300, Window: time.Minute, Keys: KeyByIP},
		{CategoryAPI, ActionAuthenticatedRead}: {Points: 600, Window: time.Minute, Keys: KeyByUser, RequireAuth: true},
		{CategoryAPI, ActionWrite}:             {Points: 60, Window: time.Minute, BlockFor: 10 * time.Minute, Keys: KeyByIPUser, RequireAuth: true},
		{CategoryAPI, ActionUpload}:            {Points: 10, Window: 10 * time.Minute, BlockFor: 30 * time.Minute, Keys: KeyByUser, RequireAuth: true},
		{CategoryAPI, ActionSearch}:            {Points: 60, Window: time.Minute, BlockFor: time.Minute, Keys: KeyByIP},

		{CategoryCart, ActionCartAdd}:    {Points: 100, Window: time.Minute, Keys: KeyBySession},
		{CategoryCart, ActionCartUpdate}: {Points: 100, Window: time.Minute, Keys: KeyBySession},
		{CategoryCart, ActionCartRemove}: {Points: 100, Window: time.Minute, Keys: KeyBySession},
	}
}
