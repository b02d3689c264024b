package domain

// Camada de domínio do rate limit adaptativo.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

// Reason é o código legível por máquina que explica uma negação (ou o motivo
// gravado em um bloqueio).
type Reason string

const (
	ReasonRateLimited          Reason = "rate_limited"
	ReasonAuthRequired         Reason = "auth_required"
	ReasonTooManyLoginFailures Reason = "too_many_login_failures"
	ReasonExcessiveRequests    Reason = "excessive_requests"
	ReasonBruteForce           Reason = "brute_force_attempt"
)

// Signals são os sinais de identidade extraídos do request. Campos ausentes
// ficam vazios; a derivação de chave degrada para placeholders em vez de
// falhar (ver application.DeriveKey).
type Signals struct {
	Address   string
	UserID    string
	Email     string
	SessionID string
}

// Authenticated informa se há identidade resolvida (userId ou email).
// SessionID sozinho não conta: carrinho anônimo também tem sessão.
func (s Signals) Authenticated() bool {
	return s.UserID != "" || s.Email != ""
}

// Request é a entrada do orquestrador: sinais + classificação da ação.
// Custom, quando não nulo, substitui a tabela de políticas para esta chamada.
type Request struct {
	Signals  Signals
	Category Category
	Action   Action
	Custom   *Policy
}

// Decision é a saída do orquestrador.
//
// Quando negado, Reason distingue 401 (ReasonAuthRequired) de 429 (demais).
// FailedOpen marca admissão por erro interno do limiter (request passa sem
// contagem; só observável em log).
type Decision struct {
	Allowed    bool
	FailedOpen bool
	Reason     Reason
	RetryAfter time.Duration
	Limit      int
	Remaining  int
	ResetAt    time.Time
	// Occurrences vem do BlockRecord quando a negação é por bloqueio ativo.
	Occurrences int
}

// WindowResult é o veredito da janela deslizante para uma chave.
type WindowResult struct {
	Limited    bool
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// BlockRecord é uma entrada da deny-list explícita. Ativo sse now < Until;
// leitura de registro inativo o remove (GC preguiçoso).
type BlockRecord struct {
	Until       time.Time
	Reason      Reason
	Occurrences int
}

// LoginEscalationKey é a chave do registro de bloqueio criado pelo
// escalonamento de falhas de login. O bloqueio mira o par endereço+email —
// outro email do mesmo endereço não é atingido (isolamento por estratégia de
// chave), diferente dos bloqueios do detector, que miram o endereço inteiro.
func LoginEscalationKey(address, email string) string {
	return address + ":" + email
}

// WindowCounter mantém a contagem deslizante por chave.
type WindowCounter interface {
	Check(key string, points int, window time.Duration) WindowResult
}

// BlockRegistry é a deny-list por endereço/identidade.
//
// Block com d == 0 é no-op (políticas explicitamente não bloqueáveis).
type BlockRegistry interface {
	Block(key string, d time.Duration, reason Reason)
	IsBlocked(key string) (BlockRecord, bool)
	Unblock(key string) bool
}

// LoginTracker acompanha sucesso/falha de autenticação por (endereço, email)
// e promove identidades recém-autenticadas ao conjunto confiável.
type LoginTracker interface {
	RecordAttempt(address, email string, success bool)
	Trust(address, userID string)
	IsTrusted(address, userID string) bool
}

// ActivityDetector mantém o log rolante por endereço e devolve o padrão
// detectado ("" quando limpo).
type ActivityDetector interface {
	Record(address string, action Action) Reason
}
