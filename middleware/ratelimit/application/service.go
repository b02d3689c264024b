package application

import (
	"time"

	"middleware-loja/middleware/ratelimit/domain"
)

// Service é o orquestrador de decisão: compõe janela deslizante, registro de
// bloqueios, rastreio de login e detector de suspeita por request.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
// Todo o estado mutável pertence aos componentes injetados; o Service apenas
// sequencia as chamadas — nenhum componente alcança o cache do outro.
type Service struct {
	Policies domain.Table
	Windows  domain.WindowCounter
	Blocks   domain.BlockRegistry
	Logins   domain.LoginTracker
	Suspects domain.ActivityDetector
	Counters *domain.Counters

	// SuspicionBlock é a duração fixa do bloqueio disparado pelo detector.
	SuspicionBlock time.Duration
	// Logf recebe erros internos absorvidos pelo fail-open.
	Logf func(format string, args ...any)
}

// Evaluate decide admitir ou negar um request.
//
// Ordem: política → confiança (cota dobrada) → exigência de auth → chave →
// bloqueio ativo → suspeita → janela deslizante. Negações são terminais por
// request; nada é re-tentado.
//
// Qualquer pânico no caminho de decisão vira admissão sem contagem
// (fail-open): indisponibilidade do limiter nunca derruba a loja. Trocar
// isso por fail-closed muda comportamento operacional — não remover sem
// conversa com operação.
func (s *Service) Evaluate(req domain.Request) (dec domain.Decision) {
	defer func() {
		if r := recover(); r != nil {
			if s.Logf != nil {
				s.Logf("ratelimit: fail-open after internal error: %v", r)
			}
			dec = domain.Decision{Allowed: true, FailedOpen: true}
		}
	}()

	pol := s.resolvePolicy(req)

	trusted := s.Logins != nil && s.Logins.IsTrusted(req.Signals.Address, req.Signals.UserID)
	eff := pol
	if trusted {
		eff.Points *= 2
		eff.BlockFor /= 2
	}

	if pol.RequireAuth && !req.Signals.Authenticated() {
		return domain.Decision{Reason: domain.ReasonAuthRequired}
	}

	key := DeriveKey(eff.Keys, req.Action, req.Signals)

	// bloqueio ativo vence qualquer cota restante. O escalonamento de login
	// bloqueia o par endereço+email (ver LoginEscalationKey), então os dois
	// registros são consultados.
	for _, blockKey := range blockKeys(req.Signals) {
		if rec, ok := s.Blocks.IsBlocked(blockKey); ok {
			s.countDenied()
			return domain.Decision{
				Reason:      rec.Reason,
				RetryAfter:  time.Until(rec.Until),
				Limit:       eff.Points,
				ResetAt:     rec.Until,
				Occurrences: rec.Occurrences,
			}
		}
	}

	if flag := s.Suspects.Record(req.Signals.Address, req.Action); flag != "" {
		blockFor := s.SuspicionBlock
		if blockFor <= 0 {
			blockFor = 30 * time.Minute
		}
		s.Blocks.Block(req.Signals.Address, blockFor, flag)
		s.countDenied()
		return domain.Decision{
			Reason:     flag,
			RetryAfter: blockFor,
			Limit:      eff.Points,
			ResetAt:    time.Now().Add(blockFor),
		}
	}

	res := s.Windows.Check(key, eff.Points, eff.Window)
	if res.Limited {
		// política com BlockFor > 0 escala a violação de cota para bloqueio
		// do endereço (metade da duração para confiáveis). BlockFor == 0
		// deixa só o 429 da janela — carrinho nunca bloqueia.
		if eff.BlockFor > 0 {
			s.Blocks.Block(req.Signals.Address, eff.BlockFor, domain.ReasonRateLimited)
		}
		s.countDenied()
		return domain.Decision{
			Reason:     domain.ReasonRateLimited,
			RetryAfter: res.RetryAfter,
			Limit:      eff.Points,
			ResetAt:    res.ResetAt,
		}
	}

	// só ações explicitamente classificadas como desfecho de login mexem em
	// contadores de falha/confiança; resposta de negócio não é inferida aqui.
	if s.Logins != nil {
		switch req.Action {
		case domain.ActionLoginFailure:
			s.Logins.RecordAttempt(req.Signals.Address, req.Signals.Email, false)
		case domain.ActionLoginSuccess:
			s.Logins.RecordAttempt(req.Signals.Address, req.Signals.Email, true)
			if req.Signals.UserID != "" {
				s.Logins.Trust("", req.Signals.UserID)
			}
		}
	}

	if s.Counters != nil {
		s.Counters.Total.Add(1)
	}
	return domain.Decision{
		Allowed:   true,
		Limit:     eff.Points,
		Remaining: res.Remaining,
		ResetAt:   res.ResetAt,
	}
}

// ReportLogin registra o desfecho de uma autenticação decidido pelo
// colaborador (o handler de login sabe se a senha bateu; o limiter não).
// Falha também alimenta o detector de força bruta.
func (s *Service) ReportLogin(address, email, userID string, success bool) {
	if s.Logins != nil {
		s.Logins.RecordAttempt(address, email, success)
		if success && userID != "" {
			s.Logins.Trust("", userID)
		}
	}
	if !success && s.Suspects != nil {
		if flag := s.Suspects.Record(address, domain.ActionLoginFailure); flag != "" {
			blockFor := s.SuspicionBlock
			if blockFor <= 0 {
				blockFor = 30 * time.Minute
			}
			s.Blocks.Block(address, blockFor, flag)
		}
	}
}

// Unblock é o override administrativo.
func (s *Service) Unblock(address string) bool {
	if s.Blocks == nil {
		return false
	}
	return s.Blocks.Unblock(address)
}

func (s *Service) resolvePolicy(req domain.Request) domain.Policy {
	if req.Custom != nil {
		return *req.Custom
	}
	if pol, ok := s.Policies.Lookup(req.Category, req.Action); ok {
		return pol
	}
	return domain.DefaultPolicy
}

func blockKeys(sig domain.Signals) []string {
	keys := []string{sig.Address}
	if sig.Email != "" {
		keys = append(keys, domain.LoginEscalationKey(sig.Address, sig.Email))
	}
	return keys
}

func (s *Service) countDenied() {
	if s.Counters != nil {
		s.Counters.Denied.Add(1)
	}
}
