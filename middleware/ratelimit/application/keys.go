package application

import (
	"strings"

	"middleware-loja/middleware/ratelimit/domain"
)

// DeriveKey monta a chave de partição da contagem: prefixo "rl:<ação>" +
// segmentos tipados escolhidos pela estratégia.
//
// Função pura, sem erro: campo de identidade ausente degrada para placeholder
// literal ("anonymous", "unknown") para a chave continuar bem formada e a
// contagem seguir funcionando, só com precisão menor. Estratégia
// desconhecida cai no segmento de IP.
func DeriveKey(strategy domain.KeyStrategy, action domain.Action, sig domain.Signals) string {
	segs := []string{"rl", string(action)}

	switch strategy {
	case domain.KeyByUser:
		segs = append(segs, "user", orElse(sig.UserID, "anonymous"))
	case domain.KeyByIPEmail:
		segs = append(segs, "ip", sig.Address, "email", orElse(sig.Email, "unknown"))
	case domain.KeyByIPUser:
		segs = append(segs, "ip", sig.Address, "user", orElse(sig.UserID, "anonymous"))
	case domain.KeyBySession:
		segs = append(segs, "session", orElse(sig.SessionID, sig.Address))
	default: // domain.KeyByIP e estratégias não reconhecidas
		segs = append(segs, "ip", sig.Address)
	}

	return strings.Join(segs, ":")
}

func orElse(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
