package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// Headers de CDN/proxy varridos em ordem de prioridade. X-Forwarded-For pode
// carregar uma cadeia; vale o primeiro IP válido (cliente original).
var defaultAddressHeaders = []string{
	"CF-Connecting-IP",
	"True-Client-IP",
	"X-Real-IP",
	"X-Forwarded-For",
}

// clientAddress extrai o endereço de rede do cliente: primeiro IP válido
// encontrado nos headers confiados, senão o host de RemoteAddr.
func clientAddress(r *http.Request, headers []string) string {
	for _, h := range headers {
		v := r.Header.Get(h)
		if v == "" {
			continue
		}
		for _, part := range strings.Split(v, ",") {
			ip := strings.TrimSpace(part)
			if ip != "" && net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	// fallback: RemoteAddr
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
