// Package ratelimit fornece o middleware HTTP (net/http) de rate limit
// adaptativo da loja.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (orquestração da decisão, derivação de chave,
//     desfecho de login) sem net/http
//   - infra: implementações concretas (cache limitado com TTL, janela
//     deslizante, deny-list, detector de suspeita, teto global de vazão)
//   - ratelimit (este pacote): middlewares HTTP + extração de endereço e
//     identidade + tradução da decisão para status/headers/JSON
//
// Fluxo por request:
//
//  1. Extrai o endereço do cliente (headers de CDN/proxy, depois RemoteAddr)
//     e os sinais de identidade (resolver injetado ou cookie de sessão)
//  2. Chama a camada application para obter a decisão
//  3. Se negado, responde 401 (auth exigida) ou 429 (cota/bloqueio/suspeita)
//     com corpo JSON e headers Retry-After / X-RateLimit-*
//  4. Se admitido, anota os headers de cota e chama o próximo handler
//
// O limiter é um objeto construído uma vez no composition root (New) e
// injetado; não há estado de pacote. Erro interno no caminho de decisão
// admite sem contagem (fail-open) — disponibilidade da loja vem antes de
// enforcement estrito.
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o
// comportamento, como GLOBAL_RPS, CONCURRENCY_MAX e STATS_REDIS_ADDR.
package ratelimit
