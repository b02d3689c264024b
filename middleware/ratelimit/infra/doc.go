// Package infra contém implementações concretas (infraestrutura) para os
// contratos definidos no pacote domain.
//
// Exemplos:
//   - TTLCache: cache limitado com expiração e eviction do mais antigo
//   - WindowCounter: janela deslizante de timestamps por chave
//   - BlockList: deny-list com expiração preguiçosa
//   - LoginTracker: escalonamento de falhas de login + identidades confiáveis
//   - Detector: log rolante por endereço com heurísticas de abuso
//   - Ceiling: teto global de vazão usando golang.org/x/time/rate
//   - Sweeper: varredura periódica de limpeza
package infra
