package infra

import "time"

// Cleanable é qualquer estrutura que saiba se podar.
type Cleanable interface {
	Cleanup()
}

// Sweeper roda Cleanup de todos os alvos em intervalo fixo, fora do caminho
// de decisão. Cada alvo segura o próprio lock só durante a própria poda;
// a varredura nunca serializa o conjunto inteiro.
type Sweeper struct {
	every   time.Duration
	targets []Cleanable
}

func NewSweeper(every time.Duration, targets ...Cleanable) *Sweeper {
	if every <= 0 {
		every = 2 * time.Minute
	}
	return &Sweeper{every: every, targets: targets}
}

// Start inicia a goroutine de varredura. Pare cancelando o contexto.
func (s *Sweeper) Start(ctx DoneContext) {
	t := time.NewTicker(s.every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				for _, target := range s.targets {
					target.Cleanup()
				}
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem
// importar context aqui. (Permite reuso em libs sem acoplar.)
type DoneContext interface {
	Done() <-chan struct{}
}
