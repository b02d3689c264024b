package infra

import "golang.org/x/time/rate"

// Ceiling é o teto global de vazão do processo: um único token bucket
// (x/time/rate) na frente da lógica adaptativa por chave. Protege o processo
// inteiro de volume agregado, independente de quantas chaves distintas o
// tráfego usar.
type Ceiling struct {
	lim   *rate.Limiter
	rps   float64
	burst int
}

func NewCeiling(rps float64, burst int) *Ceiling {
	return &Ceiling{
		lim:   rate.NewLimiter(rate.Limit(rps), burst),
		rps:   rps,
		burst: burst,
	}
}

func (c *Ceiling) Allow() bool {
	if c == nil {
		return true
	}
	return c.lim.Allow()
}

func (c *Ceiling) RPS() float64 { return c.rps }
func (c *Ceiling) Burst() int   { return c.burst }
