package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Poller runs pollMethod on a fixed interval. Runs are sequential: a tick that
// arrives while the previous run is still executing is dropped by the ticker,
// so a poller never overlaps with itself.
type Poller struct {
	name       string
	interval   time.Duration
	immediate  bool
	pollMethod func(ctx context.Context) error
}

type Option func(*Poller)

// WithImmediateRun makes Start execute pollMethod once before the first tick.
func WithImmediateRun() Option {
	return func(p *Poller) {
		p.immediate = true
	}
}

func NewPoller(name string, interval time.Duration, pollMethod func(ctx context.Context) error, opts ...Option) *Poller {
	p := &Poller{
		name:       name,
		interval:   interval,
		pollMethod: pollMethod,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	logger := log.Ctx(ctx).With().Str("poller", p.name).Logger()
	logger.Info().Msgf("Starting poller with interval %s", p.interval)

	if p.immediate {
		p.poll(ctx)
	}

	for {
		select {
		case <-ticker.C:
			p.poll(ctx)
		case <-ctx.Done():
			logger.Info().Msg("Poller stopped due to context cancellation")
			return
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	// context may have been cancelled while waiting for the ticker
	if ctx.Err() != nil {
		return
	}

	log.Ctx(ctx).Debug().Str("poller", p.name).Msg("Executing poll method")
	if err := p.pollMethod(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("poller", p.name).Msg("Error polling")
	}
}
