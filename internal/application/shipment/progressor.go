package shipment

import (
	"context"
	"sync"
	"time"

	"github.com/awemart/awemart/internal/domain/event"
	domshipment "github.com/awemart/awemart/internal/domain/shipment"
	"github.com/awemart/awemart/internal/observability"
)

// Progressor simulates the carrier: it subscribes to shipment.created and
// steps each new shipment through the forward progression on a fixed
// interval. Advancement is one-directional, non-cancelable and runs outside
// any request cycle; a fired step no-ops when the shipment has meanwhile
// reached a terminal state or disappeared.
type Progressor struct {
	svc      *Service
	interval time.Duration
	log      observability.Logger

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewProgressor(svc *Service, interval time.Duration, logger observability.Logger) *Progressor {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Progressor{
		svc:      svc,
		interval: interval,
		log:      logger.With(observability.F("component", "shipment_progressor")),
	}
}

// Start registers the subscription on the bus.
func (p *Progressor) Start(ctx context.Context, subscriber event.Subscriber) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	subscriber.Subscribe(domshipment.CreatedEvent{}.EventName(), func(_ context.Context, e event.Event) error {
		evt, ok := e.(domshipment.CreatedEvent)
		if !ok {
			return nil
		}
		p.mu.Lock()
		if p.stopped {
			p.mu.Unlock()
			return nil
		}
		p.wg.Add(1)
		p.mu.Unlock()

		go p.run(runCtx, evt.ShipmentID)
		return nil
	})
	p.log.Info("shipment_progressor_started", observability.F("interval", p.interval.String()))
}

// Stop cancels all in-flight progressions and waits for them to exit.
func (p *Progressor) Stop() {
	p.mu.Lock()
	p.stopped = true
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

func (p *Progressor) run(ctx context.Context, shipmentID string) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			done, err := p.svc.AdvanceOnce(ctx, shipmentID)
			if err != nil {
				p.log.Warn("shipment_advance_failed",
					observability.F("shipment_id", shipmentID),
					observability.F("error", err.Error()),
				)
				return
			}
			if done {
				p.log.Info("shipment_progression_finished",
					observability.F("shipment_id", shipmentID),
				)
				return
			}
		}
	}
}
