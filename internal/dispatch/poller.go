package dispatch

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Poller runs the dispatch pass on a fixed interval, in addition to the
// HTTP trigger. A campaign scheduled for tomorrow is therefore picked up
// within one interval of becoming due even if no external trigger fires.
type Poller struct {
	dispatcher *Dispatcher
	interval   time.Duration
	logger     *zap.Logger
}

func NewPoller(dispatcher *Dispatcher, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{dispatcher: dispatcher, interval: interval, logger: logger}
}

// Run ticks every interval and runs one dispatch pass per tick.
// Stops cleanly when ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("dispatch poller started", zap.Duration("interval", p.interval))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("dispatch poller stopping")
			return
		case <-ticker.C:
			if _, err := p.dispatcher.Run(ctx); err != nil {
				p.logger.Error("dispatch poll error", zap.Error(err))
			}
		}
	}
}
