package mail

import (
	"context"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/skydeals/skydeals-api/internal/platform/logger"
)

// sendTimeout bounds a single background delivery attempt.
const sendTimeout = 30 * time.Second

// Dispatcher sends non-critical notification emails on a bounded worker
// pool so request handlers never wait on the relay. Delivery failures are
// logged and swallowed; callers needing delivery feedback (password reset)
// must use the Mailer directly.
type Dispatcher struct {
	mailer Mailer
	pool   *ants.Pool
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher with the given worker count.
func NewDispatcher(mailer Mailer, workers int, log *slog.Logger) (*Dispatcher, error) {
	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(v any) {
		log.Error("mail worker panic", "panic", v)
	}))
	if err != nil {
		return nil, err
	}
	return &Dispatcher{mailer: mailer, pool: pool, logger: log}, nil
}

// Notify queues a message for background delivery. The request context is
// not carried into the send; the message outlives the request.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	err := d.pool.Submit(func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := d.mailer.Send(sendCtx, msg); err != nil {
			d.logger.Warn("notification email failed",
				"error", err,
				"to", msg.To,
				"subject", msg.Subject)
		}
	})
	if err != nil {
		log.Warn("mail pool rejected job",
			"error", err,
			"to", msg.To)
	}
}

// Close drains the worker pool. Call during shutdown.
func (d *Dispatcher) Close() {
	d.pool.Release()
}
