package notification

import (
	"context"
	"sync"
	"time"

	"el-diego/internal/model"

	"github.com/rs/zerolog"
)

// Mailer sends an order confirmation to a recipient. Template rendering and
// transport live behind this interface.
type Mailer interface {
	SendOrderCreated(ctx context.Context, order *model.Order, recipient string) error
}

// Dispatcher schedules order-confirmation emails after a fixed delay so the
// send never blocks the order response. Dispatch failures are logged and
// never surfaced to the caller of order placement.
type Dispatcher struct {
	mailer Mailer
	delay  time.Duration
	logger zerolog.Logger
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher with the given send delay.
func NewDispatcher(mailer Mailer, delay time.Duration, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		mailer: mailer,
		delay:  delay,
		logger: logger.With().Str("component", "notification").Logger(),
	}
}

// Enqueue schedules a confirmation for the order and returns immediately.
func (d *Dispatcher) Enqueue(order *model.Order, recipient string) {
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()

		timer := time.NewTimer(d.delay)
		defer timer.Stop()
		<-timer.C

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := d.mailer.SendOrderCreated(ctx, order, recipient); err != nil {
			d.logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Str("recipient", recipient).
				Msg("failed to send order confirmation")
			return
		}

		d.logger.Info().
			Str("order_id", order.ID.String()).
			Str("recipient", recipient).
			Msg("order confirmation sent")
	}()
}

// Wait blocks until all scheduled notifications have been attempted. Used
// during shutdown and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// logMailer records the confirmation instead of sending a real email.
type logMailer struct {
	logger zerolog.Logger
}

// NewLogMailer creates a mailer that only logs the confirmation.
func NewLogMailer(logger zerolog.Logger) Mailer {
	return &logMailer{
		logger: logger.With().Str("mailer", "log").Logger(),
	}
}

func (m *logMailer) SendOrderCreated(_ context.Context, order *model.Order, recipient string) error {
	m.logger.Info().
		Str("order_id", order.ID.String()).
		Str("recipient", recipient).
		Str("total", order.Total.String()).
		Msg("order created email")
	return nil
}
