// Package mailer renders transactional emails and delivers them from a
// background queue so that request handlers never wait on SMTP.
package mailer

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storefront/internal/models"
)

type Options struct {
	Workers   int
	QueueSize int
	// MaxRetryTime bounds the retries of a single message.
	MaxRetryTime time.Duration
}

// Dispatcher is a bounded mail queue drained by a fixed pool of workers.
type Dispatcher struct {
	sender Sender
	lg     *zap.Logger
	queue  chan Message

	workers         int
	maxRetryTime    time.Duration
	initialInterval time.Duration
}

func NewDispatcher(sender Sender, opts Options, lg *zap.Logger) *Dispatcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 64
	}
	if opts.MaxRetryTime <= 0 {
		opts.MaxRetryTime = 2 * time.Minute
	}
	return &Dispatcher{
		sender:          sender,
		lg:              lg,
		queue:           make(chan Message, opts.QueueSize),
		workers:         opts.Workers,
		maxRetryTime:    opts.MaxRetryTime,
		initialInterval: time.Second,
	}
}

// Enqueue never blocks. It reports false when the queue is full and the
// message was dropped.
func (d *Dispatcher) Enqueue(msg Message) bool {
	select {
	case d.queue <- msg:
		return true
	default:
		d.lg.Warn("Mail queue full, dropping message", zap.String("to", msg.To), zap.String("subject", msg.Subject))
		return false
	}
}

// OrderConfirmation queues the confirmation email for a placed order.
func (d *Dispatcher) OrderConfirmation(user *models.User, order *models.Order) {
	msg, err := OrderConfirmationMessage(user, order)
	if err != nil {
		d.lg.Error("Render order confirmation", zap.String("order_id", order.ID.Hex()), zap.Error(err))
		return
	}
	d.Enqueue(msg)
}

// Password queues an email carrying a generated password.
func (d *Dispatcher) Password(to, name, password string) {
	msg, err := PasswordMessage(to, name, password)
	if err != nil {
		d.lg.Error("Render password email", zap.Error(err))
		return
	}
	d.Enqueue(msg)
}

// Run drains the queue until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		lg := d.lg.With(zap.Int("worker", i))
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case msg := <-d.queue:
					d.deliver(ctx, lg, msg)
				}
			}
		})
	}
	return g.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, lg *zap.Logger, msg Message) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.initialInterval
	b.MaxElapsedTime = d.maxRetryTime

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return d.sender.Send(ctx, msg)
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		lg.Warn("Mail send failed, retrying",
			zap.String("to", msg.To),
			zap.Int("attempt", attempt),
			zap.Duration("next", next),
			zap.Error(err),
		)
	})
	if err != nil {
		lg.Error("Mail send gave up", zap.String("to", msg.To), zap.Int("attempts", attempt), zap.Error(err))
		return
	}
	lg.Info("Mail sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
}
