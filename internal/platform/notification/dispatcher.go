package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueFull is returned by Enqueue when the dispatcher cannot accept more messages.
var ErrQueueFull = errors.New("notification queue is full")

// ErrDispatcherStopped is returned by Enqueue after Stop.
var ErrDispatcherStopped = errors.New("notification dispatcher is stopped")

// DispatcherConfig holds dispatcher configuration.
type DispatcherConfig struct {
	NumWorkers  int
	QueueSize   int
	SendTimeout time.Duration
}

// Dispatcher drains a bounded queue of messages with a fixed set of workers.
// Delivery errors are logged and dropped.
type Dispatcher struct {
	config DispatcherConfig
	sender Sender
	logger *slog.Logger
	queue  chan Message
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.RWMutex
	state  int
}

const (
	stateIdle = iota
	stateRunning
	stateStopped
)

// NewDispatcher creates a dispatcher. Call Start before enqueueing.
func NewDispatcher(cfg DispatcherConfig, sender Sender, logger *slog.Logger) *Dispatcher {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	return &Dispatcher{
		config: cfg,
		sender: sender,
		logger: logger,
		queue:  make(chan Message, cfg.QueueSize),
	}
}

// Start launches the workers.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != stateIdle {
		return fmt.Errorf("dispatcher already started")
	}
	d.state = stateRunning

	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel

	for i := 0; i < d.config.NumWorkers; i++ {
		d.wg.Add(1)
		go func(id int) {
			defer d.wg.Done()
			d.run(workerCtx, id)
		}(i + 1)
	}
	d.logger.Info("Notification dispatcher started", slog.Int("workers", d.config.NumWorkers))
	return nil
}

// Enqueue schedules msg without blocking.
func (d *Dispatcher) Enqueue(msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.state != stateRunning {
		return ErrDispatcherStopped
	}
	select {
	case d.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for the workers to drain it, or for ctx to expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.state != stateRunning {
		d.mu.Unlock()
		return nil
	}
	d.state = stateStopped
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		d.logger.Info("Notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.cancel()
		d.logger.Warn("Timeout waiting for notification workers to stop")
		return ctx.Err()
	}
}

func (d *Dispatcher) run(ctx context.Context, id int) {
	for msg := range d.queue {
		sendCtx, cancel := context.WithTimeout(ctx, d.config.SendTimeout)
		if err := d.sender.Send(sendCtx, msg); err != nil {
			d.logger.Error("Failed to deliver queued email",
				slog.Int("worker", id),
				slog.String("subject", msg.Subject),
				slog.String("error", err.Error()),
			)
		}
		cancel()
	}
}
