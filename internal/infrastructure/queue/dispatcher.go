package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/onlinestore/product-store/internal/core/domain"
	"github.com/onlinestore/product-store/internal/core/ports"
	"github.com/onlinestore/product-store/internal/pkg/metrics"
)

const (
	defaultWorkers  = 4
	channelBuffer   = 256
	deliveryTimeout = 10 * time.Second
)

// Dispatcher delivers order notifications on a fixed set of workers. Work is
// sharded by order number so notifications for one order arrive in the order
// they were enqueued.
type Dispatcher struct {
	workers  []chan domain.OrderNotification
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.OrderNotification, numWorkers),
		notifier: notifier,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.OrderNotification, channelBuffer)
	}
	return d
}

// Run starts the workers and blocks until ctx is cancelled and every worker
// has returned. Notifications still buffered at that point are delivered
// before the worker exits.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i, ch := range d.workers {
		wg.Add(1)
		go func(id int, ch chan domain.OrderNotification) {
			defer wg.Done()
			d.runWorker(ctx, id, ch)
		}(i, ch)
	}
	wg.Wait()
	return nil
}

// Enqueue hands n to the worker responsible for its order number. It never
// blocks the caller: when that worker's buffer is full the notification is
// dropped and logged.
func (d *Dispatcher) Enqueue(n domain.OrderNotification) {
	idx := d.shardIndex(n.OrderNumber)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Str("order_number", n.OrderNumber).
			Int("worker_id", idx).
			Msg("notification queue full, dropping")
	}
}

// shardIndex maps an order number deterministically to a worker index.
func (d *Dispatcher) shardIndex(orderNumber string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(orderNumber))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.OrderNotification) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case n := <-ch:
			metrics.NotificationQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.deliver(context.WithoutCancel(ctx), id, n)
		}
	}
}

func (d *Dispatcher) drain(id int, ch <-chan domain.OrderNotification) {
	for {
		select {
		case n := <-ch:
			d.deliver(context.Background(), id, n)
		default:
			metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(0)
			return
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, n domain.OrderNotification) {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	start := time.Now()
	err := d.notifier.Notify(ctx, n)
	metrics.NotificationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("order_number", n.OrderNumber).
			Str("status", string(n.Status)).
			Int("worker_id", id).
			Msg("order notification failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
}
