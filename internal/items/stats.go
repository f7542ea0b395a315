package items

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type StoreMetrics struct {
	Created prometheus.Counter
	Removed prometheus.Counter
}

// NewStoreMetrics registers store gauges, read at scrape time, plus the
// create/remove counters updated by the handlers.
func NewStoreMetrics(reg prometheus.Registerer, store Store) *StoreMetrics {
	m := &StoreMetrics{
		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itemstore_items_created_total",
			Help: "Items created through the API",
		}),
		Removed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "itemstore_items_removed_total",
			Help: "Items removed through the admin API",
		}),
	}

	reg.MustRegister(
		m.Created,
		m.Removed,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "itemstore_items",
			Help: "Items currently held",
		}, func() float64 { return float64(store.Len()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "itemstore_capacity",
			Help: "Slots reserved by the store",
		}, func() float64 { return float64(store.Capacity()) }),
	)
	return m
}

func (m *StoreMetrics) created() {
	if m != nil {
		m.Created.Inc()
	}
}

func (m *StoreMetrics) removed(n int) {
	if m != nil {
		m.Removed.Add(float64(n))
	}
}

// LogStats logs the store size every interval until ctx is done.
func LogStats(ctx context.Context, store Store, interval time.Duration, log *zap.Logger) error {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n, c := store.Len(), store.Capacity()
			log.Info("store stats",
				zap.Int("items", n),
				zap.Int("capacity", c),
				zap.String("summary", humanize.Comma(int64(n))+" items / "+humanize.Comma(int64(c))+" slots"),
			)
		}
	}
}
