package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/friendsoftheweb/utils/semaphore"
)

type metrics struct {
	exports      *prometheus.CounterVec
	rows         prometheus.Counter
	streamErrors prometheus.Counter
}

// newMetrics registers the exporter metrics with reg.
// fetches is the semaphore that bounds user fetches, its in-flight count is exposed as a gauge.
func newMetrics(reg prometheus.Registerer, fetches *semaphore.Semaphore) *metrics {
	factory := promauto.With(reg)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "csvexport_fetch_in_flight",
		Help: "Number of user fetches currently running.",
	}, func() float64 {
		return float64(fetches.InFlight())
	})

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "csvexport_fetch_waiting",
		Help: "Number of user fetches waiting for a free slot.",
	}, func() float64 {
		return float64(fetches.Waiting())
	})

	return &metrics{
		exports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "csvexport_exports_total",
			Help: "Number of started exports.",
		}, []string{"mode"}),

		rows: factory.NewCounter(prometheus.CounterOpts{
			Name: "csvexport_rows_total",
			Help: "Number of data rows produced.",
		}),

		streamErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "csvexport_stream_errors_total",
			Help: "Number of exports that ended with a row source error.",
		}),
	}
}
