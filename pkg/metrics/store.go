package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	storeSubsystem = "object_store"

	methodLabelKey = "method"
)

type storeMetrics struct {
	methodDuration *prometheus.HistogramVec

	usedSpace   prometheus.Gauge
	objectCount prometheus.Gauge
}

func newStoreMetrics() storeMetrics {
	var (
		methodDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: storeSubsystem,
			Name:      "request_duration_seconds",
			Help:      "Object store operations handling time",
		}, []string{methodLabelKey})

		usedSpace = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: storeSubsystem,
			Name:      "used_space_bytes",
			Help:      "Size of the object store including freed records",
		})

		objectCount = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: storeSubsystem,
			Name:      "object_count",
			Help:      "Number of live records in the object store",
		})
	)
	return storeMetrics{
		methodDuration: methodDuration,
		usedSpace:      usedSpace,
		objectCount:    objectCount,
	}
}

func (m storeMetrics) register(reg prometheus.Registerer) {
	reg.MustRegister(m.methodDuration)
	reg.MustRegister(m.usedSpace)
	reg.MustRegister(m.objectCount)
}

func (m storeMetrics) AddMethodDuration(method string, d time.Duration) {
	m.methodDuration.With(prometheus.Labels{methodLabelKey: method}).Observe(d.Seconds())
}

func (m storeMetrics) SetUsedSpace(size uint64) {
	m.usedSpace.Set(float64(size))
}

func (m storeMetrics) SetObjectCount(n uint64) {
	m.objectCount.Set(float64(n))
}
