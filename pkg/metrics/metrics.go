package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "cordwood"

// StorageMetrics collects metrics of the storage. It implements
// objstore.Metrics.
type StorageMetrics struct {
	storeMetrics
}

// NewStorageMetrics creates StorageMetrics and registers its collectors in
// reg along with the version gauge. Nil reg means the default registerer.
func NewStorageMetrics(version string, reg prometheus.Registerer) *StorageMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	registerVersionMetric(reg, namespace, version)

	store := newStoreMetrics()
	store.register(reg)

	return &StorageMetrics{
		storeMetrics: store,
	}
}
