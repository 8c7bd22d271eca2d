package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/Determinant/cordwood/pkg/local_object_storage/cowarray"
	"github.com/Determinant/cordwood/pkg/local_object_storage/objstore"
	"github.com/Determinant/cordwood/pkg/local_object_storage/objstore/memspace"
	"github.com/Determinant/cordwood/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewStorageMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()

	m := metrics.NewStorageMetrics("v0.1.0", reg)

	m.AddMethodDuration("get", time.Millisecond)
	m.AddMethodDuration("put", time.Millisecond)
	m.SetUsedSpace(4096)
	m.SetObjectCount(3)

	n, err := testutil.GatherAndCount(reg,
		"cordwood_version",
		"cordwood_object_store_request_duration_seconds",
		"cordwood_object_store_used_space_bytes",
		"cordwood_object_store_object_count",
	)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	require.Panics(t, func() {
		metrics.NewStorageMetrics("v0.1.0", reg)
	}, "collectors must not be registered twice")
}

func TestStorageMetrics_Store(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewStorageMetrics("test", reg)

	s, err := objstore.New[cowarray.Node](memspace.New(), cowarray.Decode, objstore.WithMetrics(m))
	require.NoError(t, err)

	root, err := cowarray.Init(s)
	require.NoError(t, err)

	a := cowarray.New(s)
	require.NoError(t, a.Set(root, 1, 1))

	n, err := testutil.GatherAndCount(reg, "cordwood_object_store_request_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 4, n, "put, get, write and free")

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP cordwood_object_store_object_count Number of live records in the object store
# TYPE cordwood_object_store_object_count gauge
cordwood_object_store_object_count 2
`), "cordwood_object_store_object_count"))

	require.EqualValues(t, s.UsedSpace(), gaugeValue(t, reg, "cordwood_object_store_used_space_bytes"))
}

func gaugeValue(t *testing.T, g prometheus.Gatherer, name string) float64 {
	mfs, err := g.Gather()
	require.NoError(t, err)

	for _, mf := range mfs {
		if mf.GetName() == name {
			require.Len(t, mf.GetMetric(), 1)
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}

	require.FailNow(t, "metric not found", name)
	return 0
}
