package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_pool/internal/entity"
	"github.com/andrei-cloud/go_pool/internal/pool"
)

func TestCollector_ObservesManager(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	col, err := NewCollector(reg)
	require.NoError(t, err)

	catalog := entity.NewCatalog("laser")
	proto, _ := catalog.Prototype("laser")
	m := pool.NewManager(pool.NewRegistry(), pool.WithLogger(zerolog.Nop()), pool.WithObserver(col))
	require.NoError(t, m.Start())
	defer m.Shutdown()
	require.NoError(t, m.Add(proto, "laser", 1))

	a, err := m.Acquire("laser")
	require.NoError(t, err)
	b, err := m.Acquire("laser")
	require.NoError(t, err)
	col.Observe(m.Stats())

	assert.Equal(t, 1.0, testutil.ToFloat64(col.acquired.WithLabelValues("laser", "pool")))
	assert.Equal(t, 1.0, testutil.ToFloat64(col.acquired.WithLabelValues("laser", "dynamic")))
	assert.Equal(t, 1.0, testutil.ToFloat64(col.exhausted.WithLabelValues("laser")))
	assert.Equal(t, 0.0, testutil.ToFloat64(col.free.WithLabelValues("laser")))
	assert.Equal(t, 1.0, testutil.ToFloat64(col.inUse.WithLabelValues("laser")))

	require.NoError(t, m.Release(a))
	require.NoError(t, m.Release(b))
	m.ReleaseAfter(a, 0)
	col.Observe(m.Stats())

	assert.Equal(t, 1.0, testutil.ToFloat64(col.released.WithLabelValues("laser", "pooled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(col.released.WithLabelValues("laser", "destroyed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(col.free.WithLabelValues("laser")))
	assert.Equal(t, 1.0, testutil.ToFloat64(col.pending))
}

func TestCollector_DropsRemovedCategories(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	col, err := NewCollector(reg)
	require.NoError(t, err)

	col.Observe(pool.Stats{Categories: []pool.CategoryStats{{Name: "a", Capacity: 1, Free: 1}, {Name: "b"}}})
	assert.Equal(t, 2, testutil.CollectAndCount(col.free))

	col.Observe(pool.Stats{Categories: []pool.CategoryStats{{Name: "b"}}})
	assert.Equal(t, 1, testutil.CollectAndCount(col.free))
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
}
