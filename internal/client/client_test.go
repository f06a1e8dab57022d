//nolint:all
package client_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_pool/internal/client"
	"github.com/andrei-cloud/go_pool/internal/entity"
	"github.com/andrei-cloud/go_pool/internal/host"
	"github.com/andrei-cloud/go_pool/internal/pool"
	"github.com/andrei-cloud/go_pool/internal/server"
)

const testAddr = "127.0.0.1:1611"

func startServer(t *testing.T) {
	t.Helper()

	catalog := entity.NewCatalog("laser", "rocket")
	factory := func() (*pool.Manager, error) {
		m := pool.NewManager(pool.NewRegistry(),
			pool.WithPolicy(pool.Policy{EnforcePooling: true}),
			pool.WithLogger(zerolog.Nop()),
		)
		proto, _ := catalog.Prototype("laser")
		return m, m.Add(proto, "laser", 1)
	}
	l := host.New(factory, host.WithLogger(zerolog.Nop()), host.WithTickRate(5*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = l.Run(ctx) }()

	srv, err := server.NewServer(testAddr, l, catalog)
	require.NoError(t, err)
	go func() { _ = srv.Start() }()
	time.Sleep(100 * time.Millisecond)

	t.Cleanup(func() {
		_ = srv.Stop()
		cancel()
		<-l.Done()
	})
}

func TestClient(t *testing.T) {
	startServer(t)

	c := client.Dial(testAddr, 500*time.Millisecond)
	defer c.Close()

	h, err := c.Acquire("laser")
	require.NoError(t, err)
	assert.Equal(t, "pool", h.Source)
	assert.NotEmpty(t, h.ID)

	_, err = c.AcquireAt("laser", pool.Placement{Position: [3]float64{1, 2.5, 3}})
	assert.ErrorIs(t, err, client.ErrExhausted)

	st, err := c.Stats()
	require.NoError(t, err)
	require.Len(t, st.Categories, 1)
	assert.Equal(t, 1, st.Categories[0].InUse)

	require.NoError(t, c.Release(h.ID))

	err = c.Release(h.ID)
	var se *client.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "16", se.Status)

	require.NoError(t, c.Add("rockets", 2, "rocket"))
	h, err = c.Acquire("rockets")
	require.NoError(t, err)
	require.NoError(t, c.ReleaseAfter(h.ID, 10*time.Millisecond))
	require.NoError(t, c.Remove("rockets"))

	err = c.Remove("rockets")
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "P4", se.Status)

	fs := c.FrameStats()
	assert.Equal(t, int64(10), fs.Hits+fs.Misses)
}
