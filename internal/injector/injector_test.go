package injector

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/handarena/internal/config"
	"github.com/zeusync/handarena/internal/core/arena"
	"github.com/zeusync/handarena/internal/scores"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.Seed = 9
	cfg.BestTimePath = filepath.Join(t.TempDir(), "best.yaml")
	return cfg
}

func TestInitializeApp(t *testing.T) {
	cfg := testConfig(t)
	app, cleanup, err := InitializeApp(cfg, LogOutput(filepath.Join(t.TempDir(), "arena.log")))
	require.NoError(t, err)
	defer cleanup()

	require.NotNil(t, app.Arena)
	require.NotNil(t, app.Driver)
	require.NotNil(t, app.Server)
	assert.Equal(t, arena.StatePaused, app.Arena.State())
	assert.Equal(t, 0, app.Tracker.Best())
	assert.Equal(t, cfg, app.Config)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Driver.Run(ctx) }()

	state, err := app.Driver.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, arena.StateRunning, state)

	// Records land in the configured file store.
	require.NoError(t, app.Tracker.Record(3))
	assert.Equal(t, 3, app.Tracker.Best())
	best, err := scores.NewFileStore(cfg.BestTimePath).Best()
	require.NoError(t, err)
	assert.Equal(t, 3, best)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not stop")
	}
}

func TestInitializeApp_InvalidLayout(t *testing.T) {
	cfg := testConfig(t)
	cfg.Arena.Layout[0].Kind = "dragon"
	_, _, err := InitializeApp(cfg, LogOutput(filepath.Join(t.TempDir(), "arena.log")))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestProvideStore(t *testing.T) {
	cfg := config.Default()
	cfg.BestTimePath = ""
	assert.IsType(t, &scores.MemoryStore{}, ProvideStore(cfg))

	cfg.BestTimePath = "best.yaml"
	assert.IsType(t, &scores.FileStore{}, ProvideStore(cfg))
}
