package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/eventd/internal/config"
)

func TestApp_RequiresManagerAndEngine(t *testing.T) {
	assert.ErrorIs(t, NewApp(testLogger(), nil, nil, nil, nil).Run(context.Background()), ErrMissingManager)

	m, err := NewManager(Deps{Logger: testLogger()})
	require.NoError(t, err)
	assert.ErrorIs(t, NewApp(testLogger(), m, nil, nil, nil).Run(context.Background()), ErrMissingEngine)
}

func TestApp_ReloadAppliesDefinitions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eventd.yaml")
	cfg := config.Example()
	cfg.Store.Backend = "memory"
	cfg.Status.Listen = ""
	require.NoError(t, config.WriteFile(path, cfg, false))

	loader := config.NewLoader(path)
	loaded, err := loader.Load()
	require.NoError(t, err)
	holder := config.NewConfigHolder(loaded, loader)

	app, err := Build(context.Background(), loaded, holder, testLogger())
	require.NoError(t, err)
	app.reloadSignal = nil

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Len(t, app.Engine().Definitions(), 3)

	cfg.Events = cfg.Events[:1]
	require.NoError(t, config.WriteFile(path, cfg, true))

	// Run registers its listener asynchronously; reload until it is seen.
	require.Eventually(t, func() bool {
		require.NoError(t, holder.Reload(context.Background()))
		return len(app.Engine().Definitions()) == 1
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
	}
}
