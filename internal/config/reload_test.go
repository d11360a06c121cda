// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/eventd/internal/metrics"
	"github.com/ManuGH/eventd/internal/testutil"
)

func TestConfigHolderReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o600))

	loader := NewLoader(path)
	initial, err := loader.Load()
	require.NoError(t, err)

	holder := NewConfigHolder(initial, loader)
	updates := make(chan AppConfig, 1)
	holder.RegisterListener(updates)

	okBefore := testutil.CounterValue(t, metrics.ConfigReloadsTotal, "success")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))
	require.NoError(t, holder.Reload(context.Background()))

	assert.Equal(t, "debug", holder.Get().LogLevel)
	select {
	case got := <-updates:
		assert.Equal(t, "debug", got.LogLevel)
	default:
		t.Fatal("listener not notified")
	}
	assert.Equal(t, okBefore+1, testutil.CounterValue(t, metrics.ConfigReloadsTotal, "success"))
}

func TestConfigHolderKeepsOldConfigOnInvalidReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o600))

	loader := NewLoader(path)
	initial, err := loader.Load()
	require.NoError(t, err)
	holder := NewConfigHolder(initial, loader)

	failBefore := testutil.CounterValue(t, metrics.ConfigReloadsTotal, "failure")
	require.NoError(t, os.WriteFile(path, []byte("engine:\n  bus_buffer: -1\n"), 0o600))
	err = holder.Reload(context.Background())
	require.ErrorIs(t, err, ErrInvalidConfig)

	assert.Equal(t, "warn", holder.Get().LogLevel)
	assert.Equal(t, failBefore+1, testutil.CounterValue(t, metrics.ConfigReloadsTotal, "failure"))
}

func TestConfigHolderFullListenerDoesNotBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o600))
	loader := NewLoader(path)
	holder := NewConfigHolder(Defaults(), loader)

	full := make(chan AppConfig) // unbuffered, never read
	holder.RegisterListener(full)
	require.NoError(t, holder.Reload(context.Background()))
}

func TestConfigHolderWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o600))

	loader := NewLoader(path)
	initial, err := loader.Load()
	require.NoError(t, err)
	holder := NewConfigHolder(initial, loader)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, holder.StartWatcher(ctx))
	defer holder.Stop()

	require.NoError(t, os.WriteFile(path, []byte("log_level: error\n"), 0o600))
	assert.Eventually(t, func() bool {
		return holder.Get().LogLevel == "error"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestConfigHolderWatcherWithoutFile(t *testing.T) {
	holder := NewConfigHolder(Defaults(), NewLoader(""))
	require.NoError(t, holder.StartWatcher(context.Background()))
	holder.Stop()
}
