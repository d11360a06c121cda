// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventd.yaml")
	require.NoError(t, WriteFile(path, Example(), false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# eventd configuration."))
	assert.Contains(t, string(data), "open_window: 5m0s")
	assert.Contains(t, string(data), "variant: survival_arena")

	err = WriteFile(path, Defaults(), false)
	require.ErrorIs(t, err, ErrConfigExists)

	require.NoError(t, WriteFile(path, Defaults(), true))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "blood_castle")
}
