// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInitThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventd.yaml")
	var stdout, stderr bytes.Buffer

	require.Equal(t, 0, configCLI([]string{"init", path}, &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), path)

	stdout.Reset()
	require.Equal(t, 0, configCLI([]string{"validate", "-f", path}, &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), "3 events")
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, configCLI([]string{"init", path}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "--force")

	stderr.Reset()
	assert.Equal(t, 0, configCLI([]string{"init", "--force", path}, &stdout, &stderr), stderr.String())
}

func TestConfigValidateRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("unknown_key: 1\n"), 0o600))

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, configCLI([]string{"validate", "--file", path}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Configuration error")
}

func TestConfigDumpRedactsSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventd.yaml")
	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, configCLI([]string{"init", path}, &stdout, &stderr))
	t.Setenv("EVENTD_REDIS_PASSWORD", "hunter2")

	stdout.Reset()
	require.Equal(t, 0, configCLI([]string{"dump", "-f", path, "--format=json"}, &stdout, &stderr), stderr.String())
	assert.NotContains(t, stdout.String(), "hunter2")
	assert.Contains(t, stdout.String(), "blood_castle")
}

func TestConfigUnknownSubcommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, configCLI([]string{"frobnicate"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage:")
}

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("EVENTD_CONFIG", "/etc/eventd/eventd.yaml")
	assert.Equal(t, "/tmp/x.yaml", resolveConfigPath(" /tmp/x.yaml "))
	assert.Equal(t, "/etc/eventd/eventd.yaml", resolveConfigPath(""))
}
