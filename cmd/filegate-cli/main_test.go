package main

import (
	"path/filepath"
	"testing"

	"github.com/sagarc03/filegate/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(t *testing.T) {
	t.Helper()
	cfgFile, endpoint, profileName = "", "", ""
	t.Cleanup(func() { cfgFile, endpoint, profileName = "", "", "" })
	t.Setenv(clientcli.EnvEndpoint, "")
	t.Setenv(clientcli.EnvProfile, "")
	t.Setenv(clientcli.EnvConfig, "")
}

func writeProfiles(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	file := &clientcli.ConfigFile{Profiles: []clientcli.Profile{
		{Name: "local", Endpoint: "http://localhost:5708", Default: true},
		{Name: "prod", Endpoint: "https://files.example.com"},
	}}
	require.NoError(t, file.Save(path))
	return path
}

func TestBuildConfig(t *testing.T) {
	t.Run("default profile", func(t *testing.T) {
		resetFlags(t)
		cfgFile = writeProfiles(t)

		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5708", cfg.Endpoint)
	})

	t.Run("profile from env", func(t *testing.T) {
		resetFlags(t)
		t.Setenv(clientcli.EnvConfig, writeProfiles(t))
		t.Setenv(clientcli.EnvProfile, "prod")

		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, "https://files.example.com", cfg.Endpoint)
	})

	t.Run("env overrides profile", func(t *testing.T) {
		resetFlags(t)
		cfgFile = writeProfiles(t)
		t.Setenv(clientcli.EnvEndpoint, "http://env:5708")

		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, "http://env:5708", cfg.Endpoint)
	})

	t.Run("flag overrides env", func(t *testing.T) {
		resetFlags(t)
		cfgFile = writeProfiles(t)
		t.Setenv(clientcli.EnvEndpoint, "http://env:5708")
		endpoint = "http://flag:5708"

		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Equal(t, "http://flag:5708", cfg.Endpoint)
	})

	t.Run("unknown profile", func(t *testing.T) {
		resetFlags(t)
		cfgFile = writeProfiles(t)
		profileName = "staging"

		_, err := buildConfig()
		assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
	})

	t.Run("missing config file", func(t *testing.T) {
		resetFlags(t)
		cfgFile = filepath.Join(t.TempDir(), "none.yaml")

		cfg, err := buildConfig()
		require.NoError(t, err)
		assert.Empty(t, cfg.Endpoint)

		profileName = "prod"
		_, err = buildConfig()
		assert.Error(t, err)
	})
}
