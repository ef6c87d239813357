package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadWithoutPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "engine.yaml")
	require.NoError(t, os.WriteFile(p, []byte("order: 9\ncache_maxsize: 4\n"), 0o644))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Order)
	assert.Equal(t, 4, cfg.CacheMaxSize)
}

func TestValidateRejectsLowOrder(t *testing.T) {
	err := Engine{Order: 2, CacheMaxSize: 32}.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsNonPositiveCache(t *testing.T) {
	err := Engine{Order: 5, CacheMaxSize: 0}.Validate()
	assert.Error(t, err)
}
