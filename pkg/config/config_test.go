package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir is a stand-in for t.Chdir, which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no config.yaml in sight

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "egtaonline.eecs.umich.edu", cfg.Domain)
	assert.Equal(t, "egta@mailinator.com", cfg.DefaultEmail)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, int64(0), cfg.Seed)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("EGTA_DOMAIN", "egta.example.com")
	t.Setenv("EGTA_PAGE_SIZE", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "egta.example.com", cfg.Domain)
	assert.Equal(t, 10, cfg.PageSize)
}

func TestParseSimSpec(t *testing.T) {
	doc := []byte(`
players:
  buyer: 2
  seller: 3
strategies:
  buyer: [shade, truthful]
  seller: [shade]
`)
	spec, err := ParseSimSpec(doc)
	require.NoError(t, err)
	assert.Equal(t, 5, spec.Size())
	assert.Equal(t, map[string]int{"buyer": 2, "seller": 3}, spec.Players)
	assert.Equal(t, []string{"shade", "truthful"}, spec.Strategies["buyer"])
}

func TestParseSimSpec_Invalid(t *testing.T) {
	_, err := ParseSimSpec([]byte("players: [not, a, map]"))
	assert.Error(t, err)
}
