package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "respaldo.json")
	raw := `{
		"clients": [{
			"rut": "12345678-5",
			"name": "Agrícola Los Sauces",
			"procedures": [{
				"type": "CUSTOM",
				"steps": [{"title": "Único paso", "done": true}]
			}]
		}],
		"uf_rates": [{"date": "2026-03-10", "value": "38000.50"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	s, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, s.Clients, 1)
	assert.Equal(t, "Agrícola Los Sauces", s.Clients[0].Name)
	require.Len(t, s.Clients[0].Procedures, 1)
	assert.True(t, s.Clients[0].Procedures[0].Steps[0].Done)
	require.Len(t, s.UFRates, 1)
	assert.Equal(t, "2026-03-10", s.UFRates[0].Date)
}

func TestLoadSnapshot_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roto.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := LoadSnapshot(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing snapshot file")
}

func TestLoadSnapshot_MissingFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "no-existe.json"))
	require.Error(t, err)
}
