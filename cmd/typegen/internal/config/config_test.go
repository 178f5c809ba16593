package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `schema: api/openapi.yaml
files:
  packets: packets.ts
rules:
  renames:
    - from: ApiPaths
      to: Route
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "api/openapi.yaml", cfg.Schema)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, "bun", cfg.Runner)
	assert.Equal(t, "packets.ts", cfg.Files.Packets)
	assert.Equal(t, "oapi-gen.ts", cfg.Files.Generated)
	assert.Equal(t, []Replacement{{From: "ApiPaths", To: "Route"}}, cfg.Rules.Renames)
	assert.Equal(t, DefaultRules().TrimPrefixes, cfg.Rules.TrimPrefixes)
	assert.Equal(t, DefaultRules().DropAliases, cfg.Rules.DropAliases)
}

func TestLoad_Timeout(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    time.Duration
	}{
		{name: "omitted", content: "runner: bun\n", want: 2 * time.Minute},
		{name: "explicit", content: "timeout: 30s\n", want: 30 * time.Second},
		{name: "disabled", content: "timeout: 0s\n", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(tt.content), 0644))

			cfg, err := Load(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Timeout)
		})
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TYPEGEN_RUNNER", "node")
	t.Setenv("TYPEGEN_OUT_DIR", "generated")
	t.Setenv("TYPEGEN_TIMEOUT", "5s")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "node", cfg.Runner)
	assert.Equal(t, "generated", cfg.OutDir)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, filepath.Join("generated", "oapi-gen.ts"), cfg.Path(cfg.Files.Generated))
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("flags: [unterminated"), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Timeout = -time.Second },
			wantErr: true,
		},
		{
			name:    "empty trim prefix",
			mutate:  func(c *Config) { c.Rules.TrimPrefixes = []Replacement{{From: ""}} },
			wantErr: true,
		},
		{
			name:    "empty rename",
			mutate:  func(c *Config) { c.Rules.Renames = []Replacement{{To: "X"}} },
			wantErr: true,
		},
		{
			name:    "duplicate file names",
			mutate:  func(c *Config) { c.Files.Packets = c.Files.Generated },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(DefaultConfig(), dir))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
