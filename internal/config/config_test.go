package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HRV_CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.DB.Driver)
	require.Equal(t, "hrv.db", cfg.DB.DataSource())
	require.Equal(t, 5, cfg.Ingest.UserID.Offset)
	require.Equal(t, 3000, cfg.Ingest.MaxGapMS)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hrv.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
db:
  driver: postgres
  host: db.internal
  name: hrv
  user: ingest
ingest:
  root: /data/hrv
  timezone: Europe/Istanbul
  precedence: [vitals, med_analysis, overview]
  user_id:
    strategy: pattern
    pattern: '(\d{4})_'
`), 0o644))

	t.Setenv("HRV_CONFIG_PATH", path)
	t.Setenv("HRV_SERVER_PORT", "9100")
	t.Setenv("HRV_INGEST_LOCALE", "comma")
	t.Setenv("HRV_AUTH_ENABLED", "true")
	t.Setenv("HRV_AUTH_TOKENS", "dashboard:s3cret, notebook:t0ken")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "/data/hrv", cfg.Ingest.Root)
	require.Equal(t, "comma", cfg.Ingest.Locale)
	require.Equal(t, []string{"vitals", "med_analysis", "overview"}, cfg.Ingest.Precedence)
	require.Equal(t, map[string]string{"dashboard": "s3cret", "notebook": "t0ken"}, cfg.Auth.Tokens)
	require.Equal(t, "host=db.internal port=5432 dbname=hrv sslmode=disable user=ingest", cfg.DB.DataSource())

	loc, err := cfg.Ingest.Location()
	require.NoError(t, err)
	require.Equal(t, "Europe/Istanbul", loc.String())

	r, err := cfg.Ingest.UserID.Resolver()
	require.NoError(t, err)
	id, err := r.Resolve("/data/hrv/x/y/log_1013_.txt")
	require.NoError(t, err)
	require.Equal(t, int64(1013), id)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("HRV_CONFIG_PATH", "")
	t.Setenv("HRV_SERVER_PORT", "eighty")
	_, err := Load()
	require.ErrorContains(t, err, "HRV_SERVER_PORT")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("HRV_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	require.ErrorContains(t, err, "read config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"transport", func(c *Config) { c.Transport.Mode = "grpc" }},
		{"auth without tokens", func(c *Config) { c.Auth.Enabled = true }},
		{"driver", func(c *Config) { c.DB.Driver = "mysql" }},
		{"postgres without target", func(c *Config) { c.DB.Driver = "postgres" }},
		{"log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"timezone", func(c *Config) { c.Ingest.Timezone = "Mars/Olympus" }},
		{"gap bounds", func(c *Config) { c.Ingest.MinGapMS, c.Ingest.MaxGapMS = 500, 100 }},
		{"locale", func(c *Config) { c.Ingest.Locale = "roman" }},
		{"precedence", func(c *Config) { c.Ingest.Precedence = []string{"vitals", "vitals"} }},
		{"user id strategy", func(c *Config) { c.Ingest.UserID.Strategy = "guess" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
