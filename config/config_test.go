package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")

	cfg := Default()
	require.NoError(t, cfg.ResolveEnv())

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestResolveEnv_BadDuration(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")

	cfg := Default()
	assert.Error(t, cfg.ResolveEnv())
}

func TestValidate_RequiresSecret(t *testing.T) {
	cfg := Default()
	assert.EqualError(t, cfg.Validate(), "JWT_SECRET must be set")

	cfg.JWTSecret = "x"
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile_OverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chirp.yaml")
	body := "port: \"7070\"\nmongoDB: chirp_test\njwtSecret: fromfile\ntokenTTL: 30m\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg := Default()
	require.NoError(t, LoadFile(path, &cfg))

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "chirp_test", cfg.MongoDB)
	assert.Equal(t, "fromfile", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	// untouched keys keep their defaults
	assert.Equal(t, Default().MongoURI, cfg.MongoURI)
}

func TestLoad_FromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chirp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwtSecret: fromfile\nport: \"7070\"\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "6060")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "6060", cfg.Port)
	assert.Equal(t, "fromfile", cfg.JWTSecret)
}
