package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into an empty directory so no stray .env is picked up.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func setRequired(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("BLAKE_USERNAME", "blake")
	t.Setenv("BLAKE_PASSWORD", "b-pass")
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", cfg.OpenAIModel)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, "users.db", cfg.DBPath)
	assert.Equal(t, "0.0.0.0:5000", cfg.HTTPAddr)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Len(t, cfg.Credentials(), 1)
	assert.Equal(t, "blake", cfg.Credentials()[0].Username)
}

func TestLoadRequiresSecretKey(t *testing.T) {
	chdir(t, t.TempDir())
	setRequired(t)
	t.Setenv("SECRET_KEY", "")
	os.Unsetenv("SECRET_KEY")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresCredentials(t *testing.T) {
	chdir(t, t.TempDir())
	setRequired(t)
	t.Setenv("BLAKE_PASSWORD", "")
	t.Setenv("CHONA_USERNAME", "chona")

	_, err := Load()
	assert.ErrorContains(t, err, "BLAKE_USERNAME")
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	setRequired(t)
	t.Setenv("CHONA_USERNAME", "")
	t.Setenv("CHONA_PASSWORD", "")
	os.Unsetenv("CHONA_USERNAME")
	os.Unsetenv("CHONA_PASSWORD")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	content := "CHONA_USERNAME=chona\nCHONA_PASSWORD=c-pass\nOPENAI_MODEL=ignored\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Len(t, cfg.Credentials(), 2)
}
