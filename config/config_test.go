package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	require.Equal(t, 0.25, cfg.Confidence)
	require.Equal(t, 0.5, cfg.MaskThreshold)
	require.Equal(t, 0.5, cfg.BlendWeight)
	require.Equal(t, BackendGo, cfg.Backend)
	require.Equal(t, "Leaf", cfg.ObjectNoun)
	require.Equal(t, 30*time.Second, cfg.QueueTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIDENCE", "0.4")
	t.Setenv("QUEUE_TIMEOUT", "5s")
	t.Setenv("OBJECT_NOUN", "Fruit")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	require.Equal(t, 0.4, cfg.Confidence)
	require.Equal(t, 5*time.Second, cfg.QueueTimeout)
	require.Equal(t, "Fruit", cfg.ObjectNoun)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("TELEGRAM_TOKEN=abc\nWORKERS=3\n"), 0o600))
	for _, key := range []string{"TELEGRAM_TOKEN", "WORKERS"} {
		unsetEnv(t, key)
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "abc", cfg.TelegramToken)
	require.Equal(t, 3, cfg.Workers)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("BLEND_WEIGHT", "3")

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.Error(t, err)
}

// unsetEnv убирает переменную на время теста: godotenv не перезаписывает существующие.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	prev, ok := os.LookupEnv(key)
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() {
		if ok {
			os.Setenv(key, prev)
			return
		}
		os.Unsetenv(key)
	})
}
