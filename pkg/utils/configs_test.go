package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestGetEnvTypedValues(t *testing.T) {
	ResetEnvCache()
	t.Setenv("LINGRX_TEST_INT", "42")
	t.Setenv("LINGRX_TEST_BOOL", "true")
	t.Setenv("LINGRX_TEST_FLOAT", "2.5")
	t.Setenv("LINGRX_TEST_DURATION", "250ms")

	assert.Equal(t, int64(42), GetIntEnv("lingrx_test_int"))
	assert.True(t, GetBoolEnv("LINGRX_TEST_BOOL"))
	assert.Equal(t, 2.5, GetFloatEnv("LINGRX_TEST_FLOAT"))
	assert.Equal(t, 250*time.Millisecond, GetDurationEnv("LINGRX_TEST_DURATION"))
	assert.Equal(t, int64(0), GetIntEnv("LINGRX_TEST_MISSING"))
}

func TestLookupEnvFallsBackToDotEnv(t *testing.T) {
	ResetEnvCache()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("# comment\nLINGRX_DOTENV_ONLY = \"from-file\"\nbroken line\n"), 0o644))
	chdir(t, dir)

	v, ok := LookupEnv("LINGRX_DOTENV_ONLY")
	assert.True(t, ok)
	assert.Equal(t, "from-file", v)

	_, ok = LookupEnv("LINGRX_NOT_THERE")
	assert.False(t, ok)
}

func TestLoadEnv(t *testing.T) {
	ResetEnvCache()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("LINGRX_LOADED=yes\n"), 0o644))
	chdir(t, dir)
	t.Cleanup(func() { _ = os.Unsetenv("LINGRX_LOADED") })

	require.NoError(t, LoadEnv("test"))
	assert.Equal(t, "yes", os.Getenv("LINGRX_LOADED"))
	assert.Error(t, LoadEnv("missing"))
}
