package utils

import (
	"os"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/spf13/cast"
)

const (
	envCacheSize = 256
	envCacheTTL  = 10 * time.Second
)

// envCache remembers values read from the process environment and from the
// .env file so repeated lookups do not re-read the file.
var envCache = expirable.NewLRU[string, string](envCacheSize, nil, envCacheTTL)

func GetEnv(key string) string {
	v, _ := LookupEnv(key)
	return v
}

func GetBoolEnv(key string) bool {
	return cast.ToBool(GetEnv(key))
}

func GetFloatEnv(key string) float64 {
	return cast.ToFloat64(GetEnv(key))
}

func GetIntEnv(key string) int64 {
	return cast.ToInt64(GetEnv(key))
}

// GetDurationEnv parses values such as "250ms" or "5s". Plain integers are
// read as nanoseconds, matching cast.ToDuration.
func GetDurationEnv(key string) time.Duration {
	return cast.ToDuration(GetEnv(key))
}

// LookupEnv resolves key from the environment first, then from ./.env.
// Keys are case-insensitive.
func LookupEnv(key string) (value string, found bool) {
	key = strings.ToUpper(key)
	if v, ok := os.LookupEnv(key); ok {
		envCache.Add(key, v)
		return v, true
	}
	if v, ok := envCache.Get(key); ok {
		return v, true
	}
	data, err := os.ReadFile(".env")
	if err != nil {
		return "", false
	}
	for k, v := range parseEnvFile(data) {
		envCache.Add(k, v)
		if k == key {
			value, found = v, true
		}
	}
	return
}

// ResetEnvCache drops every cached lookup
func ResetEnvCache() {
	envCache.Purge()
}

// LoadEnv exports .env (or .env.<env> when env is set) into the process environment
func LoadEnv(env string) error {
	envFile := ".env"
	if env != "" {
		envFile = ".env." + env
	}
	data, err := os.ReadFile(envFile)
	if err != nil {
		return err
	}
	for k, v := range parseEnvFile(data) {
		if err := os.Setenv(k, v); err != nil {
			return err
		}
		envCache.Remove(k)
	}
	return nil
}

func parseEnvFile(data []byte) map[string]string {
	values := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' || !strings.Contains(line, "=") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		k := strings.ToUpper(strings.TrimSpace(parts[0]))
		v := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		values[k] = v
	}
	return values
}
