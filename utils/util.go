// utils/util.go
package utils

import (
	"crypto/rand"
	"math/big"
	"os"
	"strconv"
	"strings"
)

// EnvInt reads an integer setting from the environment.
func EnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		return AsInt(v, fallback)
	}
	return fallback
}

// EnvBool reads a boolean setting from the environment.
func EnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

const apiKeyChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateAPIKey returns a random key of uppercase letters and digits.
func GenerateAPIKey(length int) string {
	var sb strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(apiKeyChars))))
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			panic(err)
		}
		sb.WriteByte(apiKeyChars[n.Int64()])
	}
	return sb.String()
}

// AsInt parses s, returning fallback on any failure.
func AsInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

var specialMapNames = map[string]string{
	"de_cbble": "Cobblestone",
	"de_dust2": "Dust II",
}

// FormatMapName turns an engine map name into its display name:
// de_inferno -> Inferno, de_dust2 -> Dust II.
func FormatMapName(name string) string {
	if pretty, ok := specialMapNames[name]; ok {
		return pretty
	}
	trimmed := name
	for _, prefix := range []string{"de_", "cs_", "aim_"} {
		if strings.HasPrefix(trimmed, prefix) {
			trimmed = strings.TrimPrefix(trimmed, prefix)
			break
		}
	}
	if trimmed == "" {
		return trimmed
	}
	return strings.ToUpper(trimmed[:1]) + trimmed[1:]
}
