package config

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// EnvFile is the newline-delimited KEY=VALUE environment file consumed
// by the orchestrated stack. Key order is preserved so renders are
// deterministic and diffs stay readable.
//
// Once the file exists on disk it is never rewritten by datalab; user
// edits always win over defaults.
type EnvFile struct {
	keys   []string
	values map[string]string
}

// NewEnvFile returns an empty environment file.
func NewEnvFile() *EnvFile {
	return &EnvFile{values: make(map[string]string)}
}

// Set stores a key, appending it to the order on first insertion.
func (e *EnvFile) Set(key, value string) {
	if _, ok := e.values[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.values[key] = value
}

// Get returns the value for key and whether it is present.
func (e *EnvFile) Get(key string) (string, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Map returns the key/value pairs as a plain map.
func (e *EnvFile) Map() map[string]string {
	out := make(map[string]string, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Len returns the number of keys.
func (e *EnvFile) Len() int { return len(e.keys) }

// ParseEnv reads KEY=VALUE lines. Blank lines and #-comments are
// skipped; later duplicates overwrite earlier values.
func ParseEnv(r io.Reader) (*EnvFile, error) {
	env := NewEnvFile()

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, value, found := strings.Cut(text, "=")
		if !found {
			return nil, fmt.Errorf("malformed line %d: %q", line, text)
		}
		env.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read environment file: %w", err)
	}

	return env, nil
}

// LoadEnvFile parses the environment file at path.
func LoadEnvFile(path string) (*EnvFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open environment file: %w", err)
	}
	defer f.Close()
	return ParseEnv(f)
}

// Render serializes the file as KEY=VALUE lines in insertion order.
func (e *EnvFile) Render() []byte {
	var buf bytes.Buffer
	for _, k := range e.keys {
		fmt.Fprintf(&buf, "%s=%s\n", k, e.values[k])
	}
	return buf.Bytes()
}

// DefaultEnv synthesizes the environment file with a documented default
// for every key the stack services read. Synthesis cannot fail: all
// defaults are statically known and the signing secret falls back to a
// placeholder if the system randomness source is unavailable.
func DefaultEnv() *EnvFile {
	env := NewEnvFile()

	// Database credentials
	env.Set("MYSQL_ROOT_PASSWORD", "cambiar-root")
	env.Set("MYSQL_DATABASE", "curso")
	env.Set("MYSQL_USER", "alumno")
	env.Set("MYSQL_PASSWORD", "cambiar-alumno")

	// Locale and timezone
	env.Set("TZ", "America/Mexico_City")

	// Superset
	env.Set("SUPERSET_SECRET_KEY", randomSecret())
	env.Set("SUPERSET_ENV", "production")
	env.Set("SUPERSET_LOAD_EXAMPLES", "no")

	// Metabase
	env.Set("MB_SITE_NAME", "Maestria en Datos")
	env.Set("MB_SITE_LOCALE", "es")
	env.Set("MB_JAVA_OPTS", "-Xmx1g")

	// Notebook resource limits
	env.Set("JUPYTER_MEM_LIMIT", "2g")

	// Backups
	env.Set("BACKUP_CRON_EXPRESSION", "0 3 * * *")
	env.Set("BACKUP_MAX_COUNT", "7")

	// Host port bindings
	env.Set("MYSQL_PORT", "3306")
	env.Set("PHPMYADMIN_PORT", "8081")
	env.Set("METABASE_PORT", "3000")
	env.Set("SUPERSET_PORT", "8088")
	env.Set("STREAMLIT_PORT", "8501")
	env.Set("JUPYTER_PORT", "8888")

	return env
}

// randomSecret returns a 64-character hex secret for session signing.
func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// Synthesis must never fail; ship a placeholder the user is
		// told to rotate.
		return "cambiar-esta-clave-secreta"
	}
	return hex.EncodeToString(buf)
}
