package config

import (
	"strings"
	"testing"
)

func TestParseEnv_SkipsCommentsAndBlanks(t *testing.T) {
	input := strings.NewReader(`
# credentials
MYSQL_USER=alumno

MYSQL_PASSWORD = secreto
`)

	env, err := ParseEnv(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v, _ := env.Get("MYSQL_USER"); v != "alumno" {
		t.Errorf("expected MYSQL_USER=alumno, got %q", v)
	}
	if v, _ := env.Get("MYSQL_PASSWORD"); v != "secreto" {
		t.Errorf("expected whitespace-trimmed value, got %q", v)
	}
	if env.Len() != 2 {
		t.Errorf("expected 2 keys, got %d", env.Len())
	}
}

func TestParseEnv_MalformedLine(t *testing.T) {
	_, err := ParseEnv(strings.NewReader("NOT A PAIR"))
	if err == nil {
		t.Fatal("expected error for line without '='")
	}
}

func TestRender_PreservesInsertionOrder(t *testing.T) {
	env := NewEnvFile()
	env.Set("B", "2")
	env.Set("A", "1")
	env.Set("B", "3") // overwrite keeps original position

	got := string(env.Render())
	want := "B=3\nA=1\n"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestDefaultEnv_CoversDownstreamKeys(t *testing.T) {
	env := DefaultEnv()

	required := []string{
		"MYSQL_ROOT_PASSWORD", "MYSQL_DATABASE", "MYSQL_USER", "MYSQL_PASSWORD",
		"TZ",
		"SUPERSET_SECRET_KEY", "SUPERSET_ENV", "SUPERSET_LOAD_EXAMPLES",
		"MB_SITE_NAME", "MB_SITE_LOCALE", "MB_JAVA_OPTS",
		"JUPYTER_MEM_LIMIT",
		"BACKUP_CRON_EXPRESSION", "BACKUP_MAX_COUNT",
		"MYSQL_PORT", "PHPMYADMIN_PORT", "METABASE_PORT",
		"SUPERSET_PORT", "STREAMLIT_PORT", "JUPYTER_PORT",
	}
	for _, key := range required {
		if _, ok := env.Get(key); !ok {
			t.Errorf("default environment missing key %s", key)
		}
	}
}

func TestDefaultEnv_SecretIsRandom(t *testing.T) {
	a, _ := DefaultEnv().Get("SUPERSET_SECRET_KEY")
	b, _ := DefaultEnv().Get("SUPERSET_SECRET_KEY")

	if len(a) != 64 {
		t.Errorf("expected 64-char hex secret, got %d chars", len(a))
	}
	if a == b {
		t.Error("expected a fresh secret per synthesis")
	}
}

func TestDefaultEnv_RoundTrip(t *testing.T) {
	env := DefaultEnv()

	parsed, err := ParseEnv(strings.NewReader(string(env.Render())))
	if err != nil {
		t.Fatalf("rendered defaults failed to parse: %v", err)
	}
	if parsed.Len() != env.Len() {
		t.Errorf("round trip lost keys: %d != %d", parsed.Len(), env.Len())
	}
}
