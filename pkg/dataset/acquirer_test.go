package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildArchive returns a zip containing the given member files.
func buildArchive(t *testing.T, members map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range members {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func testSpec(url, destDir string) Spec {
	return Spec{
		Name: "ventas",
		URL:  url,
		Files: map[string]string{
			"ventas/ventas.dump": "ventas.dump",
			"ventas/schema.sql":  "01-ventas-schema.sql",
		},
		DestDir: destDir,
		Marker:  "ventas.dump",
	}
}

func TestAcquire_DownloadsAndPlacesFiles(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"ventas/ventas.dump": "binary dump contents",
		"ventas/schema.sql":  "CREATE TABLE ventas (id INT);",
		"ventas/README.md":   "ignored",
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer server.Close()

	destDir := filepath.Join(t.TempDir(), "init")
	a := New(testSpec(server.URL, destDir)).WithWorkDir(t.TempDir())

	require.NoError(t, a.Acquire(context.Background()))

	dump, err := os.ReadFile(filepath.Join(destDir, "ventas.dump"))
	require.NoError(t, err)
	require.Equal(t, "binary dump contents", string(dump))

	schema, err := os.ReadFile(filepath.Join(destDir, "01-ventas-schema.sql"))
	require.NoError(t, err)
	require.Contains(t, string(schema), "CREATE TABLE")

	// Only the mapped files land in the destination.
	entries, err := os.ReadDir(destDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestAcquire_SkipsWhenMarkerExists(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	destDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(destDir, "ventas.dump"), []byte("existing"), 0o644))

	a := New(testSpec(server.URL, destDir)).WithWorkDir(t.TempDir())
	require.NoError(t, a.Acquire(context.Background()))

	require.Zero(t, requests, "idempotent skip must not touch the network")

	// Existing artifact untouched.
	data, err := os.ReadFile(filepath.Join(destDir, "ventas.dump"))
	require.NoError(t, err)
	require.Equal(t, "existing", string(data))
}

func TestAcquire_CleansWorkspaceOnExtractionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a zip archive"))
	}))
	defer server.Close()

	workDir := t.TempDir()
	a := New(testSpec(server.URL, filepath.Join(t.TempDir(), "init"))).WithWorkDir(workDir)

	err := a.Acquire(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "extraction failed")

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	require.Empty(t, entries, "temporary workspace must be removed on failure")
}

func TestAcquire_CleansWorkspaceOnDownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	workDir := t.TempDir()
	a := New(testSpec(server.URL, filepath.Join(t.TempDir(), "init"))).WithWorkDir(workDir)

	err := a.Acquire(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "download failed")

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestAcquire_MissingArchiveMember(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"ventas/schema.sql": "CREATE TABLE ventas (id INT);",
	})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer server.Close()

	a := New(testSpec(server.URL, filepath.Join(t.TempDir(), "init"))).WithWorkDir(t.TempDir())

	err := a.Acquire(context.Background())
	require.Error(t, err, "a dump missing from the archive is an acquisition failure")
}

func TestExtractZip_RejectsPathTraversal(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("../escape.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("nope"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.zip")
	require.NoError(t, os.WriteFile(archive, buf.Bytes(), 0o644))

	err = extractZip(archive, filepath.Join(dir, "out"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "escapes")
}
