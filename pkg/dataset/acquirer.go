// Package dataset acquires the sample dataset consumed by the database
// on first boot: download the remote archive, extract it, and place the
// dump and schema files into the initialization directory. The whole
// operation is idempotent; a present marker artifact skips everything.
package dataset

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/maestria-datos/datalab/internal/logger"
)

// Spec describes one dataset acquisition.
type Spec struct {
	// Name identifies the dataset in logs.
	Name string

	// URL is the remote zip archive.
	URL string

	// Files maps archive member paths to destination file names inside
	// DestDir. Members not listed are discarded.
	Files map[string]string

	// DestDir is the database initialization directory.
	DestDir string

	// Marker is the destination file name whose presence means the
	// dataset is already available.
	Marker string
}

// Acquirer downloads and places a dataset according to its Spec.
type Acquirer struct {
	spec   Spec
	client *http.Client

	// workDir is where the scoped temporary workspace is created.
	// Defaults to the system temp directory; tests override it.
	workDir string
}

// New creates an Acquirer for the given spec.
func New(spec Spec) *Acquirer {
	return &Acquirer{
		spec:    spec,
		client:  &http.Client{Timeout: 5 * time.Minute},
		workDir: os.TempDir(),
	}
}

// WithWorkDir overrides the temporary workspace parent. Used by tests.
func (a *Acquirer) WithWorkDir(dir string) *Acquirer {
	a.workDir = dir
	return a
}

// MarkerPath returns the destination artifact checked for idempotence.
func (a *Acquirer) MarkerPath() string {
	return filepath.Join(a.spec.DestDir, a.spec.Marker)
}

// AlreadyAvailable reports whether the dataset artifact is in place.
func (a *Acquirer) AlreadyAvailable() bool {
	_, err := os.Stat(a.MarkerPath())
	return err == nil
}

// Acquire ensures the dataset is present in the initialization
// directory. When the marker artifact exists the method returns without
// touching the network. Otherwise the archive is downloaded and
// extracted in a temporary workspace that is removed on every exit
// path, including download and extraction failures.
func (a *Acquirer) Acquire(ctx context.Context) error {
	if a.AlreadyAvailable() {
		logger.Info("dataset already available", "dataset", a.spec.Name, "marker", a.MarkerPath())
		return nil
	}

	workspace, err := os.MkdirTemp(a.workDir, "datalab-dataset-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary workspace: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workspace); err != nil {
			logger.Warn("failed to remove temporary workspace", "path", workspace, "error", err)
		}
	}()

	archive := filepath.Join(workspace, "dataset.zip")
	logger.Info("downloading dataset", "dataset", a.spec.Name, "url", a.spec.URL)
	if err := a.download(ctx, archive); err != nil {
		return fmt.Errorf("dataset download failed: %w", err)
	}

	extracted := filepath.Join(workspace, "extracted")
	if err := extractZip(archive, extracted); err != nil {
		return fmt.Errorf("dataset extraction failed: %w", err)
	}

	if err := os.MkdirAll(a.spec.DestDir, 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	for member, destName := range a.spec.Files {
		src := filepath.Join(extracted, filepath.FromSlash(member))
		dst := filepath.Join(a.spec.DestDir, destName)
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("failed to place %s: %w", destName, err)
		}
		logger.Info("dataset file placed", "file", destName)
	}

	logger.Info("dataset ready", "dataset", a.spec.Name, "dir", a.spec.DestDir)
	return nil
}

// download fetches the archive to the given path.
func (a *Acquirer) download(ctx context.Context, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.spec.URL, nil)
	if err != nil {
		return err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, a.spec.URL)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return err
	}
	return f.Close()
}

// extractZip unpacks the archive into dir, refusing member paths that
// escape it.
func extractZip(archive, dir string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		target := filepath.Join(dir, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive member %q escapes extraction directory", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := writeZipMember(f, target); err != nil {
			return err
		}
	}
	return nil
}

func writeZipMember(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return err
	}
	return out.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
