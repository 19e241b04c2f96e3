package provision

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/maestria-datos/datalab/internal/logger"
	"github.com/maestria-datos/datalab/pkg/config"
)

// EnsureEnvFile makes sure the stack environment file exists at path.
//
// An existing file is never rewritten: user edits always win. When the
// file is absent it is created from the checked-in template if one
// exists, otherwise synthesized from the compiled-in defaults. Exactly
// one of those two happens per run, and the synthesis path cannot fail
// because every default is statically known.
func EnsureEnvFile(path, templatePath string) error {
	if _, err := os.Stat(path); err == nil {
		logger.Info("environment file already exists, keeping user configuration", "path", path)
		return nil
	}

	data, err := os.ReadFile(templatePath)
	if err == nil {
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("failed to write environment file: %w", err)
		}
		logger.Info("environment file created from template", "path", path, "template", templatePath)
		return nil
	}
	// Only a genuinely absent template falls through to synthesis; an
	// unreadable one is a real error the user must resolve.
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read environment template %s: %w", templatePath, err)
	}

	if err := os.WriteFile(path, config.DefaultEnv().Render(), 0o600); err != nil {
		return fmt.Errorf("failed to write environment file: %w", err)
	}
	logger.Info("environment file synthesized with defaults", "path", path)
	return nil
}
