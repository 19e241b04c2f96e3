package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the settings against the struct-level validation tags.
// It returns the first set of violations as a single wrapped error.
func Validate(cfg *Settings) error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			return fmt.Errorf("invalid settings: %w", verrs)
		}
		return fmt.Errorf("settings validation failed: %w", err)
	}

	return nil
}
