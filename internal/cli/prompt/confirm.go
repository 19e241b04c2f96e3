// Package prompt provides interactive terminal prompts for CLI commands.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user aborts a prompt with Ctrl+C.
var ErrAborted = errors.New("prompt aborted")

// Confirmer asks the user a yes/no question and reports the answer.
// CleanupAgent and other destructive commands take a Confirmer so they
// can be driven without a real terminal.
type Confirmer func(label string) (bool, error)

// Confirm prompts the user for yes/no confirmation.
// Only "y" or "yes" (case-insensitive) count as affirmative; anything
// else, including empty input, declines.
// Returns ErrAborted if the user presses Ctrl+C.
func Confirm(label string) (bool, error) {
	p := promptui.Prompt{
		Label:     fmt.Sprintf("%s [y/N]", label),
		IsConfirm: true,
	}

	result, err := p.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			return false, ErrAborted
		}
		// promptui returns ErrAbort for any non-affirmative response
		if err == promptui.ErrAbort {
			return false, nil
		}
		return false, err
	}

	result = strings.ToLower(result)
	return result == "y" || result == "yes", nil
}
