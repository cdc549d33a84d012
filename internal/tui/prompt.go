package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/huh"
)

// keyMap returns huh's default bindings with esc added as a way to abort.
func keyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(
		key.WithKeys("ctrl+c", "esc"),
		key.WithHelp("esc", "cancel"),
	)
	return km
}

// confirmFn runs the confirm form. Tests replace it.
var confirmFn = func(title, description string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).WithTheme(currentThemeOrDefault()).WithKeyMap(keyMap())

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

// Confirm shows a yes/no prompt. Aborting the prompt counts as "no".
func Confirm(title, description string) (bool, error) {
	ok, err := confirmFn(title, description)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

// ConfirmOverwrite asks before replacing an existing output file. It returns
// true without prompting when force is set or the session is not interactive.
func ConfirmOverwrite(path string, force bool) (bool, error) {
	if force || !isInteractiveFn() {
		return true, nil
	}
	return Confirm("Overwrite "+path+"?", "The file already exists in the output directory.")
}

// isInteractiveFn is replaceable in tests.
var isInteractiveFn = IsInteractive
