package tui

import (
	"context"

	"github.com/charmbracelet/huh/spinner"
)

// spinnerFn runs action behind an animated spinner. Tests replace it.
var spinnerFn = func(ctx context.Context, title string, action func()) error {
	return spinner.New().
		Type(spinner.Dots).
		Title(" " + title).
		Context(ctx).
		Action(action).
		Run()
}

// RunWithSpinner runs fn while showing title next to a spinner. Outside an
// interactive terminal fn runs directly.
func RunWithSpinner(ctx context.Context, title string, fn func(context.Context) error) error {
	if !isInteractiveFn() {
		return fn(ctx)
	}

	var err error
	if spinErr := spinnerFn(ctx, title, func() { err = fn(ctx) }); spinErr != nil {
		return spinErr
	}
	return err
}
