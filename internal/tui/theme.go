package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Palette for the pkgstamp theme.
var (
	stampAmberPrimary      = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#f59e0b"}
	stampAmberBright       = lipgloss.AdaptiveColor{Light: "#d97706", Dark: "#fbbf24"}
	stampAmberAccent       = lipgloss.AdaptiveColor{Light: "#92400e", Dark: "#fcd34d"}
	stampTextStrong        = lipgloss.AdaptiveColor{Light: "#1c1917", Dark: "#fafaf9"}
	stampTextNormal        = lipgloss.AdaptiveColor{Light: "#44403c", Dark: "#e7e5e4"}
	stampTextMuted         = lipgloss.AdaptiveColor{Light: "#78716c", Dark: "#a8a29e"}
	stampTextFaint         = lipgloss.AdaptiveColor{Light: "#a8a29e", Dark: "#57534e"}
	stampBorderFocused     = lipgloss.AdaptiveColor{Light: "#d97706", Dark: "#f59e0b"}
	stampBorderNormal      = lipgloss.AdaptiveColor{Light: "#d6d3d1", Dark: "#44403c"}
	stampButtonBg          = lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#f59e0b"}
	stampButtonBgBlurred   = lipgloss.AdaptiveColor{Light: "#e7e5e4", Dark: "#292524"}
	stampButtonText        = lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#1c1917"}
	stampButtonTextBlurred = lipgloss.AdaptiveColor{Light: "#44403c", Dark: "#d6d3d1"}
)

// currentTheme names the theme used by prompts.
var currentTheme = DefaultTheme

// SetTheme selects the prompt theme. Empty or unknown names select DefaultTheme.
func SetTheme(name string) {
	if !IsValidTheme(name) {
		name = DefaultTheme
	}
	currentTheme = name
}

func currentThemeOrDefault() *huh.Theme {
	if t := GetTheme(currentTheme); t != nil {
		return t
	}
	return pkgstampTheme()
}

// pkgstampTheme builds the default prompt theme on top of huh's base theme.
func pkgstampTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.
		Border(lipgloss.RoundedBorder()).
		BorderForeground(stampBorderFocused)
	t.Focused.Card = t.Focused.Base
	t.Focused.Title = t.Focused.Title.Foreground(stampAmberPrimary).Bold(true)
	t.Focused.NoteTitle = t.Focused.NoteTitle.Foreground(stampAmberPrimary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(stampTextMuted)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(lipgloss.Color("1"))
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(lipgloss.Color("1"))
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(stampAmberBright)
	t.Focused.Option = t.Focused.Option.Foreground(stampTextNormal)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(stampAmberAccent)
	t.Focused.FocusedButton = t.Focused.FocusedButton.
		Foreground(stampButtonText).
		Background(stampButtonBg).
		Bold(true).
		Padding(0, 1)
	t.Focused.BlurredButton = t.Focused.BlurredButton.
		Foreground(stampButtonTextBlurred).
		Background(stampButtonBgBlurred).
		Padding(0, 1)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(stampAmberBright)
	t.Focused.TextInput.Placeholder = t.Focused.TextInput.Placeholder.Foreground(stampTextFaint)
	t.Focused.TextInput.Prompt = t.Focused.TextInput.Prompt.Foreground(stampAmberPrimary)
	t.Focused.TextInput.Text = t.Focused.TextInput.Text.Foreground(stampTextStrong)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Focused.Base.
		BorderStyle(lipgloss.HiddenBorder()).
		BorderForeground(stampBorderNormal)
	t.Blurred.Card = t.Blurred.Base
	t.Blurred.Title = t.Blurred.Title.Foreground(stampTextMuted).Bold(false)

	t.Help.ShortKey = t.Help.ShortKey.Foreground(stampTextMuted)
	t.Help.ShortDesc = t.Help.ShortDesc.Foreground(stampTextFaint)
	t.Help.ShortSeparator = t.Help.ShortSeparator.Foreground(stampTextFaint)
	t.Help.FullKey = t.Help.FullKey.Foreground(stampTextMuted)
	t.Help.FullDesc = t.Help.FullDesc.Foreground(stampTextFaint)
	t.Help.FullSeparator = t.Help.FullSeparator.Foreground(stampTextFaint)

	return t
}
