package tui

import "github.com/charmbracelet/huh"

// DefaultTheme is the prompt theme used when the config leaves theme unset.
const DefaultTheme = "pkgstamp"

// ValidThemes lists the values accepted by the theme config key.
var ValidThemes = []string{DefaultTheme, "base", "charm", "dracula"}

var themeBuilders = map[string]func() *huh.Theme{
	DefaultTheme: pkgstampTheme,
	"base":       huh.ThemeBase,
	"charm":      huh.ThemeCharm,
	"dracula":    huh.ThemeDracula,
}

// IsValidTheme reports whether name is one of ValidThemes.
func IsValidTheme(name string) bool {
	_, ok := themeBuilders[name]
	return ok
}

// GetTheme builds the named theme, or returns nil for an unknown name.
func GetTheme(name string) *huh.Theme {
	build, ok := themeBuilders[name]
	if !ok {
		return nil
	}
	return build()
}
