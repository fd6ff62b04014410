package domain

// Theme is the UI colour scheme a user picked.
type Theme string

const (
	ThemeLight     Theme = "light"
	ThemeDark      Theme = "dark"
	ThemeCupcake   Theme = "cupcake"
	ThemeBumblebee Theme = "bumblebee"
	ThemeEmerald   Theme = "emerald"
	ThemeCorporate Theme = "corporate"
	ThemeSynthwave Theme = "synthwave"
	ThemeRetro     Theme = "retro"
	ThemeCyberpunk Theme = "cyberpunk"
	ThemeValentine Theme = "valentine"
)

// DefaultTheme is assigned at registration.
const DefaultTheme = ThemeDark

// Themes lists the selectable themes in display order.
var Themes = []Theme{
	ThemeLight, ThemeDark, ThemeCupcake, ThemeBumblebee, ThemeEmerald,
	ThemeCorporate, ThemeSynthwave, ThemeRetro, ThemeCyberpunk, ThemeValentine,
}

// IsValid reports whether t is one of the known themes.
func (t Theme) IsValid() bool {
	for _, known := range Themes {
		if t == known {
			return true
		}
	}
	return false
}
