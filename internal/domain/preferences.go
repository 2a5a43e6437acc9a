package domain

// Theme is the stored UI theme preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether the theme is one of the known values
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Settings is the user-visible view of stored preferences
type Settings struct {
	Theme     Theme  `json:"theme"`
	HasAPIKey bool   `json:"has_api_key"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
}
