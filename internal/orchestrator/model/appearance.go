package model

// AppearanceTheme is the UI color scheme preference.
type AppearanceTheme string

const (
	ThemeSystem AppearanceTheme = "system"
	ThemeLight  AppearanceTheme = "light"
	ThemeDark   AppearanceTheme = "dark"
)

// AppearanceFonts holds the user's font-size preferences.
type AppearanceFonts struct {
	UIFontSize   int `json:"ui_font_size"`
	CodeFontSize int `json:"code_font_size"`
}

// Appearance aggregates the theme and font preferences.
type Appearance struct {
	Theme AppearanceTheme `json:"theme"`
	Fonts AppearanceFonts `json:"fonts"`
}

// MainPane is the top-level pane selector.
type MainPane string

const (
	MainPaneDashboard MainPane = "dashboard"
	MainPaneWorkspace MainPane = "workspace"
)

// RightPane is the secondary pane selector alongside a workspace's chat.
type RightPane string

const (
	RightPaneNone     RightPane = "none"
	RightPaneTerminal RightPane = "terminal"
	RightPaneDiff     RightPane = "diff"
)
