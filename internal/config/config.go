package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	Theme       ThemeConfig      `toml:"theme"`
	Keybindings KeybindingConfig `toml:"keybindings"`
	Display     DisplayConfig    `toml:"display"`
}

// ThemeConfig defines color values (256-color or hex strings).
type ThemeConfig struct {
	PanelBorder   string   `toml:"panel_border"`
	ActiveHeading string   `toml:"active_heading"`
	HeadingLevels []string `toml:"heading_levels"`
	Placeholder   string   `toml:"placeholder"`
	Error         string   `toml:"error"`
	StatusBar     string   `toml:"status_bar"`
	StatusBarText string   `toml:"status_bar_text"`
	SyntaxTheme   string   `toml:"syntax_theme"`
}

// KeybindingConfig allows customizing keybindings.
type KeybindingConfig struct {
	Quit        []string `toml:"quit"`
	Up          []string `toml:"up"`
	Down        []string `toml:"down"`
	Activate    []string `toml:"activate"`
	Home        []string `toml:"home"`
	TogglePanel []string `toml:"toggle_panel"`
	NextCell    []string `toml:"next_cell"`
	PrevCell    []string `toml:"prev_cell"`
	Help        []string `toml:"help"`
}

// DisplayConfig holds display options.
type DisplayConfig struct {
	PanelWidth  int  `toml:"panel_width"`
	AltScreen   bool `toml:"alt_screen"`
	ShowLevels  bool `toml:"show_levels"`
	MouseEnable bool `toml:"mouse_enable"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Theme: ThemeConfig{
			PanelBorder:   "240",
			ActiveHeading: "205",
			HeadingLevels: []string{"81", "75", "69", "63", "57", "51"},
			Placeholder:   "244",
			Error:         "9",
			StatusBar:     "236",
			StatusBarText: "252",
			SyntaxTheme:   "monokai",
		},
		Keybindings: KeybindingConfig{
			Quit:        []string{"q", "ctrl+c"},
			Up:          []string{"k", "up"},
			Down:        []string{"j", "down"},
			Activate:    []string{"enter"},
			Home:        []string{"h", "esc"},
			TogglePanel: []string{"t"},
			NextCell:    []string{"J", "shift+down"},
			PrevCell:    []string{"K", "shift+up"},
			Help:        []string{"?"},
		},
		Display: DisplayConfig{
			PanelWidth:  32,
			AltScreen:   true,
			ShowLevels:  true,
			MouseEnable: true,
		},
	}
}

// Load reads config from path when non-empty, else from the default
// location, falling back to defaults when no file exists.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = defaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

func defaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "polynote", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "polynote", "config.toml")
}

// normalize backfills fields a partial config file left empty.
func (c *Config) normalize() {
	def := DefaultConfig()
	if len(c.Theme.HeadingLevels) == 0 {
		c.Theme.HeadingLevels = def.Theme.HeadingLevels
	}
	if c.Theme.SyntaxTheme == "" {
		c.Theme.SyntaxTheme = def.Theme.SyntaxTheme
	}
	if c.Display.PanelWidth <= 0 {
		c.Display.PanelWidth = def.Display.PanelWidth
	}
	if len(c.Keybindings.Quit) == 0 {
		c.Keybindings.Quit = def.Keybindings.Quit
	}
	if len(c.Keybindings.Up) == 0 {
		c.Keybindings.Up = def.Keybindings.Up
	}
	if len(c.Keybindings.Down) == 0 {
		c.Keybindings.Down = def.Keybindings.Down
	}
	if len(c.Keybindings.Activate) == 0 {
		c.Keybindings.Activate = def.Keybindings.Activate
	}
	if len(c.Keybindings.Home) == 0 {
		c.Keybindings.Home = def.Keybindings.Home
	}
}

// LevelColor returns the configured color for a 1-based heading level.
func (c *Config) LevelColor(level int) string {
	if level < 1 {
		level = 1
	}
	if level > len(c.Theme.HeadingLevels) {
		level = len(c.Theme.HeadingLevels)
	}
	if len(c.Theme.HeadingLevels) == 0 {
		return ""
	}
	return c.Theme.HeadingLevels[level-1]
}
