package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	MarkupPath    string `mapstructure:"path"`
	PreviewWidth  int    `mapstructure:"preview_width"`
	IndentWidth   int    `mapstructure:"indent_width"`
	ColorBorder   string `mapstructure:"color_border"`
	ColorTag      string `mapstructure:"color_tag"`
	ColorAttr     string `mapstructure:"color_attr"`
	ColorValue    string `mapstructure:"color_value"`
	ColorAccent   string `mapstructure:"color_accent"`
	ColorDim      string `mapstructure:"color_dim"`
	ColorSelected string `mapstructure:"color_selected"`
}

// C is the global config instance
var C Config

// Init initializes configuration with viper
func Init() error {
	viper.SetDefault("path", ".")
	viper.SetDefault("preview_width", 80)
	viper.SetDefault("indent_width", 2)
	viper.SetDefault("color_border", "240") // Gray
	viper.SetDefault("color_tag", "6")      // Cyan
	viper.SetDefault("color_attr", "3")     // Yellow
	viper.SetDefault("color_value", "2")    // Green
	viper.SetDefault("color_accent", "212") // Pink
	viper.SetDefault("color_dim", "241")    // Dim gray
	viper.SetDefault("color_selected", "236")

	viper.SetConfigName("tkml")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "tkml"))
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("TKML")
	viper.AutomaticEnv()

	// Try to read config, but don't fail if not found or malformed
	_ = viper.ReadInConfig()

	return viper.Unmarshal(&C)
}

// GetPath returns the markup path with tilde expansion
func GetPath() string {
	path := viper.GetString("path")
	return expandTilde(path)
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetPreviewWidth returns the width used for static rendering
func GetPreviewWidth() int {
	return viper.GetInt("preview_width")
}

// GetIndentWidth returns the indent used when printing trees
func GetIndentWidth() int {
	return viper.GetInt("indent_width")
}

// GetColorBorder returns the border color
func GetColorBorder() string {
	return viper.GetString("color_border")
}

// GetColorTag returns the tag name color
func GetColorTag() string {
	return viper.GetString("color_tag")
}

// GetColorAttr returns the attribute key color
func GetColorAttr() string {
	return viper.GetString("color_attr")
}

// GetColorValue returns the attribute value color
func GetColorValue() string {
	return viper.GetString("color_value")
}

// GetColorAccent returns the accent/cursor color
func GetColorAccent() string {
	return viper.GetString("color_accent")
}

// GetColorDim returns the dim text color
func GetColorDim() string {
	return viper.GetString("color_dim")
}

// GetColorSelected returns the selection background color
func GetColorSelected() string {
	return viper.GetString("color_selected")
}

// SetPath sets path at runtime
func SetPath(path string) {
	viper.Set("path", path)
	C.MarkupPath = path
}

// SetPreviewWidth sets the render width at runtime
func SetPreviewWidth(width int) {
	viper.Set("preview_width", width)
	C.PreviewWidth = width
}
