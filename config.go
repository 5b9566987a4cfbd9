package pentagon

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// Config is the app configuration. Flags override values from the file.
type Config struct {
	Window     WindowConfig `yaml:"window"`
	ImagePath  string       `yaml:"image"`
	ShaderPath string       `yaml:"shader"`
	Debug      bool         `yaml:"debug"`
	LogPrefix  string       `yaml:"log_prefix"`
}

var ErrInvalidConfig = errors.New("invalid config")

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:  defaultWindowWidth,
			Height: defaultWindowHeight,
			Title:  defaultWindowTitle,
		},
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path returns
// the defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if c.Window.Title == "" {
		return fmt.Errorf("%w: empty window title", ErrInvalidConfig)
	}
	return nil
}

// ParseFlags parses args, loads the file named by -config and applies the
// flags that were set on top of it.
func ParseFlags(name string, args []string, output io.Writer) (Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	configPath := fs.String("config", "", "YAML config file")
	width := fs.Int("width", defaultWindowWidth, "Window width")
	height := fs.Int("height", defaultWindowHeight, "Window height")
	title := fs.String("title", defaultWindowTitle, "Window title")
	image := fs.String("image", "", "Texture image (PNG, JPEG, GIF, BMP, TIFF, WebP)")
	debug := fs.Bool("debug", false, "Enable debug logging and frame statistics")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return Config{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Window.Width = *width
		case "height":
			cfg.Window.Height = *height
		case "title":
			cfg.Window.Title = *title
		case "image":
			cfg.ImagePath = *image
		case "debug":
			cfg.Debug = *debug
		}
	})
	return cfg, cfg.Validate()
}
