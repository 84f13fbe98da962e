// Package config loads the static service configuration: the map
// bounding box, the stations to resolve and the feature layers to
// fetch. The configuration is read once at startup and passed by value
// into the components that need it.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"hydromap/pkg/geo"
)

type Config struct {
	ListenAddr      string        `yaml:"listen_addr"`
	LogFile         string        `yaml:"log_file"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	GeoMet GeoMetConfig `yaml:"geomet"`

	// BBox is [min lon, min lat, max lon, max lat] in degrees.
	BBox     []float64     `yaml:"bbox"`
	Stations []string      `yaml:"stations"`
	Layers   []LayerConfig `yaml:"layers"`
}

type GeoMetConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type LayerConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads the YAML configuration file at path. An empty path yields
// the built-in defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.LogFile == "" {
		c.LogFile = "hydromap.log"
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = 5 * time.Minute
	}
	if c.GeoMet.BaseURL == "" {
		c.GeoMet.BaseURL = "https://api.weather.gc.ca"
	}
	if c.GeoMet.Timeout == 0 {
		c.GeoMet.Timeout = 30 * time.Second
	}
	if len(c.BBox) == 0 {
		// Southern Saskatchewan around the Qu'Appelle and Wascana basins.
		c.BBox = []float64{-107.0, 49.0, -101.0, 52.0}
	}
	if len(c.Stations) == 0 {
		c.Stations = []string{
			"05JF003", // Wascana Creek at Regina
			"05JG004", // Qu'Appelle River near Lumsden
			"05JK002", // Qu'Appelle River near Welby
			"05HG001", // South Saskatchewan River at Saskatoon
			"05JM001", // Moose Jaw River near Burdick
		}
	}
}

func (c *Config) validate() error {
	if len(c.BBox) != 4 {
		return fmt.Errorf("bbox must have exactly 4 values, got %d", len(c.BBox))
	}
	if !c.BoundingBox().Valid() {
		return fmt.Errorf("invalid bbox %v: min must be strictly less than max on both axes", c.BBox)
	}
	if c.RefreshInterval < time.Second {
		return fmt.Errorf("refresh_interval %s is below the 1s minimum", c.RefreshInterval)
	}

	names := make(map[string]bool)
	for _, layer := range c.Layers {
		if layer.Name == "" || layer.URL == "" {
			return fmt.Errorf("layer entries need both name and url, got %+v", layer)
		}
		if names[layer.Name] {
			return fmt.Errorf("duplicate layer name %q", layer.Name)
		}
		names[layer.Name] = true
	}
	return nil
}

// BoundingBox returns the configured bbox as a geo value.
func (c *Config) BoundingBox() geo.BBox {
	if len(c.BBox) != 4 {
		return geo.BBox{}
	}
	return geo.BBox{MinLon: c.BBox[0], MinLat: c.BBox[1], MaxLon: c.BBox[2], MaxLat: c.BBox[3]}
}
