package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/janelia-flyem/chunkgrid/chunkgrid"
	"github.com/janelia-flyem/chunkgrid/placement"
	"github.com/janelia-flyem/chunkgrid/sampler"
	"github.com/janelia-flyem/chunkgrid/schematic"
)

const (
	DefaultImagePath     = "out/chunks.png"
	DefaultSchematicPath = "out/chunks.litematic"
	DefaultSchematicName = "ChunkGrid"
)

// Config is the parsed TOML configuration.  Sections that are absent keep the values
// from DefaultConfig.
type Config struct {
	Cluster   ClusterConfig
	Tree      TreeConfig
	Placement PlacementConfig
	Schematic SchematicConfig
	Output    OutputConfig
	Logging   chunkgrid.LogConfig
}

type ClusterConfig struct {
	Offset     [2]int32 `toml:"offset"`
	ScanWidth  int32    `toml:"scan_width"`
	Size       int      `toml:"size"`
	HashSpace  uint64   `toml:"hash_space"`
	MaxColumns int32    `toml:"max_columns"`
}

type TreeConfig struct {
	Workers int `toml:"workers"`
}

type PlacementConfig struct {
	Dimensions int    `toml:"dimensions"`
	ChunkSize  int32  `toml:"chunk_size"`
	Region     string `toml:"region"`
	Pathway    string `toml:"pathway"`
	Marker     string `toml:"marker"`
}

type SchematicConfig struct {
	Name        string                `toml:"name"`
	Author      string                `toml:"author"`
	Description string                `toml:"description"`
	Packing     schematic.PackingMode `toml:"packing"`
}

// OutputConfig gives the output file paths.  An empty path skips that output.
type OutputConfig struct {
	Image     string `toml:"image"`
	Schematic string `toml:"schematic"`
}

// DefaultConfig returns the configuration used when no TOML file is given.
func DefaultConfig() Config {
	return Config{
		Cluster: ClusterConfig{
			Offset:     [2]int32{-20, 20},
			ScanWidth:  50,
			Size:       810,
			HashSpace:  2048,
			MaxColumns: sampler.DefaultMaxColumns,
		},
		Tree: TreeConfig{Workers: 1},
		Placement: PlacementConfig{
			Dimensions: 3,
			ChunkSize:  placement.DefaultChunkSize,
			Region:     placement.DefaultRegion,
			Pathway:    placement.DefaultPathway,
			Marker:     placement.DefaultMarker,
		},
		Schematic: SchematicConfig{
			Name:    DefaultSchematicName,
			Packing: schematic.ExactPacking,
		},
		Output: OutputConfig{
			Image:     DefaultImagePath,
			Schematic: DefaultSchematicPath,
		},
	}
}

// SamplerConfig returns the cluster section as a sampler configuration.
func (c Config) SamplerConfig() sampler.Config {
	return sampler.Config{
		Offset:     chunkgrid.Point2d(c.Cluster.Offset),
		Width:      c.Cluster.ScanWidth,
		Size:       c.Cluster.Size,
		HashSpace:  c.Cluster.HashSpace,
		MaxColumns: c.Cluster.MaxColumns,
	}
}

// PlacementOptions returns the placement section as placement options.
func (c Config) PlacementOptions() placement.Options {
	return placement.Options{
		Dimensions: c.Placement.Dimensions,
		ChunkSize:  c.Placement.ChunkSize,
		Origin:     chunkgrid.Point2d(c.Cluster.Offset),
		Region:     c.Placement.Region,
		Pathway:    c.Placement.Pathway,
		Marker:     c.Placement.Marker,
	}
}

// Validate runs every check that can fail before any output is produced.
func (c Config) Validate() error {
	if err := c.SamplerConfig().Validate(); err != nil {
		return err
	}
	if err := c.PlacementOptions().Validate(); err != nil {
		return err
	}
	if c.Tree.Workers < 0 {
		return fmt.Errorf("tree workers must not be negative, got %d: %w", c.Tree.Workers, chunkgrid.ErrBadConfig)
	}
	switch c.Schematic.Packing {
	case schematic.ExactPacking, schematic.LegacyPacking:
	default:
		return fmt.Errorf("unknown packing mode %s: %w", c.Schematic.Packing, chunkgrid.ErrBadConfig)
	}
	return nil
}

// LoadConfig reads a TOML configuration on top of the defaults.  Unknown keys are an
// error, and relative output and log paths are taken relative to the file's directory.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	if filename == "" {
		return cfg, fmt.Errorf("no TOML configuration file provided: %w", chunkgrid.ErrBadConfig)
	}
	md, err := toml.DecodeFile(filename, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("could not decode TOML config %q: %v: %w", filename, err, chunkgrid.ErrBadConfig)
	}
	if err := checkUndecoded(md); err != nil {
		return cfg, err
	}
	if err := cfg.convertPathsToAbsolute(filename); err != nil {
		return cfg, err
	}
	chunkgrid.Debugf("loaded configuration from %s: %+v\n", filename, cfg)
	return cfg, nil
}

// ParseConfig decodes TOML text on top of the defaults.  Paths are left as given.
func ParseConfig(text string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("could not decode TOML config: %v: %w", err, chunkgrid.ErrBadConfig)
	}
	if err := checkUndecoded(md); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func checkUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, key := range undecoded {
		keys[i] = key.String()
	}
	sort.Strings(keys)
	return fmt.Errorf("unknown TOML keys: %s: %w", strings.Join(keys, ", "), chunkgrid.ErrBadConfig)
}

// Some settings in the TOML can be given as relative paths.
// This function converts them in-place to absolute paths,
// assuming the given paths were relative to the TOML file's own directory.
func (c *Config) convertPathsToAbsolute(configPath string) error {
	configDir := filepath.Dir(configPath)
	for _, p := range []*string{&c.Output.Image, &c.Output.Schematic, &c.Logging.Logfile} {
		if *p == "" || filepath.IsAbs(*p) {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(configDir, *p))
		if err != nil {
			return fmt.Errorf("error converting %q to absolute path: %w", *p, err)
		}
		*p = abs
	}
	return nil
}
