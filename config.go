package loguru

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape accepted by Logger.Config, Go's
// declarative stand-in for loguru's config() method, which originally
// exec'd a Python source file and read a "sinks" list out of its module
// namespace (original_source/loguru/__init__.py). A plain data file is
// the idiomatic Go equivalent (spec.md §6).
type fileConfig struct {
	Sinks []sinkConfig `yaml:"sinks"`
}

type sinkConfig struct {
	Sink        string `yaml:"sink"`
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Filter      string `yaml:"filter"`
	Colored     *bool  `yaml:"colored"`
	Pretty      *bool  `yaml:"pretty"`
	Rotation    string `yaml:"rotation"`
	Retention   string `yaml:"retention"`
	Compression string `yaml:"compression"`
}

// loadConfigFile reads and parses a YAML sink configuration.
func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Op: "config read", Err: err}
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Op: "config parse", Err: err}
	}
	return &cfg, nil
}

// Config clears all existing sinks and re-establishes them from a YAML
// file (mirrors Logger.config). It returns the new handler ids in the
// same order the file lists them.
func (l *Logger) Config(path string) ([]int, error) {
	cfg, err := loadConfigFile(path)
	if err != nil {
		return nil, err
	}

	l.ClearAll()

	ids := make([]int, 0, len(cfg.Sinks))
	for _, sc := range cfg.Sinks {
		id, err := l.logToFromConfig(sc)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (l *Logger) logToFromConfig(sc sinkConfig) (int, error) {
	var opts []LogToOption

	level := DebugLevel
	if sc.Level != "" {
		lvl, err := ParseLevel(sc.Level)
		if err != nil {
			return 0, err
		}
		level = lvl
	}
	opts = append(opts, WithLevel(level))

	if sc.Format != "" {
		opts = append(opts, WithFormat(sc.Format))
	}
	if sc.Filter != "" {
		opts = append(opts, WithFilter(NameFilter(sc.Filter)))
	}
	if sc.Colored != nil {
		opts = append(opts, WithColored(*sc.Colored))
	}
	if sc.Pretty != nil {
		opts = append(opts, WithPrettyExceptions(*sc.Pretty))
	}

	var fsOpts []FileSinkOption
	if sc.Rotation != "" {
		fsOpts = append(fsOpts, WithRotation(sc.Rotation))
	}
	if sc.Retention != "" {
		// A plain integer keeps that many files; anything else is a duration.
		if keep, err := strconv.Atoi(sc.Retention); err == nil {
			fsOpts = append(fsOpts, WithRetention(keep))
		} else {
			fsOpts = append(fsOpts, WithRetention(sc.Retention))
		}
	}
	if sc.Compression != "" {
		fsOpts = append(fsOpts, WithCompression(sc.Compression))
	}
	if len(fsOpts) > 0 {
		opts = append(opts, WithFileSinkOptions(fsOpts...))
	}

	return l.LogTo(resolveSinkTarget(sc.Sink), opts...)
}

func resolveSinkTarget(sink string) interface{} {
	switch sink {
	case "stdout":
		return Stdout
	case "stderr":
		return Stderr
	default:
		return sink
	}
}
