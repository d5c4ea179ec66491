package depot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Options configures a Store.
type Options struct {
	// EntityCapacity presizes the entity registry.
	EntityCapacity int `toml:"entity_capacity" yaml:"entity_capacity"`
	// ListCapacity presizes every ComponentList created by Register.
	ListCapacity int            `toml:"list_capacity" yaml:"list_capacity"`
	Logging      LoggingOptions `toml:"logging" yaml:"logging"`

	// Logger takes precedence over Logging when set.
	Logger *zap.Logger `toml:"-" yaml:"-"`
}

type LoggingOptions struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Level   string `toml:"level" yaml:"level"`
	Format  string `toml:"format" yaml:"format"` // "json" or "console"
}

func DefaultOptions() Options {
	return Options{
		EntityCapacity: 2048,
		ListCapacity:   2048,
		Logging: LoggingOptions{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadOptions reads options from a TOML or YAML file, chosen by extension.
// Fields missing from the file keep their defaults.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read options %s: %w", path, err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	opts, err := DecodeOptions(data, format)
	if err != nil {
		return Options{}, fmt.Errorf("parse options %s: %w", path, err)
	}
	return opts, nil
}

// DecodeOptions decodes data in the given format ("toml", "yaml" or "yml") on top of
// DefaultOptions and validates the result.
func DecodeOptions(data []byte, format string) (Options, error) {
	opts := DefaultOptions()
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &opts); err != nil {
			return Options{}, err
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return Options{}, err
		}
	default:
		return Options{}, fmt.Errorf("unsupported options format %q", format)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate reports every invalid field at once.
func (o Options) Validate() error {
	var err error
	if o.EntityCapacity < 0 {
		err = multierr.Append(err, OptionError{Field: "entity_capacity", Reason: "must not be negative"})
	}
	if o.ListCapacity < 0 {
		err = multierr.Append(err, OptionError{Field: "list_capacity", Reason: "must not be negative"})
	}
	if o.Logging.Level != "" {
		var level zapcore.Level
		if lerr := level.UnmarshalText([]byte(o.Logging.Level)); lerr != nil {
			err = multierr.Append(err, OptionError{Field: "logging.level", Reason: lerr.Error()})
		}
	}
	switch o.Logging.Format {
	case "", "json", "console":
	default:
		err = multierr.Append(err, OptionError{Field: "logging.format", Reason: fmt.Sprintf("unknown format %q", o.Logging.Format)})
	}
	return err
}

func (o Options) logger() (*zap.Logger, error) {
	if o.Logger != nil {
		return o.Logger, nil
	}
	if !o.Logging.Enabled {
		return zap.NewNop(), nil
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(o.Logging.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if o.Logging.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Named("depot"), nil
}
