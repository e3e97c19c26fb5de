// Package config loads the settings of the clausewitz command line tool.
//
// Settings are layered: built-in defaults, then an optional settings file,
// then environment variables. The file format follows the extension (.yaml,
// .yml, .toml, .json, .jsonc, or .txt for the Clausewitz format itself).
// Environment variables carry the CLAUSEWITZ_ prefix and the names given in
// the env struct tags, for example CLAUSEWITZ_PARSER_MAX_DEPTH=80.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/yacchi/clausewitz/decoder"
	"github.com/yacchi/clausewitz/document"
	"github.com/yacchi/clausewitz/format"
	"github.com/yacchi/clausewitz/format/clausewitz"
	"github.com/yacchi/clausewitz/format/json"
	"github.com/yacchi/clausewitz/format/jsonc"
	"github.com/yacchi/clausewitz/format/toml"
	"github.com/yacchi/clausewitz/format/yaml"
	"github.com/yacchi/clausewitz/internal/logutil"
	"github.com/yacchi/clausewitz/savefile"
	"github.com/yacchi/clausewitz/source/fs"
	"github.com/yacchi/clausewitz/watcher"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "CLAUSEWITZ_"

// Settings holds all tool settings.
type Settings struct {
	Parser   ParserSettings `json:"parser"`
	Output   OutputSettings `json:"output"`
	Save     SaveSettings   `json:"save"`
	Watch    WatchSettings  `json:"watch"`
	LogLevel string         `json:"log_level" env:"LOG_LEVEL"`
}

// ParserSettings configures format/clausewitz parsing.
type ParserSettings struct {
	Mode             string `json:"mode" env:"PARSER_MODE"`
	MaxDepth         int    `json:"max_depth" env:"PARSER_MAX_DEPTH"`
	ShallowThreshold int    `json:"shallow_threshold" env:"PARSER_SHALLOW_THRESHOLD"`
	Workers          int    `json:"workers" env:"PARSER_WORKERS"`
}

// OutputSettings configures serialization.
type OutputSettings struct {
	Indent string `json:"indent" env:"OUTPUT_INDENT"`
	Export string `json:"export" env:"OUTPUT_EXPORT"`
}

// SaveSettings configures reading and writing save files.
type SaveSettings struct {
	Encoding     string `json:"encoding" env:"SAVE_ENCODING"`
	Backup       bool   `json:"backup" env:"SAVE_BACKUP"`
	BackupSuffix string `json:"backup_suffix" env:"SAVE_BACKUP_SUFFIX"`
	Stream       string `json:"stream" env:"SAVE_STREAM"`
}

// WatchSettings configures the watch command.
type WatchSettings struct {
	Polling      bool          `json:"polling" env:"WATCH_POLLING"`
	PollInterval time.Duration `json:"poll_interval" env:"WATCH_POLL_INTERVAL"`
	HashCompare  bool          `json:"hash_compare" env:"WATCH_HASH_COMPARE"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Parser: ParserSettings{
			Mode:             clausewitz.ModeAuto.String(),
			MaxDepth:         clausewitz.DefaultMaxDepth,
			ShallowThreshold: clausewitz.DefaultShallowThreshold,
		},
		Output: OutputSettings{
			Indent: clausewitz.DefaultIndent,
			Export: string(document.FormatYAML),
		},
		Save: SaveSettings{
			Encoding:     savefile.EncodingUTF8.String(),
			Backup:       true,
			BackupSuffix: fs.DefaultBackupSuffix,
			Stream:       savefile.StreamGamestate,
		},
		Watch: WatchSettings{
			PollInterval: watcher.DefaultPollInterval,
		},
		LogLevel: "info",
	}
}

// Codecs returns the registry of settings file formats.
func Codecs() *format.Registry {
	return format.NewRegistry(
		yaml.NewCodec(),
		toml.NewCodec(),
		json.NewCodec(),
		jsonc.NewCodec(),
		clausewitz.NewCodec(),
	)
}

// Load builds Settings from the defaults, the file at path (skipped when
// path is empty) and the environment, in that order.
func Load(ctx context.Context, path string) (Settings, error) {
	return load(ctx, path, environ())
}

func load(ctx context.Context, path string, env []string) (Settings, error) {
	s := Default()

	if path != "" {
		codec, err := Codecs().ForPath(path)
		if err != nil {
			return Settings{}, err
		}
		data, err := fs.New(path).Load(ctx)
		if err != nil {
			return Settings{}, err
		}
		doc, err := codec.Decode(data)
		if err != nil {
			return Settings{}, fmt.Errorf("settings file %q: %w", path, err)
		}
		if err := decoder.Document(doc, &s, decoder.Strict); err != nil {
			return Settings{}, fmt.Errorf("settings file %q: %w", path, err)
		}
	}

	if vars := envLayer(EnvPrefix, env, bindings()); len(vars) > 0 {
		if err := decoder.Mapstructure(vars, &s); err != nil {
			return Settings{}, fmt.Errorf("environment: %w", err)
		}
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks value ranges and names.
func (s Settings) Validate() error {
	if _, ok := clausewitz.ParseMode(s.Parser.Mode); !ok {
		return fmt.Errorf("parser.mode: unknown mode %q", s.Parser.Mode)
	}
	if s.Parser.MaxDepth < 1 {
		return fmt.Errorf("parser.max_depth: must be at least 1, got %d", s.Parser.MaxDepth)
	}
	if s.Parser.ShallowThreshold < 0 {
		return fmt.Errorf("parser.shallow_threshold: must not be negative, got %d", s.Parser.ShallowThreshold)
	}
	if _, err := savefile.ParseEncoding(s.Save.Encoding); err != nil {
		return fmt.Errorf("save.encoding: %w", err)
	}
	if _, err := logutil.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if s.Watch.PollInterval < 0 {
		return fmt.Errorf("watch.poll_interval: must not be negative, got %s", s.Watch.PollInterval)
	}
	return nil
}

// ParseOptions returns the format/clausewitz options for parsing. Call
// Validate first; an unknown mode falls back to ModeFull.
func (s Settings) ParseOptions() []clausewitz.Option {
	mode, _ := clausewitz.ParseMode(s.Parser.Mode)
	return []clausewitz.Option{
		clausewitz.WithMode(mode),
		clausewitz.WithMaxDepth(s.Parser.MaxDepth),
		clausewitz.WithShallowThreshold(s.Parser.ShallowThreshold),
		clausewitz.WithWorkers(s.Parser.Workers),
	}
}

// MarshalOptions returns the format/clausewitz options for serializing.
func (s Settings) MarshalOptions() []clausewitz.Option {
	return []clausewitz.Option{clausewitz.WithIndent(s.Output.Indent)}
}

// SaveFileOptions returns the savefile options.
func (s Settings) SaveFileOptions() []savefile.Option {
	enc, _ := savefile.ParseEncoding(s.Save.Encoding)
	return []savefile.Option{savefile.WithEncoding(enc)}
}

// SourceOptions returns the options for file sources.
func (s Settings) SourceOptions() []fs.Option {
	if !s.Save.Backup {
		return nil
	}
	return []fs.Option{fs.WithBackup(s.Save.BackupSuffix)}
}

// WatchConfig returns the watcher configuration.
func (s Settings) WatchConfig() watcher.WatchConfig {
	opts := []watcher.WatchConfigOption{watcher.WithPollInterval(s.Watch.PollInterval)}
	if s.Watch.HashCompare {
		opts = append(opts, watcher.WithCompareFunc(watcher.HashCompareFunc))
	}
	return watcher.NewWatchConfig(opts...)
}
