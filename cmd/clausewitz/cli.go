package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/yacchi/clausewitz/config"
	"github.com/yacchi/clausewitz/document"
	"github.com/yacchi/clausewitz/format"
	"github.com/yacchi/clausewitz/format/cbor"
	"github.com/yacchi/clausewitz/format/clausewitz"
	"github.com/yacchi/clausewitz/format/json"
	"github.com/yacchi/clausewitz/format/jsonc"
	"github.com/yacchi/clausewitz/format/toml"
	"github.com/yacchi/clausewitz/format/yaml"
	"github.com/yacchi/clausewitz/internal/logutil"
	"github.com/yacchi/clausewitz/savefile"
	"github.com/yacchi/clausewitz/source"
	srcbytes "github.com/yacchi/clausewitz/source/bytes"
	"github.com/yacchi/clausewitz/source/fs"
)

var version = "dev"

// app carries the global flags and the settings resolved from them.
type app struct {
	configPath string
	stream     string
	mode       string
	maxDepth   int
	logLevel   string

	settings config.Settings
	logger   *slog.Logger
}

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "clausewitz",
		Short:         "Inspect and edit Paradox save games",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "settings file (.yaml, .toml, .json, .jsonc or .txt)")
	flags.StringVar(&a.stream, "stream", "", "stream to operate on (default gamestate)")
	flags.StringVar(&a.mode, "mode", "", "parse mode: full, shallow or auto")
	flags.IntVar(&a.maxDepth, "max-depth", 0, "maximum block nesting depth")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn or error")

	root.AddCommand(
		a.parseCmd(),
		a.getCmd(),
		a.setCmd(),
		a.exportCmd(),
		a.statsCmd(),
		a.fmtCmd(),
		a.watchCmd(),
		versionCmd(),
	)
	return root
}

// setup loads the settings and applies flag overrides.
func (a *app) setup(cmd *cobra.Command) error {
	s, err := config.Load(cmd.Context(), a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("stream") {
		s.Save.Stream = a.stream
	}
	if flags.Changed("mode") {
		s.Parser.Mode = a.mode
	}
	if flags.Changed("max-depth") {
		s.Parser.MaxDepth = a.maxDepth
	}
	if flags.Changed("log-level") {
		s.LogLevel = a.logLevel
	}
	if err := s.Validate(); err != nil {
		return err
	}

	level, _ := logutil.ParseLevel(s.LogLevel)
	a.settings = s
	a.logger = logutil.NewLogger(cmd.ErrOrStderr(), level)
	return nil
}

func (a *app) parseOptions() []clausewitz.Option {
	return append(a.settings.ParseOptions(), clausewitz.WithLogger(a.logger))
}

func (a *app) marshalOptions() []clausewitz.Option {
	return a.settings.MarshalOptions()
}

// fileSource returns a file source configured from the settings.
func (a *app) fileSource(path string) *fs.Source {
	return fs.New(path, append(a.settings.SourceOptions(), fs.WithLogger(a.logger))...)
}

// open loads the save at path; "-" reads standard input.
func (a *app) open(cmd *cobra.Command, path string) (*savefile.Archive, source.Source, error) {
	var src source.Source
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, nil, fmt.Errorf("read standard input: %w", err)
		}
		src = srcbytes.New(data)
	} else {
		src = a.fileSource(path)
	}
	opts := append(a.settings.SaveFileOptions(), savefile.WithLogger(a.logger))
	arc, err := savefile.Open(cmd.Context(), src, opts...)
	if err != nil {
		return nil, nil, err
	}
	return arc, src, nil
}

// load opens the save and parses the configured stream.
func (a *app) load(cmd *cobra.Command, path string) (*savefile.Archive, source.Source, *document.Document, error) {
	arc, src, err := a.open(cmd, path)
	if err != nil {
		return nil, nil, nil, err
	}
	doc, err := arc.Parse(a.settings.Save.Stream, a.parseOptions()...)
	if err != nil {
		return nil, nil, nil, err
	}
	return arc, src, doc, nil
}

// resolveKey replaces unparsed spans stored under key with parsed blocks,
// so paths below a shallow top-level entry can be read and written.
func (a *app) resolveKey(doc *document.Document, key string) error {
	v, ok := doc.Get(key)
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case document.Unparsed:
		sub, err := clausewitz.ParseSpan(val, a.parseOptions()...)
		if err != nil {
			return fmt.Errorf("resolve %q: %w", key, err)
		}
		return doc.Set(key, document.NewBlock(sub))
	case document.Sequence:
		out := make(document.Sequence, len(val))
		changed := false
		for i, elem := range val {
			out[i] = elem
			if u, ok := elem.(document.Unparsed); ok {
				sub, err := clausewitz.ParseSpan(u, a.parseOptions()...)
				if err != nil {
					return fmt.Errorf("resolve %q: %w", key, err)
				}
				out[i] = document.NewBlock(sub)
				changed = true
			}
		}
		if changed {
			return doc.Set(key, out)
		}
	}
	return nil
}

// resolvePath resolves the top-level entry named by the first segment of path.
func (a *app) resolvePath(doc *document.Document, path string) error {
	segments, err := document.ParsePath(path)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return nil
	}
	return a.resolveKey(doc, segments[0])
}

// exportCodecs returns every codec the export command can write.
func (a *app) exportCodecs() *format.Registry {
	return format.NewRegistry(
		clausewitz.NewCodec(a.marshalOptions()...),
		yaml.NewCodec(),
		json.NewCodec(),
		jsonc.NewCodec(jsonc.WithHeader("Exported by clausewitz " + version)),
		toml.NewCodec(),
		cbor.NewCodec(),
	)
}

// writeOutput writes data to path through a file source, or to w when
// path is empty.
func (a *app) writeOutput(ctx context.Context, w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	return fs.New(path).Save(ctx, func([]byte) ([]byte, error) {
		return data, nil
	})
}
