package main

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/yacchi/clausewitz/document"
	"github.com/yacchi/clausewitz/format/clausewitz"
	"github.com/yacchi/clausewitz/savefile"
	"github.com/yacchi/clausewitz/source"
	"github.com/yacchi/clausewitz/watcher"
)

func (a *app) parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <save>",
		Short: "Parse every stream and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arc, _, err := a.open(cmd, args[0])
			if err != nil {
				return err
			}
			docs, err := arc.ParseAll(cmd.Context(), a.parseOptions()...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range arc.Names() {
				doc := docs[name]
				fmt.Fprintf(out, "%s: %d keys, %d unparsed\n", name, doc.Len(), countUnparsed(doc))
			}
			return nil
		},
	}
}

func countUnparsed(doc *document.Document) int {
	n := 0
	for _, v := range doc.All() {
		switch val := v.(type) {
		case document.Unparsed:
			n++
		case document.Sequence:
			for _, elem := range val {
				if _, ok := elem.(document.Unparsed); ok {
					n++
				}
			}
		}
	}
	return n
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <save> <path>",
		Short: "Print the value at a path",
		Example: `  clausewitz get game.sav /date
  clausewitz get game.sav /country/0/budget`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, doc, err := a.load(cmd, args[0])
			if err != nil {
				return err
			}
			path := args[1]
			if err := a.resolvePath(doc, path); err != nil {
				return err
			}
			v, err := doc.Lookup(path)
			if err != nil {
				return err
			}
			return a.printValue(cmd.OutOrStdout(), path, v)
		},
	}
}

// printValue writes scalars on one line and anything else in native syntax.
func (a *app) printValue(w io.Writer, path string, v document.Value) error {
	switch val := v.(type) {
	case document.Scalar:
		_, err := fmt.Fprintln(w, clausewitz.FormatScalar(val))
		return err
	case document.Unparsed:
		_, err := fmt.Fprintln(w, val.Text)
		return err
	case *document.Block:
		return a.printDoc(w, val.Doc)
	case document.Sequence:
		segments, _ := document.ParsePath(path)
		key := segments[len(segments)-1]
		tmp := document.New()
		for _, elem := range val {
			if err := tmp.Insert(key, elem); err != nil {
				return err
			}
		}
		return a.printDoc(w, tmp)
	}
	return nil
}

func (a *app) printDoc(w io.Writer, doc *document.Document) error {
	data, err := clausewitz.Marshal(doc, a.marshalOptions()...)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (a *app) setCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "set <save> <path> <value>",
		Short: "Replace the value at a path and write the save",
		Long: `Replace the value at a path and write the save.

The value uses the save syntax: 42, 1.5, yes, "quoted text" or a block
such as { a=1 b=2 }. The save is rewritten in place unless --output is
given, keeping a backup when backups are enabled.`,
		Example: `  clausewitz set game.sav /country/0/budget/energy 500
  clausewitz set game.sav /player//0/name '"Emperor"' -o edited.sav`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			arc, src, doc, err := a.load(cmd, args[0])
			if err != nil {
				return err
			}
			path := args[1]
			v, err := clausewitz.ParseValue(args[2], a.parseOptions()...)
			if err != nil {
				return err
			}
			if err := a.resolvePath(doc, path); err != nil {
				return err
			}
			if err := doc.SetPath(path, v); err != nil {
				return err
			}
			if err := arc.SetDocument(a.settings.Save.Stream, doc, a.marshalOptions()...); err != nil {
				return err
			}

			dst := src
			if output != "" {
				dst = a.fileSource(output)
			}
			if err := a.save(cmd, arc, dst); err != nil {
				return err
			}
			a.logger.Info("value updated", "path", path, "kind", v.Kind())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the edited save to this file")
	return cmd
}

func (a *app) save(cmd *cobra.Command, arc *savefile.Archive, dst source.Source) error {
	if !dst.CanSave() {
		return fmt.Errorf("input is read-only, use --output: %w", source.ErrSaveNotSupported)
	}
	return arc.Save(cmd.Context(), dst)
}

func (a *app) exportCmd() *cobra.Command {
	var (
		to     string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export <save>",
		Short: "Convert a stream to yaml, json, jsonc, toml or cbor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if to == "" {
				to = a.settings.Output.Export
			}
			codec, err := a.exportCodecs().Lookup(to)
			if err != nil {
				return err
			}
			_, _, doc, err := a.load(cmd, args[0])
			if err != nil {
				return err
			}
			if err := clausewitz.Resolve(cmd.Context(), doc, a.parseOptions()...); err != nil {
				return err
			}
			data, err := codec.Encode(doc)
			if err != nil {
				return err
			}
			return a.writeOutput(cmd.Context(), cmd.OutOrStdout(), output, data)
		},
	}
	cmd.Flags().StringVarP(&to, "to", "t", "", "target format (default from settings)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of standard output")
	return cmd
}

type entryStat struct {
	key   string
	kind  document.Kind
	count int
	bytes int
}

func (a *app) statsCmd() *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "stats <save>",
		Short: "Show the largest top-level entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, doc, err := a.load(cmd, args[0])
			if err != nil {
				return err
			}
			stats, err := a.entryStats(doc)
			if err != nil {
				return err
			}
			if top > 0 && len(stats) > top {
				stats = stats[:top]
			}

			var rows [][]string
			for _, s := range stats {
				key := s.key
				if key == document.AnonymousKey {
					key = "(anonymous)"
				}
				count := "-"
				if s.count >= 0 {
					count = strconv.Itoa(s.count)
				}
				rows = append(rows, []string{key, s.kind.String(), count, strconv.Itoa(s.bytes)})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"KEY", "KIND", "ENTRIES", "BYTES"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			table.AppendBulk(rows)
			table.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", 20, "number of entries to show, 0 for all")
	return cmd
}

// entryStats returns one row per top-level key, largest first.
func (a *app) entryStats(doc *document.Document) ([]entryStat, error) {
	var stats []entryStat
	for key, v := range doc.All() {
		tmp := document.New()
		s := entryStat{key: key, kind: v.Kind(), count: 1}
		switch val := v.(type) {
		case document.Sequence:
			s.count = len(val)
			for _, elem := range val {
				if err := tmp.Insert(key, elem); err != nil {
					return nil, err
				}
			}
		case *document.Block:
			s.count = val.Doc.Len() + len(val.Doc.Items())
			if err := tmp.Insert(key, val); err != nil {
				return nil, err
			}
		case document.Unparsed:
			s.count = -1
			if err := tmp.Insert(key, val); err != nil {
				return nil, err
			}
		default:
			if err := tmp.Insert(key, val); err != nil {
				return nil, err
			}
		}
		data, err := clausewitz.Marshal(tmp, a.marshalOptions()...)
		if err != nil {
			return nil, err
		}
		s.bytes = len(data)
		stats = append(stats, s)
	}
	slices.SortStableFunc(stats, func(x, y entryStat) int {
		return cmp.Compare(y.bytes, x.bytes)
	})
	return stats, nil
}

func (a *app) fmtCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "fmt <save>",
		Short: "Re-serialize a stream",
		Long: `Re-serialize a stream with canonical layout.

Without --write the formatted stream is printed. With --write the save is
rewritten in place, other streams unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arc, src, doc, err := a.load(cmd, args[0])
			if err != nil {
				return err
			}
			if !write {
				return a.printDoc(cmd.OutOrStdout(), doc)
			}
			if err := arc.SetDocument(a.settings.Save.Stream, doc, a.marshalOptions()...); err != nil {
				return err
			}
			return a.save(cmd, arc, src)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the save")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	var maxEvents int
	cmd := &cobra.Command{
		Use:   "watch <save>",
		Short: "Re-parse the save whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src := a.fileSource(args[0])

			var w watcher.Watcher
			if a.settings.Watch.Polling {
				w = src.WatchPolling()
			} else {
				w = src.Watch()
			}
			if err := w.Start(ctx, a.settings.WatchConfig()); err != nil {
				return err
			}
			defer func() {
				if err := w.Stop(ctx); err != nil {
					a.logger.Debug("stop watcher", "error", err)
				}
			}()

			out := cmd.OutOrStdout()
			events := 0
			for {
				select {
				case <-ctx.Done():
					return nil
				case res, ok := <-w.Results():
					if !ok {
						return nil
					}
					if res.Error != nil {
						a.logger.Warn("watch failed", "path", args[0], "error", res.Error)
					} else if line, err := a.summarize(res.Data); err != nil {
						a.logger.Warn("parse failed", "path", args[0], "error", err)
					} else {
						fmt.Fprintln(out, line)
					}
					events++
					if maxEvents > 0 && events >= maxEvents {
						return nil
					}
				}
			}
		},
	}
	cmd.Flags().IntVar(&maxEvents, "max-events", 0, "exit after this many events, 0 to run until interrupted")
	return cmd
}

// summarize parses a save snapshot and describes it in one line.
func (a *app) summarize(data []byte) (string, error) {
	opts := append(a.settings.SaveFileOptions(), savefile.WithLogger(a.logger))
	arc, err := savefile.Read(data, opts...)
	if err != nil {
		return "", err
	}
	doc, err := arc.Parse(a.settings.Save.Stream, a.parseOptions()...)
	if err != nil {
		return "", err
	}
	parts := []string{}
	if v, ok := doc.Get("date"); ok {
		if s, ok := v.(document.Scalar); ok {
			parts = append(parts, "date="+clausewitz.FormatScalar(s))
		}
	}
	parts = append(parts, "keys="+strconv.Itoa(doc.Len()), "bytes="+strconv.Itoa(len(data)))
	return strings.Join(parts, " "), nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clausewitz version %s\n", version)
		},
	}
}
