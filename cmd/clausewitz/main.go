// Command clausewitz inspects and edits Paradox save games.
//
// Usage:
//
//	clausewitz <command> [flags] <save> [arguments]
//
// Commands:
//
//	parse     Parse every stream and print a summary
//	get       Print the value at a path
//	set       Replace the value at a path and write the save
//	export    Convert a stream to yaml, json, jsonc, toml or cbor
//	stats     Show the largest top-level entries
//	fmt       Re-serialize a stream
//	watch     Re-parse the save whenever it changes
//	version   Show version information
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cobra.CheckErr(NewCLI().ExecuteContext(ctx))
}
