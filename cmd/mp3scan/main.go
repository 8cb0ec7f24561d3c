// Package main provides the mp3scan CLI for reporting framing statistics
// about an MPEG audio stream.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx := context.Background()

	app := &cli.Command{
		Name:  "mp3scan",
		Usage: "Report MPEG-1/2/2.5 frame, tag, and resync statistics for an audio file",
		Commands: []*cli.Command{
			scanCommand(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "mp3scan: %v\n", err)
		os.Exit(1)
	}
}
