package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/agmoss/mp3frame"
)

const (
	logMaxSize   = 50 // MB
	logMaxBackup = 3
	logMaxAge    = 28 // days
)

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Walk a file's frames, tags, and garbage runs and report a summary",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "max-buffer",
				Value: mp3frame.DefaultMaxBuffer,
				Usage: "abort with an error once this many bytes are buffered with no sync point found",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Value: "mp3scan.log",
				Usage: "path to the rotating log file frame-by-frame detail is written to",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "suppress the per-item lines on stdout; print only the final summary",
			},
		},
		Action: runScan,
	}
}

func runScan(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("expected exactly one argument: file path, got %d", cmd.NArg())
	}
	path := cmd.Args().First()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	fileLog := &lumberjack.Logger{
		Filename:   cmd.String("log-file"),
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	defer fileLog.Close()
	logger := slog.New(slog.NewJSONHandler(fileLog, nil))
	logger.Info("scan starting", "path", path, "max_buffer", cmd.Int("max-buffer"))

	quiet := cmd.Bool("quiet")
	s := newSummary()

	for item, err := range mp3frame.Items(ctx, f, int(cmd.Int("max-buffer"))) {
		if err != nil {
			logger.Error("scan aborted", "error", err.Error())
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		s.observe(item)
		if !quiet {
			printItem(item)
		}
		logger.Debug("item", "kind", item.Kind.String())
	}

	logger.Info("scan finished", "frames", s.frames, "tags", s.tags, "garbage_runs", s.garbageRuns)
	s.print()
	return nil
}

func printItem(item *mp3frame.Item) {
	switch item.Kind {
	case mp3frame.ItemFrame:
		fr := item.Frame
		br, _ := fr.Header.Bitrate()
		sr, _ := fr.Header.SampleRate()
		resynced := ""
		if fr.Resynced {
			resynced = " resynced"
		}
		fmt.Printf("frame %d @ %d: MPEG%s layer %s, %dkbps, %dHz, %d bytes%s\n",
			fr.FrameNumber, fr.BytePosition, fr.Header.VersionLabel(), fr.Header.LayerLabel(), br, sr, fr.Len(), resynced)
		printVBRHeader(fr)
	case mp3frame.ItemTag:
		fmt.Printf("tag: %s, %d bytes\n", item.Tag.Kind, len(item.Tag.Raw))
	case mp3frame.ItemGarbage:
		fmt.Printf("garbage: %d bytes\n", len(item.Garbage))
	}
}

func printVBRHeader(fr *mp3frame.Frame) {
	xing, vbri, err := fr.DecodeVBRHeader()
	switch {
	case err != nil:
		fmt.Printf("  vbr header: %v\n", err)
	case xing != nil:
		frames, bytes := "?", "?"
		if xing.FrameCount != nil {
			frames = fmt.Sprintf("%d", *xing.FrameCount)
		}
		if xing.ByteCount != nil {
			bytes = fmt.Sprintf("%d", *xing.ByteCount)
		}
		fmt.Printf("  vbr header: Xing, frames=%s, bytes=%s\n", frames, bytes)
	case vbri != nil:
		fmt.Printf("  vbr header: VBRI, frames=%d, bytes=%d\n", vbri.FrameCount, vbri.ByteCount)
	}
}

type summary struct {
	frames      int
	tags        int
	garbageRuns int
	garbageSize int
	bitrates    map[int]int
	tagKinds    map[string]int
}

func newSummary() *summary {
	return &summary{bitrates: map[int]int{}, tagKinds: map[string]int{}}
}

func (s *summary) observe(item *mp3frame.Item) {
	switch item.Kind {
	case mp3frame.ItemFrame:
		s.frames++
		if br, err := item.Frame.Header.Bitrate(); err == nil {
			s.bitrates[br]++
		}
	case mp3frame.ItemTag:
		s.tags++
		s.tagKinds[item.Tag.Kind.String()]++
	case mp3frame.ItemGarbage:
		s.garbageRuns++
		s.garbageSize += len(item.Garbage)
	}
}

func (s *summary) print() {
	fmt.Printf("\n%d frames, %d tags, %d garbage runs (%d bytes)\n", s.frames, s.tags, s.garbageRuns, s.garbageSize)
	for kind, n := range s.tagKinds {
		fmt.Printf("  tag %s: %d\n", kind, n)
	}
	for br, n := range s.bitrates {
		fmt.Printf("  %dkbps: %d frames\n", br, n)
	}
}
