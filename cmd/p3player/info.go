package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/satindergrewal/p3player/internal/audio"
	"github.com/satindergrewal/p3player/internal/p3"
)

var (
	decodeCheck bool

	infoCmd = &cobra.Command{
		Use:   "info FILE",
		Short: "Show frame statistics for a P3 file",
		Args:  cobra.ExactArgs(1),
		RunE:  info,
	}
)

func init() {
	infoCmd.Flags().BoolVar(&decodeCheck, "decode", false, "decode every frame and report the first failure")
}

func info(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return err
	}

	var visit func(int, p3.Frame) error
	if decodeCheck {
		dec, err := audio.NewDecoder()
		if err != nil {
			return err
		}
		visit = func(_ int, fr p3.Frame) error {
			_, err := dec.Decode(fr.Payload)
			return err
		}
	}

	s, err := p3.Summarize(f, visit)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:      %s (%s)\n", path, humanize.Bytes(uint64(fi.Size())))
	fmt.Fprintf(out, "Frames:    %s (%s empty)\n", humanize.Comma(int64(s.Frames)), humanize.Comma(int64(s.Empty)))
	fmt.Fprintf(out, "Duration:  %v\n", audio.BlocksDuration(s.Frames))
	fmt.Fprintf(out, "Payload:   %s, largest frame %s\n", humanize.Bytes(uint64(s.PayloadBytes)), humanize.Bytes(uint64(s.MaxPayload)))
	if s.Frames > 0 {
		secs := audio.BlocksDuration(s.Frames).Seconds()
		fmt.Fprintf(out, "Bitrate:   %s/s\n", humanize.SI(float64(s.PayloadBytes*8)/secs, "bit"))
	}

	types := make([]int, 0, len(s.Types))
	for t := range s.Types {
		types = append(types, int(t))
	}
	sort.Ints(types)
	for _, t := range types {
		fmt.Fprintf(out, "Type %3d:  %s frames\n", t, humanize.Comma(int64(s.Types[uint8(t)])))
	}

	if s.Truncated {
		fmt.Fprintf(out, "Truncated: last %s ignored\n", humanize.Bytes(uint64(fi.Size()-frameBytes(s))))
	}
	if decodeCheck {
		fmt.Fprintln(out, "Decode:    ok")
	}
	return nil
}

// frameBytes is the size of the complete frames in s.
func frameBytes(s p3.Summary) int64 {
	return int64(s.Frames)*p3.HeaderSize + s.PayloadBytes
}
