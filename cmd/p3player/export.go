package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/satindergrewal/p3player/internal/audio"
	"github.com/satindergrewal/p3player/internal/convert"
	"github.com/satindergrewal/p3player/internal/player"
)

var (
	bitrate int

	exportCmd = &cobra.Command{
		Use:   "export IN.p3 OUT.wav",
		Short: "Decode a P3 file to a 16 kHz mono WAV file",
		Args:  cobra.ExactArgs(2),
		RunE:  export,
	}

	encodeCmd = &cobra.Command{
		Use:   "encode IN.wav OUT.p3",
		Short: "Encode a 16 kHz 16-bit WAV file as P3",
		Args:  cobra.ExactArgs(2),
		RunE:  encode,
	}
)

func init() {
	encodeCmd.Flags().IntVar(&bitrate, "bitrate", 24000, "Opus bitrate in bits per second")
}

// export runs the playback engine with a WAV file as its output.
func export(cmd *cobra.Command, args []string) error {
	in, outPath := args[0], args[1]

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	var sink *audio.WAVSink
	eng := player.NewEngine(player.Track{Path: in}, player.EngineConfig{
		OpenSink: func() (audio.Sink, error) {
			var err error
			sink, err = audio.CreateWAV(outPath)
			if err != nil {
				return nil, err
			}
			return sink, nil
		},
		Logger: logger,
	})

	res := eng.Run(ctx)
	if res.Err != nil {
		return fmt.Errorf("export %s: %w", in, res.Err)
	}
	if res.Stopped {
		return fmt.Errorf("export %s: interrupted", in)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %s frames, %s samples, %v\n",
		outPath, humanize.Comma(int64(res.Frames)), humanize.Comma(int64(sink.Samples())), eng.Position())
	return nil
}

func encode(cmd *cobra.Command, args []string) error {
	inPath, outPath := args[0], args[1]

	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	enc, err := audio.NewEncoder(bitrate)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	st, err := convert.WAVToP3(in, out, enc)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", inPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %s frames, %s of Opus, %v\n",
		outPath, humanize.Comma(int64(st.Frames)), humanize.Bytes(uint64(st.Bytes)), st.Duration())
	return nil
}
