package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/iostreams/pkg/codec"
)

func newEncodeCmd(a *app) *cobra.Command {
	return newTransformCmd(a, codec.Encode, `Encode or compress a file.

Examples:
  iostreams encode --codec base64 --in photo.jpg --out photo.b64
  echo hello | iostreams encode --codec hex`)
}

func newDecodeCmd(a *app) *cobra.Command {
	return newTransformCmd(a, codec.Decode, `Decode or decompress a file.

Examples:
  iostreams decode --codec base64 --in photo.b64 --out photo.jpg
  iostreams decode --codec gzip --in logs.gz`)
}

func newTransformCmd(a *app, dir codec.Direction, long string) *cobra.Command {
	var name, in, out string

	cmd := &cobra.Command{
		Use:   dir.String(),
		Short: strings.SplitN(long, "\n", 2)[0],
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if samePath(in, out) {
				return fmt.Errorf("input and output must be different files")
			}

			t, err := codec.New(name, dir, a.config.CodecOptions()...)
			if err != nil {
				return err
			}

			src, closeSrc, err := a.openInput(cmd, in)
			if err != nil {
				return err
			}
			defer closeSrc()

			dst, finish, err := a.openOutput(cmd, out)
			if err != nil {
				return err
			}

			if err := a.driver().Transform(src, dst, t); err != nil {
				_ = finish(false)
				return fmt.Errorf("%s %s: %w", name, dir, err)
			}
			return finish(true)
		},
	}

	cmd.Flags().StringVar(&name, "codec", "base64", "Codec: "+strings.Join(codec.Names(), ", "))
	cmd.Flags().StringVarP(&in, "in", "i", "", "Input file (default stdin)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newCodecsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codecs",
		Short: "List available codecs",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range codec.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
