package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/iostreams/pkg/archive"
	"github.com/ssargent/iostreams/pkg/stream"
)

func newArchiveCmd(a *app) *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Create, list and extract zip archives",
	}

	archiveCmd.AddCommand(
		newArchiveCreateCmd(a),
		newArchiveListCmd(),
		newArchiveExtractCmd(a),
	)
	return archiveCmd
}

func newArchiveCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <zip> <file>...",
		Short: "Create a zip archive from files",
		Long: `Create a zip archive holding the given files. Entries are named
after the base name of each file.

Example:
  iostreams archive create logs.zip app.log app.log.1`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			zipPath, files := args[0], args[1:]
			for _, f := range files {
				if samePath(zipPath, f) {
					return fmt.Errorf("archive %s cannot contain itself", zipPath)
				}
			}

			dst, err := stream.OpenFile(zipPath, stream.AccessReadWrite, stream.CreateAlways, 0o644)
			if err != nil {
				return err
			}
			defer dst.Close()

			w := archive.NewWriter(dst, a.config.CodecOptions()...)
			for _, f := range files {
				if err := addFile(w, f); err != nil {
					return err
				}
				a.logger.WithField("entry", filepath.Base(f)).Debug("archive entry added")
			}
			return w.Close()
		},
	}
}

func addFile(w *archive.Writer, path string) error {
	src, err := stream.OpenFile(path, stream.AccessRead, stream.OpenExisting, 0)
	if err != nil {
		return err
	}
	defer src.Close()
	return w.Add(filepath.Base(path), src)
}

func newArchiveListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <zip>",
		Short: "List the entries of a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := stream.OpenFile(args[0], stream.AccessRead, stream.OpenExisting, 0)
			if err != nil {
				return err
			}
			defer src.Close()

			r, err := archive.Open(src)
			if err != nil {
				return err
			}

			for _, e := range r.Entries() {
				kind := "f"
				if e.IsDirectory {
					kind = "d"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%4d %s %10d %10d %s\n",
					e.Index, kind, e.UncompressedSize, e.CompressedSize, e.Name)
			}
			return nil
		},
	}
}

func newArchiveExtractCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "extract <zip> <entry>",
		Short: "Extract one entry of a zip archive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := stream.OpenFile(args[0], stream.AccessRead, stream.OpenExisting, 0)
			if err != nil {
				return err
			}
			defer src.Close()

			r, err := archive.Open(src)
			if err != nil {
				return err
			}

			dst, finish, err := a.openOutput(cmd, out)
			if err != nil {
				return err
			}
			if err := r.Extract(args[1], dst); err != nil {
				_ = finish(false)
				return err
			}
			return finish(true)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}
