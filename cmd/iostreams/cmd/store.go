package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/iostreams/pkg/storage"
	"github.com/ssargent/iostreams/pkg/stream"
)

func newStoreCmd(a *app) *cobra.Command {
	storeCmd := &cobra.Command{
		Use:   "store",
		Short: "Keep streams in the block store",
		Long: `Store, fetch and remove streams in the pebble backed block store
found at storage.data_dir.`,
	}

	storeCmd.AddCommand(
		newStorePutCmd(a),
		newStoreGetCmd(a),
		newStoreStatCmd(a),
		newStoreListCmd(a),
		newStoreDeleteCmd(a),
	)
	return storeCmd
}

func (a *app) openStore() (*storage.Store, error) {
	dataDir := a.config.Storage.DataDir
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return storage.Open(dataDir, storage.Options{
		Sync:   a.config.Storage.Sync,
		Logger: a.logger,
	})
}

// withStore opens the store, runs fn and records the operation.
func (a *app) withStore(op string, fn func(st *storage.Store) (uint64, error)) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	start := time.Now()
	size, err := fn(st)
	a.metrics.RecordStoreOperation(op, size, err == nil, time.Since(start))
	return err
}

func parseID(s string) (ksuid.KSUID, error) {
	id, err := ksuid.Parse(s)
	if err != nil {
		return ksuid.Nil, fmt.Errorf("invalid stream id %q: %w", s, err)
	}
	return id, nil
}

func newStorePutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "put [file]",
		Short: "Store a file and print its id",
		Long: `Store a file (or stdin) as a new stream and print its id.

Example:
  iostreams store put backup.tar`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			src, closeSrc, err := a.openInput(cmd, path)
			if err != nil {
				return err
			}
			defer closeSrc()

			ms := stream.NewMemoryStream(a.config.Stream.BlockSize)
			ms.Reserve(src.Size())
			if _, err := io.Copy(stream.NewWriter(ms), stream.NewReader(src)); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			return a.withStore("put", func(st *storage.Store) (uint64, error) {
				id, err := st.Put(ms)
				if err != nil {
					return 0, err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return ms.Size(), nil
			})
		},
	}
}

func newStoreGetCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Write a stored stream to a file or stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var ms *stream.MemoryStream
			err = a.withStore("get", func(st *storage.Store) (uint64, error) {
				got, err := st.Get(id)
				if err != nil {
					return 0, err
				}
				ms = got
				return ms.Size(), nil
			})
			if err != nil {
				return err
			}

			dst, finish, err := a.openOutput(cmd, out)
			if err != nil {
				return err
			}
			if _, err := io.Copy(stream.NewWriter(dst), stream.NewReader(ms)); err != nil {
				_ = finish(false)
				return err
			}
			return finish(true)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newStoreStatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <id>",
		Short: "Show the size and layout of a stored stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return a.withStore("stat", func(st *storage.Store) (uint64, error) {
				info, err := st.Stat(id)
				if err != nil {
					return 0, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "id:         %s\n", info.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "created:    %s\n", info.ID.Time().Format(time.RFC3339))
				fmt.Fprintf(cmd.OutOrStdout(), "size:       %d\n", info.Size)
				fmt.Fprintf(cmd.OutOrStdout(), "block size: %d\n", info.BlockSize)
				fmt.Fprintf(cmd.OutOrStdout(), "blocks:     %d\n", info.Blocks)
				return 0, nil
			})
		},
	}
}

func newStoreListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored stream ids, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore("list", func(st *storage.Store) (uint64, error) {
				ids, err := st.List()
				if err != nil {
					return 0, err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return 0, nil
			})
		},
	}
}

func newStoreDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a stored stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return a.withStore("delete", func(st *storage.Store) (uint64, error) {
				return 0, st.Delete(id)
			})
		},
	}
}
