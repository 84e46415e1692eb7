/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ssargent/iostreams/pkg/config"
	"github.com/ssargent/iostreams/pkg/metrics"
	"github.com/ssargent/iostreams/pkg/stream"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	configPath string
	logLevel   string
	stats      bool

	config   *config.Config
	logger   *logrus.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "iostreams",
		Short: "iostreams - byte streams and streaming transforms",
		Long: `iostreams moves data between files, memory and a block store,
running it through text codecs (base64, hex) and compressors
(gzip, zstd, snappy) in fixed-size chunks.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !a.stats {
				return nil
			}
			return metrics.WriteText(cmd.ErrOrStderr(), a.registry)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"Config file (default "+config.GetDefaultConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override logging.level from the config")
	rootCmd.PersistentFlags().BoolVar(&a.stats, "stats", false, "Print prometheus metrics to stderr when done")

	rootCmd.AddCommand(
		newEncodeCmd(a),
		newDecodeCmd(a),
		newCodecsCmd(),
		newStoreCmd(a),
		newArchiveCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

// Execute runs the command tree. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	path := a.resolvedConfigPath()

	cfg := config.DefaultConfig()
	loaded := false
	if config.ConfigExists(path) {
		var err error
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return err
		}
		loaded = true
	}

	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	logger.SetOutput(cmd.ErrOrStderr())

	a.config = cfg
	a.logger = logger
	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.New(a.registry)

	logger.WithFields(logrus.Fields{
		"config": path,
		"loaded": loaded,
	}).Debug("configuration ready")
	return nil
}

func (a *app) resolvedConfigPath() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.GetDefaultConfigPath()
}

func (a *app) driver() *stream.Driver {
	return &stream.Driver{
		ChunkSize: a.config.Stream.ChunkSize,
		Logger:    a.logger,
		Observer:  a.metrics,
	}
}

func isStdio(path string) bool {
	return path == "" || path == "-"
}

// openInput returns a stream positioned at 0 over path, or over everything
// on stdin when path is empty or "-".
func (a *app) openInput(cmd *cobra.Command, path string) (stream.Stream, func(), error) {
	if isStdio(path) {
		ms := stream.NewMemoryStream(a.config.Stream.BlockSize)
		if _, err := io.Copy(stream.NewWriter(ms), cmd.InOrStdin()); err != nil {
			return nil, nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		if err := ms.Seek(0, stream.Begin); err != nil {
			return nil, nil, err
		}
		return ms, func() {}, nil
	}

	fs, err := stream.OpenFile(path, stream.AccessRead, stream.OpenExisting, 0)
	if err != nil {
		return nil, nil, err
	}
	return fs, func() { _ = fs.Close() }, nil
}

// openOutput returns the stream results are written to. finish(true) copies
// the stream to stdout when path is empty or "-"; files are closed either way.
func (a *app) openOutput(cmd *cobra.Command, path string) (stream.Stream, func(ok bool) error, error) {
	if isStdio(path) {
		ms := stream.NewMemoryStream(a.config.Stream.BlockSize)
		finish := func(ok bool) error {
			if !ok {
				return nil
			}
			if err := ms.Seek(0, stream.Begin); err != nil {
				return err
			}
			_, err := io.Copy(cmd.OutOrStdout(), stream.NewReader(ms))
			return err
		}
		return ms, finish, nil
	}

	fs, err := stream.OpenFile(path, stream.AccessReadWrite, stream.CreateAlways, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return fs, func(bool) error { return fs.Close() }, nil
}

func samePath(a, b string) bool {
	if isStdio(a) || isStdio(b) {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
