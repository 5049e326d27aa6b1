package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// imagePaths collects the six required image-path flags.
type imagePaths struct {
	bootrom  string
	virage0  string
	virage1  string
	virage2  string
	nand     string
	spare    string
	trace    bool
	logLevel string
}

func newRootCmd() *cobra.Command {
	var paths imagePaths

	cmd := &cobra.Command{
		Use:           "iquecore",
		Short:         "Run the console core against raw ROM/fuse/NAND images",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(paths)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&paths.bootrom, "bootrom", "b", "", "8 KiB mask ROM image (required)")
	flags.StringVarP(&paths.virage0, "virage0", "0", "", "64-byte fuse bank 0 image (required)")
	flags.StringVarP(&paths.virage1, "virage1", "1", "", "64-byte fuse bank 1 image (required)")
	flags.StringVarP(&paths.virage2, "virage2", "2", "", "256-byte fuse bank 2 image (required)")
	flags.StringVarP(&paths.nand, "nand", "n", "", "64 MiB or 128 MiB raw NAND dump (required)")
	flags.StringVarP(&paths.spare, "spare", "s", "", "NAND spare-area dump (required)")
	flags.BoolVar(&paths.trace, "trace", false, "print each instruction's PC and decoded form")
	flags.StringVar(&paths.logLevel, "log-level", "info", "zap log level (debug, info, warn, error)")

	for _, name := range []string{"bootrom", "virage0", "virage1", "virage2", "nand", "spare"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

// newLogger builds the zap logger the rest of the run wires into the bus's
// Warnf sink and, when --trace is set, per-step instruction tracing.
func newLogger(level string) (*zap.SugaredLogger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("iquecore: invalid --log-level %q: %w", level, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("iquecore: building logger: %w", err)
	}
	return logger.Sugar(), nil
}
