package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCmdRequiresAllSixPathFlags(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	require.Error(t, err)
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := newLogger("not-a-level")
	require.Error(t, err)
}

func TestNewLoggerAcceptsKnownLevels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		_, err := newLogger(lvl)
		require.NoError(t, err)
	}
}
