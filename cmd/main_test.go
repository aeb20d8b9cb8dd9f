package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExecuteFatalExitCode(t *testing.T) {
	rootCmd.SetArgs([]string{"no-such-command"})
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	require.Equal(t, 1, execute())
}
