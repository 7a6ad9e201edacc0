package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandRegistry(t *testing.T) {
	cmds := commands()

	for _, name := range []string{"migrate", "db-seed", "queue-stats", "sweep"} {
		cmd, ok := cmds[name]
		require.True(t, ok, "command %q must be registered", name)
		assert.Equal(t, name, cmd.name)
		assert.NotEmpty(t, cmd.description)
		assert.NotNil(t, cmd.run)
	}
}

func TestPrintUsage(t *testing.T) {
	assert.NoError(t, printUsage())
}
