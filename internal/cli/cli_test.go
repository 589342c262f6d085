package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionFlag(t *testing.T) {
	output := captureOutput(t, func() {
		err := RunWithArgs("0.1.0-test", []string{"--version"})
		assert.NoError(t, err)
	})

	assert.Contains(t, output, "backstory 0.1.0-test")
}

func TestVersionOutputFormat(t *testing.T) {
	output := captureOutput(t, func() {
		_ = RunWithArgs("1.2.3", []string{"--version"})
	})

	assert.Equal(t, "backstory 1.2.3", strings.TrimSpace(output))
}

func TestAllSubcommandsRegistered(t *testing.T) {
	parser, _, cmds := buildParser("test")

	for _, name := range []string{"generate", "preview", "serve", "inspect"} {
		assert.NotNil(t, parser.Find(name), "subcommand %s", name)
	}

	assert.NotNil(t, cmds.Generate)
	assert.NotNil(t, cmds.Preview)
	assert.NotNil(t, cmds.Serve)
	assert.NotNil(t, cmds.Inspect)
}

func TestUnknownSubcommandErrors(t *testing.T) {
	parser, _, _ := buildParser("test")
	_, err := parser.ParseArgs([]string{"frobnicate"})
	assert.Error(t, err)
}

func TestHelpIsNotAnError(t *testing.T) {
	captureOutput(t, func() {
		err := RunWithArgs("test", []string{"generate", "--help"})
		assert.NoError(t, err)
	})
}
