//go:build !integration

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fitorfat/internal/config"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"serve", "summary", "render", "export", "version"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "fitorfat", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)

	for _, name := range []string{"debug", "data", "boundaries"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestExportCommand_Flags(t *testing.T) {
	for _, name := range []string{"year", "bmi", "sex", "age", "education", "countries", "out", "sheet"} {
		assert.NotNil(t, exportCmd.Flags().Lookup(name), "missing --%s", name)
	}
	assert.Equal(t, "any", exportCmd.Flags().Lookup("sex").DefValue)
}

func TestRenderCommand_Flags(t *testing.T) {
	flag := renderCmd.Flags().Lookup("chart")
	require.NotNil(t, flag)
	assert.Equal(t, "1", flag.DefValue)
	assert.Equal(t, "json", renderCmd.Flags().Lookup("format").DefValue)
}

func TestApplyFlags(t *testing.T) {
	t.Cleanup(func() { debugFlag, dataFlag, boundariesFlag = false, "", "" })

	c := &config.Config{}
	c.Data.SourcePath = "a.csv"
	c.Log.Level = "info"
	applyFlags(c)
	assert.Equal(t, "a.csv", c.Data.SourcePath)
	assert.Equal(t, "info", c.Log.Level)

	debugFlag, dataFlag, boundariesFlag = true, "b.tsv", "europe.shp"
	applyFlags(c)
	assert.Equal(t, "b.tsv", c.Data.SourcePath)
	assert.Equal(t, "europe.shp", c.Data.BoundariesPath)
	assert.True(t, c.Server.Debug)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestApplyFlags_ConfigDebug(t *testing.T) {
	c := &config.Config{}
	c.Server.Debug = true
	c.Log.Level = "warn"
	applyFlags(c)
	assert.Equal(t, "debug", c.Log.Level)
}
