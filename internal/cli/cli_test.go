// Copyright 2024 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zombiezen.com/go/macaroni"
	"zombiezen.com/go/macaroni/internal/cli"
	"zombiezen.com/go/macaroni/internal/logging"
	"zombiezen.com/go/macaroni/outline"
)

var testInfo = cli.BuildInfo{
	Version: "1.2.3",
	Commit:  "abc123",
	Date:    "2024-01-01",
}

// testDir returns a temporary directory that ends configuration discovery.
func testDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	return dir
}

// execute runs the root command with the given arguments and standard input.
func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := cli.NewRootCommand(testInfo)
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// writeFile writes a file under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo)
	require.NotNil(t, cmd)
	assert.Equal(t, "macaroni", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	for _, name := range []string{"parse", "tree", "outline", "version"} {
		sub, _, err := cmd.Find([]string{name})
		if assert.NoError(t, err, "subcommand %q", name) {
			assert.Equal(t, name, sub.Name())
		}
	}
	for _, name := range []string{"config", "debug", "color", "max-depth", "max-size"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "global flag %q", name)
	}
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	dir := testDir(t)
	path := writeFile(t, dir, "doc.md", "# Hi\n")
	stdout, _, err := execute(t, "", "parse", path)
	require.NoError(t, err)

	var elems macaroni.Elements
	require.NoError(t, json.Unmarshal([]byte(stdout), &elems))
	require.Len(t, elems.BlockElements, 2)
	assert.Equal(t, "root", elems.BlockElements[0].Type)
	assert.Equal(t, "atxHeading", elems.BlockElements[1].Type)
	assert.Equal(t, 1, elems.BlockElements[1].Level)
	require.Len(t, elems.InlineElements, 1)
	assert.Equal(t, "Hi", elems.InlineElements[0].Text)
	assert.Equal(t, 2, elems.InlineElements[0].Range.Start.Character)
}

func TestParseRequest(t *testing.T) {
	t.Parallel()

	dir := testDir(t)
	cfg := writeFile(t, dir, "macaroni.yaml", "{}\n")
	stdout, _, err := execute(t, `{"source": "*a*"}`, "parse", "--request", "--indent", "--config", cfg)
	require.NoError(t, err)

	var elems macaroni.Elements
	require.NoError(t, json.Unmarshal([]byte(stdout), &elems))
	require.Len(t, elems.InlineElements, 2)
	assert.Equal(t, "emphasis", elems.InlineElements[0].Type)
	assert.Equal(t, "text", elems.InlineElements[1].Type)
	assert.Contains(t, stdout, "\n  \"blockElements\"")
}

func TestTreeCommand(t *testing.T) {
	t.Parallel()

	dir := testDir(t)
	path := writeFile(t, dir, "doc.md", "a\n")
	stdout, _, err := execute(t, "", "tree", "--color", "never", path)
	require.NoError(t, err)
	want := "root [0,2)\n" +
		"  paragraph [0,1)\n" +
		"    text [0,1) \"a\"\n"
	assert.Equal(t, want, stdout)

	stdout, _, err = execute(t, "", "tree", "--color", "never", "--positions", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "root [0:0(0),"), "got %q", stdout)

	stdout, _, err = execute(t, "", "tree", "--color", "always", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "paragraph")
	assert.Contains(t, stdout, `"a"`)
}

func TestOutlineCommand(t *testing.T) {
	t.Parallel()

	dir := testDir(t)
	path := writeFile(t, dir, "doc.md", "# One\n\ntext\n\n## Two\n")
	stdout, _, err := execute(t, "", "outline", path)
	require.NoError(t, err)

	var got outline.Outline
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got.Symbols, 1)
	assert.Equal(t, "One", got.Symbols[0].Name)
	require.Len(t, got.Symbols[0].Children, 1)
	assert.Equal(t, "Two", got.Symbols[0].Children[0].Name)
	assert.Equal(t, []outline.FoldingRange{
		{StartLine: 0, EndLine: 4, Kind: outline.RegionFolding},
	}, got.FoldingRanges)
}

func TestConfigFile(t *testing.T) {
	t.Parallel()

	dir := testDir(t)
	writeFile(t, dir, ".macaroni.yaml", "extensions:\n  strikethrough: false\n")
	path := writeFile(t, dir, "doc.md", "~~x~~\n")
	stdout, _, err := execute(t, "", "tree", "--color", "never", path)
	require.NoError(t, err)
	assert.NotContains(t, stdout, "strikethrough")
}

func TestDebugLogging(t *testing.T) {
	t.Parallel()

	dir := testDir(t)
	path := writeFile(t, dir, "doc.md", "text\n")
	_, stderr, err := execute(t, "", "--debug", "tree", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "parsed document")
	assert.Contains(t, stderr, "blocks=2")
}

func TestExitCodes(t *testing.T) {
	t.Parallel()

	dir := testDir(t)
	doc := writeFile(t, dir, "doc.md", "> > > deep\n")
	badConfig := writeFile(t, dir, "bad.yaml", "log:\n  level: loud\n")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"success", []string{"tree", doc}, cli.ExitSuccess},
		{"too many args", []string{"tree", doc, doc}, cli.ExitInvalidUsage},
		{"unknown flag", []string{"tree", "--nope", doc}, cli.ExitInvalidUsage},
		{"version args", []string{"version", "extra"}, cli.ExitInvalidUsage},
		{"unknown command", []string{"frobnicate"}, cli.ExitInvalidUsage},
		{"negative depth", []string{"tree", "--max-depth", "-1", doc}, cli.ExitInvalidUsage},
		{"bad config", []string{"tree", "--config", badConfig, doc}, cli.ExitConfigError},
		{"size limit", []string{"tree", "--max-size", "4", doc}, cli.ExitResourceLimit},
		{"depth limit", []string{"tree", "--max-depth", "2", doc}, cli.ExitResourceLimit},
		{"missing file", []string{"tree", filepath.Join(dir, "missing.md")}, cli.ExitIOError},
	}
	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := execute(t, "", testCase.args...)
			assert.Equal(t, testCase.want, cli.ExitCode(err), "error: %v", err)
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	_, _, err := execute(t, "", "pars")
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(err))
	assert.Contains(t, err.Error(), `unknown command "pars"`)
	assert.Contains(t, err.Error(), "parse")
}

func TestRootCommandHelp(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "outline")
}

func TestDefaultLoggerFollowsCommand(t *testing.T) {
	// Modifies global state.
	original := logging.Default()
	defer logging.SetDefault(original)

	dir := testDir(t)
	path := writeFile(t, dir, "doc.md", "text\n")
	cmd := cli.NewRootCommand(testInfo)
	var errOut bytes.Buffer
	cmd.SetOut(io.Discard)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--debug", "tree", path})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, log.DebugLevel, logging.Default().GetLevel())
	logging.Default().Error("command failed")
	assert.Contains(t, errOut.String(), "command failed")
}

func TestExitCodeInternal(t *testing.T) {
	t.Parallel()

	err := &macaroni.InternalError{Op: "test"}
	assert.Equal(t, cli.ExitInternalError, cli.ExitCode(err))
	assert.Equal(t, cli.ExitInternalError, cli.ExitCode(errors.New("boom")))
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "macaroni")
	assert.Contains(t, stdout, "version=1.2.3")
	assert.Contains(t, stdout, "commit=abc123")
}
