package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestRunWithArgs(t *testing.T) {
	pkg, err := filepath.Abs(filepath.Join("..", "..", "testdata", "package.yaml"))
	require.NoError(t, err)
	mt103, err := filepath.Abs(filepath.Join("..", "..", "testdata", "scenarios", "mt103.txt"))
	require.NoError(t, err)
	pacs008, err := filepath.Abs(filepath.Join("..", "..", "testdata", "scenarios", "pacs008.xml"))
	require.NoError(t, err)
	expectXML := mustRead(t, pacs008)

	var testCases = []struct {
		description  string
		args         []string
		stdin        string
		expectCode   int
		expectStdout string
		expectStderr string
	}{
		{
			description:  "no command",
			expectCode:   exitUsage,
			expectStderr: "Usage: reframe",
		},
		{
			description:  "unknown command",
			args:         []string{"convert", "-package", pkg},
			expectCode:   exitUsage,
			expectStderr: `unknown command "convert"`,
		},
		{
			description:  "package required",
			args:         []string{"transform", mt103},
			expectCode:   exitFailure,
			expectStderr: "-package is required",
		},
		{
			description:  "transform file",
			args:         []string{"transform", "-package", pkg, mt103},
			expectCode:   exitOK,
			expectStdout: strings.TrimSpace(string(expectXML)),
		},
		{
			description:  "validate stdin",
			args:         []string{"validate", "-package", pkg, "-"},
			stdin:        strings.Replace(string(mustRead(t, mt103)), ":71A:SHA", ":71A:XYZ", 1),
			expectCode:   exitFailure,
			expectStderr: "validation charges",
		},
		{
			description:  "validate valid message",
			args:         []string{"validate", "-package", pkg, mt103},
			expectCode:   exitOK,
			expectStdout: "MT103 core: valid",
		},
		{
			description:  "generate without family",
			args:         []string{"generate", "-package", pkg, "-direction", "mt-to-mx"},
			expectCode:   exitUsage,
			expectStderr: "-family is required",
		},
		{
			description:  "batch transform",
			args:         []string{"transform", "-package", pkg, "-workers", "2", mt103, pacs008},
			expectCode:   exitOK,
			expectStdout: "==> " + pacs008 + " <==\n{1:F01BANKBEBBAXXX0000000000}",
		},
		{
			description:  "scenarios",
			args:         []string{"scenarios", "-package", pkg},
			expectCode:   exitOK,
			expectStdout: "cbpr-sample: 2 passed, 0 failed",
		},
	}
	for _, testCase := range testCases {
		stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
		code := runWithArgs(context.Background(), testCase.args, strings.NewReader(testCase.stdin), stdout, stderr)
		assert.Equal(t, testCase.expectCode, code, testCase.description+": "+stderr.String())
		if testCase.expectStdout != "" {
			assert.Contains(t, stdout.String(), testCase.expectStdout, testCase.description)
		}
		if testCase.expectStderr != "" {
			assert.Contains(t, stderr.String(), testCase.expectStderr, testCase.description)
		}
	}
}

func TestRunWithArgs_GenerateOut(t *testing.T) {
	pkg, err := filepath.Abs(filepath.Join("..", "..", "testdata", "package.yaml"))
	require.NoError(t, err)
	out := "mem://localhost/reframe/cli/generated.xml"
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := runWithArgs(context.Background(), []string{
		"generate", "-package", pkg, "-family", "pacs.008", "-direction", "mt-to-mx", "-out", out,
		"-params", `{"reference":"CLI-1","amount":"10.00","debtor":"A","creditor":"B"}`,
	}, strings.NewReader(""), stdout, stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Empty(t, stdout.String())
	data, err := afs.New().DownloadWithURL(context.Background(), out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<MsgId>CLI-1</MsgId>")
	assert.Contains(t, string(data), `<IntrBkSttlmAmt Ccy="EUR">10.00</IntrBkSttlmAmt>`)
}

func mustRead(t *testing.T, name string) []byte {
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	return data
}
