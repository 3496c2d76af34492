package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDict(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	content := "# test dictionary\nI\nlove\nyou\nYou\nolive\nYlo\neat\nate\ntea\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestRootHasSubcommands(t *testing.T) {
	root := NewRootCmd()
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"words", "sentence", "stats", "import"} {
		assert.Contains(t, names, want)
	}
}

func TestWordsCommand(t *testing.T) {
	out, _, err := execute(t, "--dict", writeDict(t), "words", "TEA", "xyz")
	require.NoError(t, err)
	assert.Equal(t, "TEA: eat ate tea\nxyz: \n", out)
}

func TestSentenceCommand(t *testing.T) {
	out, _, err := execute(t, "--dict", writeDict(t), "sentence", "I", "love", "you")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 16)
	assert.Equal(t, "I love you", lines[0])
	assert.Contains(t, lines, "olive you")
	assert.Contains(t, lines, "You olive")
}

func TestSentenceCommandLimits(t *testing.T) {
	dict := writeDict(t)

	out, errOut, err := execute(t, "-d", dict, "sentence", "-n", "3", "I love you")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)
	assert.Contains(t, errOut, "truncated after 3")

	out, _, err = execute(t, "-d", dict, "sentence", "--max-words", "2", "--workers", "4", "I love you")
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		assert.LessOrEqual(t, len(strings.Fields(line)), 2, line)
	}
}

func TestSentenceCommandJSON(t *testing.T) {
	out, _, err := execute(t, "-d", writeDict(t), "sentence", "--json", "eat")
	require.NoError(t, err)
	assert.JSONEq(t, `{"sentences":[["eat"],["ate"],["tea"]],"partitions":1,"truncated":false}`, out)
}

func TestStatsCommand(t *testing.T) {
	out, _, err := execute(t, "-d", writeDict(t), "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Words:          9")
	assert.Contains(t, out, "Largest bucket: 3")
}

func TestMissingDictionary(t *testing.T) {
	_, _, err := execute(t, "-d", filepath.Join(t.TempDir(), "nope.txt"), "words", "tea")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestArgsRequired(t *testing.T) {
	_, _, err := execute(t, "-d", writeDict(t), "sentence")
	assert.Error(t, err)
}
