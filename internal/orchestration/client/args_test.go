package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		cmd    string
		args   []string
		want   string
	}{
		{"no args", "", "synthesis", nil, "/synthesis"},
		{"prefixed", "workflow:brainstorm:", "artifacts", []string{"topic"}, "/workflow:brainstorm:artifacts topic"},
		{"quotes whitespace", "", "ui-designer", []string{"Redesign user auth", "--output", "/tmp/a.md"},
			`/ui-designer "Redesign user auth" --output /tmp/a.md`},
		{"quotes empty", "", "x", []string{""}, `/x ""`},
		{"escapes quotes", "", "x", []string{`say "hi"`}, `/x "say \"hi\""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, buildPrompt(tt.prefix, tt.cmd, tt.args))
		})
	}
}

func TestBuildArgs_PromptIsLast(t *testing.T) {
	base := []string{"--print", "--output-format", "stream-json"}
	args := buildArgs(base, "p:", "artifacts", []string{"topic"})

	require.Equal(t, []string{"--print", "--output-format", "stream-json", "/p:artifacts topic"}, args)
	// The base slice must not be aliased.
	require.Len(t, base, 3)
}

func TestOutputPath(t *testing.T) {
	require.Equal(t, "/out/a.md", outputPath([]string{"topic", OutputFlag, "/out/a.md"}))
	require.Empty(t, outputPath([]string{"topic"}))
	require.Empty(t, outputPath([]string{"topic", OutputFlag}))
}
