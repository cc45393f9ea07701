package client

import (
	"strconv"
	"strings"
)

// OutputFlag marks the argument that carries a command's artifact path.
const OutputFlag = "--output"

// buildPrompt renders a slash-command prompt:
//
//	/<prefix><name> <arg> <arg> ...
//
// Arguments containing whitespace or quotes are quoted so the receiving
// command sees the same argument boundaries.
func buildPrompt(prefix, name string, args []string) string {
	var sb strings.Builder
	sb.WriteString("/")
	sb.WriteString(prefix)
	sb.WriteString(name)
	for _, a := range args {
		sb.WriteByte(' ')
		sb.WriteString(quoteArg(a))
	}
	return sb.String()
}

func quoteArg(a string) string {
	if a == "" || strings.ContainsAny(a, " \t\n\"'") {
		return strconv.Quote(a)
	}
	return a
}

// buildArgs constructs the runner's command line:
//
//	<base args...> "/<prefix><name> <args...>"
func buildArgs(baseArgs []string, prefix, name string, args []string) []string {
	out := make([]string, 0, len(baseArgs)+1)
	out = append(out, baseArgs...)
	return append(out, buildPrompt(prefix, name, args))
}

// outputPath returns the value following OutputFlag, or "".
func outputPath(args []string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == OutputFlag {
			return args[i+1]
		}
	}
	return ""
}
