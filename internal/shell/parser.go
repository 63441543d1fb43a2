package shell

import (
	"fmt"
	"strings"
)

// Stage is one command within a pipeline: its name (Stage[0]) and
// arguments, before $variable substitution.
type Stage []string

// Pipeline is an ordered sequence of stages connected by "|".
type Pipeline []Stage

// ParseErr is returned for a syntactically invalid pipe section, per
// §4.3: "A stage with zero tokens after trimming is a pipe syntax
// error."
type ParseErr struct{ Msg string }

func (e *ParseErr) Error() string { return e.Msg }

// Parse splits buf on newlines and semicolons into lines, each line on
// "|" into stages, and each stage on whitespace into tokens. No quoting
// or globbing is recognized (explicit Non-goal). Blank lines are
// dropped silently; a non-blank line with an empty stage (e.g. "ls ||
// grep") is a *ParseErr.
func Parse(buf string) ([]Pipeline, error) {
	var pipelines []Pipeline

	for _, line := range splitLines(buf) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var stages []Stage
		for _, part := range strings.Split(line, "|") {
			tokens := strings.Fields(part)
			if len(tokens) == 0 {
				return nil, &ParseErr{Msg: "sh: invalid pipe"}
			}
			stages = append(stages, Stage(tokens))
		}
		pipelines = append(pipelines, Pipeline(stages))
	}

	return pipelines, nil
}

// splitLines splits on '\n' and ';', treating either as a line
// terminator (spec.md §4.3: "split the command buffer on newlines and
// semicolons into lines").
func splitLines(buf string) []string {
	return strings.FieldsFunc(buf, func(r rune) bool {
		return r == '\n' || r == ';'
	})
}

// expand substitutes every "$name" token against vars, leaving an unset
// variable as an empty string (bash's unset-variable behavior).
func expand(tokens []string, vars map[string]string) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		if strings.HasPrefix(tok, "$") && len(tok) > 1 {
			out[i] = vars[tok[1:]]
		} else {
			out[i] = tok
		}
	}
	return out
}

// commandNotFound formats §8's "Missing command" diagnostic.
func commandNotFound(name string) string {
	return fmt.Sprintf("sh: command not found: %s", name)
}
