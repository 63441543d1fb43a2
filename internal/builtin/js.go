package builtin

import (
	"strconv"
	"strings"

	"webshell/internal/adapter"
	"webshell/internal/output"
	"webshell/internal/process"
)

// newJS evaluates a tiny left-to-right arithmetic expression over shell
// variables and numeric literals — a supplemental feature, not a real
// JavaScript engine: no pack dependency embeds one, and the spec only
// calls for simple scripted arithmetic against shell state. Tokens are
// space-separated: a number or "$name", then alternating operator/
// operand pairs, e.g. "js 2 + $count * 3".
func newJS(parent process.Process, argv []string, svc Services) process.Process {
	return adapter.NewCaller(parent, func(self process.Process) int {
		result, err := evalExpr(argv[1:], self.Variables())
		if err != nil {
			return usageErr(self, "js: "+err.Error())
		}
		if self.Stdout() != nil {
			self.Stdout().Write(output.Text(strconv.FormatFloat(result, 'g', -1, 64)))
		}
		return 0
	})
}

func evalExpr(tokens []string, vars map[string]string) (float64, error) {
	if len(tokens) == 0 {
		return 0, errExpr("missing expression")
	}
	acc, err := operand(tokens[0], vars)
	if err != nil {
		return 0, err
	}
	i := 1
	for i < len(tokens) {
		if i+1 >= len(tokens) {
			return 0, errExpr("dangling operator")
		}
		op := tokens[i]
		rhs, err := operand(tokens[i+1], vars)
		if err != nil {
			return 0, err
		}
		switch op {
		case "+":
			acc += rhs
		case "-":
			acc -= rhs
		case "*":
			acc *= rhs
		case "/":
			if rhs == 0 {
				return 0, errExpr("division by zero")
			}
			acc /= rhs
		default:
			return 0, errExpr("unknown operator: " + op)
		}
		i += 2
	}
	return acc, nil
}

func operand(tok string, vars map[string]string) (float64, error) {
	if strings.HasPrefix(tok, "$") {
		tok = vars[tok[1:]]
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, errExpr("not a number: " + tok)
	}
	return v, nil
}

type exprError string

func (e exprError) Error() string { return string(e) }
func errExpr(msg string) error    { return exprError(msg) }
