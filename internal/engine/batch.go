package engine

import (
	"regexp"
	"strings"
)

var assignRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=\s*([^=].*)$`)

// LineResult is the outcome of one line of a batch.
type LineResult struct {
	Line   int     `json:"line" yaml:"line"`
	Input  string  `json:"input" yaml:"input"`
	Assign string  `json:"assign,omitempty" yaml:"assign,omitempty"`
	Result *Result `json:"result,omitempty" yaml:"result,omitempty"`
	Error  string  `json:"error,omitempty" yaml:"error,omitempty"`
	Err    error   `json:"-" yaml:"-"`
}

// Batch is the outcome of evaluating multi-line input.
type Batch struct {
	Lines []LineResult `json:"lines" yaml:"lines"`
	// Assigned holds the variables bound by name = expr lines, in final form.
	Assigned map[string]string `json:"assigned,omitempty" yaml:"assigned,omitempty"`
	Failed   int               `json:"failed" yaml:"failed"`
}

// IsComment reports whether a batch line carries no expression.
func IsComment(line string) bool {
	line = strings.TrimSpace(line)
	return line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//")
}

// ParseAssignment splits "name = expr". ok is false for plain expressions.
func ParseAssignment(line string) (name, expr string, ok bool) {
	m := assignRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// EvaluateBatch evaluates input line by line. Later lines see variables
// assigned by earlier ones, and ans holds the last successful value. A failed
// line is recorded and evaluation carries on.
func (e *Engine) EvaluateBatch(input string, vars map[string]string) Batch {
	scope := make(map[string]string, len(vars)+1)
	for k, v := range vars {
		scope[k] = v
	}

	batch := Batch{Assigned: map[string]string{}}
	lines := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	for i, raw := range lines {
		if IsComment(raw) {
			continue
		}
		lr := LineResult{Line: i + 1, Input: strings.TrimSpace(raw)}

		src := lr.Input
		if name, rhs, ok := ParseAssignment(src); ok {
			if err := ValidateName(name); err != nil {
				lr.Err = err
				lr.Error = err.Error()
				batch.Lines = append(batch.Lines, lr)
				batch.Failed++
				continue
			}
			lr.Assign = name
			src = rhs
		}

		res, err := e.Evaluate(src, scope)
		if err != nil {
			lr.Err = err
			lr.Error = Message(err)
			batch.Failed++
		} else {
			lr.Result = &res
			scope["ans"] = res.Value
			if lr.Assign != "" {
				scope[lr.Assign] = res.Value
				batch.Assigned[lr.Assign] = res.Value
			}
		}
		batch.Lines = append(batch.Lines, lr)
	}
	return batch
}
