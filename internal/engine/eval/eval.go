// Package eval turns calculator display text into a number and back.
//
// Evaluation is a three step pipeline: Normalize rewrites display glyphs and
// percentages into plain arithmetic, Eval parses and computes the
// expression with a small recursive-descent parser, and Evaluate rejects
// non-finite results. FormatResult renders a value for redisplay.
//
// Only numbers, + - * /, unary signs and parentheses are accepted. Anything
// else is an *EvaluationError; there is no general expression language.
package eval

import "math"

// Evaluate normalizes display text and computes its value.
//
// It returns an *EvaluationError when the text is not a valid arithmetic
// expression and a *RangeError when the result is infinite or NaN.
func Evaluate(text string) (float64, error) {
	expr := Normalize(text)

	v, err := Eval(expr)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, &RangeError{Expr: expr, Value: v}
	}
	return v, nil
}
