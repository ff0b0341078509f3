package eval

import (
	"regexp"
	"strconv"
	"strings"
)

var glyphReplacer = strings.NewReplacer("×", "*", "÷", "/")

// percentPattern matches a number directly followed by a percent sign.
var percentPattern = regexp.MustCompile(`(\d+\.?\d*)%`)

// Normalize rewrites display text into an arithmetic expression:
//
//   - the × and ÷ glyphs become * and /;
//   - the first number followed by % is replaced by that number divided by
//     100, written in natural form ("50%" becomes "0.5");
//   - a % still left at the very end becomes "/100".
//
// Other percent signs are kept and rejected later by the parser.
func Normalize(text string) string {
	expr := glyphReplacer.Replace(text)

	if loc := percentPattern.FindStringSubmatchIndex(expr); loc != nil {
		number := expr[loc[2]:loc[3]]
		if v, err := strconv.ParseFloat(number, 64); err == nil {
			expr = expr[:loc[0]] + Natural(v/100) + expr[loc[1]:]
		}
	}

	if strings.HasSuffix(expr, "%") {
		expr = strings.TrimSuffix(expr, "%") + "/100"
	}

	return expr
}
