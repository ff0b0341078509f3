package eval

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Formatting limits for results shown on the display.
const (
	// FixedDigits is the number of fractional digits kept for long fractions.
	FixedDigits = 10

	// ExponentDigits is the number of mantissa digits after the point in
	// exponential notation.
	ExponentDigits = 5

	// MaxNaturalLength is the longest natural representation shown as is.
	MaxNaturalLength = 12
)

// Bounds outside of which the natural representation switches to
// exponential notation.
const (
	naturalUpper = 1e21
	naturalLower = 1e-6
)

// ErrorText is what FormatResult returns for non-finite values.
const ErrorText = "Error"

// Natural returns the shortest decimal string that round-trips to n.
// Magnitudes of at least 1e21 or below 1e-6 use exponential notation with
// an unpadded exponent ("1e+21", "1.5e-7"). Negative zero is "0".
func Natural(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}

	abs := math.Abs(n)
	if abs >= naturalUpper || abs < naturalLower {
		return trimExponent(strconv.FormatFloat(n, 'e', -1, 64))
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// FormatResult renders a computed value for the display. The first
// matching rule wins:
//
//  1. a natural representation with an exponent is re-rendered as
//     exponential with ExponentDigits mantissa digits;
//  2. a fraction longer than FixedDigits is rounded to FixedDigits;
//  3. a natural representation longer than MaxNaturalLength becomes
//     exponential with ExponentDigits mantissa digits;
//  4. otherwise the natural representation is returned.
//
// Non-finite values format as ErrorText.
func FormatResult(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return ErrorText
	}

	natural := Natural(n)

	if strings.ContainsRune(natural, 'e') {
		return Exponential(n, ExponentDigits)
	}

	if _, frac, ok := strings.Cut(natural, "."); ok && len(frac) > FixedDigits {
		return Fixed(n, FixedDigits)
	}

	if len(natural) > MaxNaturalLength {
		return Exponential(n, ExponentDigits)
	}

	return natural
}

// exactDigits is enough significant digits to write any float64 exactly.
const exactDigits = 767

// exact returns the decimal value n holds, not its shortest spelling, so
// ties are ties of the stored binary value.
func exact(n float64) *apd.Decimal {
	d, _, err := apd.NewFromString(strconv.FormatFloat(n, 'e', exactDigits, 64))
	if err != nil {
		// FormatFloat output of a finite value always parses.
		panic(err)
	}
	return d
}

// halfUp returns a context rounding to prec significant digits, with
// ties going away from zero.
func halfUp(prec uint32) *apd.Context {
	c := apd.BaseContext.WithPrecision(prec)
	c.Rounding = apd.RoundHalfUp
	return c
}

// Fixed renders n with exactly digits fractional digits. Ties round away
// from zero: Fixed(1.0/2048, 10) is "0.0004882813".
func Fixed(n float64, digits int) string {
	var d apd.Decimal
	if _, err := halfUp(2*exactDigits).Quantize(&d, exact(n), -int32(digits)); err != nil {
		return strconv.FormatFloat(n, 'f', digits, 64)
	}
	return d.Text('f')
}

// Exponential renders n in exponential notation with the given number of
// mantissa digits after the point, e.g. Exponential(1234567, 5) is
// "1.23457e+6". Ties round away from zero.
func Exponential(n float64, digits int) string {
	if n == 0 {
		return trimExponent(strconv.FormatFloat(0, 'e', digits, 64))
	}

	var d apd.Decimal
	if _, err := halfUp(uint32(digits+1)).Round(&d, exact(n)); err != nil {
		return trimExponent(strconv.FormatFloat(n, 'e', digits, 64))
	}

	coeff := d.Coeff.String()
	exp := int(d.Exponent) + len(coeff) - 1
	if pad := digits + 1 - len(coeff); pad > 0 {
		coeff += strings.Repeat("0", pad)
	}

	var sb strings.Builder
	if d.Negative {
		sb.WriteByte('-')
	}
	sb.WriteString(coeff[:1])
	if digits > 0 {
		sb.WriteByte('.')
		sb.WriteString(coeff[1 : digits+1])
	}
	sb.WriteByte('e')
	if exp < 0 {
		sb.WriteByte('-')
		exp = -exp
	} else {
		sb.WriteByte('+')
	}
	sb.WriteString(strconv.Itoa(exp))
	return sb.String()
}

// trimExponent strips zero padding from the exponent: "e+05" becomes "e+5".
func trimExponent(s string) string {
	idx := strings.IndexByte(s, 'e')
	if idx < 0 || idx+2 >= len(s) {
		return s
	}

	mantissa, sign, digits := s[:idx], s[idx+1:idx+2], s[idx+2:]
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}
