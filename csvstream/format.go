package csvstream

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NumberFormatter turns a numeric cell into text.
// Integer cells are converted to float64 before formatting, unless the formatter also implements
// [IntFormatter].
type NumberFormatter interface {
	Format(v float64) string
}

// IntFormatter is an optional interface for a [NumberFormatter] that can format integers without
// going through float64, which keeps values beyond 2^53 exact.
type IntFormatter interface {
	FormatInt(v int64) string
	FormatUint(v uint64) string
}

// BooleanFormatter turns a boolean cell into text.
type BooleanFormatter interface {
	Format(v bool) string
}

// DateFormatter turns a temporal cell into text.
type DateFormatter interface {
	Format(t time.Time) string
}

const (
	infinity         = "∞"
	negativeInfinity = "-∞"
)

// DecimalFormat formats numbers in plain decimal notation.
//
// Values are rounded half away from zero to at most MaxFractionDigits digits after the point,
// starting from the shortest decimal representation of the float (so 0.1235 becomes 0.124).
// Trailing zeros are removed, exponent notation is never used and infinities render as "∞" and "-∞".
// A result that is zero never carries a sign: both -0 and -0.0001 (with fewer than four fraction digits)
// render as "0".
// When Grouping is set, thousands are separated with commas.
type DecimalFormat struct {
	MaxFractionDigits int
	Grouping          bool
}

// Format implements [NumberFormatter].
func (f DecimalFormat) Format(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return infinity
	case math.IsInf(v, -1):
		return negativeInfinity
	}

	digits := max(f.MaxFractionDigits, 0)

	intPart, frac, _ := strings.Cut(strconv.FormatFloat(math.Abs(v), 'f', -1, 64), ".")
	if len(frac) > digits {
		up := frac[digits] >= '5'
		frac = frac[:digits]
		if up {
			intPart, frac = roundUp(intPart, frac)
		}
	}
	frac = strings.TrimRight(frac, "0")

	return f.compose(v < 0, intPart, frac)
}

// FormatInt implements [IntFormatter].
func (f DecimalFormat) FormatInt(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	return f.compose(neg, strings.TrimPrefix(s, "-"), "")
}

// FormatUint implements [IntFormatter].
func (f DecimalFormat) FormatUint(v uint64) string {
	return f.compose(false, strconv.FormatUint(v, 10), "")
}

func (f DecimalFormat) compose(neg bool, intPart, frac string) string {
	if f.Grouping {
		intPart = groupThousands(intPart)
	}

	var b strings.Builder
	b.Grow(len(intPart) + len(frac) + 2)

	// rounding may leave nothing but zeros, which should not carry a sign
	if neg && (strings.Trim(intPart, "0,") != "" || frac != "") {
		b.WriteByte('-')
	}
	b.WriteString(intPart)
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// roundUp adds one unit in the last place of intPart.frac, propagating the carry.
func roundUp(intPart, frac string) (string, string) {
	b := []byte(intPart + frac)

	i := len(b) - 1
	for ; i >= 0; i-- {
		if b[i] != '9' {
			b[i]++
			break
		}
		b[i] = '0'
	}
	if i < 0 {
		b = append([]byte{'1'}, b...)
	}

	split := len(b) - len(frac)
	return string(b[:split]), string(b[split:])
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)

	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// LocaleNumberFormat formats numbers with the conventions of a locale (CLDR data from golang.org/x/text),
// including its decimal and grouping separators. For example German renders 1234.5678 as "1.234,57"
// with two fraction digits. Output containing a comma ends up quoted in the CSV.
type LocaleNumberFormat struct {
	printer *message.Printer
	opts    []number.Option
}

// NewLocaleNumberFormat creates a formatter for the given locale that keeps at most maxFractionDigits
// digits after the decimal separator.
func NewLocaleNumberFormat(tag language.Tag, maxFractionDigits int) *LocaleNumberFormat {
	return &LocaleNumberFormat{
		printer: message.NewPrinter(tag),
		opts:    []number.Option{number.MaxFractionDigits(max(maxFractionDigits, 0))},
	}
}

// Format implements [NumberFormatter].
func (f *LocaleNumberFormat) Format(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return infinity
	case math.IsInf(v, -1):
		return negativeInfinity
	}

	return f.printer.Sprint(number.Decimal(v, f.opts...))
}

// FormatInt implements [IntFormatter].
func (f *LocaleNumberFormat) FormatInt(v int64) string {
	return f.printer.Sprint(number.Decimal(v, f.opts...))
}

// FormatUint implements [IntFormatter].
func (f *LocaleNumberFormat) FormatUint(v uint64) string {
	return f.printer.Sprint(number.Decimal(v, f.opts...))
}

// BoolLiterals formats booleans as two fixed strings.
type BoolLiterals struct {
	True  string
	False string
}

// Format implements [BooleanFormatter].
func (f BoolLiterals) Format(v bool) string {
	if v {
		return f.True
	}
	return f.False
}

// TimeLayout formats temporal cells with a [time.Time.Format] layout, in the location carried by the value.
type TimeLayout string

// Format implements [DateFormatter].
func (l TimeLayout) Format(t time.Time) string {
	return t.Format(string(l))
}

var (
	defaultNumberFormat  NumberFormatter  = DecimalFormat{MaxFractionDigits: 3}
	defaultBooleanFormat BooleanFormatter = BoolLiterals{True: "true", False: "false"}
	defaultDateFormat    DateFormatter    = TimeLayout("January 2, 2006")
)
