package csvstream

import (
	"database/sql"
	"fmt"
	"math"
	"reflect"
	"time"
)

// Row is an ordered list of cells. Rows are positional: a header row is just the first row.
//
// A cell is one of:
//   - absent: nil, a nil pointer, or an invalid sql.Null* value. Serialized as an empty field.
//   - text: string, []byte or a fmt.Stringer.
//   - numeric: any integer or float type. NaN is serialized as an empty field.
//   - boolean: bool.
//   - temporal: time.Time. Always quoted.
//
// Pointers are dereferenced, and named types are handled according to their underlying kind.
// Anything else is rendered with fmt.Sprint and treated as text.
type Row []any

// Serializer turns cells and rows into CSV text using a fixed set of formatting options.
// It holds no mutable state and is safe for concurrent use if the configured formatters are.
type Serializer struct {
	number  NumberFormatter
	boolean BooleanFormatter
	date    DateFormatter
}

// NewSerializer creates a Serializer from opts, filling unset formatters with defaults.
func NewSerializer(opts Options) *Serializer {
	s := &Serializer{
		number:  opts.NumberFormat,
		boolean: opts.BooleanFormat,
		date:    opts.DateFormat,
	}
	if s.number == nil {
		s.number = defaultNumberFormat
	}
	if s.boolean == nil {
		s.boolean = defaultBooleanFormat
	}
	if s.date == nil {
		s.date = defaultDateFormat
	}
	return s
}

// SerializeCell returns the CSV representation of a single cell.
// See [Serializer] for reusing the options across many calls.
func SerializeCell(cell any, opts Options) string {
	return NewSerializer(opts).Cell(cell)
}

// SerializeRow returns the CSV representation of a row, terminated with "\n".
// A row without cells serializes to just the terminator.
func SerializeRow(row Row, opts Options) string {
	return NewSerializer(opts).Row(row)
}

// Cell returns the CSV representation of a single cell.
func (s *Serializer) Cell(cell any) string {
	return string(s.AppendCell(nil, cell))
}

// Row returns the CSV representation of a row, terminated with "\n".
func (s *Serializer) Row(row Row) string {
	return string(s.AppendRow(nil, row))
}

// AppendRow appends the CSV representation of a row, including the trailing "\n", to dst.
func (s *Serializer) AppendRow(dst []byte, row Row) []byte {
	for i, cell := range row {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = s.AppendCell(dst, cell)
	}
	return append(dst, '\n')
}

// AppendCell appends the CSV representation of a single cell to dst.
func (s *Serializer) AppendCell(dst []byte, cell any) []byte {
	switch v := cell.(type) {
	case nil:
		return dst
	case string:
		return appendEscaped(dst, v)
	case []byte:
		return appendEscaped(dst, string(v))
	case bool:
		return appendEscaped(dst, s.boolean.Format(v))
	case time.Time:
		return appendQuoted(dst, s.date.Format(v))
	case float64:
		return s.appendFloat(dst, v)
	case float32:
		return s.appendFloat(dst, float64(v))
	case int:
		return s.appendInt(dst, int64(v))
	case int8:
		return s.appendInt(dst, int64(v))
	case int16:
		return s.appendInt(dst, int64(v))
	case int32:
		return s.appendInt(dst, int64(v))
	case int64:
		return s.appendInt(dst, v)
	case uint:
		return s.appendUint(dst, uint64(v))
	case uint8:
		return s.appendInt(dst, int64(v))
	case uint16:
		return s.appendInt(dst, int64(v))
	case uint32:
		return s.appendInt(dst, int64(v))
	case uint64:
		return s.appendUint(dst, v)
	case sql.NullString:
		if !v.Valid {
			return dst
		}
		return appendEscaped(dst, v.String)
	case sql.NullInt64:
		if !v.Valid {
			return dst
		}
		return s.appendInt(dst, v.Int64)
	case sql.NullInt32:
		if !v.Valid {
			return dst
		}
		return s.appendInt(dst, int64(v.Int32))
	case sql.NullInt16:
		if !v.Valid {
			return dst
		}
		return s.appendInt(dst, int64(v.Int16))
	case sql.NullByte:
		if !v.Valid {
			return dst
		}
		return s.appendInt(dst, int64(v.Byte))
	case sql.NullFloat64:
		if !v.Valid {
			return dst
		}
		return s.appendFloat(dst, v.Float64)
	case sql.NullBool:
		if !v.Valid {
			return dst
		}
		return appendEscaped(dst, s.boolean.Format(v.Bool))
	case sql.NullTime:
		if !v.Valid {
			return dst
		}
		return appendQuoted(dst, s.date.Format(v.Time))
	}

	return s.appendReflect(dst, cell)
}

func (s *Serializer) appendReflect(dst []byte, cell any) []byte {
	rv := reflect.ValueOf(cell)

	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return dst
		}

		elem := rv.Elem().Interface()
		// String declared on the pointer receiver is lost once dereferenced
		if str, ok := cell.(fmt.Stringer); ok {
			if _, ok := elem.(fmt.Stringer); !ok {
				return appendEscaped(dst, str.String())
			}
		}
		return s.AppendCell(dst, elem)
	}

	if str, ok := cell.(fmt.Stringer); ok {
		return appendEscaped(dst, str.String())
	}

	switch rv.Kind() {
	case reflect.String:
		return appendEscaped(dst, rv.String())
	case reflect.Bool:
		return appendEscaped(dst, s.boolean.Format(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return s.appendInt(dst, rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return s.appendUint(dst, rv.Uint())
	case reflect.Float32, reflect.Float64:
		return s.appendFloat(dst, rv.Float())
	}

	return appendEscaped(dst, fmt.Sprint(cell))
}

func (s *Serializer) appendFloat(dst []byte, v float64) []byte {
	if math.IsNaN(v) {
		return dst
	}
	return appendEscaped(dst, s.number.Format(v))
}

func (s *Serializer) appendInt(dst []byte, v int64) []byte {
	if f, ok := s.number.(IntFormatter); ok {
		return appendEscaped(dst, f.FormatInt(v))
	}
	return appendEscaped(dst, s.number.Format(float64(v)))
}

func (s *Serializer) appendUint(dst []byte, v uint64) []byte {
	if f, ok := s.number.(IntFormatter); ok {
		return appendEscaped(dst, f.FormatUint(v))
	}
	return appendEscaped(dst, s.number.Format(float64(v)))
}

// appendEscaped appends field, quoting it only if it contains a quote, a comma or a newline.
func appendEscaped(dst []byte, field string) []byte {
	if !fieldNeedsQuotes(field) {
		return append(dst, field...)
	}
	return appendQuoted(dst, field)
}

// appendQuoted appends field wrapped in double quotes, with embedded quotes doubled.
func appendQuoted(dst []byte, field string) []byte {
	dst = append(dst, '"')

	start := 0
	for i := 0; i < len(field); i++ {
		if field[i] == '"' {
			dst = append(dst, field[start:i+1]...)
			dst = append(dst, '"')
			start = i + 1
		}
	}
	dst = append(dst, field[start:]...)

	return append(dst, '"')
}

func fieldNeedsQuotes(field string) bool {
	for i := 0; i < len(field); i++ {
		switch field[i] {
		case '"', ',', '\n':
			return true
		}
	}
	return false
}
