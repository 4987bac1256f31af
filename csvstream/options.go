package csvstream

import (
	"sync"

	"go.uber.org/zap"
)

// Options configures cell formatting and error reporting.
// The zero value is ready to use: every nil field falls back to its default.
// Options are resolved once when a [Serializer] or [Stream] is created and are not consulted afterwards.
type Options struct {
	// NumberFormat formats numeric cells.
	// Defaults to DecimalFormat{MaxFractionDigits: 3}: no grouping, at most 3 fraction digits.
	NumberFormat NumberFormatter

	// BooleanFormat formats boolean cells. Defaults to the literals "true" and "false".
	BooleanFormat BooleanFormatter

	// DateFormat formats temporal cells. Defaults to TimeLayout("January 2, 2006").
	// The result is always quoted.
	DateFormat DateFormatter

	// ReportError is called once with the error that terminated a stream.
	// It is meant for observability and cannot recover the stream.
	// Defaults to logging the error through Logger.
	ReportError func(error)

	// Logger receives the default error reports and reports about a panicking ReportError.
	// Defaults to a production zap logger writing to stderr.
	Logger *zap.Logger

	// BOM makes a stream emit the UTF-8 byte order mark as its first chunk.
	// Spreadsheet applications use it to detect the encoding.
	BOM bool
}

// defaultLogger is built on first use and shared by all streams that do not bring their own logger.
var defaultLogger = sync.OnceValue(func() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger.Named("csvstream")
})

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return defaultLogger()
}

func (o Options) reportError(logger *zap.Logger) func(error) {
	if o.ReportError != nil {
		return o.ReportError
	}

	return func(err error) {
		logger.Error("CSV row source failed", zap.Error(err))
	}
}
