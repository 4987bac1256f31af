package main

import (
	"context"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/friendsoftheweb/utils/csvstream"
	"github.com/friendsoftheweb/utils/limit"
	"github.com/friendsoftheweb/utils/mockapi"
	"github.com/friendsoftheweb/utils/stream"
)

var userHeader = csvstream.Row{
	"ID", "Name", "Email", "Age", "Department", "Active", "Balance", "Created At", "Last Login",
}

func userRow(u *mockapi.User) csvstream.Row {
	return csvstream.Row{
		u.ID, u.Name, u.Email, u.Age, u.Department, u.IsActive, u.Balance, u.CreatedAt, u.LastLogin,
	}
}

// exporter turns the user API into CSV exports.
// User fetches of all exports share one limiter, so concurrent exports cannot overload the API.
type exporter struct {
	logger      *zap.Logger
	metrics     *metrics
	fetches     *limit.Limiter
	concurrency int
	base        csvstream.Options
}

func newExporter(cfg *Config, logger *zap.Logger, reg prometheus.Registerer) (*exporter, error) {
	opts := csvstream.Options{BOM: cfg.BOM}

	if cfg.DateLayout != "" {
		opts.DateFormat = csvstream.TimeLayout(cfg.DateLayout)
	}

	tag, ok, err := cfg.localeTag()
	if err != nil {
		return nil, err
	}
	if ok {
		opts.NumberFormat = csvstream.NewLocaleNumberFormat(tag, 2)
	}

	fetches := limit.New(cfg.Concurrency)

	return &exporter{
		logger:      logger,
		metrics:     newMetrics(reg, fetches.Semaphore()),
		fetches:     fetches,
		concurrency: cfg.Concurrency,
		base:        opts,
	}, nil
}

// export is a single run of the exporter.
type export struct {
	id     string
	logger *zap.Logger
	src    csvstream.RowSource
	opts   csvstream.Options
}

// newExport prepares an export of at most maxUsers users (all users if maxUsers is 0).
// Nothing is fetched until the returned row source is pulled.
func (e *exporter) newExport(ctx context.Context, mode string, maxUsers int) *export {
	id := ksuid.New().String()
	logger := e.logger.With(zap.String("export_id", id), zap.String("mode", mode))

	e.metrics.exports.WithLabelValues(mode).Inc()

	opts := e.base
	opts.Logger = logger
	opts.ReportError = func(err error) {
		e.metrics.streamErrors.Inc()
		logger.Error("Export failed", zap.Error(err))
	}

	return &export{
		id:     id,
		logger: logger,
		src:    csvstream.WithHeader(userHeader, e.countRows(e.userRows(ctx, maxUsers))),
		opts:   opts,
	}
}

func (e *exporter) userRows(ctx context.Context, maxUsers int) csvstream.RowSource {
	return csvstream.FromStream(func() stream.Stream[csvstream.Row] {
		ids, err := mockapi.ListUserIDs(ctx)
		if err != nil {
			return stream.FromSlice[csvstream.Row](nil, fmt.Errorf("list users: %w", err))
		}
		if maxUsers > 0 && maxUsers < len(ids) {
			ids = ids[:maxUsers]
		}

		return stream.OrderedMap(stream.FromSlice(ids, nil), e.concurrency, func(id int) (csvstream.Row, error) {
			u, err := e.fetchUser(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("fetch user %d: %w", id, err)
			}

			return userRow(u), nil
		})
	})
}

// countRows counts the rows src hands to the CSV stream.
// Users fetched in the background after the stream was closed are not counted.
func (e *exporter) countRows(src csvstream.RowSource) csvstream.RowSource {
	return func() iter.Seq2[csvstream.Row, error] {
		return func(yield func(csvstream.Row, error) bool) {
			for row, err := range src() {
				if err == nil {
					e.metrics.rows.Inc()
				}
				if !yield(row, err) {
					return
				}
			}
		}
	}
}

func (e *exporter) fetchUser(ctx context.Context, id int) (*mockapi.User, error) {
	var u *mockapi.User
	err := e.fetches.Do(func() error {
		var err error
		u, err = mockapi.GetUser(ctx, id)
		return err
	})
	return u, err
}

// writeTo runs a complete export into w.
func (e *exporter) writeTo(ctx context.Context, w io.Writer, maxUsers int) error {
	x := e.newExport(ctx, modeStdout, maxUsers)
	start := time.Now()

	s := csvstream.NewStream(x.src, x.opts)
	defer s.Close()

	n, err := s.WriteTo(w)
	if err != nil {
		return fmt.Errorf("export %s: %w", x.id, err)
	}

	x.logger.Info("Export finished", zap.Int64("bytes", n), zap.Duration("duration", time.Since(start)))
	return nil
}
