package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/friendsoftheweb/utils/csvstream"
	"github.com/friendsoftheweb/utils/mockapi"
)

func newTestExporter(t *testing.T, cfg *Config) (*exporter, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)

	e, err := newExporter(cfg, zap.New(core), prometheus.NewRegistry())
	require.NoError(t, err)

	return e, logs
}

func testConfig() *Config {
	return &Config{
		Mode:        modeStdout,
		Listen:      "127.0.0.1:0",
		Concurrency: 4,
		Filename:    "users.csv",
		LogLevel:    "debug",
	}
}

func TestExporterWriteTo(t *testing.T) {
	e, logs := newTestExporter(t, testConfig())

	var out bytes.Buffer
	require.NoError(t, e.writeTo(context.Background(), &out, 5))

	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)

	assert.Equal(t, []string{"ID", "Name", "Email", "Age", "Department", "Active", "Balance", "Created At", "Last Login"}, records[0])
	for i, record := range records[1:] {
		assert.Equal(t, strconv.Itoa(i+1), record[0])
	}

	u, err := mockapi.GetUser(context.Background(), 1)
	require.NoError(t, err)
	want := csvstream.SerializeRow(userRow(u), csvstream.Options{})

	assert.Equal(t, csvRecord(t, want), records[1])

	assert.Equal(t, float64(5), testutil.ToFloat64(e.metrics.rows))
	assert.Equal(t, float64(0), testutil.ToFloat64(e.metrics.streamErrors))
	assert.Equal(t, float64(1), testutil.ToFloat64(e.metrics.exports.WithLabelValues(modeStdout)))
	assert.Equal(t, 0, e.fetches.Semaphore().InFlight())

	finished := logs.FilterMessage("Export finished").All()
	require.Len(t, finished, 1)
	assert.Len(t, finished[0].ContextMap()["export_id"], 27)
}

func csvRecord(t *testing.T, line string) []string {
	t.Helper()

	record, err := csv.NewReader(bytes.NewBufferString(line)).Read()
	require.NoError(t, err)
	return record
}

func TestExporterAllUsers(t *testing.T) {
	e, _ := newTestExporter(t, testConfig())

	var out bytes.Buffer
	require.NoError(t, e.writeTo(context.Background(), &out, 0))

	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 101)
}

func TestExporterCancelled(t *testing.T) {
	e, logs := newTestExporter(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := e.writeTo(ctx, &out, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, "ID,Name,Email,Age,Department,Active,Balance,Created At,Last Login\n", out.String())
	assert.Equal(t, float64(1), testutil.ToFloat64(e.metrics.streamErrors))
	assert.Equal(t, 1, logs.FilterMessage("Export failed").Len())
}

// limitedWriter fails every write after the first n.
type limitedWriter struct {
	n   int
	buf bytes.Buffer
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if w.n == 0 {
		return 0, errors.New("connection reset")
	}
	w.n--
	return w.buf.Write(p)
}

func TestExporterCountsEmittedRows(t *testing.T) {
	e, _ := newTestExporter(t, testConfig())

	// header and two rows get through, the third row fails to write
	w := &limitedWriter{n: 3}
	err := e.writeTo(context.Background(), w, 20)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	// the remaining users are still fetched while the stream is drained in the background
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, float64(3), testutil.ToFloat64(e.metrics.rows))
	assert.Equal(t, 0, e.fetches.Semaphore().InFlight())
}

func TestExporterOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Locale = "de-DE"
	cfg.DateLayout = "2006-01-02"
	cfg.BOM = true

	e, _ := newTestExporter(t, cfg)

	assert.IsType(t, &csvstream.LocaleNumberFormat{}, e.base.NumberFormat)
	assert.Equal(t, csvstream.TimeLayout("2006-01-02"), e.base.DateFormat)
	assert.True(t, e.base.BOM)

	var out bytes.Buffer
	require.NoError(t, e.writeTo(context.Background(), &out, 1))
	assert.Equal(t, byte(0xEF), out.Bytes()[0])
}

func TestExporterInvalidLocale(t *testing.T) {
	cfg := testConfig()
	cfg.Locale = "??"

	_, err := newExporter(cfg, zap.NewNop(), prometheus.NewRegistry())
	assert.Error(t, err)
}
