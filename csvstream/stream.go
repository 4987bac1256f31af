package csvstream

import (
	"io"
	"iter"
	"sync"

	"go.uber.org/zap"

	"github.com/friendsoftheweb/utils/stream"
)

// BOM is the UTF-8 byte order mark emitted as the first chunk when [Options.BOM] is set.
const BOM = "\uFEFF"

// RowSource creates the sequence of rows a [Stream] consumes.
// It is called at most once per stream, on the first pull that needs a row.
// The sequence yields (row, nil) for every row, or (nil, err) to fail the stream.
type RowSource func() iter.Seq2[Row, error]

// FromRows returns a RowSource over a fixed list of rows.
func FromRows(rows ...Row) RowSource {
	return func() iter.Seq2[Row, error] {
		return func(yield func(Row, error) bool) {
			for _, row := range rows {
				if !yield(row, nil) {
					return
				}
			}
		}
	}
}

// WithHeader returns a RowSource that yields header before the rows of src.
// The header is yielded before src is called, so a failing or slow src never delays it.
func WithHeader(header Row, src RowSource) RowSource {
	return func() iter.Seq2[Row, error] {
		return func(yield func(Row, error) bool) {
			if !yield(header, nil) {
				return
			}
			if src == nil {
				return
			}

			seq := src()
			if seq == nil {
				return
			}
			for row, err := range seq {
				if !yield(row, err) {
					return
				}
			}
		}
	}
}

// FromStream adapts a channel-based stream of rows, such as the output of [stream.OrderedMap],
// to a RowSource. The factory is called lazily, and the channel is drained in the background
// if the CSV stream is closed early.
func FromStream(rows func() stream.Stream[Row]) RowSource {
	return func() iter.Seq2[Row, error] {
		return stream.ToSeq2(rows())
	}
}

type state int

const (
	stateIdle state = iota
	stateActive
	stateClosed
	stateErrored
)

// Stream produces CSV text from a [RowSource], one row per pull.
//
// Each call to [Stream.Next] (and each [Stream.Read] or [Stream.WriteTo] step that needs more data)
// advances the row source exactly once. Nothing is prefetched, and pulls are serialized, so the row source
// never runs concurrently with itself. Rows are emitted in the order the source yields them.
//
// When the source is exhausted the stream is closed and reports io.EOF. When the source yields an error,
// the error is passed to [Options.ReportError], and the same error is returned from that pull. After that
// the stream is terminal and every further pull reports io.EOF, so a consumer sees a valid CSV prefix
// followed by an explicit error, never a silently truncated file.
//
// A Stream is single-use. Create a new one for every consumer.
type Stream struct {
	mu    sync.Mutex
	state state
	err   error

	src         RowSource
	serializer  *Serializer
	reportError func(error)
	logger      *zap.Logger
	bom         bool

	next func() (Row, error, bool)
	stop func()
	buf  []byte

	readMu  sync.Mutex
	pending string
}

// NewStream creates a stream over the rows produced by src.
// The options are resolved immediately and stay fixed for the life of the stream.
func NewStream(src RowSource, opts Options) *Stream {
	logger := opts.logger()

	return &Stream{
		src:         src,
		serializer:  NewSerializer(opts),
		reportError: opts.reportError(logger),
		logger:      logger,
		bom:         opts.BOM,
	}
}

// Next returns the next chunk of CSV text: the BOM, if enabled, and then one serialized row per call.
// It returns io.EOF once the stream is exhausted or closed, and the row source's error if it failed.
func (s *Stream) Next() (string, error) {
	return s.pull()
}

// Err returns the error that terminated the stream, or nil if it has not failed.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the row source, letting its deferred cleanup run, and marks the stream as closed.
// Closing an exhausted, failed or already closed stream is a no-op.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateClosed || s.state == stateErrored {
		return nil
	}
	s.finish(stateClosed)
	return nil
}

// pull advances the stream by one chunk.
// The chunk is copied out of buf before mu is released.
func (s *Stream) pull() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateClosed, stateErrored:
		return "", io.EOF
	case stateIdle:
		s.state = stateActive
		if s.bom {
			return BOM, nil
		}
	}

	if s.next == nil {
		var seq iter.Seq2[Row, error]
		if s.src != nil {
			seq = s.src()
		}
		if seq == nil {
			s.finish(stateClosed)
			return "", io.EOF
		}
		s.next, s.stop = iter.Pull2(seq)
	}

	row, err, ok := s.next()
	if !ok {
		s.finish(stateClosed)
		return "", io.EOF
	}
	if err != nil {
		s.report(err)
		s.err = err
		s.finish(stateErrored)
		return "", err
	}

	s.buf = s.serializer.AppendRow(s.buf[:0], row)
	return string(s.buf), nil
}

// finish moves the stream to a terminal state and releases the row source.
// Must be called with mu held.
func (s *Stream) finish(st state) {
	s.state = st
	if s.stop != nil {
		s.stop()
	}
	s.next, s.stop = nil, nil
}

// report hands err to the error reporter. A panicking reporter is logged and otherwise ignored,
// so that it can never replace the error the consumer is about to receive.
func (s *Stream) report(err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("CSV error reporter panicked", zap.Any("panic", r), zap.Error(err))
		}
	}()

	s.reportError(err)
}

// Read implements io.Reader. Chunks that do not fit into p are kept for the following calls.
// A row source error is returned as is, the end of the stream as io.EOF.
func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	s.readMu.Lock()
	defer s.readMu.Unlock()

	for len(s.pending) == 0 {
		chunk, err := s.pull()
		if err != nil {
			return 0, err
		}
		s.pending = chunk
	}

	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// WriteTo implements io.WriterTo. It writes every remaining chunk to w, one Write per chunk,
// and returns nil when the stream ends normally. If w fails, the stream is closed and the write error returned.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	s.readMu.Lock()
	defer s.readMu.Unlock()

	var total int64

	write := func(chunk string) error {
		n, err := io.WriteString(w, chunk)
		total += int64(n)
		if err != nil {
			_ = s.Close()
		}
		return err
	}

	if len(s.pending) > 0 {
		pending := s.pending
		s.pending = ""
		if err := write(pending); err != nil {
			return total, err
		}
	}

	for {
		chunk, err := s.pull()
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}

		if err := write(chunk); err != nil {
			return total, err
		}
	}
}
