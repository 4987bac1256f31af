// Package csvhttp serves CSV streams as HTTP downloads through gin.
//
// Rows are pulled from the stream only as fast as the client reads them, and every row is flushed as soon
// as it has been serialized, so large exports never have to be held in memory.
package csvhttp

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/friendsoftheweb/utils/csvstream"
)

// ContentType is the media type of the responses written by this package.
const ContentType = "text/csv; charset=utf-8"

// DefaultFilename is used when [Config.Filename] is empty.
const DefaultFilename = "export.csv"

// Config describes a CSV download.
type Config struct {
	// Filename suggested to the client. Defaults to DefaultFilename.
	Filename string

	// Inline asks the client to display the file instead of saving it.
	Inline bool

	// Options control cell formatting and error reporting of the stream.
	Options csvstream.Options
}

func (cfg Config) filename() string {
	if cfg.Filename == "" {
		return DefaultFilename
	}
	return cfg.Filename
}

// Handler returns a gin handler that streams the rows produced by rows(c) as a CSV download.
// See [Write] for the details of the response.
func Handler(cfg Config, rows func(c *gin.Context) csvstream.RowSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = Write(c, cfg, rows(c))
	}
}

// Write streams the rows of src to the client with status 200.
//
// The headers are sent before the first row is pulled, so the response is committed as soon as
// Write is called. Each chunk is flushed right after it is written. If the row source fails,
// the error is attached to the context with c.Error and the response ends after the last complete row.
// If the client goes away, the stream is closed without pulling any more rows.
//
// Write returns the error that ended the response early, or nil.
// A disconnected client is reported as the request context's error.
func Write(c *gin.Context, cfg Config, src csvstream.RowSource) error {
	s := csvstream.NewStream(src, cfg.Options)
	defer s.Close()

	c.Header("Content-Type", ContentType)
	c.Header("Content-Disposition", ContentDisposition(cfg.filename(), cfg.Inline))
	c.Header("Cache-Control", "no-store")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()

	ctx := c.Request.Context()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk, err := s.Next()
		if err == io.EOF {
			c.Writer.Flush()
			return nil
		}
		if err != nil {
			_ = c.Error(err)
			return err
		}

		if _, err := io.WriteString(c.Writer, chunk); err != nil {
			_ = c.Error(err)
			return err
		}
		c.Writer.Flush()
	}
}
