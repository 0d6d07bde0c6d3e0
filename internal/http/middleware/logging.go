// README: Request id and access log middleware.
package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"atlas/internal/logging"
)

const (
	HeaderRequestID   = "X-Request-ID"
	HeaderProcessTime = "X-Process-Time-ms"
)

// timedWriter stamps the elapsed time header just before the first byte
// of the response goes out.
type timedWriter struct {
	gin.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *timedWriter) stamp() {
	if w.stamped {
		return
	}
	w.stamped = true
	w.Header().Set(HeaderProcessTime, fmt.Sprintf("%.1f", float64(time.Since(w.start).Microseconds())/1000))
}

func (w *timedWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timedWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *timedWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}

// RequestID tags each request with a short id, propagates it through the
// request context and logs entry and exit.
func RequestID(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := uuid.NewString()[:8]

		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Header(HeaderRequestID, id)
		tw := &timedWriter{ResponseWriter: c.Writer, start: start}
		c.Writer = tw

		log := logger.With("req_id", id)
		log.Info("request started", "method", c.Request.Method, "path", c.Request.URL.Path)

		c.Next()

		if !tw.Written() {
			tw.stamp()
		}
		log.Info("request finished",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed_ms", float64(time.Since(start).Microseconds())/1000,
		)
	}
}
