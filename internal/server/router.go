// internal/server/router.go
package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"inkwell/internal/logfields"
	"inkwell/internal/metrics"
)

// Routes reserved by the preview server. Everything else is a file.
const (
	LiveReloadPath = "/__livereload"
	MetricsPath    = "/__metrics"
)

// newRouter serves root over HTTP. hub may be nil to disable live reload,
// rec may be nil to disable the metrics endpoint.
func newRouter(root string, hub *Hub, rec *metrics.Recorder, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	if hub != nil {
		r.Get(LiveReloadPath, hub.ServeHTTP)
	}
	if rec != nil {
		r.Handle(MetricsPath, rec.Handler())
	}

	var files http.Handler = http.FileServer(http.Dir(root))
	if hub != nil {
		files = liveReloadWrapper(files)
	}
	r.With(middleware.NoCache).Handle("/*", files)
	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("HTTP request",
				slog.String("method", r.Method),
				logfields.Path(r.URL.Path),
				slog.Int("status", ww.Status()),
				logfields.Duration(time.Since(start)))
		})
	}
}

// liveReloadWrapper injects the reload script into HTML responses, right
// before </body>. Other responses pass through untouched.
func liveReloadWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isHTMLPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		iw := newInterceptingWriter()
		next.ServeHTTP(iw, r)

		for key, values := range iw.header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		body := iw.body.Bytes()
		if iw.statusCode == http.StatusOK && strings.HasPrefix(iw.header.Get("Content-Type"), "text/html") {
			body = bytes.Replace(body, []byte("</body>"), []byte(liveReloadScript+"</body>"), 1)
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		}
		w.WriteHeader(iw.statusCode)
		if r.Method != http.MethodHead {
			_, _ = w.Write(body)
		}
	})
}

func isHTMLPath(p string) bool {
	return strings.HasSuffix(p, ".html") || strings.HasSuffix(p, ".htm") || strings.HasSuffix(p, "/")
}

// interceptingWriter buffers a response so it can be rewritten.
type interceptingWriter struct {
	body       bytes.Buffer
	statusCode int
	header     http.Header
}

func newInterceptingWriter() *interceptingWriter {
	return &interceptingWriter{header: make(http.Header), statusCode: http.StatusOK}
}

func (iw *interceptingWriter) Header() http.Header         { return iw.header }
func (iw *interceptingWriter) Write(b []byte) (int, error) { return iw.body.Write(b) }
func (iw *interceptingWriter) WriteHeader(statusCode int)  { iw.statusCode = statusCode }

const liveReloadScript = `<script>
(function () {
  var scheme = location.protocol === "https:" ? "wss://" : "ws://";
  var socket = new WebSocket(scheme + location.host + "` + LiveReloadPath + `");
  socket.onmessage = function (event) {
    if (event.data === "reload") {
      location.reload();
    }
  };
  socket.onerror = function () {
    console.error("Live reload disconnected; restart 'inkwell serve' to reconnect.");
  };
})();
</script>
`
