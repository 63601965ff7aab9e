package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and latency. The route label is the
// matched httprouter pattern so path parameters do not explode cardinality.
func (m *Metrics) Middleware(router *httprouter.Router) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			m.observeRequest(routeOf(router, r), r.Method, rec.status, time.Since(start))
		})
	}
}

func routeOf(router *httprouter.Router, r *http.Request) string {
	if router == nil {
		return r.URL.Path
	}
	if handle, params, _ := router.Lookup(r.Method, r.URL.Path); handle != nil {
		route := r.URL.Path
		for _, p := range params {
			route = replaceOnce(route, p.Value, ":"+p.Key)
		}
		return route
	}
	return "unmatched"
}

// replaceOnce swaps the last path segment equal to old.
func replaceOnce(path, old, repl string) string {
	if old == "" {
		return path
	}
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] == old {
			segments[i] = repl
			return strings.Join(segments, "/")
		}
	}
	return path
}
