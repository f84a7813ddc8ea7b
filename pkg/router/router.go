package router

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// --- ANSI color codes ---
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

type HandlerFunc func(http.ResponseWriter, *http.Request)

type route struct {
	method   string
	segments []string
	handler  HandlerFunc
}

// Router matches requests against patterns registered in order. A "*"
// segment matches exactly one path segment, so more specific routes must
// be registered before generic ones. Mount attaches whole sub-handlers
// under a path prefix (used for the swagger UI).
type Router struct {
	routes []route
	mounts []mount
}

type mount struct {
	prefix  string
	handler http.Handler
}

func New() *Router {
	return &Router{}
}

func (r *Router) register(method, path string, handler HandlerFunc) {
	r.routes = append(r.routes, route{
		method:   method,
		segments: splitPath(path),
		handler:  handler,
	})
}

func (r *Router) GET(path string, handler HandlerFunc)    { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler HandlerFunc)   { r.register(http.MethodPost, path, handler) }
func (r *Router) PATCH(path string, handler HandlerFunc)  { r.register(http.MethodPatch, path, handler) }
func (r *Router) DELETE(path string, handler HandlerFunc) { r.register(http.MethodDelete, path, handler) }

// Mount serves every request under prefix with the given handler.
func (r *Router) Mount(prefix string, handler http.Handler) {
	r.mounts = append(r.mounts, mount{prefix: prefix, handler: handler})
}

func splitPath(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}

// matchSegments reports whether a request path matches a route pattern.
// A trailing "*" swallows the rest of the path; an inner "*" matches one
// segment.
func matchSegments(pattern, request []string) bool {
	if len(pattern) > 0 && pattern[len(pattern)-1] == "*" {
		if len(request) < len(pattern)-1 {
			return false
		}
		for i := 0; i < len(pattern)-1; i++ {
			if pattern[i] != "*" && pattern[i] != request[i] {
				return false
			}
		}
		return true
	}
	if len(pattern) != len(request) {
		return false
	}
	for i, seg := range pattern {
		if seg != "*" && seg != request[i] {
			return false
		}
	}
	return true
}

// ServeHTTP dispatches the request and writes one colored access-log line.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	r.dispatch(lrw, req)

	duration := time.Since(start)
	log.Printf("%s[%s]%s %s%s%s %s %s%d%s %s(%v)%s",
		colorCyan, start.Format("2006-01-02 15:04:05"), colorReset,
		methodColor(req.Method), req.Method, colorReset,
		req.URL.Path,
		statusColor(lrw.statusCode), lrw.statusCode, colorReset,
		colorBlue, duration, colorReset,
	)
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	segments := splitPath(req.URL.Path)

	pathMatched := false
	for _, rt := range r.routes {
		if !matchSegments(rt.segments, segments) {
			continue
		}
		pathMatched = true
		if rt.method == req.Method {
			rt.handler(w, req)
			return
		}
	}

	for _, m := range r.mounts {
		if strings.HasPrefix(req.URL.Path, m.prefix) {
			m.handler.ServeHTTP(w, req)
			return
		}
	}

	if pathMatched {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	http.Error(w, "Not Found", http.StatusNotFound)
}

// --- Start server ---
func (r *Router) Start(addr string) {
	log.Printf("🚀 Server started on %shttp://localhost%s%s", colorGreen, addr, colorReset)
	log.Fatal(http.ListenAndServe(addr, r))
}

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// --- Color helpers ---
func statusColor(code int) string {
	switch {
	case code >= 200 && code < 300:
		return colorGreen
	case code >= 300 && code < 400:
		return colorCyan
	case code >= 400 && code < 500:
		return colorYellow
	default:
		return colorRed
	}
}

func methodColor(method string) string {
	switch method {
	case http.MethodGet:
		return colorGreen
	case http.MethodPost:
		return colorBlue
	case http.MethodPatch:
		return colorYellow
	case http.MethodDelete:
		return colorRed
	default:
		return colorCyan
	}
}
