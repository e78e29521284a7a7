package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/xy-planning-network/gate"
)

// A LogRequestRecord is the shape of one access log line.
type LogRequestRecord struct {
	BodySize       int    `json:"bodySize"`
	Duration       int64  `json:"durationMs"`
	Host           string `json:"host"`
	ID             string `json:"id"`
	IPAddr         string `json:"ipAddr"`
	Kind           string `json:"kind"`
	Method         string `json:"method"`
	Path           string `json:"path"`
	Protocol       string `json:"protocol"`
	Referrer       string `json:"referrer"`
	ReqContentType string `json:"reqContentType"`
	Scheme         string `json:"scheme"`
	Status         int    `json:"status"`
	URI            string `json:"uri"`
	UserAgent      string `json:"userAgent"`
}

func (rec LogRequestRecord) attrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("bodySize", rec.BodySize),
		slog.Int64("durationMs", rec.Duration),
		slog.String("host", rec.Host),
		slog.String("id", rec.ID),
		slog.String("ipAddr", rec.IPAddr),
		slog.String(gate.LogKindKey, rec.Kind),
		slog.String("method", rec.Method),
		slog.String("path", rec.Path),
		slog.String("protocol", rec.Protocol),
		slog.String("referrer", rec.Referrer),
		slog.String("reqContentType", rec.ReqContentType),
		slog.String("scheme", rec.Scheme),
		slog.Int("status", rec.Status),
		slog.String("uri", rec.URI),
		slog.String("userAgent", rec.UserAgent),
	}
}

// LogRequest logs one LogRequestRecord for every request once it has been served.
//
// LogRequest masks the values for credential-bearing query params, like the token handed back by the login service.
//
// If l is nil, NoopAdapter returns and this middleware does nothing.
func LogRequest(l *slog.Logger) Adapter {
	if l == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusRecorder{ResponseWriter: w}
			h.ServeHTTP(rw, r)

			if rw.status == 0 {
				rw.status = http.StatusOK
			}

			uri := r.URL.Path
			if r.URL.RawQuery != "" {
				q := r.URL.Query()
				gate.Mask(q, gate.TokenParam)
				gate.Mask(q, "password")
				uri += "?" + q.Encode()
			}

			rec := LogRequestRecord{
				BodySize:       rw.size,
				Duration:       time.Since(start).Milliseconds(),
				Host:           r.Host,
				Kind:           gate.HTTPLogKind.String(),
				Method:         r.Method,
				Path:           r.URL.Path,
				Protocol:       r.Proto,
				Referrer:       r.Referer(),
				ReqContentType: r.Header.Get("Content-Type"),
				Scheme:         r.URL.Scheme,
				Status:         rw.status,
				URI:            uri,
				UserAgent:      r.UserAgent(),
			}

			rec.ID, _ = r.Context().Value(gate.RequestIDKey).(string)
			rec.IPAddr, _ = r.Context().Value(gate.IpAddrKey).(string)

			l.LogAttrs(r.Context(), slog.LevelInfo, http.StatusText(rec.Status), rec.attrs()...)
		})
	}
}

// statusRecorder captures the status code and body size written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}

	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}

	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter { return rw.ResponseWriter }
