package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"evalue-storefront/pkg/logger"
	"evalue-storefront/pkg/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id, stores a request-scoped logger
// in the context and logs one line when the handler returns.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()[:8]
		}
		w.Header().Set(requestIDHeader, id)
		l := logger.WithRequestID(id)
		r = r.WithContext(logger.NewContext(r.Context(), &l))

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		levelFor(&l, sw.status).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("query", r.URL.RawQuery).
			Int("status", sw.status).
			Dur("duration_ms", time.Since(start)).
			Str("ip", getClientIP(r)).
			Str("user_agent", r.UserAgent()).
			Str("user_id", tokenUserID(r)).
			Msg("HTTP")
	})
}

func levelFor(l *zerolog.Logger, status int) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return l.Error()
	case status >= http.StatusBadRequest:
		return l.Warn()
	default:
		return l.Info()
	}
}

// tokenUserID reads the bearer claims for the log line only. Revocation is
// not checked here.
func tokenUserID(r *http.Request) string {
	claims, err := utils.ExtractClaims(r)
	if err != nil || claims == nil {
		return ""
	}
	return claims.UserID
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// getClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the socket peer.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
