// Copyright (c) Microsoft. All rights reserved.

package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// LoggingMiddleware logs one line per request and turns handler panics into
// a 500 response.
func LoggingMiddleware(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			defer func() {
				fields := logrus.Fields{
					"method":   r.Method,
					"path":     r.URL.Path,
					"remote":   r.RemoteAddr,
					"duration": time.Since(start).String(),
				}
				if p := recover(); p != nil {
					log.WithFields(fields).WithField("panic", p).Error("handler panicked")
					if !wrapped.wroteHeader {
						writeText(wrapped, http.StatusInternalServerError, msgUnexpected)
					}
				}
				fields["status"] = wrapped.statusCode
				log.WithFields(fields).Info("request")
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
