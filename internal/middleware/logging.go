// internal/middleware/logging.go

package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// statusRecorder captures the response code for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LogMiddleware is an HTTP middleware that logs requests using Logrus:
// method, path, response status and duration.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Info("HTTP Request")
		})
	}
}

// LogWatcherConnect logs a new snapshot-stream subscriber.
func LogWatcherConnect(logger *logrus.Logger, remoteAddr string) {
	logger.WithField("remote", remoteAddr).Info("Watcher connected")
}

// LogWatcherDisconnect logs a snapshot-stream subscriber leaving.
func LogWatcherDisconnect(logger *logrus.Logger, remoteAddr string, err error) {
	fields := logrus.Fields{"remote": remoteAddr}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("Watcher disconnected")
}
