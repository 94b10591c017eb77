package stats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ValentinKolb/tprobe/lib/probe"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("stats")

// shutdownTimeout bounds the graceful shutdown of the metrics endpoint
const shutdownTimeout = 5 * time.Second

// Outcome labels of a finished session
const (
	OutcomeOK         = "ok"
	OutcomeDisconnect = "disconnect"
	OutcomeProtocol   = "protocol"
	OutcomeIO         = "io"
	OutcomeValidation = "validation"
	OutcomeConfig     = "config"
)

// OutcomeOf maps the error of a session to its outcome label. A peer closing
// the connection is the normal end of a session.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, probe.ErrValidation):
		return OutcomeValidation
	case errors.Is(err, probe.ErrProtocol):
		return OutcomeProtocol
	case errors.Is(err, probe.ErrConfig):
		return OutcomeConfig
	case probe.IsDisconnect(err):
		return OutcomeDisconnect
	default:
		return OutcomeIO
	}
}

// IsFailure reports whether an outcome counts as a failed session
func IsFailure(outcome string) bool {
	return outcome != OutcomeOK && outcome != OutcomeDisconnect
}

// Recorder holds the metrics of one server or client instance
type Recorder struct {
	set *metrics.Set
}

// NewRecorder creates a recorder with its own metric set
func NewRecorder() *Recorder {
	return &Recorder{set: metrics.NewSet()}
}

// ObserveSample records one rate sample of the given direction ("send" / "receive")
func (r *Recorder) ObserveSample(direction string, delta uint64, bytesPerSecond float64) {
	r.set.GetOrCreateCounter(fmt.Sprintf(`tprobe_bytes_total{direction=%q}`, direction)).Add(int(delta))
	r.set.GetOrCreateHistogram(fmt.Sprintf(`tprobe_rate_bytes_per_second{direction=%q}`, direction)).Update(bytesPerSecond)
}

// ObserveSession records the outcome of a finished session
func (r *Recorder) ObserveSession(outcome string, bytes uint64) {
	r.set.GetOrCreateCounter(fmt.Sprintf(`tprobe_sessions_total{outcome=%q}`, outcome)).Inc()
	r.set.GetOrCreateCounter(`tprobe_session_bytes_total`).Add(int(bytes))
}

// SessionCount returns the number of sessions recorded with the given outcome
func (r *Recorder) SessionCount(outcome string) uint64 {
	return r.set.GetOrCreateCounter(fmt.Sprintf(`tprobe_sessions_total{outcome=%q}`, outcome)).Get()
}

// WritePrometheus writes all metrics of the recorder plus process metrics to w
func (r *Recorder) WritePrometheus(w io.Writer, processMetrics bool) {
	r.set.WritePrometheus(w)
	if processMetrics {
		metrics.WriteProcessMetrics(w)
	}
}

// Handler returns an http.Handler exposing the recorder in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		r.WritePrometheus(w, true)
	})
	return mux
}

// ListenAndServe serves Handler on endpoint until ctx is cancelled
func (r *Recorder) ListenAndServe(ctx context.Context, endpoint string) error {
	listener, err := net.Listen("tcp", endpoint)
	if err != nil {
		return err
	}
	return r.Serve(ctx, listener)
}

// Serve serves Handler on listener until ctx is cancelled. A shutdown through
// ctx returns nil.
func (r *Recorder) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{Handler: r.Handler(), ReadHeaderTimeout: shutdownTimeout}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			Logger.Warningf("metrics endpoint shutdown: %v", err)
		}
	})
	defer stop()

	Logger.Infof("Starting metrics endpoint on %s/metrics", listener.Addr())
	if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	Logger.Infof("Stopped metrics endpoint on %s", listener.Addr())
	return nil
}
