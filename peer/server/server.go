package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ValentinKolb/tprobe/lib/probe"
	"github.com/ValentinKolb/tprobe/lib/stats"
	"github.com/ValentinKolb/tprobe/peer/common"
	"github.com/ValentinKolb/tprobe/peer/transport"
	"github.com/ValentinKolb/tprobe/peer/transport/base"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/atomic"
)

var Logger = logger.GetLogger("server")

// ProbeServer accepts probe sessions and serves them one after another
type ProbeServer struct {
	config    common.ServerConfig
	connector transport.IServerConnector
	recorder  *stats.Recorder

	counter *probe.ByteCounter
	sampler *probe.Sampler
	summary *stats.RateSummary
	// direction of the running session, used to label rate samples
	direction *atomic.String

	peers *xsync.MapOf[string, PeerStats]

	mu           sync.Mutex
	listener     net.Listener
	onSessionEnd func(probe.Result)
}

// NewProbeServer creates a new probe server. The configuration is validated
// before anything is created. recorder may be nil.
func NewProbeServer(
	config common.ServerConfig,
	connector transport.IServerConnector,
	recorder *stats.Recorder,
) (*ProbeServer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if recorder == nil {
		recorder = stats.NewRecorder()
	}

	s := &ProbeServer{
		config:    config,
		connector: connector,
		recorder:  recorder,
		counter:   probe.NewByteCounter(),
		direction: atomic.NewString(probe.DirectionNone.String()),
		peers:     xsync.NewMapOf[string, PeerStats](),
	}
	s.sampler = probe.NewSampler(s.counter, probe.DefaultSampleInterval, s.report)

	Logger.Infof("Created probe server")
	Logger.Infof(config.String())

	return s, nil
}

// --------------------------------------------------------------------------
// Public Methods
// --------------------------------------------------------------------------

// OnSessionEnd registers a function that is called with the result of every
// finished session. It must be set before Serve is called.
func (s *ProbeServer) OnSessionEnd(fn func(probe.Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSessionEnd = fn
}

// Recorder returns the metrics recorder of the server
func (s *ProbeServer) Recorder() *stats.Recorder {
	return s.recorder
}

// Peers returns a copy of the cumulative statistics per remote host
func (s *ProbeServer) Peers() map[string]PeerStats {
	peers := make(map[string]PeerStats, s.peers.Size())
	s.peers.Range(func(host string, p PeerStats) bool {
		peers[host] = p
		return true
	})
	return peers
}

// Listen creates the listener of the configured transport
func (s *ProbeServer) Listen() error {
	listener, err := s.connector.Listen(s.config.Transport)
	if err != nil {
		return &probe.IoError{Op: "listen", Addr: s.config.Transport.Endpoint, Err: err}
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	Logger.Infof("Listening on %s (%s)", listener.Addr(), s.connector.GetName())
	return nil
}

// Addr returns the address of the listener or nil if Listen was not called
func (s *ProbeServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled. Connections are handled
// serially, a session has to end before the next client is accepted.
// Serve returns nil when it was stopped through ctx.
func (s *ProbeServer) Serve(ctx context.Context) error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return fmt.Errorf("server is not listening")
	}

	stop := context.AfterFunc(ctx, func() {
		_ = listener.Close()
	})
	defer stop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				Logger.Infof("Stopped listening on %s", listener.Addr())
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				Logger.Warningf("accept failed: %v", err)
				continue
			}
			return &probe.IoError{Op: "accept", Addr: listener.Addr().String(), Err: err}
		}

		s.handleConnection(ctx, conn)
	}
}

// ListenAndServe starts the metrics endpoint (if configured), listens and
// serves until ctx is cancelled. The metrics endpoint is shut down before
// ListenAndServe returns.
func (s *ProbeServer) ListenAndServe(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.config.MetricsEndpoint != "" {
		metricsDone := make(chan struct{})
		go func() {
			defer close(metricsDone)
			if err := s.recorder.ListenAndServe(ctx, s.config.MetricsEndpoint); err != nil {
				Logger.Errorf("metrics endpoint failed: %v", err)
			}
		}()
		defer func() {
			cancel()
			<-metricsDone
		}()
	}

	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// --------------------------------------------------------------------------
// Session Handling
// --------------------------------------------------------------------------

// handleConnection runs one session on conn and records its outcome
func (s *ProbeServer) handleConnection(ctx context.Context, conn net.Conn) {
	peer := conn.RemoteAddr().String()
	Logger.Infof("Connection from: %s", peer)

	// nothing is carried over from the previous session
	s.summary = nil
	s.counter.Reset()

	// cancelling the server also ends the running session
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})

	result := probe.Result{Peer: peer, Start: time.Now()}
	result.Err = s.runSession(conn, &result)

	stop()
	_ = conn.Close()

	result.Duration = time.Since(result.Start)
	result.Bytes = s.counter.Load()

	// a session that was cut short by shutting down is not a failure
	if ctx.Err() != nil && result.Err != nil && !errors.Is(result.Err, probe.ErrValidation) {
		result.Err = nil
	}

	s.finishSession(result)
}

// runSession upgrades the connection and runs the responder side of the
// protocol while the sampler is running
func (s *ProbeServer) runSession(conn net.Conn, result *probe.Result) error {
	if err := s.connector.UpgradeConnection(conn, s.config.Transport); err != nil {
		return &probe.IoError{Op: "upgrade", Addr: result.Peer, Err: err}
	}

	s.direction.Store(probe.DirectionNone.String())
	s.summary = stats.NewRateSummary()

	if err := s.sampler.Start(); err != nil {
		return err
	}
	defer s.sampler.Stop()

	conf := s.config.Probe.Session()
	conf.OnCommand = func(cmd probe.Command) {
		s.direction.Store(probe.ResponderDirection(cmd).String())
	}

	cmd, err := probe.Respond(base.WithIOTimeout(conn, s.config.Probe.Timeout), conf, s.counter)
	result.Command = cmd
	result.Direction = probe.ResponderDirection(cmd)
	return err
}

// report is the sampler callback of the server
func (s *ProbeServer) report(sample probe.Sample) {
	Logger.Infof("tic: %d rate: %s/s", sample.Total, sample.RateString())

	direction := s.direction.Load()
	if direction == probe.DirectionNone.String() {
		return
	}
	s.recorder.ObserveSample(direction, sample.Delta, sample.Rate())
	s.summary.Update(sample.Rate())
}

// finishSession logs, records and publishes the result of a session
func (s *ProbeServer) finishSession(result probe.Result) {
	outcome := stats.OutcomeOf(result.Err)
	failed := stats.IsFailure(outcome)

	switch {
	case !failed:
		Logger.Infof("client %s done - going back to listening", result.Peer)
	case outcome == stats.OutcomeValidation:
		Logger.Errorf("client %s sent corrupted data: %v", result.Peer, result.Err)
	default:
		Logger.Warningf("client %s failed: %v", result.Peer, result.Err)
	}
	Logger.Infof("session summary: %s", result)
	if s.summary != nil {
		Logger.Infof("rate summary: %s", s.summary.Snapshot().Format(probe.FormatRate))
	}

	s.recorder.ObserveSession(outcome, result.Bytes)

	s.peers.Compute(peerHost(result.Peer), func(old PeerStats, _ bool) (PeerStats, bool) {
		return old.add(result, failed), false
	})

	s.mu.Lock()
	hook := s.onSessionEnd
	s.mu.Unlock()
	if hook != nil {
		hook(result)
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// peerHost strips the port of a remote address, unix peers have none
func peerHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return addr
	}
	return host
}
