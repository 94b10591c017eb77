package client

import (
	"context"
	"errors"
	"time"

	"github.com/ValentinKolb/tprobe/lib/probe"
	"github.com/ValentinKolb/tprobe/lib/stats"
	"github.com/ValentinKolb/tprobe/peer/common"
	"github.com/ValentinKolb/tprobe/peer/transport"
	"github.com/ValentinKolb/tprobe/peer/transport/base"
	"github.com/lni/dragonboat/v4/logger"
	"go.uber.org/atomic"
)

var Logger = logger.GetLogger("client")

// ProbeClient runs probe sessions against a server
type ProbeClient struct {
	config    common.ClientConfig
	connector transport.IClientConnector
	recorder  *stats.Recorder
	counter   *probe.ByteCounter
	summary   *stats.RateSummary
}

// NewProbeClient creates a new probe client. The configuration is validated
// before anything is created. recorder may be nil.
func NewProbeClient(
	config common.ClientConfig,
	connector transport.IClientConnector,
	recorder *stats.Recorder,
) (*ProbeClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if recorder == nil {
		recorder = stats.NewRecorder()
	}

	Logger.Debugf(config.String())

	return &ProbeClient{
		config:    config,
		connector: connector,
		recorder:  recorder,
		counter:   probe.NewByteCounter(),
	}, nil
}

// Recorder returns the metrics recorder of the client
func (c *ProbeClient) Recorder() *stats.Recorder {
	return c.recorder
}

// Run connects to the server and runs one session. The returned error is
// the error of the result, nil if the session ended as expected.
func (c *ProbeClient) Run(ctx context.Context) (probe.Result, error) {
	endpoint := c.config.Transport.Endpoint
	cmd := c.config.Command()
	direction := probe.InitiatorDirection(cmd)

	result := probe.Result{Peer: endpoint, Command: cmd, Direction: direction, Start: time.Now()}
	c.counter.Reset()
	c.summary = nil

	conn, err := c.connector.Connect(endpoint, c.config.Probe.Timeout)
	if err != nil {
		result.Err = &probe.IoError{Op: "connect", Addr: endpoint, Err: err}
		return c.finish(result), result.Err
	}
	defer conn.Close()

	Logger.Infof("Connected to %s (%s)", conn.RemoteAddr(), c.connector.GetName())

	if err := c.connector.UpgradeConnection(conn, c.config.Transport); err != nil {
		result.Err = &probe.IoError{Op: "upgrade", Addr: endpoint, Err: err}
		return c.finish(result), result.Err
	}

	// the run ends by closing the connection, the flag tells a deliberate
	// close apart from a failing peer
	expired := atomic.NewBool(false)
	closeConn := func() {
		expired.Store(true)
		_ = conn.Close()
	}

	if c.config.Duration > 0 {
		timer := time.AfterFunc(c.config.Duration, closeConn)
		defer timer.Stop()
	}
	stop := context.AfterFunc(ctx, closeConn)
	defer stop()

	c.summary = stats.NewRateSummary()
	sampler := probe.NewSampler(c.counter, probe.DefaultSampleInterval, func(sample probe.Sample) {
		Logger.Infof("tic: %d rate: %s/s", sample.Total, sample.RateString())
		c.recorder.ObserveSample(direction.String(), sample.Delta, sample.Rate())
		c.summary.Update(sample.Rate())
	})
	if err := sampler.Start(); err != nil {
		result.Err = err
		return c.finish(result), result.Err
	}

	err = probe.Initiate(base.WithIOTimeout(conn, c.config.Probe.Timeout), c.config.Probe.Session(), cmd, c.counter)
	sampler.Stop()

	// corrupted data is reported even if it arrived while stopping
	if err != nil && expired.Load() && !errors.Is(err, probe.ErrValidation) {
		err = nil
	}
	result.Err = err
	return c.finish(result), result.Err
}

// finish completes, logs and records the result of a run
func (c *ProbeClient) finish(result probe.Result) probe.Result {
	result.Duration = time.Since(result.Start)
	result.Bytes = c.counter.Load()

	outcome := stats.OutcomeOf(result.Err)
	switch {
	case !stats.IsFailure(outcome):
		Logger.Infof("done - %s", result)
	case outcome == stats.OutcomeValidation:
		Logger.Errorf("server sent corrupted data: %v", result.Err)
	default:
		Logger.Errorf("session failed: %v", result.Err)
	}

	if c.summary != nil {
		Logger.Infof("rate summary: %s", c.summary.Snapshot().Format(probe.FormatRate))
		if result.Duration > 0 {
			avg := float64(result.Bytes) / result.Duration.Seconds()
			Logger.Infof("average: %s/s over %s", probe.FormatRate(avg), result.Duration.Round(time.Millisecond))
		}
	}

	c.recorder.ObserveSession(outcome, result.Bytes)
	return result
}
