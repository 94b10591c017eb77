package probe

import (
	"errors"
	"sync"
	"time"
)

// DefaultSampleInterval is how often a running sampler reports
const DefaultSampleInterval = time.Second

// ErrSamplerRunning is returned by Start if the previous run was not stopped
var ErrSamplerRunning = errors.New("sampler is already running")

// --------------------------------------------------------------------------
// Sample
// --------------------------------------------------------------------------

// Sample is one rate report of a Sampler
type Sample struct {
	Time     time.Time     // when the sample was taken
	Total    uint64        // counter value at Time
	Delta    uint64        // bytes since the previous sample
	Interval time.Duration // nominal sampling interval
}

// Rate returns the transfer rate of the sample in bytes per second
func (s Sample) Rate() float64 {
	if s.Interval <= 0 {
		return float64(s.Delta)
	}
	return float64(s.Delta) / s.Interval.Seconds()
}

// RateString returns Rate formatted with FormatRate
func (s Sample) RateString() string {
	return FormatRate(s.Rate())
}

// ReportFunc receives the samples of a Sampler. It is called from the
// sampler goroutine and should not block for long.
type ReportFunc func(sample Sample)

// --------------------------------------------------------------------------
// Sampler State
// --------------------------------------------------------------------------

// SamplerState is the lifecycle state of a Sampler
type SamplerState int

const (
	SamplerIdle SamplerState = iota
	SamplerRunning
	SamplerStopping
	SamplerStopped
)

// String returns the string representation of a SamplerState
func (s SamplerState) String() string {
	switch s {
	case SamplerIdle:
		return "idle"
	case SamplerRunning:
		return "running"
	case SamplerStopping:
		return "stopping"
	case SamplerStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Sampler
// --------------------------------------------------------------------------

// Sampler periodically reports the delta of a ByteCounter. A sampler can be
// started and stopped any number of times, but only one run is active at once.
type Sampler struct {
	counter  *ByteCounter
	interval time.Duration
	report   ReportFunc

	mu    sync.Mutex
	state SamplerState
	stop  bool          // the stop signal, guarded by mu
	wake  chan struct{} // closed (under mu) once stop is set
	done  chan struct{} // closed by the goroutine when it exits
}

// NewSampler creates an idle sampler for counter. A non-positive interval
// falls back to DefaultSampleInterval.
func NewSampler(counter *ByteCounter, interval time.Duration, report ReportFunc) *Sampler {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	if report == nil {
		report = func(Sample) {}
	}
	return &Sampler{
		counter:  counter,
		interval: interval,
		report:   report,
		state:    SamplerIdle,
	}
}

// State returns the current lifecycle state
func (s *Sampler) State() SamplerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start resets the counter, clears the stop signal and launches the sampling goroutine
func (s *Sampler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == SamplerRunning || s.state == SamplerStopping {
		return ErrSamplerRunning
	}

	s.counter.Reset()
	s.stop = false
	s.wake = make(chan struct{})
	s.done = make(chan struct{})
	s.state = SamplerRunning

	go s.loop(s.wake, s.done)
	return nil
}

// Stop sets the stop signal, wakes the sampling goroutine and waits for it to exit.
// Stop on a sampler that is not running does nothing.
func (s *Sampler) Stop() {
	s.mu.Lock()
	if s.state != SamplerRunning {
		s.mu.Unlock()
		return
	}
	s.stop = true
	s.state = SamplerStopping
	close(s.wake)
	done := s.done
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	s.state = SamplerStopped
	s.mu.Unlock()
}

// stopped reads the stop signal
func (s *Sampler) stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop
}

// loop is the sampling goroutine. wake and done belong to exactly one run.
func (s *Sampler) loop(wake <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	last := s.counter.Load()
	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-wake:
			Logger.Debugf("sampler stopping on signal during wait")
			return
		case <-timer.C:
		}

		// the timer and the signal may fire together
		if s.stopped() {
			Logger.Debugf("sampler stopping on check of signal after wait")
			return
		}

		current := s.counter.Load()
		s.report(Sample{
			Time:     time.Now(),
			Total:    current,
			Delta:    current - last,
			Interval: s.interval,
		})
		last = current

		timer.Reset(s.interval)
	}
}
