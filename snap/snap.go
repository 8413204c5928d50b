package snap

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/allape/gogger"
	"github.com/allape/snapcat/snap/device"
	"github.com/allape/snapcat/snap/processor"
)

var l = gogger.New("snap")

const (
	DefaultQuietPeriod     = 500 * time.Millisecond
	DefaultShutdownTimeout = 2 * time.Second
)

var (
	ErrAlreadyStarted = errors.New("service already started")
	ErrFinished       = errors.New("service finished")
)

type State int

const (
	NotStarted State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Finished:
		return "finished"
	}
	return "unknown"
}

type Options struct {
	// Command is the shell command tailed on the device, see LogcatCommand.
	Command string
	// QuietPeriod is how long the output is ignored after start, logcat feeds us old lines first.
	QuietPeriod time.Duration
	// ShutdownTimeout bounds how long Finish waits for an in-flight capture.
	ShutdownTimeout time.Duration
	// Errors receives capture and processor failures, sends never block.
	Errors chan<- error
}

// Service takes a screenshot of the device every time a marker line shows up in its log.
// A Service can not be restarted once finished.
type Service struct {
	device     device.Device
	dispatcher *Dispatcher
	options    Options

	locker  sync.Mutex
	state   State
	monitor *Monitor
	cancel  context.CancelFunc
}

func New(dev device.Device, options *Options, processors ...processor.Processor) *Service {
	if options == nil {
		options = &Options{}
	}

	o := *options
	if o.Command == "" {
		o.Command = LogcatCommand(DefaultLogBuffer, DefaultTag, DefaultLevel)
	}
	if o.QuietPeriod == 0 {
		o.QuietPeriod = DefaultQuietPeriod
	}
	if o.ShutdownTimeout == 0 {
		o.ShutdownTimeout = DefaultShutdownTimeout
	}

	return &Service{
		device:     dev,
		dispatcher: NewDispatcher(dev, processors...),
		options:    o,
		state:      NotStarted,
	}
}

func (s *Service) State() State {
	s.locker.Lock()
	defer s.locker.Unlock()
	return s.state
}

// Start begins tailing the device log and returns once requests are acted upon.
// Lines arriving during the quiet period are ignored.
func (s *Service) Start(ctx context.Context) error {
	s.locker.Lock()
	switch s.state {
	case Running:
		s.locker.Unlock()
		return ErrAlreadyStarted
	case Finished:
		s.locker.Unlock()
		return ErrFinished
	}

	runCtx, cancel := context.WithCancel(context.Background())
	monitor := NewMonitor(s.device, s.options.Command, func(line string) {
		s.trigger(runCtx, line)
	})

	s.cancel = cancel
	s.monitor = monitor
	s.state = Running
	s.locker.Unlock()

	l.Info().Println("monitoring", s.device.Serial(), "with:", s.options.Command)

	monitor.Start(runCtx)

	go func() {
		<-monitor.Done()
		if err := monitor.Err(); err != nil && runCtx.Err() == nil {
			l.Warn().Println("log of", s.device.Serial(), "ended:", err)
			s.report(err)
		}
	}()

	timer := time.NewTimer(s.options.QuietPeriod)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	case <-runCtx.Done():
		return ErrFinished
	case <-monitor.Done():
		if runCtx.Err() != nil {
			return ErrFinished
		}
		l.Warn().Println("monitor of", s.device.Serial(), "ended during quiet period")
	}

	if monitor.Activate() {
		l.Info().Println("accepting screenshot requests from", s.device.Serial())
	}

	return nil
}

func (s *Service) trigger(ctx context.Context, line string) {
	err := s.dispatcher.Dispatch(ctx, line)
	if err != nil {
		l.Warn().Println("screenshot for", line, "failed:", err)
		s.report(err)
	}
}

func (s *Service) report(err error) {
	if err == nil || s.options.Errors == nil {
		return
	}
	select {
	case s.options.Errors <- err:
	default:
	}
}

// Done is closed when the log tailing ended, nil before Start.
func (s *Service) Done() <-chan struct{} {
	s.locker.Lock()
	defer s.locker.Unlock()
	if s.monitor == nil {
		return nil
	}
	return s.monitor.Done()
}

// Finish stops acting on requests and shuts every processor down.
// Only the first call does anything.
func (s *Service) Finish() error {
	s.locker.Lock()
	previous := s.state
	monitor := s.monitor
	cancel := s.cancel
	s.state = Finished
	s.locker.Unlock()

	if previous == Finished {
		return nil
	}

	if monitor != nil {
		monitor.Cancel()
	}
	if cancel != nil {
		cancel()
	}

	if monitor != nil {
		timer := time.NewTimer(s.options.ShutdownTimeout)
		select {
		case <-monitor.Done():
		case <-timer.C:
			l.Warn().Println("monitor of", s.device.Serial(), "did not stop in", s.options.ShutdownTimeout)
		}
		timer.Stop()
	}

	err := s.dispatcher.Finish()
	if err != nil {
		l.Error().Println("finish processors:", err)
	}

	l.Info().Println("stopped monitoring", s.device.Serial())

	return err
}
