package snap

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/allape/snapcat/snap/device"
)

const (
	DefaultLogBuffer = "main"
	DefaultTag       = "screenshot_request"
	DefaultLevel     = "D"
)

// LogcatCommand builds a logcat invocation printing only the messages of tag
// at level or above from a single log buffer.
// Reading only one buffer matters, the system buffer can be extremely slow to cat on some devices.
func LogcatCommand(buffer, tag, level string) string {
	if buffer == "" {
		buffer = DefaultLogBuffer
	}
	if tag == "" {
		tag = DefaultTag
	}
	if level == "" {
		level = DefaultLevel
	}
	return fmt.Sprintf("logcat -v raw -b %s %s:%s *:S", buffer, tag, level)
}

type monitorState int32

const (
	monitorIdle monitorState = iota
	monitorActive
	monitorCancelled
)

// Monitor tails a device command and hands the most recent line of each batch to onTrigger.
type Monitor struct {
	device    device.Device
	command   string
	onTrigger func(line string)

	state   atomic.Int32
	started atomic.Bool
	done    chan struct{}
	err     error
}

func NewMonitor(dev device.Device, command string, onTrigger func(line string)) *Monitor {
	return &Monitor{
		device:    dev,
		command:   command,
		onTrigger: onTrigger,
		done:      make(chan struct{}),
	}
}

// Start runs the command in its own goroutine, only the first call has effect.
func (m *Monitor) Start(ctx context.Context) {
	if !m.started.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer close(m.done)
		err := m.device.ExecuteShellCommand(ctx, m.command, m)
		if err != nil {
			l.Verbose().Println("monitor of", m.device.Serial(), "stopped:", err)
		} else {
			l.Verbose().Println("monitor of", m.device.Serial(), "stopped")
		}
		m.err = err
	}()
}

// Activate lets batches through, it has no effect once cancelled.
func (m *Monitor) Activate() bool {
	return m.state.CompareAndSwap(int32(monitorIdle), int32(monitorActive))
}

// Cancel stops triggering for good.
func (m *Monitor) Cancel() {
	m.state.Store(int32(monitorCancelled))
}

func (m *Monitor) IsActive() bool {
	return monitorState(m.state.Load()) == monitorActive
}

func (m *Monitor) IsCancelled() bool {
	return monitorState(m.state.Load()) == monitorCancelled
}

// ProcessNewLines drops everything but the last line, earlier requests are stale by now.
func (m *Monitor) ProcessNewLines(lines []string) {
	if len(lines) == 0 || !m.IsActive() {
		return
	}
	m.onTrigger(lines[len(lines)-1])
}

// Done is closed once the command returned.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// Err is the error the command ended with, only meaningful after Done is closed.
func (m *Monitor) Err() error {
	select {
	case <-m.done:
		return m.err
	default:
		return nil
	}
}
