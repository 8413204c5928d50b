package device

import (
	"context"

	"github.com/allape/snapcat/snap/frame"
)

// LineReceiver consumes the output of a long-running shell command.
// Lines arrive in batches, one batch per read from the device.
type LineReceiver interface {
	ProcessNewLines(lines []string)
	IsCancelled() bool
}

type Device interface {
	// Serial identifies the device in logs.
	Serial() string

	// ExecuteShellCommand runs command on the device and feeds its output to receiver
	// until the command exits, the receiver is cancelled or ctx is done.
	ExecuteShellCommand(ctx context.Context, command string, receiver LineReceiver) error

	// Screenshot fetches the current framebuffer.
	Screenshot(ctx context.Context) (*frame.RawFrame, error)
}
