package adb

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"time"

	"github.com/allape/gogger"
	"github.com/allape/snapcat/snap/device"
	"github.com/allape/snapcat/snap/frame"
)

var l = gogger.New("snap.device.adb")

const DefaultAdb = "adb"

// Device talks to an Android device through the adb binary.
type Device struct {
	serial        string
	adb           string
	setupCommands []string
}

type Options struct {
	// Adb is the path of the adb binary, looked up in PATH by default.
	Adb string
	// SetupCommands are shell commands run on the device by Setup, e.g. "logcat -c".
	SetupCommands []string
}

func NewDevice(serial string, options *Options) *Device {
	if options == nil {
		options = &Options{}
	}

	if options.Adb == "" {
		options.Adb = DefaultAdb
	}

	return &Device{
		serial:        serial,
		adb:           options.Adb,
		setupCommands: options.SetupCommands,
	}
}

func (d *Device) Serial() string {
	if d.serial == "" {
		return "default"
	}
	return d.serial
}

func (d *Device) command(ctx context.Context, args ...string) *exec.Cmd {
	if d.serial != "" {
		args = append([]string{"-s", d.serial}, args...)
	}
	cmd := exec.CommandContext(ctx, d.adb, args...)
	cmd.WaitDelay = time.Second
	return cmd
}

// Setup runs the configured setup commands one by one and stops at the first failure.
func (d *Device) Setup(ctx context.Context) error {
	for _, command := range d.setupCommands {
		cmd := d.command(ctx, "shell", command)
		l.Verbose().Println(cmd.Path, cmd.Args)
		output, err := cmd.CombinedOutput()
		o := string(output)
		l.Verbose().Print("setup output:", o)
		if err != nil {
			if o == "" {
				return err
			}
			return errors.New(o)
		}
	}
	return nil
}

type verboseWriter struct{}

func (verboseWriter) Write(p []byte) (int, error) {
	l.Verbose().Print(string(p))
	return len(p), nil
}

func (d *Device) ExecuteShellCommand(ctx context.Context, command string, receiver device.LineReceiver) error {
	cmd := d.command(ctx, "shell", command)
	cmd.Stderr = verboseWriter{}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}

	l.Verbose().Println(cmd.Path, cmd.Args)

	err = cmd.Start()
	if err != nil {
		return err
	}

	var readErr error
	lines := &lineBuffer{}
	buf := make([]byte, 4096)

	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			batch := lines.Feed(buf[:n])
			if len(batch) > 0 {
				receiver.ProcessNewLines(batch)
			}
			if receiver.IsCancelled() {
				break
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			break
		}
	}

	cancelled := receiver.IsCancelled()
	if cancelled {
		_ = cmd.Process.Kill()
	} else if tail := lines.Flush(); tail != "" {
		receiver.ProcessNewLines([]string{tail})
	}

	err = cmd.Wait()

	if cancelled || ctx.Err() != nil {
		return nil
	}
	if readErr != nil {
		return readErr
	}
	return err
}

func (d *Device) Screenshot(ctx context.Context) (*frame.RawFrame, error) {
	cmd := d.command(ctx, "exec-out", "screencap")
	l.Verbose().Println(cmd.Path, cmd.Args)

	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	return ParseScreencap(output)
}
