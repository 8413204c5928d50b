package adb

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeAdb writes a shell script standing in for the adb binary.
func fakeAdb(t *testing.T, body string) string {
	if runtime.GOOS == "windows" {
		t.Skip("shell script adb is not supported on windows")
	}

	name := filepath.Join(t.TempDir(), "adb")
	err := os.WriteFile(name, []byte("#!/bin/sh\n"+body+"\n"), 0755)
	require.NoError(t, err)
	return name
}

type collector struct {
	lines     []string
	cancelled bool
}

func (c *collector) ProcessNewLines(lines []string) {
	c.lines = append(c.lines, lines...)
}

func (c *collector) IsCancelled() bool {
	return c.cancelled
}

func TestExecuteShellCommand(t *testing.T) {
	adb := fakeAdb(t, `printf '{name=a}\r\n{name=b}\n{name=c}'`)

	d := NewDevice("emulator-5554", &Options{Adb: adb})
	require.Equal(t, "emulator-5554", d.Serial())

	c := &collector{}
	err := d.ExecuteShellCommand(context.Background(), "logcat", c)
	require.NoError(t, err)
	require.Equal(t, []string{"{name=a}", "{name=b}", "{name=c}"}, c.lines)
}

func TestExecuteShellCommandCancelled(t *testing.T) {
	adb := fakeAdb(t, `echo '{name=a}'; exec sleep 30`)

	c := &collector{cancelled: true}
	err := NewDevice("", &Options{Adb: adb}).ExecuteShellCommand(context.Background(), "logcat", c)
	require.NoError(t, err)
	require.Equal(t, []string{"{name=a}"}, c.lines)
}

func TestExecuteShellCommandFailure(t *testing.T) {
	adb := fakeAdb(t, `echo "error: no devices/emulators found" >&2; exit 1`)

	err := NewDevice("", &Options{Adb: adb}).ExecuteShellCommand(context.Background(), "logcat", &collector{})
	require.Error(t, err)
}

func TestScreenshot(t *testing.T) {
	adb := fakeAdb(t, `printf '\001\000\000\000\001\000\000\000\001\000\000\000\012\024\036\000'`)

	raw, err := NewDevice("", &Options{Adb: adb}).Screenshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, raw.Width)
	require.Equal(t, 1, raw.Height)
	require.Equal(t, []byte{10, 20, 30, 0}, raw.Data)
}

func TestSetup(t *testing.T) {
	adb := fakeAdb(t, `exit 0`)
	require.NoError(t, NewDevice("", &Options{Adb: adb, SetupCommands: []string{"logcat -c"}}).Setup(context.Background()))

	adb = fakeAdb(t, `echo "logcat: permission denied"; exit 1`)
	err := NewDevice("", &Options{Adb: adb, SetupCommands: []string{"logcat -c"}}).Setup(context.Background())
	require.ErrorContains(t, err, "permission denied")
}
