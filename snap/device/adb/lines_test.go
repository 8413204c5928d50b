package adb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineBuffer(t *testing.T) {
	b := &lineBuffer{}

	require.Empty(t, b.Feed([]byte("{name=")))
	require.Equal(t, []string{"{name=first}"}, b.Feed([]byte("first}\n")))
	require.Equal(t, []string{"{a=1}", "{b=2}"}, b.Feed([]byte("{a=1}\r\n{b=2}\r\n{c=")))
	require.Equal(t, []string{"{c=3}", ""}, b.Feed([]byte("3}\n\n")))
	require.Equal(t, "", b.Flush())

	b.Feed([]byte("tail\r"))
	require.Equal(t, "tail", b.Flush())
	require.Equal(t, "", b.Flush())
}
