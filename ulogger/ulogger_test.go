package ulogger

import (
	"bytes"
	"testing"

	"github.com/ordishs/gocore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToZerolog(t *testing.T) {
	l := New("test", WithWriter(&bytes.Buffer{}))
	require.NotNil(t, l)

	_, ok := l.(*ZLoggerWrapper)
	assert.True(t, ok)
}

func TestZeroLoggerLevels(t *testing.T) {
	var buf bytes.Buffer

	l := NewZeroLogger("test", WithWriter(&buf), WithLevel("ERROR"))
	assert.Equal(t, int(gocore.ERROR), l.LogLevel())

	l.SetLogLevel("DEBUG")
	assert.Equal(t, int(gocore.DEBUG), l.LogLevel())

	l.SetLogLevel("bogus")
	assert.Equal(t, int(gocore.INFO), l.LogLevel())
}

func TestZeroLoggerNewInheritsOptions(t *testing.T) {
	var buf bytes.Buffer

	parent := NewZeroLogger("parent", WithWriter(&buf), WithLevel("WARN"))

	child := parent.New("child")
	require.NotNil(t, child)
	assert.Equal(t, int(gocore.WARN), child.LogLevel())
}

func TestTestLoggerIsSilent(t *testing.T) {
	l := TestLogger{}
	l.Debugf("nothing %d", 1)
	l.Infof("nothing")
	l.Errorf("nothing")

	assert.Equal(t, l, l.New("other"))
	assert.Equal(t, l, l.Duplicate())
}
