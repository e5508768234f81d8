package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_LevelsAndModule(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("tracer-test", &buf, false)

	l.Debugf("hidden %d", 1)
	assert.NotContains(t, buf.String(), "hidden")

	l.Infof("spheres=%d", 3)
	l.Warnf("allocation failed")
	out := buf.String()
	assert.Contains(t, out, "[tracer-test]")
	assert.Contains(t, out, "spheres=3")
	assert.Contains(t, out, "WARNING")
	assert.Contains(t, out, "allocation failed")
}

func TestLogger_SetDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("tracer-debug", &buf, false)
	assert.False(t, l.DebugEnabled())

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("visible %s", "now")
	assert.Contains(t, buf.String(), "visible now")
}

func TestOrNop(t *testing.T) {
	l := OrNop(nil)
	assert.NotNil(t, l)
	assert.False(t, l.DebugEnabled())
	l.Errorf("dropped")
}
