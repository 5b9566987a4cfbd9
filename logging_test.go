package pentagon

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger(t *testing.T) {
	var out, errOut bytes.Buffer
	l := newLogger(&out, &errOut, "meshrt", false)

	l.Debugf("hidden %d", 1)
	l.Infof("surface %dx%d", 800, 600)
	l.Warnf("frame skipped")
	l.Errorf("boom")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[meshrt] INFO: surface 800x600")
	assert.Contains(t, errOut.String(), "[meshrt] WARN: frame skipped")
	assert.Contains(t, errOut.String(), "[meshrt] ERROR: boom")

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown %d", 2)
	assert.Contains(t, out.String(), "[meshrt] DEBUG: shown 2")
}

func TestApp_Logger(t *testing.T) {
	var nilApp *App
	assert.NotNil(t, nilApp.Logger())

	app := NewAppBuilder().Build()
	assert.IsType(t, nopLogger{}, app.Logger())

	logger := NewDefaultLogger("", false)
	app = NewAppBuilder().UseModule(LoggingModule{Logger: logger}).Build()
	assert.Same(t, logger, app.Logger())
}
