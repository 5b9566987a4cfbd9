package pentagon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureSingleRenderer(t *testing.T) {
	app := NewAppBuilder().Build()

	ensureSingleRenderer(app, string(RendererMesh))
	assert.NotPanics(t, func() { ensureSingleRenderer(app, string(RendererMesh)) })
	assert.PanicsWithValue(t, "Multiple renderers installed: meshrt and other", func() {
		ensureSingleRenderer(app, "other")
	})
	assert.Panics(t, func() { ensureSingleRenderer(nil, "x") })
}
