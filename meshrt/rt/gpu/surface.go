package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// SurfaceConfig is the present configuration of the window surface.
type SurfaceConfig struct {
	Width       uint32
	Height      uint32
	Format      wgpu.TextureFormat
	PresentMode wgpu.PresentMode
}

// surfaceFormatPreference is searched in order; sRGB first so the texture
// and clear color come out gamma correct.
var surfaceFormatPreference = []wgpu.TextureFormat{
	wgpu.TextureFormatBGRA8UnormSrgb,
	wgpu.TextureFormatRGBA8UnormSrgb,
	wgpu.TextureFormatBGRA8Unorm,
	wgpu.TextureFormatRGBA8Unorm,
	wgpu.TextureFormatRGBA16Float,
}

// SurfaceContext owns the window surface, its configuration and the device
// behind it.
type SurfaceContext struct {
	device Backend
	config SurfaceConfig
	log    Logger
}

// OpenSurfaceContext acquires an adapter and device for target and
// configures its surface at width x height.
func OpenSurfaceContext(target SurfaceTarget, width, height int, log Logger) (*SurfaceContext, error) {
	backend, err := NewWGPUBackend(target, log)
	if err != nil {
		return nil, err
	}
	sc, err := NewSurfaceContext(backend, width, height, log)
	if err != nil {
		backend.Release()
		return nil, err
	}
	return sc, nil
}

// NewSurfaceContext negotiates a surface format with device and configures
// the surface for rendering with FIFO presentation.
func NewSurfaceContext(device Backend, width, height int, log Logger) (*SurfaceContext, error) {
	log = OrNop(log)

	format, err := negotiateFormat(device.SurfaceFormats())
	if err != nil {
		return nil, err
	}

	sc := &SurfaceContext{
		device: device,
		config: SurfaceConfig{
			Width:       uint32(max(width, 0)),
			Height:      uint32(max(height, 0)),
			Format:      format,
			PresentMode: wgpu.PresentModeFifo, // vsync
		},
		log: log,
	}
	if width > 0 && height > 0 {
		device.ConfigureSurface(sc.config)
	} else {
		log.Warnf("Surface created with zero size %dx%d, configuration deferred until resize", width, height)
	}
	log.Infof("Surface configured %dx%d format=%v", sc.config.Width, sc.config.Height, format)
	return sc, nil
}

func negotiateFormat(supported []wgpu.TextureFormat) (wgpu.TextureFormat, error) {
	for _, want := range surfaceFormatPreference {
		for _, have := range supported {
			if want == have {
				return have, nil
			}
		}
	}
	// the adapter's own first choice
	for _, have := range supported {
		if have != wgpu.TextureFormatUndefined {
			return have, nil
		}
	}
	return wgpu.TextureFormatUndefined, fmt.Errorf("%w: surface offers %v", ErrUnsupportedSurfaceFormat, supported)
}

func (sc *SurfaceContext) Device() Backend {
	return sc.device
}

func (sc *SurfaceContext) Config() SurfaceConfig {
	return sc.config
}

// Reconfigure applies a new surface size. Zero or negative dimensions are
// ignored and leave the current configuration untouched. Reapplying the
// same size only refreshes the surface.
func (sc *SurfaceContext) Reconfigure(width, height int) bool {
	if width <= 0 || height <= 0 {
		sc.log.Debugf("Ignoring surface resize to %dx%d", width, height)
		return false
	}
	sc.config.Width = uint32(width)
	sc.config.Height = uint32(height)
	sc.device.ConfigureSurface(sc.config)
	return true
}

// AcquireFrame returns a view onto the next surface texture. Failures are
// always a *SurfaceError.
func (sc *SurfaceContext) AcquireFrame() (Handle, error) {
	frame, err := sc.device.AcquireSurfaceTexture()
	if err != nil {
		return nil, classifySurfaceError(err)
	}
	return frame, nil
}

func (sc *SurfaceContext) Present() {
	sc.device.Present()
}

// Release releases the device and surface. The SurfaceContext must not be
// used afterwards.
func (sc *SurfaceContext) Release() {
	if sc.device == nil {
		return
	}
	sc.device.Release()
	sc.device = nil
}
