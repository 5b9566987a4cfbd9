package gpu

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/cogentcore/webgpu/wgpu"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	bytesPerPixel = 4
	// CopyBytesPerRowAlignment is the row pitch alignment the device
	// requires for texture uploads.
	CopyBytesPerRowAlignment = 256
)

// SamplerConfig is how a texture is filtered and addressed when sampled.
type SamplerConfig struct {
	AddressMode  wgpu.AddressMode
	MagFilter    wgpu.FilterMode
	MinFilter    wgpu.FilterMode
	MipmapFilter wgpu.MipmapFilterMode
}

// DefaultSamplerConfig clamps at the edges, magnifies linearly and
// minifies with nearest filtering.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		AddressMode:  wgpu.AddressModeClampToEdge,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeNearest,
		MipmapFilter: wgpu.MipmapFilterModeNearest,
	}
}

func (c SamplerConfig) descriptor(label string) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  c.AddressMode,
		AddressModeV:  c.AddressMode,
		AddressModeW:  c.AddressMode,
		MagFilter:     c.MagFilter,
		MinFilter:     c.MinFilter,
		MipmapFilter:  c.MipmapFilter,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		Compare:       wgpu.CompareFunctionUndefined,
		MaxAnisotropy: 1,
	}
}

// Texture is a sampled 2D RGBA8 image on the device.
type Texture struct {
	Label  string
	Width  uint32
	Height uint32
	Pixels *image.RGBA

	texture Handle
	view    Handle
	sampler Handle
}

// DecodeImage decodes an encoded image (PNG, JPEG, GIF, BMP, TIFF, WebP)
// into tightly packed RGBA8 rows.
func DecodeImage(data []byte) (*image.RGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image %v", ErrImageDecode, bounds)
	}
	return tightRGBA(img), nil
}

// tightRGBA returns img as RGBA8 rows starting at (0,0) with a stride of
// exactly four bytes per pixel, copying when img is not already laid out
// that way (sub-images, other color models).
func tightRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) &&
		rgba.Stride == bytesPerPixel*bounds.Dx() && len(rgba.Pix) == rgba.Stride*bounds.Dy() {
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// AlignedBytesPerRow returns the upload row pitch for an RGBA8 row of
// width pixels, rounded up to CopyBytesPerRowAlignment.
func AlignedBytesPerRow(width uint32) uint32 {
	unpadded := bytesPerPixel * width
	return (unpadded + CopyBytesPerRowAlignment - 1) / CopyBytesPerRowAlignment * CopyBytesPerRowAlignment
}

// PadRows copies rows of rowBytes each from src into a buffer with a
// stride of pitch bytes. src is returned as is when no padding is needed.
func PadRows(src []byte, rowBytes, pitch, rows uint32) []byte {
	if rowBytes == pitch {
		return src
	}
	dst := make([]byte, int(pitch)*int(rows))
	for y := uint32(0); y < rows; y++ {
		copy(dst[y*pitch:y*pitch+rowBytes], src[y*rowBytes:(y+1)*rowBytes])
	}
	return dst
}

// NewTextureFromImage decodes data and uploads it as a sampled texture.
func NewTextureFromImage(dev Backend, data []byte, label string) (*Texture, error) {
	rgba, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return NewTextureFromRGBA(dev, rgba, label, DefaultSamplerConfig())
}

// NewTextureFromRGBA uploads rgba and creates a view and sampler for it.
// Any stride or origin is accepted; rows are repacked before upload.
// Partially created resources are released on failure.
func NewTextureFromRGBA(dev Backend, rgba *image.RGBA, label string, sampler SamplerConfig) (*Texture, error) {
	if rgba == nil || rgba.Rect.Empty() {
		return nil, fmt.Errorf("%w: empty image for %q", ErrImageDecode, label)
	}
	rgba = tightRGBA(rgba)
	size := rgba.Rect.Size()
	tx := &Texture{
		Label:  label,
		Width:  uint32(size.X),
		Height: uint32(size.Y),
		Pixels: rgba,
	}

	extent := wgpu.Extent3D{
		Width:              tx.Width,
		Height:             tx.Height,
		DepthOrArrayLayers: 1,
	}

	var err error
	tx.texture, err = dev.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", label, err)
	}

	rowBytes := bytesPerPixel * tx.Width
	pitch := AlignedBytesPerRow(tx.Width)
	err = dev.WriteTexture(
		tx.texture,
		PadRows(rgba.Pix, rowBytes, pitch, tx.Height),
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  pitch,
			RowsPerImage: tx.Height,
		},
		&extent,
	)
	if err != nil {
		tx.Release()
		return nil, fmt.Errorf("upload texture %q: %w", label, err)
	}

	tx.view, err = dev.CreateTextureView(tx.texture)
	if err != nil {
		tx.Release()
		return nil, fmt.Errorf("create view for %q: %w", label, err)
	}

	tx.sampler, err = dev.CreateSampler(sampler.descriptor(label + " Sampler"))
	if err != nil {
		tx.Release()
		return nil, fmt.Errorf("create sampler for %q: %w", label, err)
	}
	return tx, nil
}

func (tx *Texture) View() Handle {
	return tx.view
}

func (tx *Texture) Sampler() Handle {
	return tx.sampler
}

// Release frees the sampler, view and texture, in that order.
func (tx *Texture) Release() {
	if tx.sampler != nil {
		tx.sampler.Release()
		tx.sampler = nil
	}
	if tx.view != nil {
		tx.view.Release()
		tx.view = nil
	}
	if tx.texture != nil {
		tx.texture.Release()
		tx.texture = nil
	}
}
