package gpu_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/pentagon/meshrt/rt/assets"
	"github.com/gekko3d/pentagon/meshrt/rt/gpu"
	"github.com/gekko3d/pentagon/meshrt/rt/gpu/gputest"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	rgba, err := gpu.DecodeImage(encodePNG(t, 3, 2))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), rgba.Rect)
	assert.Equal(t, 12, rgba.Stride)
	assert.Equal(t, color.RGBA{R: 2, G: 1, B: 7, A: 255}, rgba.RGBAAt(2, 1))
}

func TestDecodeImage_embeddedTexture(t *testing.T) {
	rgba, err := gpu.DecodeImage(assets.HappyTreePNG)
	require.NoError(t, err)
	assert.Positive(t, rgba.Rect.Dx())
	assert.Positive(t, rgba.Rect.Dy())
}

func TestDecodeImage_invalid(t *testing.T) {
	_, err := gpu.DecodeImage([]byte("definitely not an image"))
	assert.ErrorIs(t, err, gpu.ErrImageDecode)

	_, err = gpu.DecodeImage(nil)
	assert.ErrorIs(t, err, gpu.ErrImageDecode)
}

func TestAlignedBytesPerRow(t *testing.T) {
	assert.Equal(t, uint32(256), gpu.AlignedBytesPerRow(1))
	assert.Equal(t, uint32(256), gpu.AlignedBytesPerRow(64))
	assert.Equal(t, uint32(512), gpu.AlignedBytesPerRow(65))
	assert.Equal(t, uint32(1024), gpu.AlignedBytesPerRow(256))
}

func TestPadRows(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6}
	out := gpu.PadRows(src, 3, 4, 2)
	assert.Equal(t, []byte{1, 2, 3, 0, 4, 5, 6, 0}, out)

	same := gpu.PadRows(src, 3, 3, 2)
	assert.Equal(t, src, same)
}

func TestNewTextureFromImage_uploadsPaddedRows(t *testing.T) {
	dev := gputest.New()

	tex, err := gpu.NewTextureFromImage(dev, encodePNG(t, 3, 2), "Tree")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), tex.Width)
	assert.Equal(t, uint32(2), tex.Height)

	require.Len(t, dev.Textures, 1)
	desc := dev.Textures[0]
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, desc.Format)
	assert.Equal(t, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst, desc.Usage)
	assert.Equal(t, wgpu.Extent3D{Width: 3, Height: 2, DepthOrArrayLayers: 1}, desc.Size)

	require.Len(t, dev.Writes, 1)
	w := dev.Writes[0]
	assert.Equal(t, uint32(256), w.Layout.BytesPerRow)
	assert.Equal(t, uint32(2), w.Layout.RowsPerImage)
	assert.Equal(t, wgpu.Extent3D{Width: 3, Height: 2, DepthOrArrayLayers: 1}, w.Size)
	assert.Len(t, w.Data, 512)
	// second row starts at the aligned pitch, not at 12 bytes
	assert.Equal(t, []byte{0, 1, 7, 255}, w.Data[256:260])
	assert.Equal(t, []byte{0, 0, 0, 0}, w.Data[12:16])

	require.Len(t, dev.Samplers, 1)
	s := dev.Samplers[0]
	assert.Equal(t, wgpu.AddressModeClampToEdge, s.AddressModeU)
	assert.Equal(t, wgpu.AddressModeClampToEdge, s.AddressModeV)
	assert.Equal(t, wgpu.AddressModeClampToEdge, s.AddressModeW)
	assert.Equal(t, wgpu.FilterModeLinear, s.MagFilter)
	assert.Equal(t, wgpu.FilterModeNearest, s.MinFilter)
	assert.Equal(t, wgpu.MipmapFilterModeNearest, s.MipmapFilter)

	assert.NotNil(t, tex.View())
	assert.NotNil(t, tex.Sampler())
	assert.Equal(t, 3, dev.LiveCount())

	tex.Release()
	assert.Zero(t, dev.LiveCount())
	assert.Equal(t, []string{gputest.KindSampler, gputest.KindTextureView, gputest.KindTexture}, dev.ReleaseLog)
}

func gradientRGBA(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	return img
}

func TestNewTextureFromRGBA_subImage(t *testing.T) {
	tests := []struct {
		name      string
		rect      image.Rectangle
		wantBytes int
		row1      int
		wantRow1  []byte
	}{
		// 64 px rows are already aligned, so no padding
		{"right half", image.Rect(64, 0, 128, 4), 1024, 256, []byte{64, 1, 0, 255}},
		{"padded", image.Rect(1, 1, 4, 3), 512, 256, []byte{1, 2, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.New()
			sub := gradientRGBA(128, 4).SubImage(tt.rect).(*image.RGBA)

			tex, err := gpu.NewTextureFromRGBA(dev, sub, "Sub", gpu.DefaultSamplerConfig())
			require.NoError(t, err)
			defer tex.Release()

			assert.Equal(t, uint32(tt.rect.Dx()), tex.Width)
			assert.Equal(t, uint32(tt.rect.Dy()), tex.Height)
			require.Len(t, dev.Writes, 1)
			w := dev.Writes[0]
			assert.Len(t, w.Data, tt.wantBytes)
			assert.Equal(t, []byte{uint8(tt.rect.Min.X), uint8(tt.rect.Min.Y), 0, 255}, w.Data[0:4])
			assert.Equal(t, tt.wantRow1, w.Data[tt.row1:tt.row1+4])
		})
	}
}

func TestNewTextureFromRGBA_empty(t *testing.T) {
	dev := gputest.New()

	_, err := gpu.NewTextureFromRGBA(dev, image.NewRGBA(image.Rect(0, 0, 0, 4)), "Empty", gpu.DefaultSamplerConfig())
	assert.ErrorIs(t, err, gpu.ErrImageDecode)
	assert.Empty(t, dev.Textures)
}

func TestNewTextureFromImage_decodeErrorCreatesNothing(t *testing.T) {
	dev := gputest.New()

	_, err := gpu.NewTextureFromImage(dev, []byte{0x89, 'P', 'N', 'G'}, "Broken")
	assert.ErrorIs(t, err, gpu.ErrImageDecode)
	assert.Empty(t, dev.Textures)
	assert.Zero(t, dev.LiveCount())
}

func TestNewTextureFromImage_failureReleasesPartial(t *testing.T) {
	dev := gputest.New()
	boom := errors.New("sampler pool exhausted")
	dev.FailCreate(gputest.KindSampler, boom)

	_, err := gpu.NewTextureFromImage(dev, encodePNG(t, 4, 4), "Tree")
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, dev.LiveCount())
}
