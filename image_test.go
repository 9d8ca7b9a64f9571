package pcx

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8((x * 17) ^ (y * 31)),
				G: uint8((x * 43) + (y * 13)),
				B: uint8((x * 7) ^ (y * 11)),
				A: 255,
			})
		}
	}
	return img
}

func TestImageRoundTripRGB(t *testing.T) {
	src := testImage(37, 23)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, src))

	img, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	got, ok := img.(*image.RGBA)
	require.True(t, ok, "expected *image.RGBA, got %T", img)
	assert.Equal(t, src.Bounds(), got.Bounds())
	assert.Equal(t, src.Pix, got.Pix)
}

func TestImageRoundTripPaletted(t *testing.T) {
	palette := make(color.Palette, 256)
	for i := range palette {
		palette[i] = color.RGBA{uint8(i), uint8(255 - i), uint8(i ^ 0x55), 255}
	}

	src := image.NewPaletted(image.Rect(0, 0, 13, 9), palette)
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 3)
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, src))

	img, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	got, ok := img.(*image.Paletted)
	require.True(t, ok, "expected *image.Paletted, got %T", img)
	assert.Equal(t, src.Pix, got.Pix)
	require.Len(t, got.Palette, 256)
	for i := range palette {
		assert.Equal(t, palette[i], got.Palette[i])
	}
}

func TestEncodePalettedQuantizes(t *testing.T) {
	// Far more than 256 distinct colors; EncodePaletted must reduce
	// them rather than fail.
	src := testImage(64, 48)

	var buf bytes.Buffer
	require.NoError(t, EncodePaletted(&buf, src))

	img, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	got, ok := img.(*image.Paletted)
	require.True(t, ok)
	assert.Equal(t, src.Bounds(), got.Bounds())
	assert.True(t, len(got.Palette) <= 256)
}

func TestDecodeConfig(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testImage(31, 7)))

	cfg, err := DecodeConfig(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 31, cfg.Width)
	assert.Equal(t, 7, cfg.Height)
	assert.Equal(t, color.RGBAModel, cfg.ColorModel)
}

func TestDecodeConfigSmallPalette(t *testing.T) {
	file := rawFile(t, 1, 1, 8, 1, 2, []byte{0xa0})

	cfg, err := DecodeConfig(bytes.NewReader(file))
	require.NoError(t, err)

	p, ok := cfg.ColorModel.(color.Palette)
	require.True(t, ok, "expected a color.Palette model, got %T", cfg.ColorModel)
	require.Len(t, p, 2)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, p[0])
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, p[1])
}

func TestImageFormatRegistered(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testImage(4, 4)))

	_, format, err := image.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "pcx", format)
}

func TestDecodeSmallPaletteImage(t *testing.T) {
	// 4 pixels at 2 bits each in one byte: indices 1, 2, 3, 0.
	file := rawFile(t, 1, 2, 4, 1, 2, []byte{0x6c})
	file[16+3] = 10 // entry 1
	file[16+4] = 11
	file[16+5] = 12

	img, err := Decode(bytes.NewReader(file))
	require.NoError(t, err)

	got, ok := img.(*image.Paletted)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 0}, got.Pix)
	require.Len(t, got.Palette, 4)
	assert.Equal(t, color.RGBA{10, 11, 12, 255}, got.Palette[1])
}