package pcx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rgbPixels(width, height int) []byte {
	pix := make([]byte, width*height*3)
	for i := range pix {
		pix[i] = byte(i*31 + i/7)
	}
	return pix
}

func writeRGB(t *testing.T, pix []byte, width, height int, separate bool) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := NewRGBWriter(&buf, width, height, 300, 300)
	require.NoError(t, err)

	if separate {
		r := make([]byte, width)
		g := make([]byte, width)
		b := make([]byte, width)
		for y := 0; y < height; y++ {
			row := pix[y*width*3:]
			for x := 0; x < width; x++ {
				r[x] = row[x*3]
				g[x] = row[x*3+1]
				b[x] = row[x*3+2]
			}
			require.NoError(t, w.WriteRowSeparate(r, g, b))
		}
	} else {
		for y := 0; y < height; y++ {
			require.NoError(t, w.WriteRow(pix[y*width*3:(y+1)*width*3]))
		}
	}
	require.NoError(t, w.Finish())

	return buf.Bytes()
}

func readRGB(t *testing.T, file []byte, separate bool) (pix []byte, width, height int) {
	t.Helper()

	r, err := NewReader(bytes.NewReader(file))
	require.NoError(t, err)
	require.False(t, r.IsPaletted())

	width, height = r.Width(), r.Height()
	pix = make([]byte, width*height*3)

	if separate {
		red := make([]byte, width)
		green := make([]byte, width)
		blue := make([]byte, width)
		for y := 0; y < height; y++ {
			require.NoError(t, r.NextRowRGBSeparate(red, green, blue))
			row := pix[y*width*3:]
			for x := 0; x < width; x++ {
				row[x*3] = red[x]
				row[x*3+1] = green[x]
				row[x*3+2] = blue[x]
			}
		}
	} else {
		for y := 0; y < height; y++ {
			require.NoError(t, r.NextRowRGB(pix[y*width*3 : (y+1)*width*3]))
		}
	}

	return pix, width, height
}

func TestRGBRoundTrip(t *testing.T) {
	sizes := [][2]int{
		{17, 23}, {23, 17}, {31, 2}, {40, 40},
	}
	for w := 1; w <= 12; w++ {
		for h := 1; h <= 12; h += 3 {
			sizes = append(sizes, [2]int{w, h})
		}
	}

	for _, size := range sizes {
		width, height := size[0], size[1]
		pix := rgbPixels(width, height)

		for _, separate := range []bool{false, true} {
			file := writeRGB(t, pix, width, height, separate)
			got, w, h := readRGB(t, file, !separate)
			require.Equal(t, width, w)
			require.Equal(t, height, h)
			require.Equal(t, pix, got, "size %dx%d separate=%t", width, height, separate)
		}
	}
}

func TestRGBRoundTripBoundarySizes(t *testing.T) {
	for _, size := range [][2]int{{65534, 1}, {1, 65535}} {
		width, height := size[0], size[1]
		pix := rgbPixels(width, height)

		file := writeRGB(t, pix, width, height, false)
		got, w, h := readRGB(t, file, false)
		require.Equal(t, width, w)
		require.Equal(t, height, h)
		require.Equal(t, pix, got)
	}
}

func TestPalettedRoundTrip(t *testing.T) {
	palette := make([]byte, 256*3)
	for i := range palette {
		palette[i] = byte(255 - i)
	}

	for _, size := range [][2]int{{1, 1}, {2, 3}, {5, 5}, {7, 1}, {40, 17}} {
		width, height := size[0], size[1]

		pix := make([]byte, width*height)
		for i := range pix {
			pix[i] = byte(i * 7)
		}

		var buf bytes.Buffer
		w, err := NewPalettedWriter(&buf, width, height, 300, 300)
		require.NoError(t, err)
		for y := 0; y < height; y++ {
			require.NoError(t, w.WriteRow(pix[y*width:(y+1)*width]))
		}
		require.NoError(t, w.WritePalette(palette))

		r, err := NewReader(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		require.True(t, r.IsPaletted())
		require.Equal(t, 256, r.PaletteLength())

		// The seek-based palette read leaves the stream untouched, so
		// it can happen before the rows.
		var p [256 * 3]byte
		n, err := r.Palette(p[:])
		require.NoError(t, err)
		require.Equal(t, 256, n)
		require.Equal(t, palette, p[:])

		got := make([]byte, width*height)
		for y := 0; y < height; y++ {
			require.NoError(t, r.NextRowPaletted(got[y*width:(y+1)*width]))
		}
		require.Equal(t, pix, got, "size %dx%d", width, height)

		// The consuming read works on the remaining stream too.
		r2, err := NewReader(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		n, err = r2.ReadPalette(p[:])
		require.NoError(t, err)
		require.Equal(t, 256, n)
		require.Equal(t, palette, p[:])
	}
}

func TestGreenImageScenario(t *testing.T) {
	// 5x5 image of pure (0, 255, 0). The odd width rounds the lane
	// length up to 6, so every lane carries one padding byte and the
	// compressor must break its runs at each 6-byte boundary.
	const width, height = 5, 5

	pix := make([]byte, width*height*3)
	for i := 0; i < width*height; i++ {
		pix[i*3+1] = 255
	}

	file := writeRGB(t, pix, width, height, false)
	body := file[headerLength:]

	// Each all-green lane compresses to the 2-byte run code c5 ff,
	// and the all-zero lanes keep producing c5 00 codes.
	assert.True(t, bytes.Contains(body, []byte{0xc5, 0x00}))
	assert.True(t, bytes.Contains(body, []byte{0xc5, 0xff}))

	// No run code may exceed the 6-bit count field.
	for i := 0; i < len(body); i++ {
		if body[i]&0xc0 == 0xc0 {
			assert.LessOrEqual(t, int(body[i]&0x3f), 63)
			i++
		}
	}

	got, _, _ := readRGB(t, file, false)
	require.Equal(t, pix, got)
}

func TestWriterRowCountContract(t *testing.T) {
	assertUsage := func(err error) {
		t.Helper()
		require.Error(t, err)
		_, ok := err.(UsageError)
		assert.True(t, ok, "expected a UsageError, got %T: %v", err, err)
	}

	var buf bytes.Buffer
	w, err := NewRGBWriter(&buf, 2, 2, 0, 0)
	require.NoError(t, err)

	// Finishing early and writing rows of the wrong size both fail.
	assertUsage(w.Finish())
	assertUsage(w.WriteRow(make([]byte, 5)))
	assertUsage(w.WriteRowSeparate(make([]byte, 2), make([]byte, 2), make([]byte, 3)))

	require.NoError(t, w.WriteRow(make([]byte, 6)))
	require.NoError(t, w.WriteRow(make([]byte, 6)))
	assertUsage(w.WriteRow(make([]byte, 6)))
	require.NoError(t, w.Finish())

	buf.Reset()
	p, err := NewPalettedWriter(&buf, 2, 1, 0, 0)
	require.NoError(t, err)

	assertUsage(p.WritePalette(nil)) // rows still outstanding
	require.NoError(t, p.WriteRow(make([]byte, 2)))
	assertUsage(p.WriteRow(make([]byte, 2)))
	// Too many colors, then a length that is not whole RGB triples.
	assertUsage(p.WritePalette(make([]byte, 257*3)))
	assertUsage(p.WritePalette(make([]byte, 256*3-1)))
	require.NoError(t, p.WritePalette(make([]byte, 256*3)))
}

func TestWriterRejectsBadGeometry(t *testing.T) {
	var buf bytes.Buffer

	for _, size := range [][2]int{{0, 1}, {1, 0}, {0xffff, 1}, {0x10000, 1}, {1, 0x10000}, {-1, 1}} {
		_, err := NewRGBWriter(&buf, size[0], size[1], 0, 0)
		require.Error(t, err, "size %v", size)
		_, ok := err.(UsageError)
		assert.True(t, ok)

		_, err = NewPalettedWriter(&buf, size[0], size[1], 0, 0)
		require.Error(t, err)
	}
}
