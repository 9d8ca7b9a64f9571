package pcx

import (
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

func init() {
	image.RegisterFormat("pcx", "\x0a", Decode, DecodeConfig)
}

// dpi written into files produced by Encode and EncodePaletted.
const encodeDPI = 300

func headerPalette(h *Header) color.Palette {
	n := h.PaletteLength()
	p := make(color.Palette, n)
	if n == 2 {
		p[0] = color.RGBA{0, 0, 0, 0xff}
		p[1] = color.RGBA{0xff, 0xff, 0xff, 0xff}
		return p
	}
	for i := 0; i < n; i++ {
		p[i] = color.RGBA{
			h.Palette[i*3],
			h.Palette[i*3+1],
			h.Palette[i*3+2],
			0xff,
		}
	}
	return p
}

// DecodeConfig returns the color model and dimensions of a PCX image
// without decoding the entire image. 256-color images report an RGBA
// model as their palette is stored at the end of the file.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := LoadHeader(r)
	if err != nil {
		return image.Config{}, err
	}

	var model color.Model = color.RGBAModel
	if n := h.PaletteLength(); n != 0 && n <= 16 {
		model = headerPalette(h)
	}

	return image.Config{
		ColorModel: model,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}

// Decode reads a PCX image from r and returns it as an image.Image. The
// type of Image returned depends on the PCX contents: paletted files
// decode to *image.Paletted, 24-bit files to *image.RGBA.
func Decode(rd io.Reader) (image.Image, error) {
	r, err := NewReader(rd)
	if err != nil {
		return nil, err
	}

	width, height := r.Width(), r.Height()

	if r.IsPaletted() {
		img := image.NewPaletted(image.Rect(0, 0, width, height), nil)

		for y := 0; y < height; y++ {
			switch err := r.NextRowPaletted(img.Pix[y*img.Stride : y*img.Stride+width]); err {
			case nil, io.EOF, io.ErrUnexpectedEOF:
				// Truncated pixel data is tolerated; the rest of the
				// image stays at index zero.
			default:
				return nil, err
			}
		}

		if r.PaletteLength() < 256 {
			img.Palette = headerPalette(r.Header)
			return img, nil
		}

		var p [256 * 3]byte
		if _, err := r.ReadPalette(p[:]); err != nil {
			return nil, err
		}
		img.Palette = make(color.Palette, 256)
		for i := range img.Palette {
			img.Palette[i] = color.RGBA{p[i*3], p[i*3+1], p[i*3+2], 0xff}
		}
		return img, nil
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := make([]byte, width*3)
	for y := 0; y < height; y++ {
		if err := r.NextRowRGB(row); err != nil {
			return nil, err
		}
		for x := 0; x < width; x++ {
			o := y*img.Stride + x*4
			img.Pix[o] = row[x*3]
			img.Pix[o+1] = row[x*3+1]
			img.Pix[o+2] = row[x*3+2]
			img.Pix[o+3] = 0xff
		}
	}
	return img, nil
}

func encodePaletted(w io.Writer, pm *image.Paletted) error {
	b := pm.Bounds()

	pw, err := NewPalettedWriter(w, b.Dx(), b.Dy(), encodeDPI, encodeDPI)
	if err != nil {
		return err
	}

	row := make([]byte, b.Dx())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			row[x-b.Min.X] = pm.ColorIndexAt(x, y)
		}
		if err := pw.WriteRow(row); err != nil {
			return err
		}
	}

	palette := make([]byte, len(pm.Palette)*3)
	for i, c := range pm.Palette {
		r, g, b, _ := c.RGBA()
		palette[i*3] = byte(r >> 8)
		palette[i*3+1] = byte(g >> 8)
		palette[i*3+2] = byte(b >> 8)
	}

	return pw.WritePalette(palette)
}

func encodeRGB(w io.Writer, m image.Image) error {
	b := m.Bounds()

	rw, err := NewRGBWriter(w, b.Dx(), b.Dy(), encodeDPI, encodeDPI)
	if err != nil {
		return err
	}

	row := make([]byte, b.Dx()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, b2, _ := m.At(x, y).RGBA()
			o := (x - b.Min.X) * 3
			row[o] = byte(r >> 8)
			row[o+1] = byte(g >> 8)
			row[o+2] = byte(b2 >> 8)
		}
		if err := rw.WriteRow(row); err != nil {
			return err
		}
	}

	return rw.Finish()
}

// Encode writes the Image m to w in PCX format. Paletted images with up
// to 256 colors are written as 256-color paletted files, everything
// else as 24-bit RGB.
func Encode(w io.Writer, m image.Image) error {
	if pm, ok := m.(*image.Paletted); ok && len(pm.Palette) <= 256 {
		return encodePaletted(w, pm)
	}
	return encodeRGB(w, m)
}

// EncodePaletted writes the Image m to w as a 256-color paletted PCX
// file, quantizing the image down to 256 colors first if necessary.
func EncodePaletted(w io.Writer, m image.Image) error {
	b := m.Bounds()

	pm, _ := m.(*image.Paletted)
	if pm == nil {
		if cp, ok := m.ColorModel().(color.Palette); ok && len(cp) <= 256 {
			pm = image.NewPaletted(b, cp)
			draw.Draw(pm, b, m, b.Min, draw.Src)
		}
	}

	if pm == nil || len(pm.Palette) > 256 {
		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, 256), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}

	return encodePaletted(w, pm)
}
