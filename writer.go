package pcx

import (
	"io"

	"github.com/bodgit/pcx/rle"
)

// RGBWriter writes a 24-bit RGB PCX file row by row. The row count is
// fixed at construction; Finish must be called after the last row to
// flush the compressor, otherwise the end of the file is lost.
type RGBWriter struct {
	z *rle.Writer

	width   int
	height  int
	written int

	lane []byte
}

// NewRGBWriter writes the file header to w and returns a writer
// expecting exactly height rows of width pixels.
func NewRGBWriter(w io.Writer, width, height, dpiX, dpiY int) (*RGBWriter, error) {
	if width < 0 || width > 0xffff || height < 0 || height > 0xffff {
		return nil, UsageError("image size does not fit in 16 bits")
	}
	if err := writeHeader(w, false, uint16(width), uint16(height), uint16(dpiX), uint16(dpiY)); err != nil {
		return nil, err
	}

	return &RGBWriter{
		z:      rle.NewWriter(w, width+width&1),
		width:  width,
		height: height,
		lane:   make([]byte, width),
	}, nil
}

func (w *RGBWriter) writeLane(lane []byte) error {
	if _, err := w.z.Write(lane); err != nil {
		return err
	}
	return w.z.Pad()
}

// WriteRowSeparate writes the next row from separate red, green and
// blue buffers, each of which must have length equal to the image
// width. Rows are written top to bottom, pixels left to right.
func (w *RGBWriter) WriteRowSeparate(red, green, blue []byte) error {
	if w.written == w.height {
		return UsageError("all rows have already been written")
	}
	if len(red) != w.width || len(green) != w.width || len(blue) != w.width {
		return UsageError("row buffer length must equal the image width")
	}

	for _, lane := range [][]byte{red, green, blue} {
		if err := w.writeLane(lane); err != nil {
			return err
		}
	}

	w.written++
	return nil
}

// WriteRow writes the next row from a buffer of interleaved R, G, B
// values, which must have length equal to the image width multiplied by
// 3. Rows are written top to bottom, pixels left to right.
func (w *RGBWriter) WriteRow(rgb []byte) error {
	if w.written == w.height {
		return UsageError("all rows have already been written")
	}
	if len(rgb) != w.width*3 {
		return UsageError("row buffer length must equal the image width multiplied by 3")
	}

	for color := 0; color < 3; color++ {
		for x := 0; x < w.width; x++ {
			w.lane[x] = rgb[x*3+color]
		}
		if err := w.writeLane(w.lane); err != nil {
			return err
		}
	}

	w.written++
	return nil
}

// Finish flushes the compressor and completes the file. It fails if
// fewer rows were written than declared at construction.
func (w *RGBWriter) Finish() error {
	if w.written != w.height {
		return UsageError("not all rows have been written")
	}
	return w.z.Flush()
}

// PalettedWriter writes a 256-color paletted PCX file row by row. The
// row count is fixed at construction; WritePalette must be called after
// the last row, as the palette trailer finishes the file.
type PalettedWriter struct {
	z *rle.Writer
	w io.Writer

	width   int
	height  int
	written int
}

// NewPalettedWriter writes the file header to w and returns a writer
// expecting exactly height rows of width palette indices.
func NewPalettedWriter(w io.Writer, width, height, dpiX, dpiY int) (*PalettedWriter, error) {
	if width < 0 || width > 0xffff || height < 0 || height > 0xffff {
		return nil, UsageError("image size does not fit in 16 bits")
	}
	if err := writeHeader(w, true, uint16(width), uint16(height), uint16(dpiX), uint16(dpiY)); err != nil {
		return nil, err
	}

	return &PalettedWriter{
		z:      rle.NewWriter(w, width+width&1),
		w:      w,
		width:  width,
		height: height,
	}, nil
}

// WriteRow writes the next row of palette indices, one byte per pixel.
// The buffer length must equal the image width. Rows are written top to
// bottom, pixels left to right.
func (w *PalettedWriter) WriteRow(row []byte) error {
	if w.written == w.height {
		return UsageError("all rows have already been written")
	}
	if len(row) != w.width {
		return UsageError("row buffer length must equal the image width")
	}

	if _, err := w.z.Write(row); err != nil {
		return err
	}
	if err := w.z.Pad(); err != nil {
		return err
	}

	w.written++
	return nil
}

// WritePalette flushes the compressor and appends the palette trailer,
// completing the file. palette holds up to 256 R, G, B triples; unused
// entries are written as zeroes. It fails if fewer rows were written
// than declared at construction.
func (w *PalettedWriter) WritePalette(palette []byte) error {
	if w.written != w.height {
		return UsageError("not all rows have been written")
	}
	if len(palette) > 256*3 {
		return UsageError("palette too large")
	}
	if len(palette)%3 != 0 {
		return UsageError("palette length must be a multiple of 3")
	}

	if err := w.z.Flush(); err != nil {
		return err
	}

	trailer := make([]byte, paletteTrailerLength)
	trailer[0] = paletteMarker
	copy(trailer[1:], palette)

	_, err := w.w.Write(trailer)
	return err
}
