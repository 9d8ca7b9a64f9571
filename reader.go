package pcx

import (
	"io"

	"github.com/bodgit/pcx/rle"
)

// Reader decodes a PCX image row by row. It owns the underlying stream
// for the duration of the session and is not safe for concurrent use.
type Reader struct {
	// Header of the file being read. All useful values are also
	// available through Reader methods.
	Header *Header

	raw io.Reader // underlying stream
	pix io.Reader // raw, or an rle.Reader wrapped around it

	lanesRead   uint32
	paletteRead bool
}

// NewReader reads the header from r and prepares to decode the pixel
// data that follows.
func NewReader(r io.Reader) (*Reader, error) {
	h, err := LoadHeader(r)
	if err != nil {
		return nil, err
	}

	pix := r
	if h.Compressed {
		pix = rle.NewReader(r)
	}

	return &Reader{
		Header: h,
		raw:    r,
		pix:    pix,
	}, nil
}

// Width of the image in pixels.
func (r *Reader) Width() int {
	return int(r.Header.Width)
}

// Height of the image in pixels.
func (r *Reader) Height() int {
	return int(r.Header.Height)
}

// IsPaletted reports whether rows must be read with NextRowPaletted
// rather than the RGB row methods.
func (r *Reader) IsPaletted() bool {
	return r.Header.IsPaletted()
}

// PaletteLength returns the number of colors in the palette, or zero
// for RGB images.
func (r *Reader) PaletteLength() int {
	return r.Header.PaletteLength()
}

func (r *Reader) readPixByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r.pix, b[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	return b[0], nil
}

// skipPadding discards the padding that follows the lane just read,
// except after the final lane of the image where nothing follows but
// the optional palette trailer.
func (r *Reader) skipPadding() error {
	if r.lanesRead+1 < uint32(r.Header.Height)*uint32(r.Header.Planes) {
		for i := 0; i < int(r.Header.LanePadding()); i++ {
			if _, err := r.readPixByte(); err != nil {
				return err
			}
		}
	}
	r.lanesRead++
	return nil
}

// nextLane reads one lane of pixel data. buf length must equal the lane
// proper length.
func (r *Reader) nextLane(buf []byte) error {
	if len(buf) != int(r.Header.LaneProperLength()) {
		return UsageError("lane buffer length must equal the lane proper length")
	}
	if _, err := io.ReadFull(r.pix, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	return r.skipPadding()
}

// NextRowPaletted reads the next row of a paletted image into buffer,
// one palette index per byte. The buffer length must equal the image
// width. Rows are returned top to bottom, pixels left to right.
func (r *Reader) NextRowPaletted(buffer []byte) error {
	if !r.IsPaletted() {
		return UsageError("NextRowPaletted called on an RGB image")
	}
	if len(buffer) != r.Width() {
		return UsageError("row buffer length must equal the image width")
	}

	switch r.Header.format() {
	case formatPalette256:
		// Each byte is already a palette index.
		return r.nextLane(buffer)
	case formatPacked:
		return r.nextRowPacked(buffer)
	default:
		return r.nextRowPlanar(buffer)
	}
}

// nextRowPacked unpacks a single lane holding 2, 4 or 8 pixels per
// byte, most significant bits first.
func (r *Reader) nextRowPacked(buffer []byte) error {
	width := len(buffer)
	laneLength := int(r.Header.LaneProperLength())

	// Read the packed lane into the tail of the buffer so unpacking
	// can walk forward without clobbering unread bytes.
	offset := width - laneLength
	if err := r.nextLane(buffer[offset:]); err != nil {
		return err
	}

	bits := int(r.Header.BitDepth)
	n := 8 / bits
	mask := byte(1<<uint(bits) - 1)

	full := width * bits / 8
	for i := 0; i < full; i++ {
		v := buffer[offset+i]
		for j := 0; j < n; j++ {
			buffer[i*n+j] = v >> uint(8-bits*(j+1)) & mask
		}
	}

	// The final byte of the lane may be only partially used.
	if rem := width - full*n; rem > 0 {
		v := buffer[offset+full]
		for j := 0; j < rem; j++ {
			buffer[full*n+j] = v >> uint(8-bits*(j+1)) & mask
		}
	}

	return nil
}

// nextRowPlanar assembles indices from 2 to 4 one-bit planes. Bit
// (7 - b) of byte j in plane d carries bit d of the index of pixel
// 8j + b.
func (r *Reader) nextRowPlanar(buffer []byte) error {
	laneLength := int(r.Header.LaneProperLength())
	planes := int(r.Header.Planes)

	for i := range buffer {
		buffer[i] = 0
	}

	for d := 0; d < planes; d++ {
		for j := 0; j < laneLength; j++ {
			v, err := r.readPixByte()
			if err != nil {
				return err
			}
			for b := 0; b < 8; b++ {
				if x := 8*j + b; x < len(buffer) {
					buffer[x] |= (v >> uint(7-b) & 1) << uint(d)
				}
			}
		}
		if err := r.skipPadding(); err != nil {
			return err
		}
	}

	return nil
}

// NextRowRGBSeparate reads the next row of an RGB image into separate
// red, green and blue buffers, each of which must have length equal to
// the image width. Rows are returned top to bottom, pixels left to
// right.
func (r *Reader) NextRowRGBSeparate(red, green, blue []byte) error {
	if r.IsPaletted() {
		return UsageError("NextRowRGBSeparate called on a paletted image")
	}

	if err := r.nextLane(red); err != nil {
		return err
	}
	if err := r.nextLane(green); err != nil {
		return err
	}
	return r.nextLane(blue)
}

// NextRowRGB reads the next row of an RGB image into a single buffer of
// interleaved R, G, B values. The buffer length must equal the image
// width multiplied by 3. Rows are returned top to bottom, pixels left
// to right.
func (r *Reader) NextRowRGB(rgb []byte) error {
	if r.IsPaletted() {
		return UsageError("NextRowRGB called on a paletted image")
	}
	if len(rgb) != r.Width()*3 {
		return UsageError("row buffer length must equal the image width multiplied by 3")
	}

	for color := 0; color < 3; color++ {
		for x := 0; x < r.Width(); x++ {
			v, err := r.readPixByte()
			if err != nil {
				return err
			}
			rgb[x*3+color] = v
		}
		if err := r.skipPadding(); err != nil {
			return err
		}
	}

	return nil
}

// ReadRGBPixels decodes the entire image into rgb as interleaved R, G,
// B values, expanding palette indices to colors as needed. The buffer
// length must equal width*height*3. For 256-color images the palette is
// resolved first through Palette, so the underlying stream must be an
// io.Seeker.
//
// An unexpected end of stream inside paletted row data is tolerated and
// leaves the remainder of the image zeroed; some files in the wild are
// truncated this way.
func (r *Reader) ReadRGBPixels(rgb []byte) error {
	width, height := r.Width(), r.Height()
	rowSize := width * 3

	if len(rgb) != rowSize*height {
		return UsageError("buffer length must equal width*height*3")
	}

	if !r.IsPaletted() {
		for y := 0; y < height; y++ {
			if err := r.NextRowRGB(rgb[y*rowSize : (y+1)*rowSize]); err != nil {
				return err
			}
		}
		return nil
	}

	var palette [256 * 3]byte
	if _, err := r.Palette(palette[:]); err != nil {
		return err
	}

	for y := 0; y < height; y++ {
		switch err := r.NextRowPaletted(rgb[y*rowSize : y*rowSize+width]); err {
		case nil, io.EOF, io.ErrUnexpectedEOF:
		default:
			return err
		}

		// Expand indices in place, right to left so the single-byte
		// indices are not overwritten before they are read.
		for x := width - 1; x >= 0; x-- {
			i := int(rgb[y*rowSize+x]) * 3
			rgb[y*rowSize+x*3+0] = palette[i+0]
			rgb[y*rowSize+x*3+1] = palette[i+1]
			rgb[y*rowSize+x*3+2] = palette[i+2]
		}
	}

	return nil
}
