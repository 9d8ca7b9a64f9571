package pcx

import (
	"encoding/binary"
	"io"
)

// Version identifies the PC Paintbrush release that wrote the file.
type Version byte

const (
	// Version 2.5 with the fixed EGA palette.
	V0 Version = 0
	// Version 2.8 with modifiable EGA palette.
	V2 Version = 2
	// Version 2.8 without palette information.
	V3 Version = 3
	// PC Paintbrush for Windows.
	V4 Version = 4
	// Version 3.0 and later, including 24-bit files.
	V5 Version = 5
)

// Header is the parsed 128 byte PCX header. It is immutable once loaded
// and owned by the Reader or writer for the lifetime of the session.
type Header struct {
	Version Version

	// Whether the scanline data is run-length encoded. Uncompressed
	// files are non-standard but accepted.
	Compressed bool

	// Bits per pixel per plane: 1, 2, 4 or 8.
	BitDepth byte

	// Width and height of the image, derived from the window
	// coordinates.
	Width, Height uint16

	// Offset indicating where to render the image, almost always
	// (0, 0).
	StartX, StartY uint16

	// Dots per inch. Unreliable in files found in the wild.
	DPIX, DPIY uint16

	// Inline palette of up to 16 RGB triples.
	Palette [48]byte

	// Number of color planes: 1, 2, 3 or 4.
	Planes byte

	// Bytes per lane, including padding.
	LaneLength uint16
}

func laneProperLength(width uint16, bitDepth byte) uint16 {
	return uint16((uint32(width)*uint32(bitDepth)-1)/8 + 1)
}

// LoadHeader reads and validates a PCX header from r.
func LoadHeader(r io.Reader) (*Header, error) {
	var buf [headerLength]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	if buf[0] != magic {
		return nil, FormatError("not a PCX file")
	}

	switch buf[1] {
	case 0, 2, 3, 4, 5:
	default:
		return nil, FormatError("unknown version")
	}

	if buf[2] != 0 && buf[2] != 1 {
		return nil, FormatError("unknown encoding")
	}

	bitDepth := buf[3]
	switch bitDepth {
	case 1, 2, 4, 8:
	default:
		return nil, FormatError("invalid bits per plane")
	}

	xStart := binary.LittleEndian.Uint16(buf[4:])
	yStart := binary.LittleEndian.Uint16(buf[6:])
	xEnd := binary.LittleEndian.Uint16(buf[8:])
	yEnd := binary.LittleEndian.Uint16(buf[10:])

	// A window spanning the full coordinate range would overflow the
	// 16-bit width or height.
	if xEnd < xStart || yEnd < yStart || xEnd-xStart == 0xffff || yEnd-yStart == 0xffff {
		return nil, FormatError("invalid dimensions")
	}

	h := &Header{
		Version:    Version(buf[1]),
		Compressed: buf[2] == 1,
		BitDepth:   bitDepth,
		Width:      xEnd - xStart + 1,
		Height:     yEnd - yStart + 1,
		StartX:     xStart,
		StartY:     yStart,
		DPIX:       binary.LittleEndian.Uint16(buf[12:]),
		DPIY:       binary.LittleEndian.Uint16(buf[14:]),
		Planes:     buf[65],
		LaneLength: binary.LittleEndian.Uint16(buf[66:]),
	}
	copy(h.Palette[:], buf[16:64])

	switch [2]byte{h.Planes, h.BitDepth} {
	case [2]byte{3, 8}, // 24-bit RGB
		[2]byte{1, 1}, // monochrome
		[2]byte{1, 2}, // 4-color palette
		[2]byte{1, 4}, // 16-color palette
		[2]byte{1, 8}, // 256-color palette
		[2]byte{2, 1},
		[2]byte{3, 1},
		[2]byte{4, 1}:
	default:
		return nil, FormatError("invalid or unsupported color format")
	}

	if h.LaneLength < laneProperLength(h.Width, h.BitDepth) {
		return nil, FormatError("invalid lane length")
	}

	return h, nil
}

// LaneProperLength is the number of pixel data bytes per lane,
// excluding padding.
func (h *Header) LaneProperLength() uint16 {
	return laneProperLength(h.Width, h.BitDepth)
}

// LanePadding is the number of trailing filler bytes per lane.
func (h *Header) LanePadding() uint16 {
	return h.LaneLength - h.LaneProperLength()
}

// PaletteLength returns the number of colors in the palette: 2, 4, 8,
// 16 or 256, or zero for 24-bit RGB images which have none.
func (h *Header) PaletteLength() int {
	if h.Planes == 3 && h.BitDepth == 8 {
		return 0
	}
	return 1 << (uint(h.BitDepth) * uint(h.Planes))
}

// IsPaletted reports whether pixels are palette indices rather than RGB
// samples.
func (h *Header) IsPaletted() bool {
	return h.PaletteLength() != 0
}

func (h *Header) format() pixelFormat {
	switch {
	case h.Planes == 3 && h.BitDepth == 8:
		return formatRGB
	case h.Planes == 1 && h.BitDepth == 8:
		return formatPalette256
	case h.Planes == 1:
		return formatPacked
	default:
		return formatPlanar
	}
}

// writeHeader emits the fixed header used for all files this package
// writes: version 5, compressed, 8 bits per plane, with the lane length
// rounded up to an even number of bytes.
func writeHeader(w io.Writer, paletted bool, width, height, dpiX, dpiY uint16) error {
	if width == 0xffff {
		// Rounding the lane length up to even would overflow.
		return UsageError("cannot write image with width 0xffff")
	}
	if width == 0 || height == 0 {
		return UsageError("cannot write image with zero size")
	}

	var buf [headerLength]byte
	buf[0] = magic
	buf[1] = byte(V5)
	buf[2] = 1 // compressed
	buf[3] = 8 // bits per plane
	binary.LittleEndian.PutUint16(buf[8:], width-1)
	binary.LittleEndian.PutUint16(buf[10:], height-1)
	binary.LittleEndian.PutUint16(buf[12:], dpiX)
	binary.LittleEndian.PutUint16(buf[14:], dpiY)
	if paletted {
		buf[65] = 1
	} else {
		buf[65] = 3
	}
	binary.LittleEndian.PutUint16(buf[66:], width+width&1)
	buf[68] = 1 // palette kind: color

	_, err := w.Write(buf[:])
	return err
}
