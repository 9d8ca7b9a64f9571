/*
Package pcx implements a PCX image decoder and encoder.

A PCX file is a fixed 128 byte header followed by scanline data, which
is usually run-length encoded, and ends with a 769 byte palette trailer
for 256-color images. Scanline data is stored one lane at a time: a
lane is one scanline of a single color plane, padded to the length
declared in the header. 24-bit images store three 8-bit planes per row,
while paletted images store indices either as whole bytes, packed at 1,
2 or 4 bits per pixel, or spread across up to four 1-bit planes.

Reader, RGBWriter and PalettedWriter work row by row against a caller
supplied stream. Decode, DecodeConfig and Encode provide the standard
image package entry points on top of them.
*/
package pcx

const (
	// First byte of every PCX file.
	magic = 0x0a

	// Byte marking the start of the 256-color palette trailer.
	paletteMarker = 0x0c

	headerLength = 128

	// Marker byte plus 256 RGB triples.
	paletteTrailerLength = 1 + 256*3
)

// pixelFormat is computed once from the plane count and bit depth and
// selects the row decode/encode strategy.
type pixelFormat int

const (
	formatRGB        pixelFormat = iota // 3 planes of 8 bits
	formatPalette256                    // 1 plane of 8 bits
	formatPacked                        // 1 plane of 1, 2 or 4 bits
	formatPlanar                        // 2 to 4 planes of 1 bit
)
