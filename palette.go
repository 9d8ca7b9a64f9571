package pcx

import "io"

// smallPalette fills p with any palette that is available without
// touching the stream and returns its length, or false for the
// 256-color case which lives at the end of the file.
func (r *Reader) smallPalette(p []byte) (int, bool, error) {
	switch n := r.Header.PaletteLength(); n {
	case 0:
		return 0, true, nil
	case 2:
		// Monochrome images have no stored palette; black and white
		// are implied.
		if len(p) < 6 {
			return 0, true, UsageError("palette buffer too small")
		}
		p[0], p[1], p[2] = 0, 0, 0
		p[3], p[4], p[5] = 255, 255, 255
		return 2, true, nil
	case 256:
		return 0, false, nil
	default:
		// 4, 8 or 16 colors, stored inline in the header.
		if len(p) < n*3 {
			return 0, true, UsageError("palette buffer too small")
		}
		copy(p[:n*3], r.Header.Palette[:n*3])
		return n, true, nil
	}
}

// Palette fills p with the color palette as R, G, B triples and returns
// the number of colors, which is zero for RGB images. The buffer must
// hold at least three bytes per color.
//
// The 256-color palette is stored at the very end of the file, so for
// such images the underlying stream must be an io.Seeker; the current
// position is saved and restored exactly, whether or not an error
// occurs. Use ReadPalette when only forward reading is available.
func (r *Reader) Palette(p []byte) (int, error) {
	if n, done, err := r.smallPalette(p); done {
		return n, err
	}
	if len(p) < 256*3 {
		return 0, UsageError("palette buffer too small")
	}

	s, ok := r.raw.(io.Seeker)
	if !ok {
		return 0, UsageError("reading a 256-color palette requires a seekable stream; use ReadPalette")
	}

	pos, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	if _, err = s.Seek(-paletteTrailerLength, io.SeekEnd); err == nil {
		err = readPaletteTrailer(r.raw, p)
	}

	if _, serr := s.Seek(pos, io.SeekStart); serr != nil && err == nil {
		err = serr
	}
	if err != nil {
		return 0, err
	}
	return 256, nil
}

func readPaletteTrailer(r io.Reader, p []byte) error {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	if b[0] != paletteMarker {
		return FormatError("no 256-color palette")
	}
	if _, err := io.ReadFull(r, p[:256*3]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// ReadPalette fills p with the color palette as R, G, B triples and
// returns the number of colors, which is zero for RGB images.
//
// For 256-color images the rest of the stream is consumed to reach the
// palette trailer at the end of the file, so it may be called only once
// and no pixel data can be read afterwards. It works on plain forward
// readers; prefer Palette when the stream is seekable.
func (r *Reader) ReadPalette(p []byte) (int, error) {
	if n, done, err := r.smallPalette(p); done {
		return n, err
	}
	if len(p) < 256*3 {
		return 0, UsageError("palette buffer too small")
	}
	if r.paletteRead {
		return 0, UsageError("palette already consumed")
	}
	r.paletteRead = true

	// Read the remainder of the stream through a rotating buffer of
	// exactly the trailer size; once the end is reached the buffer
	// holds the last 769 bytes with the oldest at the rotation point.
	// Reads bypass the decompressor: the trailer is not compressed.
	var tmp [paletteTrailerLength]byte
	pos := 0
	for {
		n, err := r.raw.Read(tmp[pos:])
		pos = (pos + n) % paletteTrailerLength
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			break
		}
	}

	if tmp[pos] != paletteMarker {
		return 0, FormatError("no 256-color palette")
	}

	n := copy(p, tmp[pos+1:])
	copy(p[n:256*3], tmp[:pos])

	return 256, nil
}
