/*
Package rle implements the run-length encoding used by the PCX image
format.

Each byte of a compressed stream is either a literal, if its top two
bits are not both set, or the first byte of a two byte code where the
low six bits hold a run length of 1 to 63 and the following byte holds
the value to repeat. Values of 0xc0 and above always cost two bytes,
even for a run of one.

The Writer tracks its position within the current lane and refuses to
extend a run onto a lane's final byte: the pending run is flushed there
and the final byte starts a fresh run. A run can therefore straddle a
lane boundary, but only when it begins on the last byte of a lane.
*/
package rle

import "io"

const (
	codeMask = 0xc0
	runMask  = 0x3f
	maxRun   = 63
)

// Reader decompresses a PCX RLE stream. A run can carry over from one
// Read call to the next, so a single Reader must be used for the whole
// stream.
type Reader struct {
	r io.Reader

	runCount byte
	runValue byte
}

// NewReader returns a Reader decompressing from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Read fills p with decompressed bytes. It returns io.EOF only once the
// underlying stream is exhausted and no run is pending. A run code
// missing its value byte surfaces as io.ErrUnexpectedEOF.
func (z *Reader) Read(p []byte) (int, error) {
	var n int
	for n < len(p) {
		for z.runCount > 0 && n < len(p) {
			p[n] = z.runValue
			z.runCount--
			n++
		}
		if n == len(p) {
			return n, nil
		}

		var b [1]byte
		if _, err := io.ReadFull(z.r, b[:]); err != nil {
			if err == io.EOF && n > 0 {
				return n, nil
			}
			return n, err
		}

		if b[0]&codeMask != codeMask {
			p[n] = b[0]
			n++
			continue
		}

		z.runCount = b[0] & runMask
		if _, err := io.ReadFull(z.r, b[:]); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return n, err
		}
		z.runValue = b[0]
	}
	return n, nil
}

// Writer compresses bytes using PCX RLE. The pending run is held in
// memory until the next byte breaks it; callers must call Flush after
// the last write or the final run is silently lost.
type Writer struct {
	w io.Writer

	laneLength   int
	lanePosition int

	runCount byte
	runValue byte
}

// NewWriter returns a Writer compressing to w. laneLength is the length
// of one lane in bytes, including padding, and must be at least 1.
func NewWriter(w io.Writer, laneLength int) *Writer {
	return &Writer{w: w, laneLength: laneLength}
}

// Write adds bytes to the compressed stream. A run is broken when the
// byte differs from the run value, when the run reaches 63 bytes, or
// when the byte is the last of its lane; that byte then opens the next
// run.
func (z *Writer) Write(p []byte) (int, error) {
	for i, b := range p {
		z.lanePosition++

		if b == z.runValue && z.runCount < maxRun && z.lanePosition != z.laneLength {
			z.runCount++
			continue
		}

		if z.lanePosition == z.laneLength {
			z.lanePosition = 0
		}

		if err := z.flushRun(); err != nil {
			return i, err
		}

		z.runCount, z.runValue = 1, b
	}
	return len(p), nil
}

// Pad writes zero bytes until the current lane is complete. It is a
// no-op when the writer is already at a lane boundary.
func (z *Writer) Pad() error {
	for z.lanePosition != 0 {
		if _, err := z.Write([]byte{0}); err != nil {
			return err
		}
	}
	return nil
}

// Flush emits the pending run and forwards the flush to the underlying
// writer if it supports one.
func (z *Writer) Flush() error {
	if err := z.flushRun(); err != nil {
		return err
	}
	if f, ok := z.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func (z *Writer) flushRun() error {
	var err error
	switch {
	case z.runCount == 0:
		return nil
	case z.runCount == 1 && z.runValue < codeMask:
		// A single byte below 0xc0 is its own code.
		_, err = z.w.Write([]byte{z.runValue})
	default:
		_, err = z.w.Write([]byte{codeMask | z.runCount, z.runValue})
	}
	z.runCount = 0
	return err
}
