package domain

import (
	"bytes"
	"encoding/json"
	"iter"
	"unicode"
	"unicode/utf8"
)

// StreamDecoder walks a buffer holding zero or more JSON documents that may
// be separated by whitespace or written back to back ("{...}{...}").
//
// Decoding stops at the first value that cannot be parsed and the rest of
// the buffer is dropped. That is the normal end of a stream, not an error:
// captured report dumps are often truncated or garbled at the tail.
type StreamDecoder struct {
	buf  []byte
	pos  int
	done bool
}

// NewStreamDecoder returns a decoder positioned at the start of buf.
func NewStreamDecoder(buf []byte) *StreamDecoder {
	return &StreamDecoder{buf: buf}
}

// Next returns the next JSON value, or false once the buffer is exhausted
// or holds something undecodable at the current offset.
func (d *StreamDecoder) Next() (json.RawMessage, bool) {
	if d.done {
		return nil, false
	}

	d.pos = skipSpace(d.buf, d.pos)
	if d.pos >= len(d.buf) {
		d.done = true
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(d.buf[d.pos:]))
	var v json.RawMessage
	if err := dec.Decode(&v); err != nil {
		d.done = true
		return nil, false
	}
	d.pos += int(dec.InputOffset())
	return v, true
}

// Values drains the decoder as an iterator. Like Next, it does not restart:
// a second range over the same decoder yields nothing.
func (d *StreamDecoder) Values() iter.Seq[json.RawMessage] {
	return func(yield func(json.RawMessage) bool) {
		for {
			v, ok := d.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// skipSpace advances past Unicode whitespace, which is wider than the set
// encoding/json tolerates between tokens.
func skipSpace(buf []byte, pos int) int {
	for pos < len(buf) {
		r, size := utf8.DecodeRune(buf[pos:])
		if !unicode.IsSpace(r) {
			break
		}
		pos += size
	}
	return pos
}
