// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package excalidraw

import (
	"strings"
	"unicode/utf16"
)

// LZ-string codec, base64 alphabet variant. The Obsidian Excalidraw plugin
// stores the drawing as compressToBase64 output; the codec works on UTF-16
// code units so non-ASCII text round-trips with the JavaScript library.

const lzAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="

// bitWriter packs values LSB first into 6-bit alphabet characters.
type bitWriter struct {
	out      strings.Builder
	val      int
	position int
}

func (w *bitWriter) writeBit(bit int) {
	w.val = w.val<<1 | bit
	if w.position == 5 {
		w.position = 0
		w.out.WriteByte(lzAlphabet[w.val])
		w.val = 0
		return
	}
	w.position++
}

func (w *bitWriter) writeBits(value, n int) {
	for i := 0; i < n; i++ {
		w.writeBit(value & 1)
		value >>= 1
	}
}

func (w *bitWriter) flush() {
	for {
		w.val <<= 1
		if w.position == 5 {
			w.out.WriteByte(lzAlphabet[w.val])
			return
		}
		w.position++
	}
}

// unitKey keys a dictionary entry by its UTF-16 code units.
func unitKey(units []uint16) string {
	b := make([]byte, 0, 2*len(units))
	for _, u := range units {
		b = append(b, byte(u>>8), byte(u))
	}
	return string(b)
}

func firstUnit(key string) uint16 {
	return uint16(key[0])<<8 | uint16(key[1])
}

// CompressToBase64 compresses s the way lz-string's compressToBase64 does.
func CompressToBase64(s string) string {
	units := utf16.Encode([]rune(s))

	dictionary := make(map[string]int)
	pending := make(map[string]bool)
	enlargeIn, dictSize, numBits := 2, 3, 2
	var w bitWriter

	grow := func() {
		enlargeIn--
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}

	emit := func(key string) {
		if pending[key] {
			c := firstUnit(key)
			if c < 256 {
				w.writeBits(0, numBits)
				w.writeBits(int(c), 8)
			} else {
				w.writeBits(1, numBits)
				w.writeBits(int(c), 16)
			}
			grow()
			delete(pending, key)
		} else {
			w.writeBits(dictionary[key], numBits)
		}
		grow()
	}

	current := ""
	for i := range units {
		c := unitKey(units[i : i+1])
		if _, ok := dictionary[c]; !ok {
			dictionary[c] = dictSize
			dictSize++
			pending[c] = true
		}
		wc := current + c
		if _, ok := dictionary[wc]; ok {
			current = wc
			continue
		}
		emit(current)
		dictionary[wc] = dictSize
		dictSize++
		current = c
	}
	if current != "" {
		emit(current)
	}

	w.writeBits(2, numBits)
	w.flush()

	out := w.out.String()
	if pad := len(out) % 4; pad != 0 {
		out += strings.Repeat("=", 4-pad)
	}
	return out
}

// bitReader reads bits back out of alphabet characters, MSB first within
// each character.
type bitReader struct {
	input    string
	val      int
	position int
	index    int
}

func newBitReader(input string) *bitReader {
	r := &bitReader{input: input, position: 32, index: 1}
	r.val = r.valueAt(0)
	return r
}

func (r *bitReader) valueAt(i int) int {
	if i >= len(r.input) {
		return 0
	}
	return strings.IndexByte(lzAlphabet, r.input[i])
}

func (r *bitReader) readBits(n int) int {
	bits := 0
	for power := 1; power != 1<<n; power <<= 1 {
		bit := r.val & r.position
		r.position >>= 1
		if r.position == 0 {
			r.position = 32
			r.val = r.valueAt(r.index)
			r.index++
		}
		if bit > 0 {
			bits |= power
		}
	}
	return bits
}

// DecompressFromBase64 reverses CompressToBase64. It reports false when
// the input is not a valid stream.
func DecompressFromBase64(input string) (string, bool) {
	if input == "" {
		return "", true
	}
	r := newBitReader(input)

	dictionary := [][]uint16{nil, nil, nil}
	enlargeIn, numBits := 4, 3

	var c []uint16
	switch r.readBits(2) {
	case 0:
		c = []uint16{uint16(r.readBits(8))}
	case 1:
		c = []uint16{uint16(r.readBits(16))}
	case 2:
		return "", true
	default:
		return "", false
	}
	dictionary = append(dictionary, c)
	w := c
	result := append([]uint16(nil), c...)

	for {
		if r.index > len(input) {
			return "", false
		}
		code := r.readBits(numBits)
		switch code {
		case 0, 1:
			width := 8
			if code == 1 {
				width = 16
			}
			dictionary = append(dictionary, []uint16{uint16(r.readBits(width))})
			code = len(dictionary) - 1
			enlargeIn--
		case 2:
			return string(utf16.Decode(result)), true
		}
		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}

		var entry []uint16
		switch {
		case code < len(dictionary):
			entry = dictionary[code]
		case code == len(dictionary):
			entry = append(append([]uint16(nil), w...), w[0])
		default:
			return "", false
		}
		result = append(result, entry...)

		next := append(append([]uint16(nil), w...), entry[0])
		dictionary = append(dictionary, next)
		enlargeIn--
		w = entry

		if enlargeIn == 0 {
			enlargeIn = 1 << numBits
			numBits++
		}
	}
}
