package model

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Artifact layout, version 1, all integers little-endian:
//
//	magic   [4]byte "VPMD"
//	version uint32  (= 1)
//	charWindow, typeWindow uint8
//	bias    int32
//	charNgrams:  uint32 count, then {str key, uint16 nWeights, int32 × nWeights}
//	typeNgrams:  same shape; keys are chartype code bytes
//	dict:        uint32 count, then {str word, int32 left, int32 inside, int32 right}
//	tagLayers:   uint32 count, then per layer:
//	             uint8 contextLen, uint32 vocab count + str entries,
//	             three tables (surface, left, right):
//	             uint32 count, then {str key, int32 × len(vocab)}
//
// where str is uint16 byte length followed by UTF-8 bytes. N-gram weight
// counts are checked against the window: an n-gram of rune length k carries
// exactly 2*window-k+1 positional weights.
const (
	formatMagic   = "VPMD"
	formatVersion = 1

	maxWindow = 16
)

// Decode parses raw model bytes, transparently unwrapping a zstd or gzip
// container first. The returned Model is never mutated afterwards.
func Decode(data []byte) (*Model, error) {
	payload, err := decompress(data)
	if err != nil {
		return nil, err
	}
	return decodePayload(payload)
}

func decodePayload(data []byte) (*Model, error) {
	c := &cursor{data: data}

	magic, err := c.bytes(4)
	if err != nil {
		return nil, err
	}
	if string(magic) != formatMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFormat, magic)
	}
	version, err := c.u32()
	if err != nil {
		return nil, err
	}
	if version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d (want %d)", ErrFormat, version, formatVersion)
	}

	m := &Model{}

	charWindow, err := c.u8()
	if err != nil {
		return nil, err
	}
	typeWindow, err := c.u8()
	if err != nil {
		return nil, err
	}
	if charWindow == 0 || charWindow > maxWindow || typeWindow == 0 || typeWindow > maxWindow {
		return nil, fmt.Errorf("%w: window sizes %d/%d out of range [1, %d]", ErrFormat, charWindow, typeWindow, maxWindow)
	}
	m.CharWindow = int(charWindow)
	m.TypeWindow = int(typeWindow)

	if m.Bias, err = c.i32(); err != nil {
		return nil, err
	}

	if m.CharNgrams, err = c.ngramTable(m.CharWindow); err != nil {
		return nil, fmt.Errorf("char n-gram table: %w", err)
	}
	if m.TypeNgrams, err = c.ngramTable(m.TypeWindow); err != nil {
		return nil, fmt.Errorf("type n-gram table: %w", err)
	}

	dictCount, err := c.u32()
	if err != nil {
		return nil, err
	}
	m.Dict = make(map[string]DictWeights, dictCount)
	for i := uint32(0); i < dictCount; i++ {
		word, err := c.str()
		if err != nil {
			return nil, fmt.Errorf("dict entry %d: %w", i, err)
		}
		if word == "" {
			return nil, fmt.Errorf("%w: empty dict word at entry %d", ErrFormat, i)
		}
		var w DictWeights
		if w.Left, err = c.i32(); err != nil {
			return nil, err
		}
		if w.Inside, err = c.i32(); err != nil {
			return nil, err
		}
		if w.Right, err = c.i32(); err != nil {
			return nil, err
		}
		m.Dict[word] = w
	}

	layerCount, err := c.u32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < layerCount; i++ {
		layer, err := c.tagLayer()
		if err != nil {
			return nil, fmt.Errorf("tag layer %d: %w", i, err)
		}
		m.TagLayers = append(m.TagLayers, layer)
	}

	if c.off != len(c.data) {
		return nil, fmt.Errorf("%w: %d trailing bytes after payload", ErrFormat, len(c.data)-c.off)
	}
	return m, nil
}

// cursor walks the payload, reporting truncation as ErrFormat.
type cursor struct {
	data []byte
	off  int
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || c.off+n > len(c.data) {
		return nil, fmt.Errorf("%w: truncated at offset %d (need %d bytes, have %d)", ErrFormat, c.off, n, len(c.data)-c.off)
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) u8() (byte, error) {
	b, err := c.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) u16() (uint16, error) {
	b, err := c.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) u32() (uint32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) i32() (int32, error) {
	v, err := c.u32()
	return int32(v), err
}

func (c *cursor) str() (string, error) {
	n, err := c.u16()
	if err != nil {
		return "", err
	}
	b, err := c.bytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: string at offset %d is not valid UTF-8", ErrFormat, c.off-int(n))
	}
	return string(b), nil
}

func (c *cursor) weights(n int) ([]int32, error) {
	out := make([]int32, n)
	for i := range out {
		v, err := c.i32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *cursor) ngramTable(window int) (map[string][]int32, error) {
	count, err := c.u32()
	if err != nil {
		return nil, err
	}
	table := make(map[string][]int32, count)
	for i := uint32(0); i < count; i++ {
		key, err := c.str()
		if err != nil {
			return nil, err
		}
		k := utf8.RuneCountInString(key)
		if k == 0 || k > window {
			return nil, fmt.Errorf("%w: n-gram %q length %d exceeds window %d", ErrFormat, key, k, window)
		}
		nWeights, err := c.u16()
		if err != nil {
			return nil, err
		}
		if want := 2*window - k + 1; int(nWeights) != want {
			return nil, fmt.Errorf("%w: n-gram %q has %d weights, want %d", ErrFormat, key, nWeights, want)
		}
		w, err := c.weights(int(nWeights))
		if err != nil {
			return nil, err
		}
		table[key] = w
	}
	return table, nil
}

func (c *cursor) scoreTable(vocabSize int) (map[string][]int32, error) {
	count, err := c.u32()
	if err != nil {
		return nil, err
	}
	table := make(map[string][]int32, count)
	for i := uint32(0); i < count; i++ {
		key, err := c.str()
		if err != nil {
			return nil, err
		}
		scores, err := c.weights(vocabSize)
		if err != nil {
			return nil, err
		}
		table[key] = scores
	}
	return table, nil
}

func (c *cursor) tagLayer() (TagLayer, error) {
	var layer TagLayer

	contextLen, err := c.u8()
	if err != nil {
		return layer, err
	}
	if contextLen > maxWindow {
		return layer, fmt.Errorf("%w: tag context length %d out of range [0, %d]", ErrFormat, contextLen, maxWindow)
	}
	layer.ContextLen = int(contextLen)

	vocabCount, err := c.u32()
	if err != nil {
		return layer, err
	}
	if vocabCount == 0 {
		return layer, fmt.Errorf("%w: tag layer with empty vocabulary", ErrFormat)
	}
	layer.Vocab = make([]string, vocabCount)
	for i := range layer.Vocab {
		if layer.Vocab[i], err = c.str(); err != nil {
			return layer, err
		}
	}

	if layer.Surface, err = c.scoreTable(len(layer.Vocab)); err != nil {
		return layer, err
	}
	if layer.Left, err = c.scoreTable(len(layer.Vocab)); err != nil {
		return layer, err
	}
	if layer.Right, err = c.scoreTable(len(layer.Vocab)); err != nil {
		return layer, err
	}
	return layer, nil
}
