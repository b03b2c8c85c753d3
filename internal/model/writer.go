package model

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"unicode/utf8"
)

// Encode serializes m into the version-1 artifact payload. Map keys are
// written in sorted order so identical models encode to identical bytes.
func Encode(m *Model) ([]byte, error) {
	if m.CharWindow < 1 || m.CharWindow > maxWindow || m.TypeWindow < 1 || m.TypeWindow > maxWindow {
		return nil, fmt.Errorf("model: window sizes %d/%d out of range [1, %d]", m.CharWindow, m.TypeWindow, maxWindow)
	}

	w := &writer{}
	w.raw(formatMagic)
	w.u32(formatVersion)
	w.u8(byte(m.CharWindow))
	w.u8(byte(m.TypeWindow))
	w.i32(m.Bias)

	if err := w.ngramTable(m.CharNgrams, m.CharWindow); err != nil {
		return nil, fmt.Errorf("model: char n-gram table: %w", err)
	}
	if err := w.ngramTable(m.TypeNgrams, m.TypeWindow); err != nil {
		return nil, fmt.Errorf("model: type n-gram table: %w", err)
	}

	words := sortedKeys(m.Dict)
	w.u32(uint32(len(words)))
	for _, word := range words {
		if word == "" {
			return nil, fmt.Errorf("model: dict word must not be empty")
		}
		if err := w.str(word); err != nil {
			return nil, err
		}
		d := m.Dict[word]
		w.i32(d.Left)
		w.i32(d.Inside)
		w.i32(d.Right)
	}

	w.u32(uint32(len(m.TagLayers)))
	for i, layer := range m.TagLayers {
		if err := w.tagLayer(layer); err != nil {
			return nil, fmt.Errorf("model: tag layer %d: %w", i, err)
		}
	}
	return w.buf, nil
}

type writer struct {
	buf []byte
}

func (w *writer) raw(s string) { w.buf = append(w.buf, s...) }
func (w *writer) u8(v byte)    { w.buf = append(w.buf, v) }

func (w *writer) u16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *writer) u32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *writer) i32(v int32) { w.u32(uint32(v)) }

func (w *writer) str(s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("string %q exceeds %d bytes", s[:16]+"...", math.MaxUint16)
	}
	w.u16(uint16(len(s)))
	w.raw(s)
	return nil
}

func (w *writer) ngramTable(table map[string][]int32, window int) error {
	keys := sortedKeys(table)
	w.u32(uint32(len(keys)))
	for _, key := range keys {
		k := utf8.RuneCountInString(key)
		if k == 0 || k > window {
			return fmt.Errorf("n-gram %q length %d exceeds window %d", key, k, window)
		}
		weights := table[key]
		if want := 2*window - k + 1; len(weights) != want {
			return fmt.Errorf("n-gram %q has %d weights, want %d", key, len(weights), want)
		}
		if err := w.str(key); err != nil {
			return err
		}
		w.u16(uint16(len(weights)))
		for _, v := range weights {
			w.i32(v)
		}
	}
	return nil
}

func (w *writer) scoreTable(table map[string][]int32, vocabSize int) error {
	keys := sortedKeys(table)
	w.u32(uint32(len(keys)))
	for _, key := range keys {
		scores := table[key]
		if len(scores) != vocabSize {
			return fmt.Errorf("feature %q has %d scores, want %d", key, len(scores), vocabSize)
		}
		if err := w.str(key); err != nil {
			return err
		}
		for _, v := range scores {
			w.i32(v)
		}
	}
	return nil
}

func (w *writer) tagLayer(layer TagLayer) error {
	if layer.ContextLen < 0 || layer.ContextLen > maxWindow {
		return fmt.Errorf("context length %d out of range [0, %d]", layer.ContextLen, maxWindow)
	}
	if len(layer.Vocab) == 0 {
		return fmt.Errorf("empty vocabulary")
	}
	w.u8(byte(layer.ContextLen))
	w.u32(uint32(len(layer.Vocab)))
	for _, tag := range layer.Vocab {
		if err := w.str(tag); err != nil {
			return err
		}
	}
	if err := w.scoreTable(layer.Surface, len(layer.Vocab)); err != nil {
		return err
	}
	if err := w.scoreTable(layer.Left, len(layer.Vocab)); err != nil {
		return err
	}
	return w.scoreTable(layer.Right, len(layer.Vocab))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
