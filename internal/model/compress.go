package model

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	gzipMagic = []byte{0x1F, 0x8B}
)

// decompress unwraps a zstd or gzip container around the model payload.
// Uncompressed payloads pass through untouched; the container is detected by
// its magic bytes, so callers always hand over whatever they read from disk.
func decompress(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		r, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompression, err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompression, err)
		}
		return out, nil
	case bytes.HasPrefix(data, gzipMagic):
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompression, err)
		}
		defer func() { _ = r.Close() }()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompression, err)
		}
		return out, nil
	default:
		return data, nil
	}
}

// EncodeZstd serializes m and wraps the payload in a zstd container, the
// layout the training pipeline ships artifacts in.
func EncodeZstd(m *Model) ([]byte, error) {
	payload, err := Encode(m)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("model: create zstd writer: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("model: compress payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("model: flush zstd stream: %w", err)
	}
	return buf.Bytes(), nil
}
