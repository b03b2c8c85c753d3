package model

import (
	"bytes"
	"compress/gzip"
	"errors"
	"reflect"
	"testing"
)

func TestDecodeZstdContainer(t *testing.T) {
	want := sampleModel()

	data, err := EncodeZstd(want)
	if err != nil {
		t.Fatalf("encode zstd: %v", err)
	}
	if !bytes.HasPrefix(data, zstdMagic) {
		t.Fatalf("EncodeZstd output does not start with zstd magic: % x", data[:4])
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatal("zstd round trip mismatch")
	}
}

func TestDecodeGzipContainer(t *testing.T) {
	want := sampleModel()

	payload, err := Encode(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	got, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatal("gzip round trip mismatch")
	}
}

func TestDecodeCorruptContainers(t *testing.T) {
	valid, err := EncodeZstd(sampleModel())
	if err != nil {
		t.Fatalf("encode zstd: %v", err)
	}

	corruptZstd := append([]byte(nil), valid...)
	for i := 8; i < len(corruptZstd); i++ {
		corruptZstd[i] ^= 0xA5
	}

	corruptGzip := append([]byte(nil), gzipMagic...)
	corruptGzip = append(corruptGzip, 0x00, 0x01, 0x02)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "corrupt zstd frame", data: corruptZstd},
		{name: "truncated zstd frame", data: valid[:len(valid)-4]},
		{name: "corrupt gzip stream", data: corruptGzip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrCompression) {
				t.Fatalf("expected ErrCompression, got %v", err)
			}
		})
	}
}

func TestDecodeRawPassthrough(t *testing.T) {
	payload, err := Encode(sampleModel())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := decompress(payload)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatal("uncompressed payload was altered")
	}
}
