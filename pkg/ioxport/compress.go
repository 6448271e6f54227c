package ioxport

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Compress zstd-compresses data, grounded on the same
// github.com/klauspost/compress/zstd encoder the pack's Sneller repo wraps
// in compr.Compressor — used to shrink large JSON/CSV export payloads
// before they hit disk or the network.
func Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("ioxport: creating zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("ioxport: creating zstd decoder: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("ioxport: decompressing: %w", err)
	}
	return out, nil
}

// CompressWriter wraps w so every Write call is zstd-compressed, for
// streaming a large export without materializing the whole document.
func CompressWriter(w io.Writer) (*zstd.Encoder, error) {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("ioxport: creating streaming zstd encoder: %w", err)
	}
	return enc, nil
}

// DecompressReader wraps r so every Read call yields decompressed bytes.
func DecompressReader(r io.Reader) (*zstd.Decoder, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("ioxport: creating streaming zstd decoder: %w", err)
	}
	return dec, nil
}

// CompressString is a convenience wrapper for small in-memory payloads such
// as ExportJSON's output.
func CompressString(s string) ([]byte, error) {
	return Compress([]byte(s))
}

// DecompressToReader decompresses data and returns it as a Reader, for
// chaining directly into ImportJSON/ImportNodesCSV.
func DecompressToReader(data []byte) (io.Reader, error) {
	out, err := Decompress(data)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(out), nil
}
