// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package storage

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// payloadHeader travels with every encoded model payload.
type payloadHeader struct {
	Name      string
	Format    int
	Checksum  string
	SizeBytes int64
	SavedAt   time.Time
}

// storedPayload is the encoded form of one model payload.
type storedPayload struct {
	Header         payloadHeader
	CompressedData []byte
}

// encodePayload gob-encodes v, checksums the raw bytes and gzips them.
// It returns the encoded payload and the checksum.
func encodePayload(name string, v any) ([]byte, string, error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(v); err != nil {
		return nil, "", fmt.Errorf("encode %s: %w", name, err)
	}

	hash := sha256.Sum256(raw.Bytes())
	checksum := hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return nil, "", fmt.Errorf("compress %s: %w", name, err)
	}
	if err := gzw.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize compression of %s: %w", name, err)
	}

	sp := storedPayload{
		Header: payloadHeader{
			Name:      name,
			Format:    FormatVersion,
			Checksum:  checksum,
			SizeBytes: int64(compressed.Len()),
			SavedAt:   time.Now().UTC(),
		},
		CompressedData: compressed.Bytes(),
	}

	var out bytes.Buffer
	if err := gob.NewEncoder(&out).Encode(sp); err != nil {
		return nil, "", fmt.Errorf("write %s: %w", name, err)
	}
	return out.Bytes(), checksum, nil
}

// decodePayload reverses encodePayload into target, verifying the checksum.
func decodePayload(name string, data []byte, target any) (string, error) {
	var sp storedPayload
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&sp); err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if sp.Header.Format != FormatVersion {
		return "", fmt.Errorf("%s: unsupported format %d", name, sp.Header.Format)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sp.CompressedData))
	if err != nil {
		return "", fmt.Errorf("decompress %s: %w", name, err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return "", fmt.Errorf("read decompressed %s: %w", name, err)
	}

	hash := sha256.Sum256(raw)
	checksum := hex.EncodeToString(hash[:])
	if checksum != sp.Header.Checksum {
		return "", fmt.Errorf("%s checksum mismatch: expected %s, got %s", name, sp.Header.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return checksum, nil
}

// decodeChecked decodes a payload and compares it with the manifest checksum
// when the manifest records one.
func decodeChecked(name string, data []byte, target any, checksums map[string]string) error {
	sum, err := decodePayload(name, data, target)
	if err != nil {
		return err
	}
	if want := checksums[name]; want != "" && want != sum {
		return fmt.Errorf("%s does not match manifest checksum", name)
	}
	return nil
}
