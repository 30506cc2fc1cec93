package model

import (
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"
)

// EncodeArtifact serializes a fitted model for storage: JSON wrapped in
// snappy block compression. The format carries no version field; artifacts
// are replaced wholesale on every forecast run, never migrated.
func EncodeArtifact(f Fitted) ([]byte, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode model artifact: %w", err)
	}
	return snappy.Encode(nil, raw), nil
}

// DecodeArtifact restores a fitted model from its stored form.
func DecodeArtifact(data []byte) (Fitted, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return Fitted{}, fmt.Errorf("decode model artifact: %w", err)
	}
	var f Fitted
	if err := json.Unmarshal(raw, &f); err != nil {
		return Fitted{}, fmt.Errorf("decode model artifact: %w", err)
	}
	return f, nil
}
