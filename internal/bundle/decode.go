// Package bundle decodes uploaded JSON bundles.
package bundle

import (
	"encoding/json"
	"fmt"
	"io"

	"corpusview/internal/domain"
	"corpusview/internal/validation"
)

// Decode reads a JSON bundle, validates its shape and returns the typed form.
func Decode(r io.Reader) (domain.Bundle, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return domain.Bundle{}, fmt.Errorf("read bundle: %w", err)
	}
	return DecodeBytes(payload)
}

// DecodeBytes is Decode for an in-memory payload.
func DecodeBytes(payload []byte) (domain.Bundle, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return domain.Bundle{}, fmt.Errorf("parse bundle: %w", err)
	}
	if err := validation.Validate(raw); err != nil {
		return domain.Bundle{}, err
	}

	var b domain.Bundle
	if err := json.Unmarshal(payload, &b); err != nil {
		return domain.Bundle{}, fmt.Errorf("decode bundle: %w", err)
	}
	return b, nil
}
