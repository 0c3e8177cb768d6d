package ml

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadGBTModel reads a trained ensemble artifact from disk and
// validates it before first use.
func LoadGBTModel(path string) (*GBTModel, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var model GBTModel
	if err := json.Unmarshal(payload, &model); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}
	return &model, nil
}
