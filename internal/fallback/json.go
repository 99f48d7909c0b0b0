package fallback

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"sitecontent/internal/models"
	"sitecontent/internal/provider"
)

// ErrInvalidJSON indicates a bundled JSON file in neither supported shape.
var ErrInvalidJSON = errors.New("fallback JSON must be an array or an object with contents")

// Ensure JSONSource implements provider.Provider.
var _ provider.Provider = (*JSONSource)(nil)

// JSONSource serves records from a bundled JSON file. The file holds either
// {"contents": [...]} like a CMS list response, or a bare array.
type JSONSource struct {
	store
}

// NewJSONSource creates a source for path. The file is read on first use;
// an empty path yields an empty source.
func NewJSONSource(path string) *JSONSource {
	s := &JSONSource{}
	s.name = "json"
	s.load = func() ([]models.RawArticle, error) {
		if path == "" {
			return nil, nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		return ParseJSON(data)
	}

	return s
}

// ParseJSON decodes bundled article JSON. Numbers are kept as json.Number.
func ParseJSON(data []byte) ([]models.RawArticle, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	switch data[0] {
	case '[':
		var records []models.RawArticle
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}

		return records, nil
	case '{':
		var wrapper struct {
			Contents []models.RawArticle `json:"contents"`
		}

		if err := dec.Decode(&wrapper); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}

		if wrapper.Contents == nil {
			return nil, ErrInvalidJSON
		}

		return wrapper.Contents, nil
	}

	return nil, ErrInvalidJSON
}
