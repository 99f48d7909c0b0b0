// Package metadata stamps generated content reports with a provenance block
// and verifies that a report was not edited after generation.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"sitecontent/internal/models"
)

const (
	// TagStart is the start of the metadata block.
	TagStart = "<!-- METADATA_START"
	// TagEnd is the end of the metadata block.
	TagEnd = "METADATA_END -->"
)

// Metadata verification errors.
var (
	ErrNoMetadataBlock = errors.New("no metadata block found")
	ErrNoHashFound     = errors.New("no hash found in metadata")
	ErrHashMismatch    = errors.New("hash mismatch")
)

// Metadata describes where a report came from.
type Metadata struct {
	Source      string
	Count       int
	GeneratedAt time.Time
	// Fingerprint identifies the article list, independent of formatting.
	Fingerprint string
	// Hash covers the report text outside the block.
	Hash string
}

var metadataRegex = regexp.MustCompile(`(?s)<!--\s*METADATA_START\s*\n(.*?)\n\s*METADATA_END\s*-->`)

// Extract removes the metadata block from content and returns both the
// metadata and the cleaned content. The cleaned content is what is hashed.
func Extract(content string) (*Metadata, string) {
	match := metadataRegex.FindStringSubmatch(content)
	cleanContent := strings.TrimRight(metadataRegex.ReplaceAllString(content, ""), "\n")

	if len(match) < 2 {
		return nil, cleanContent
	}

	meta := &Metadata{}

	for line := range strings.SplitSeq(match[1], "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}

		val = strings.TrimSpace(val)

		switch strings.TrimSpace(key) {
		case "SOURCE":
			meta.Source = val
		case "COUNT":
			if n, err := strconv.Atoi(val); err == nil {
				meta.Count = n
			}
		case "GENERATED_AT":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				meta.GeneratedAt = t
			}
		case "FINGERPRINT":
			meta.Fingerprint = val
		case "HASH":
			meta.Hash = val
		}
	}

	return meta, cleanContent
}

// CalculateHash computes the SHA-256 hash of the content, excluding any
// metadata block.
func CalculateHash(content string) string {
	_, clean := Extract(content)
	hash := sha256.Sum256([]byte(clean))

	return hex.EncodeToString(hash[:])
}

// Fingerprint hashes the canonical JSON form of an article list. Equal lists
// produce equal fingerprints regardless of how they are rendered.
func Fingerprint(articles []models.ArticleSummary) (string, error) {
	if articles == nil {
		articles = []models.ArticleSummary{}
	}

	data, err := json.Marshal(articles)
	if err != nil {
		return "", fmt.Errorf("failed to marshal articles: %w", err)
	}

	hash := sha256.Sum256(data)

	return hex.EncodeToString(hash[:]), nil
}

// Sign replaces any metadata block with a fresh one carrying the hash of the
// clean content. A zero GeneratedAt is set to the current time.
func Sign(content string, meta Metadata) string {
	_, clean := Extract(content)

	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now()
	}

	block := fmt.Sprintf("\n\n%s\nSOURCE: %s\nCOUNT: %d\nGENERATED_AT: %s\nFINGERPRINT: %s\nHASH: %s\n%s",
		TagStart,
		meta.Source,
		meta.Count,
		meta.GeneratedAt.UTC().Format(time.RFC3339),
		meta.Fingerprint,
		CalculateHash(clean),
		TagEnd)

	return clean + block
}

// Verify checks if the content matches the hash in its metadata.
func Verify(content string) (bool, error) {
	meta, clean := Extract(content)
	if meta == nil {
		return false, ErrNoMetadataBlock
	}

	if meta.Hash == "" {
		return false, ErrNoHashFound
	}

	calculated := CalculateHash(clean)
	if calculated != meta.Hash {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, meta.Hash, calculated)
	}

	return true, nil
}
