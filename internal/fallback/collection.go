package fallback

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"sitecontent/internal/logger"
	"sitecontent/internal/models"
	"sitecontent/internal/provider"
	"sitecontent/pkg/utils"
)

// Front matter errors.
var (
	ErrNoFrontMatter      = errors.New("no front matter found")
	ErrInvalidFrontMatter = errors.New("invalid front matter")
)

// Ensure CollectionSource implements provider.Provider.
var _ provider.Provider = (*CollectionSource)(nil)

// CollectionSource serves records from a directory of Markdown files with
// YAML front matter. Subdirectories are walked.
type CollectionSource struct {
	store

	logger *logger.Logger
}

// frontMatterFlags are front matter keys that control loading rather than
// map onto a record field.
type frontMatterFlags struct {
	Draft bool `yaml:"draft"`
}

// NewCollectionSource creates a source for dir. The directory is read on
// first use; an empty or missing directory yields an empty source.
func NewCollectionSource(dir string, log *logger.Logger) *CollectionSource {
	if log == nil {
		log = logger.Discard()
	}

	s := &CollectionSource{logger: log.With("source", "collection")}
	s.name = "collection"
	s.load = func() ([]models.RawArticle, error) {
		return s.loadDir(dir)
	}

	return s
}

func (s *CollectionSource) loadDir(dir string) ([]models.RawArticle, error) {
	if dir == "" {
		return nil, nil
	}

	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("collection directory does not exist", "dir", dir)

		return nil, nil
	}

	var paths []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !isMarkdown(path) {
			return nil
		}

		paths = append(paths, path)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	sort.Strings(paths)

	records := make([]models.RawArticle, 0, len(paths))

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = filepath.Base(path)
		}

		raw, draft, err := ParseEntry(data, rel)
		if err != nil {
			s.logger.Warn("skipping collection entry", "path", path, "error", err)

			continue
		}

		if draft {
			s.logger.Debug("skipping draft", "path", path)

			continue
		}

		records = append(records, raw)
	}

	s.logger.Debug("collection loaded", "dir", dir, "entries", len(records))

	return records, nil
}

// ParseEntry builds a record from one Markdown file. rel is the path relative
// to the collection root and supplies the id and slug when front matter does
// not. The second result reports a draft entry.
func ParseEntry(data []byte, rel string) (models.RawArticle, bool, error) {
	yamlPart, body, err := SplitFrontMatter(data)
	if err != nil {
		return models.RawArticle{}, false, err
	}

	var raw models.RawArticle

	var flags frontMatterFlags

	if len(yamlPart) > 0 {
		if err := yaml.Unmarshal(yamlPart, &raw); err != nil {
			return models.RawArticle{}, false, fmt.Errorf("%w: %w", ErrInvalidFrontMatter, err)
		}

		if err := yaml.Unmarshal(yamlPart, &flags); err != nil {
			return models.RawArticle{}, false, fmt.Errorf("%w: %w", ErrInvalidFrontMatter, err)
		}
	}

	stem := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))

	if _, ok := utils.CoerceTrimmed(raw.ID); !ok {
		raw.ID = stem
	}

	if _, ok := utils.CoerceTrimmed(raw.Slug); !ok {
		raw.Slug = slugifyPath(stem)
	}

	if len(body) > 0 {
		raw.Body = string(body)
		raw.Headings = ExtractHeadings(body)
	}

	return raw, flags.Draft, nil
}

// SplitFrontMatter separates a leading "---" delimited YAML block from the
// Markdown body.
func SplitFrontMatter(raw []byte) ([]byte, []byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil, ErrNoFrontMatter
	}

	norm := bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	norm = bytes.ReplaceAll(norm, []byte("\r"), []byte("\n"))

	const (
		sep      = "---"
		sepLine  = sep + "\n"
		closeMid = "\n" + sep + "\n"
	)

	if !bytes.HasPrefix(norm, []byte(sepLine)) {
		return nil, nil, ErrNoFrontMatter
	}

	rest := norm[len(sepLine):]

	var yamlPart, body []byte

	switch parts := bytes.SplitN(rest, []byte(closeMid), 2); {
	case len(parts) == 2:
		yamlPart, body = parts[0], parts[1]
	case bytes.HasSuffix(rest, []byte("\n"+sep)):
		yamlPart = rest[:len(rest)-len("\n"+sep)]
	case bytes.Equal(bytes.TrimSpace(rest), []byte(sep)):
		// "---\n---": empty front matter, no body
	default:
		return nil, nil, ErrInvalidFrontMatter
	}

	return bytes.TrimSpace(yamlPart), bytes.TrimSpace(body), nil
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdx":
		return true
	}

	return false
}

// slugifyPath lowercases ASCII letters and joins words with dashes in every
// path segment.
func slugifyPath(p string) string {
	segments := strings.Split(p, "/")

	out := segments[:0]
	for _, seg := range segments {
		if s := slugify(seg); s != "" {
			out = append(out, s)
		}
	}

	return strings.Join(out, "/")
}

func slugify(s string) string {
	s = strings.TrimSpace(s)

	var out []rune

	lastDash := false

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]

		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if 'A' <= r && r <= 'Z' {
				r += 'a' - 'A'
			}

			out = append(out, r)
			lastDash = false

			continue
		}

		if !lastDash && len(out) > 0 {
			out = append(out, '-')
			lastDash = true
		}
	}

	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}

	return string(out)
}
