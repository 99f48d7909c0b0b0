package fallback

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"sitecontent/internal/models"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// ExtractHeadings lists the headings of a Markdown document in order, with
// the anchor ids a renderer would generate for them.
func ExtractHeadings(src []byte) []models.Heading {
	doc := markdown.Parser().Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))

	var heads []models.Heading

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		var id string
		if v, ok := h.AttributeString("id"); ok {
			switch v := v.(type) {
			case string:
				id = v
			case []byte:
				id = string(v)
			}
		}

		var buf bytes.Buffer
		collectText(&buf, h, src)

		heads = append(heads, models.Heading{
			Level: h.Level,
			ID:    id,
			Text:  buf.String(),
		})

		return ast.WalkSkipChildren, nil
	})

	return heads
}

// collectText appends the text of every descendant of n, so emphasis and
// links inside a heading keep their words.
func collectText(buf *bytes.Buffer, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			buf.Write(c.Segment.Value(src))

			if c.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(c.Value)
		default:
			collectText(buf, c, src)
		}
	}
}
