package articles

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sitecontent/internal/models"
)

// headingSelector matches the heading levels a rich-text editor emits.
const headingSelector = "h1, h2, h3, h4, h5, h6"

// outline returns the record's own headings, or the headings of an HTML body.
func outline(raw models.RawArticle, body *string) []models.Heading {
	if len(raw.Headings) > 0 {
		return raw.Headings
	}

	if body == nil || !strings.HasPrefix(strings.TrimSpace(*body), "<") {
		return nil
	}

	return htmlHeadings(*body)
}

func htmlHeadings(html string) []models.Heading {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var headings []models.Heading

	doc.Find(headingSelector).Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}

		level, _ := strconv.Atoi(strings.TrimPrefix(goquery.NodeName(s), "h"))
		id, _ := s.Attr("id")

		headings = append(headings, models.Heading{
			Level: level,
			ID:    strings.TrimSpace(id),
			Text:  text,
		})
	})

	return headings
}
