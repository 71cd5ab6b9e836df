package target

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// Markdown converts the body of a rendered page. On failure the HTML is returned unchanged.
func Markdown(page string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return page
	}
	body, err := doc.Find("body").Html()
	if err != nil || body == "" {
		return page
	}

	converter := md.NewConverter("", true, nil)
	out, err := converter.ConvertString(body)
	if err != nil {
		return page
	}
	return out
}

// PlainText keeps one line per heading, paragraph and item of a rendered page.
func PlainText(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body
	}

	var lines []string
	doc.Find("h1, h3, p, .item").Each(func(_ int, s *goquery.Selection) {
		line := strings.Join(strings.Fields(s.Text()), " ")
		if line != "" {
			lines = append(lines, line)
		}
	})
	return strings.Join(lines, "\n") + "\n"
}
