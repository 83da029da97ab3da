package extract

import (
	"bufio"
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// extractHTML distills the main content of an HTML payload. The
// register serves error and maintenance pages in place of documents;
// their text is still worth keeping for diagnosis.
func (e *Extractor) extractHTML(data []byte, origin string) (string, error) {
	baseURL, _ := url.Parse("https://www.handelsregister.de/")

	// Let go-readability find the main content first.
	article, err := readability.NewParser().Parse(bytes.NewReader(data), baseURL)
	if err == nil {
		if text := normalizeText(article.TextContent); text != "" {
			var b strings.Builder
			fmt.Fprintf(&b, "# Extracted Data from: %s\n\n", origin)
			if title := normalizeText(article.Title); title != "" {
				fmt.Fprintf(&b, "## %s\n\n", title)
			}
			b.WriteString(text)
			b.WriteString("\n")
			return b.String(), nil
		}
	}

	// Readability rejects pages without article structure. Fall back
	// to the bare text nodes.
	doc, qerr := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if qerr != nil {
		return "", fmt.Errorf("failed to parse html %s: %w", origin, qerr)
	}
	doc.Find("script,style,noscript").Remove()
	text := normalizeText(doc.Find("body").Text())
	if text == "" {
		text = normalizeText(doc.Text())
	}
	if text == "" {
		return "", fmt.Errorf("no text content in %s", origin)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Extracted Data from: %s\n\n%s\n", origin, text)
	return b.String(), nil
}

// normalizeText cleans up a string by trimming space and collapsing
// blank lines.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}
