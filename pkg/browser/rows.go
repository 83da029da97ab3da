package browser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/dtnitsch/hrscrape/models"
)

var (
	// registerRef matches a register reference like "HRB 259502",
	// "HRB 259 502 B", or "HRA 4711" inside a table cell.
	registerRef = regexp.MustCompile(`\b(?:HRB|HRA|GnR|PR|VR)\s*\d[\d ]*(?:[A-Z]\b)?`)

	// courtRef pulls the court name out of a cell like
	// "Amtsgericht Charlottenburg (Berlin) HRB 259502".
	courtRef = regexp.MustCompile(`Amtsgericht\s+([\p{L}() .-]+?)(?:\s+(?:HRB|HRA|GnR|PR|VR).*)?$`)
)

// ParseResults extracts candidate rows and UI messages from a results
// page. A row is any tr whose JSF command links carry document type
// labels; the portal renders no more reliable marker.
func ParseResults(html string) ([]models.CandidateRow, []string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse results page: %w", err)
	}
	return parseRows(doc), collectUIMessages(doc), nil
}

func parseRows(doc *goquery.Document) []models.CandidateRow {
	var rows []models.CandidateRow
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		links := map[models.DocumentType]string{}
		tr.Find("a[id]").Each(func(_ int, a *goquery.Selection) {
			t, err := models.ParseDocumentType(a.Text())
			if err != nil {
				return
			}
			id, _ := a.Attr("id")
			if !strings.Contains(id, ":") {
				return
			}
			if _, dup := links[t]; !dup {
				links[t] = id
			}
		})
		if len(links) == 0 {
			return
		}

		row := models.CandidateRow{DocLinks: links}
		var nameCandidates []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			text := collapseSpace(td.Text())
			if text == "" {
				return
			}
			if ref := registerRef.FindString(text); ref != "" {
				if row.RegistrationText == "" {
					row.RegistrationText = collapseSpace(ref)
				}
				if row.Court == "" {
					row.Court = courtFrom(text)
				}
				return
			}
			if row.Court == "" && strings.Contains(text, "Amtsgericht") {
				row.Court = courtFrom(text)
			}
			if isCompanyName(text) {
				nameCandidates = append(nameCandidates, text)
			}
		})
		row.Name = pickName(nameCandidates)
		if row.Name != "" {
			rows = append(rows, row)
		}
	})
	return rows
}

// pickName prefers the cell that carries a legal form marker; rows for
// registered merchants may lack one, then the first plausible cell
// wins.
func pickName(candidates []string) string {
	for _, c := range candidates {
		if hasLegalFormMarker(c) {
			return c
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

func hasLegalFormMarker(text string) bool {
	for _, f := range strings.Fields(text) {
		switch strings.Trim(f, ".,()") {
		case "GmbH", "gGmbH", "mbH", "AG", "KG", "KGaA", "OHG", "UG", "SE", "eG",
			"e.V", "eV", "Aktiengesellschaft", "Gesellschaft", "Bank", "Stiftung", "Verein":
			return true
		}
	}
	return false
}

// isCompanyName filters out cells that carry navigation labels,
// register references, court names, or registration status.
func isCompanyName(text string) bool {
	if len([]rune(text)) <= 5 {
		return false
	}
	if !strings.ContainsFunc(text, unicode.IsLetter) {
		return false
	}
	if registerRef.MatchString(text) {
		return false
	}
	if isDocLabelCell(text) {
		return false
	}
	for _, skip := range []string{
		"1.)", "2.)", "3.)", "Historie", "Amtsgericht",
		"currently registered", "aktuell eingetragen", "gelöscht",
	} {
		if strings.Contains(text, skip) {
			return false
		}
	}
	return true
}

// isDocLabelCell reports whether every field of the cell is one of the
// portal's document shorthand labels.
func isDocLabelCell(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		switch f {
		case "AD", "CD", "HD", "DK", "UT", "VÖ", "SI":
		default:
			return false
		}
	}
	return true
}

func courtFrom(text string) string {
	m := courtRef.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return collapseSpace(m[1])
}

func collectUIMessages(doc *goquery.Document) []string {
	var messages []string
	seen := map[string]bool{}
	for _, sel := range uiMessageSelectors {
		doc.Find(sel).Each(func(_ int, el *goquery.Selection) {
			text := collapseSpace(el.Text())
			if text != "" && !seen[text] {
				seen[text] = true
				messages = append(messages, text)
			}
		})
	}
	return messages
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
