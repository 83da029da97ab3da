package scrape

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/hrscrape/models"
)

// printHuman renders the outcome for a terminal instead of a pipe.
func printHuman(outcome models.ScrapeOutcome) {
	fmt.Println(strings.Repeat("=", 60))
	if outcome.Success {
		fmt.Printf("SUCCESS: %d document(s)\n", len(outcome.Documents))
		if outcome.Company != nil {
			fmt.Printf("Company: %s\n", outcome.Company.Name)
			fmt.Printf("HRB:     %s\n", outcome.Company.HRB)
		}
		fmt.Println()
		for i, doc := range outcome.Documents {
			fmt.Printf("%2d. %s (%s) - %s, %d bytes", i+1, doc.Type, doc.Type.Description(), doc.FileName, len(doc.PDFData))
			if doc.PageCount > 0 {
				fmt.Printf(", %d pages", doc.PageCount)
			}
			if doc.Language != "" {
				fmt.Printf(", language %s", doc.Language)
			}
			fmt.Println()
			if doc.Text != "" {
				fmt.Printf("    Preview: %s\n", preview(doc.Text, 100))
			}
		}
	} else {
		fmt.Printf("FAILED: %s\n", outcome.Error)
		if outcome.RetryRecommended {
			fmt.Println("Retry recommended: yes")
		} else {
			fmt.Println("Retry recommended: no (refine the query instead)")
		}
	}

	if outcome.Debug == nil {
		return
	}
	if len(outcome.Debug.UIMessages) > 0 {
		fmt.Println("\nMessages from the register site:")
		for _, msg := range outcome.Debug.UIMessages {
			fmt.Printf("  - %s\n", msg)
		}
	}
	if len(outcome.Debug.DocumentErrors) > 0 {
		fmt.Println("\nPer-document errors:")
		for _, de := range outcome.Debug.DocumentErrors {
			fmt.Printf("  - %s [%s]: %s\n", de.Type, de.Stage, de.Message)
		}
	}
	if outcome.Debug.ScreenshotPath != "" {
		fmt.Printf("\nScreenshot: %s\n", outcome.Debug.ScreenshotPath)
	}
	if outcome.Debug.HTMLPath != "" {
		fmt.Printf("Page dump:  %s\n", outcome.Debug.HTMLPath)
	}
	if outcome.Debug.Attempts > 1 {
		fmt.Printf("Attempts:   %d\n", outcome.Debug.Attempts)
	}
}

// preview returns the first n runes of single-line text.
func preview(text string, n int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= n {
		return flat
	}
	return string(runes[:n]) + "..."
}
