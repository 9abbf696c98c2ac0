package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/dailypaper/internal/paper"
)

// Constants for output formatting.
const (
	DefaultListLimit = 50 // Default limit for search/list commands

	MaxDisplayAuthors = 5 // Authors shown before "et al."

	// Title truncation lengths by context
	ListTitleMaxLen   = 70
	DetailTitleMaxLen = 70

	// Text wrapping widths
	TextWrapWidth       = 60
	DetailTextWrapWidth = 68
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputJSONLines writes each paper as one compact JSON line.
func outputJSONLines(papers []paper.Paper) error {
	enc := json.NewEncoder(os.Stdout)
	for _, p := range papers {
		if err := enc.Encode(p); err != nil {
			return err
		}
	}
	return nil
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// printPaperList prints one numbered block per paper.
func printPaperList(papers []paper.Paper) {
	for i, p := range papers {
		fmt.Printf("%d. %s  %s\n", i+1, p.Published, p.ID)
		fmt.Printf("   %s\n", truncateString(p.Title, ListTitleMaxLen))
		fmt.Printf("   %s\n", formatAuthors(p.Authors, MaxDisplayAuthors))
		var extra []string
		if p.HasConference() {
			extra = append(extra, *p.Conference)
		}
		if len(p.Tags) > 0 {
			extra = append(extra, "["+strings.Join(p.Tags, ", ")+"]")
		}
		if len(extra) > 0 {
			fmt.Printf("   %s\n", strings.Join(extra, " "))
		}
		fmt.Println()
	}
}

// printPaperDetail prints every field of one paper.
func printPaperDetail(p paper.Paper) {
	fmt.Println(p.ID)
	fmt.Println(strings.Repeat("═", DetailTitleMaxLen))
	fmt.Println()

	fmt.Printf("Title:      %s\n", wrapText(p.Title, TextWrapWidth, "            "))
	fmt.Println()

	if len(p.Authors) > 0 {
		fmt.Printf("Authors:    %s\n", wrapText(formatAuthors(p.Authors, MaxDisplayAuthors), TextWrapWidth, "            "))
		fmt.Println()
	}

	fmt.Printf("Published:  %s\n", p.Published)
	if p.Updated != p.Published {
		fmt.Printf("Updated:    %s\n", p.Updated)
	}
	if p.HasConference() {
		fmt.Printf("Venue:      %s\n", *p.Conference)
	} else {
		fmt.Printf("Venue:      preprint (%s)\n", p.PrimaryCategory)
	}
	if len(p.Tags) > 0 {
		fmt.Printf("Tags:       %s\n", strings.Join(p.Tags, ", "))
	}
	if len(p.Categories) > 0 {
		fmt.Printf("Categories: %s\n", strings.Join(p.Categories, ", "))
	}
	if c := p.CommentText(); c != "" {
		fmt.Printf("Comment:    %s\n", wrapText(c, TextWrapWidth, "            "))
	}

	if p.Abstract != "" {
		fmt.Println()
		fmt.Println("Abstract:")
		fmt.Printf("  %s\n", wrapText(p.Abstract, DetailTextWrapWidth, "  "))
	}

	fmt.Println()
	if p.SourceURL != "" {
		fmt.Printf("Abstract:   %s\n", p.SourceURL)
	}
	if p.PDFURL != "" {
		fmt.Printf("PDF:        %s\n", p.PDFURL)
	}
}

// formatAuthors joins up to maxCount names and appends "et al." when more remain.
func formatAuthors(authors []string, maxCount int) string {
	if len(authors) <= maxCount {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:maxCount], ", ") + " et al."
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n"+indent)
}
