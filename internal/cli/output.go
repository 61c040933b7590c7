// Package cli provides CLI output formatting for Tonari.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/tonari/internal/models"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one result per line.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat converts a -output flag value into an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "text":
		return OutputText, nil
	case "compact":
		return OutputCompact, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		for i, result := range response.Results {
			fmt.Fprintf(w, "%d\t%s\t%.6f\n", i+1, result.ID, result.Score)
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results in %dms in collection %q\n\n",
		response.Total, response.QueryTime, response.Collection)
	for i, result := range response.Results {
		fmt.Fprintf(w, "%3d. %s  score %.4f\n", i+1, result.ID, result.Score)
	}
	fmt.Fprintln(w)
}

// WriteDocument writes a document to w. JSON format emits the full vector;
// text format previews at most maxComponents components.
func WriteDocument(w io.Writer, doc *models.Document, format OutputFormat, maxComponents int) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	fmt.Fprintf(w, "ID: %s\n", doc.ID)
	fmt.Fprintf(w, "Dimensions: %d\n", len(doc.Vector))
	fmt.Fprintf(w, "Vector: %s\n", FormatVector(doc.Vector, maxComponents))
	return nil
}

// FormatVector renders a vector as "[1, 2, 3]", eliding components beyond
// max with "...". A max of 0 or less means no limit.
func FormatVector(v []float32, max int) string {
	n := len(v)
	elided := false
	if max > 0 && n > max {
		n = max
		elided = true
	}
	parts := make([]string, 0, n+1)
	for _, x := range v[:n] {
		parts = append(parts, strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", x), "0"), "."))
	}
	if elided {
		parts = append(parts, "...")
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
