package news

import (
	"regexp"
	"strings"
)

var contentEditableRe = regexp.MustCompile(`contenteditable`)

// CleanContent neutralizes editor attributes left in saved article HTML so
// served content is not editable in the browser.
func CleanContent(html string) string {
	return contentEditableRe.ReplaceAllString(html, "data-disabled")
}

// SplitTags splits the comma-delimited tag string stored on an article.
// Empty entries are dropped.
func SplitTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return nil
	}

	parts := strings.Split(tags, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// SplitSummaryLines splits an article summary into display lines.
func SplitSummaryLines(summary string) []string {
	if summary == "" {
		return nil
	}
	return strings.Split(summary, "\n")
}
