package digest

import (
	"fmt"
	"strings"

	"jobcompass/internal/reconcile"
	"jobcompass/internal/storage"
)

// Format renders the digest message in Telegram Markdown. total is the full
// reconciled count, which may exceed the shown page.
func Format(shown []reconcile.Match, total int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Your job digest: %d new vacancies*\n", total)
	for i, m := range shown {
		b.WriteString("\n")
		b.WriteString(FormatListing(i+1, m.Listing))
	}

	if rest := total - len(shown); rest > 0 {
		fmt.Fprintf(&b, "\n...and %d more saved for later.\n", rest)
	}

	return b.String()
}

// FormatListing renders one listing entry.
func FormatListing(n int, l *storage.Listing) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d. [%s](%s)\n", n, l.Title, l.URL)
	fmt.Fprintf(&b, "   %s, %s\n", l.Employer, l.City)
	fmt.Fprintf(&b, "   %s\n", l.Compensation)
	if l.Snippet != "" {
		fmt.Fprintf(&b, "   _%s_\n", l.Snippet)
	}

	return b.String()
}
