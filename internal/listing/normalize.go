// Package listing converts raw hh.ru vacancy payloads into canonical Listing
// records. Normalization is a pure function over its input: it touches no
// storage and never fails a whole batch because of one bad record.
package listing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"jobcompass/internal/headhunter"
	"jobcompass/internal/storage"
)

// ErrMissingSourceID marks a payload without a usable identifier. Such a
// record cannot be deduplicated and must be skipped by the caller.
var ErrMissingSourceID = errors.New("vacancy payload has no source id")

const (
	compensationNotSpecified = "not specified"
	compensationNegotiable   = "negotiable"
)

// publishedAtLayouts covers hh.ru timestamps with and without a colon in the
// zone offset ("2013-07-08T16:17:21+0400" is the documented form).
var publishedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
}

// Normalize builds a canonical listing from one raw vacancy payload.
func Normalize(raw *headhunter.Vacancy) (*storage.Listing, error) {
	if raw == nil || strings.TrimSpace(raw.ID) == "" {
		return nil, ErrMissingSourceID
	}

	applyURL := raw.ApplyAlternateURL
	if applyURL == "" {
		applyURL = raw.AlternateURL
	}

	l := &storage.Listing{
		SourceID:     raw.ID,
		Title:        raw.Name,
		Employer:     raw.Employer.Name,
		City:         raw.Area.Name,
		Compensation: FormatCompensation(raw.Salary),
		URL:          raw.AlternateURL,
		ApplyURL:     applyURL,
		Snippet:      raw.Snippet.Responsibility,
		PublishedAt:  parsePublishedAt(raw.PublishedAt),
	}

	return l, nil
}

// FormatCompensation renders the salary sub-object as display text. A missing
// object and a present-but-empty one are different cases: the former means the
// employer said nothing, the latter that terms are open.
func FormatCompensation(s *headhunter.Salary) string {
	if s == nil {
		return compensationNotSpecified
	}

	parts := make([]string, 0, 3)
	if s.From != nil {
		parts = append(parts, fmt.Sprintf("from %d", *s.From))
	}
	if s.To != nil {
		parts = append(parts, fmt.Sprintf("up to %d", *s.To))
	}
	if len(parts) == 0 {
		return compensationNegotiable
	}

	if s.Currency != "" {
		parts = append(parts, strings.ToUpper(s.Currency))
	}

	return strings.Join(parts, " ")
}

// parsePublishedAt parses the publication timestamp, normalized to UTC. An
// unparseable value is stored as absent rather than failing the record.
func parsePublishedAt(raw string) *time.Time {
	if raw == "" {
		return nil
	}

	for _, layout := range publishedAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			u := t.UTC()
			return &u
		}
	}

	return nil
}
