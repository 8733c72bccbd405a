// Package storage defines the persistent domain model and the contracts its
// backends implement.
package storage

import "time"

// Listing is the canonical, deduplicated form of a vacancy. SourceID is the
// upstream identifier and is unique across the store; the first stored version
// of a listing is authoritative.
type Listing struct {
	ID           int64
	SourceID     string
	Title        string
	Employer     string
	City         string
	Compensation string
	URL          string
	ApplyURL     string
	Snippet      string
	PublishedAt  *time.Time
}

// Recipient is a person receiving digests, identified by their chat id.
type Recipient struct {
	ID              int64
	ChatID          string
	FullName        string
	City            string
	DesiredPosition string
	Skills          string
	BaseResume      string
	CreatedAt       time.Time
}

// SearchCriteria holds one recipient's saved search. City is free text and is
// resolved to an upstream region id at query time.
type SearchCriteria struct {
	ID            int64
	RecipientID   int64
	Position      string
	City          string
	MinSalary     int
	Remote        bool
	FreshnessDays int
	Employment    string
	Experience    string
}

// RecipientWithCriteria pairs a recipient with their saved search for the
// digest run.
type RecipientWithCriteria struct {
	Recipient Recipient
	Criteria  SearchCriteria
}

// DocumentKind names the kinds of generated application documents.
type DocumentKind string

const (
	DocumentResume      DocumentKind = "RESUME"
	DocumentCoverLetter DocumentKind = "COVER_LETTER"
)

// Document is a generated resume or cover letter tied to one listing.
type Document struct {
	ID          int64
	RecipientID int64
	ListingID   int64
	Kind        DocumentKind
	Content     string
	CreatedAt   time.Time
}
