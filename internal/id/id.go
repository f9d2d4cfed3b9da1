package id

import (
	"fmt"
	"math/rand"
)

const (
	// DefaultSource prefixes every import ID sent to the budgeting API.
	DefaultSource = "YNAB"

	minOccurrence = 10000
	maxOccurrence = 99999
)

// ImportID is the remote duplicate-detection key for one transaction.
type ImportID struct {
	Source     string
	Milliunits int64
	Date       string // YYYY-MM-DD
	Occurrence int
}

// String returns the ID like "YNAB:-100000:2023-12-31:48213".
func (i ImportID) String() string {
	return FormatImportID(i.Source, i.Milliunits, i.Date, i.Occurrence)
}

// FormatImportID returns an import ID like "YNAB:-100000:2023-12-31:48213".
func FormatImportID(source string, milliunits int64, date string, occurrence int) string {
	return fmt.Sprintf("%s:%d:%s:%d", source, milliunits, date, occurrence)
}

// NewOccurrence draws a random occurrence nonce in [10000, 99999].
func NewOccurrence() int {
	return minOccurrence + rand.Intn(maxOccurrence-minOccurrence+1)
}
