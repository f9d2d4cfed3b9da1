package importer

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"slices"
	"time"

	"github.com/bankpush/bankpush/internal/model"
)

const (
	danishDateFormat = "02.01.2006"
	danishMinFields  = 6
	danishColDate    = 0
	danishColText    = 1
	danishColAmount  = 2
	danishColCleared = 5
)

// payeeArtifact matches the " )" padding the bank appends to descriptions.
var payeeArtifact = regexp.MustCompile(` +\)+`)

// Filter selects which export rows become transactions.
//
// The status used for filtering is read from the second-to-last field while
// the cleared flag is read from field 5. Exports with trailing columns
// therefore shift the status but not the cleared flag.
type Filter struct {
	RequireStatuses []string
	ClearedStatuses []string
	Enforce         bool
}

// DefaultFilter keeps executed rows and treats them as cleared when the
// reconciled column says "Executed".
func DefaultFilter() Filter {
	return Filter{
		RequireStatuses: []string{"Executed"},
		ClearedStatuses: []string{"Executed"},
		Enforce:         true,
	}
}

// DanishParser parses semicolon-separated exports from a Danish bank.
type DanishParser struct {
	filter Filter
}

// NewDanishParser creates a parser applying filter to every row.
func NewDanishParser(filter Filter) *DanishParser {
	return &DanishParser{filter: filter}
}

// Format returns the parser name.
func (p *DanishParser) Format() string { return "danish" }

// Parse decodes an ISO-8859-1 export, checks the header and returns every
// row that passes the filter. The first bad row aborts the whole parse.
func (p *DanishParser) Parse(r io.Reader) ([]model.Transaction, error) {
	sc := bufio.NewScanner(Decode(r))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		return nil, fmt.Errorf("%w: empty file", ErrSchema)
	}
	if err := CheckHeader(sc.Text()); err != nil {
		return nil, err
	}

	var txns []model.Transaction
	lineNo := 1
	for sc.Scan() {
		lineNo++
		txn, err := p.ParseLine(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if txn != nil {
			txns = append(txns, *txn)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	return txns, nil
}

// ParseLine turns one export row into a Transaction. It returns nil, nil for
// rows whose status is filtered out. A blank line is malformed like any other
// short row.
func (p *DanishParser) ParseLine(line string) (*model.Transaction, error) {
	fields := SplitLine(line)
	if len(fields) < danishMinFields {
		return nil, fmt.Errorf("%w: expected at least %d fields, got %d", ErrFormat, danishMinFields, len(fields))
	}

	status := fields[len(fields)-2]
	if p.filter.Enforce && !slices.Contains(p.filter.RequireStatuses, status) {
		return nil, nil
	}

	date, err := time.Parse(danishDateFormat, fields[danishColDate])
	if err != nil {
		return nil, fmt.Errorf("%w: parsing date %q: %v", ErrFormat, fields[danishColDate], err)
	}

	amount, err := ParseAmount(fields[danishColAmount])
	if err != nil {
		return nil, fmt.Errorf("parsing amount: %w", err)
	}

	text := fields[danishColText]
	return &model.Transaction{
		Date:     date,
		PayeeRaw: text,
		Payee:    payeeArtifact.ReplaceAllString(text, ""),
		Amount:   amount,
		Cleared:  slices.Contains(p.filter.ClearedStatuses, fields[danishColCleared]),
		Status:   status,
	}, nil
}
