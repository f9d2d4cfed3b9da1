// Package batch runs one bank export through parsing, fee reconciliation
// and submission.
package batch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/bankpush/bankpush/internal/fees"
	"github.com/bankpush/bankpush/internal/importer"
	"github.com/bankpush/bankpush/internal/model"
	"github.com/bankpush/bankpush/internal/ynab"
)

// DefaultPacing is the pause after each submission.
const DefaultPacing = time.Second

// Submitter creates one transaction remotely.
type Submitter interface {
	Submit(ctx context.Context, txn model.Transaction, target ynab.Target) (ynab.Result, error)
}

// Summary reports what a Process call did.
type Summary struct {
	File       string `json:"file"`
	Parsed     int    `json:"parsed"`
	Cleared    int    `json:"cleared"`
	Submitted  int    `json:"submitted"`
	Reconciled int    `json:"reconciled"`
}

// Processor processes bank export files.
type Processor struct {
	parser    importer.Parser
	submitter Submitter
	pacing    time.Duration
	sleep     ynab.SleepFunc
	log       zerolog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithPacing sets the pause after each submission.
func WithPacing(d time.Duration) Option {
	return func(p *Processor) { p.pacing = d }
}

// WithSleep replaces the pacing sleep.
func WithSleep(sleep ynab.SleepFunc) Option {
	return func(p *Processor) { p.sleep = sleep }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Processor) { p.log = log }
}

// NewProcessor creates a Processor reading files with parser and sending
// uncleared transactions to submitter.
func NewProcessor(parser importer.Parser, submitter Submitter, opts ...Option) *Processor {
	p := &Processor{
		parser:    parser,
		submitter: submitter,
		pacing:    DefaultPacing,
		sleep:     ynab.Sleep,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process parses the file at path, reconciles fee lines and submits every
// uncleared transaction in file order, one at a time. The file is deleted
// only when everything succeeded. Transactions submitted before a failure
// stay submitted.
func (p *Processor) Process(ctx context.Context, path string, target ynab.Target) (Summary, error) {
	sum := Summary{File: path}
	log := p.log.With().Str("file", path).Str("account", target.AccountID).Logger()
	log.Info().Msg("processing file")

	txns, err := p.parse(path)
	if err != nil {
		return sum, err
	}
	sum.Parsed = len(txns)

	reconciled := fees.Reconcile(txns)
	sum.Reconciled = fees.Count(txns, reconciled)

	for i, txn := range reconciled {
		if txn.Cleared {
			sum.Cleared++
			continue
		}
		_, err := p.submitter.Submit(ctx, txn, target)
		if serr := p.sleep(ctx, p.pacing); serr != nil && err == nil {
			err = serr
		}
		if err != nil {
			return sum, fmt.Errorf("submitting transaction %d (%s %s): %w", i+1, txn.ISODate(), txn.Payee, err)
		}
		sum.Submitted++
	}

	if err := os.Remove(path); err != nil {
		return sum, fmt.Errorf("deleting %s: %w", path, err)
	}
	log.Info().
		Int("parsed", sum.Parsed).
		Int("submitted", sum.Submitted).
		Int("cleared", sum.Cleared).
		Int("reconciled", sum.Reconciled).
		Msg("deleted file")
	return sum, nil
}

func (p *Processor) parse(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export: %w", err)
	}
	defer f.Close()

	txns, err := p.parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return txns, nil
}
