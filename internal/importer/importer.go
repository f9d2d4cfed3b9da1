package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bankpush/bankpush/internal/model"
)

var (
	// ErrParse reports an amount that is not a valid locale-formatted number.
	ErrParse = errors.New("invalid amount")
	// ErrFormat reports a malformed line or date.
	ErrFormat = errors.New("malformed record")
	// ErrSchema reports a header line that does not match the expected columns.
	ErrSchema = errors.New("unexpected header")
)

// Parser converts a bank export into Transactions in file order.
type Parser interface {
	Parse(r io.Reader) ([]model.Transaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes an export file waiting to be processed.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewDanishParser(DefaultFilter()))
	return r
}

// Scan returns the files in dir named "<prefix>-*-*.csv" for any of the
// given prefixes, ordered by prefix and then by name.
func Scan(dir string, prefixes []string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, prefix := range prefixes {
		if prefix == "" {
			continue
		}
		var matched []FileInfo
		pattern := prefix + "-*-*.csv"
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ok, err := filepath.Match(pattern, e.Name())
			if err != nil {
				return nil, fmt.Errorf("matching %q: %w", pattern, err)
			}
			if !ok {
				continue
			}
			info, err := e.Info()
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
			}
			matched = append(matched, FileInfo{
				Name: e.Name(),
				Path: filepath.Join(dir, e.Name()),
				Size: info.Size(),
			})
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
		files = append(files, matched...)
	}
	return files, nil
}
