package importer

import (
	"io"

	"golang.org/x/text/encoding/charmap"
)

// Decode wraps r so that ISO-8859-1 bytes come out as UTF-8. Every byte
// value maps to a character, so decoding never fails.
func Decode(r io.Reader) io.Reader {
	return charmap.ISO8859_1.NewDecoder().Reader(r)
}

