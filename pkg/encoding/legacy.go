// Package encoding provides text encoding support for mesh files written by
// legacy tools. Vintage DAT and MESH files frequently carry texture names in
// MacRoman or Windows code pages rather than UTF-8.
package encoding

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned for an encoding name that is not supported.
var ErrUnknownEncoding = errors.New("unknown text encoding")

// Names lists the accepted encoding names.
var Names = []string{"utf-8", "macroman", "windows-1252", "latin1", "euc-kr"}

// Lookup returns the encoding registered under name. The empty name and
// "utf-8" return UTF-8 with byte order mark handling.
func Lookup(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	case "macroman", "macintosh", "mac":
		return charmap.Macintosh, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "euc-kr":
		return korean.EUCKR, nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownEncoding, name, strings.Join(Names, ", "))
	}
}

// NewReader wraps r so that it yields UTF-8 decoded from the named encoding.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// NewWriter wraps w so that UTF-8 written to it is stored in the named
// encoding. Close flushes the last partial rune and does not close w.
// UTF-8 output is written without a byte order mark.
func NewWriter(w io.Writer, name string) (io.WriteCloser, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8BOM {
		return nopCloser{w}, nil
	}
	return transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder())), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
