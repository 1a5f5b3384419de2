package formats

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// maxLineSize bounds a single text line.
const maxLineSize = 1 << 20

// mode is the section a line-oriented reader is currently in.
type mode int

const (
	modeSkip mode = iota
	modeVertex
	modeFaces
	modeTexture
	modeEdges
)

// String returns the section name.
func (m mode) String() string {
	switch m {
	case modeSkip:
		return "SKIP"
	case modeVertex:
		return "VERTEX"
	case modeFaces:
		return "FACES"
	case modeTexture:
		return "TEXTURE"
	case modeEdges:
		return "EDGES"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// parseState is threaded through line processing by every reader.
type parseState struct {
	mode mode
	line int // 1-based number of the line being processed

	// texture is the active texture name; textured reports whether faces
	// read now are bound to it.
	texture  string
	textured bool
}

func (s *parseState) numericError(tok string) error {
	return fmt.Errorf("%w: line %d: %q", ErrNumericField, s.line, tok)
}

func (s *parseState) float(tok string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
	if err != nil {
		return 0, s.numericError(tok)
	}
	return v, nil
}

func (s *parseState) int(tok string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(tok))
	if err != nil {
		return 0, s.numericError(tok)
	}
	return v, nil
}

// floats parses every token of toks.
func (s *parseState) floats(toks []string) ([]float64, error) {
	out := make([]float64, len(toks))
	for i, tok := range toks {
		v, err := s.float(tok)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ints parses every token of toks.
func (s *parseState) ints(toks []string) ([]int, error) {
	out := make([]int, len(toks))
	for i, tok := range toks {
		v, err := s.int(tok)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// readLines reads all of r, accepting "\n", "\r\n" and bare "\r" line ends.
func readLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	sc.Split(scanAnyLines)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading lines: %w", err)
	}
	return lines, nil
}

// scanAnyLines is a bufio.SplitFunc like bufio.ScanLines that also splits
// on a lone carriage return.
func scanAnyLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		// "\r": need one more byte to tell "\r\n" from a bare "\r".
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// splitList splits a DAT record on commas and whitespace, dropping empty
// fields left by trailing separators.
func splitList(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
