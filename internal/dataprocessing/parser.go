package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Supported source encodings
const (
	EncodingLatin1 = "latin1"
	EncodingUTF8   = "utf-8"
)

// rawTable is the header plus data rows of a delimited source, header normalized.
// Lines[i] is the 1-based source line on which Rows[i] starts.
type rawTable struct {
	Header []string
	Rows   [][]string
	Lines  []int
}

// resolveEncoding maps an encoding name to its decoder. Unknown names fail.
func resolveEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingLatin1, "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "cp1252", "windows-1252":
		return charmap.Windows1252, nil
	case "utf8", EncodingUTF8:
		return unicode.UTF8BOM, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// ValidateEncoding reports whether name is a supported source encoding
func ValidateEncoding(name string) error {
	_, err := resolveEncoding(name)
	return err
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// decodingReader wraps r so that it yields UTF-8. A leading UTF-8 byte order
// mark is dropped before decoding whatever the declared encoding.
func decodingReader(r io.Reader, enc encoding.Encoding) io.Reader {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return transform.NewReader(br, enc.NewDecoder())
}

// readTable reads a delimited source with a header row. Rows shorter than the
// header are padded with empty strings and longer rows are truncated.
func readTable(r io.Reader, opts Options) (*rawTable, error) {
	enc, err := resolveEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decodingReader(r, enc))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = false
	if opts.Delimiter != "" {
		delim, _ := utf8.DecodeRuneInString(opts.Delimiter)
		reader.Comma = delim
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &SchemaError{Missing: opts.Mapping.missingAll()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = NormalizeFieldName(h)
	}

	table := &rawTable{Header: normalized}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read sales source: %w", err)
		}
		if isBlankRow(row) {
			continue
		}
		line, _ := reader.FieldPos(0)
		table.Rows = append(table.Rows, fitRow(row, len(normalized)))
		table.Lines = append(table.Lines, line)
	}

	return table, nil
}

// fitRow pads or truncates row to width
func fitRow(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	fitted := make([]string, width)
	copy(fitted, row)
	return fitted
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// missingAll lists every required field, used when the source has no header
func (m FieldMapping) missingAll() []string {
	refs := m.required()
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.semantic
	}
	return names
}
