// Package tabular reads and writes the semicolon-separated tag files.
//
// Rows are addressed through the header by column name. Reading tolerates
// UTF-8 and UTF-16 (either byte order) when a byte order mark is present;
// writing produces UTF-16LE with a BOM or plain UTF-8.
package tabular

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/agentic-research/tagsync/api"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var ErrEmpty = errors.New("csv has no header row")

// Header maps column names to positions.
type Header []string

// Index returns the position of column name, or -1.
func (h Header) Index(name string) int {
	for i, c := range h {
		if c == name {
			return i
		}
	}
	return -1
}

func (h Header) Has(name string) bool { return h.Index(name) >= 0 }

// Cell returns row's value for column name. ok is false when the header has
// no such column or the row is too short to hold it.
func (h Header) Cell(row []string, name string) (string, bool) {
	i := h.Index(name)
	if i < 0 || i >= len(row) {
		return "", false
	}
	return row[i], true
}

// Encoding selects the text encoding of written files.
type Encoding int

const (
	UTF16 Encoding = iota
	UTF8
)

func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf-16", "utf16", "unicode":
		return UTF16, nil
	case "utf-8", "utf8":
		return UTF8, nil
	default:
		return 0, fmt.Errorf("unknown encoding %q", s)
	}
}

func (e Encoding) String() string {
	if e == UTF8 {
		return "utf-8"
	}
	return "utf-16"
}

func (e Encoding) encoder() *encoding.Encoder {
	if e == UTF8 {
		return unicode.UTF8.NewEncoder()
	}
	return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
}

// MaxLine bounds the length of a single decoded line.
const MaxLine = 16 << 20

// Reader yields header-addressed rows. Cells are split on the separator as
// is; quote characters carry no meaning.
type Reader struct {
	sc     *bufio.Scanner
	header Header
	line   int
}

// NewReader reads the header row from r. Input without a BOM is taken as
// UTF-8.
func NewReader(r io.Reader) (*Reader, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	sc := bufio.NewScanner(decoded)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLine)

	rd := &Reader{sc: sc}
	header, err := rd.Next()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	rd.header = header
	return rd, nil
}

func (r *Reader) Header() Header { return r.header }

// Next returns the next row. Row length is not checked against the header.
// Blank lines are skipped but still counted. It returns io.EOF after the
// last row; any other error means the stream cannot be read further.
func (r *Reader) Next() ([]string, error) {
	for r.sc.Scan() {
		r.line++
		text := strings.TrimSuffix(r.sc.Text(), "\r")
		if text == "" {
			continue
		}
		return strings.Split(text, string(api.Separator)), nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", r.line+1, err)
	}
	return nil, io.EOF
}

// Line returns the 1-based line of the row last returned by Next.
func (r *Reader) Line() int { return r.line }

// Writer writes rows with the configured encoding and CRLF line endings.
// Cells are joined verbatim, so a cell must not contain the separator.
type Writer struct {
	buf *bufio.Writer
	enc io.WriteCloser
}

// NewWriter wraps w. Close flushes pending output but does not close w.
func NewWriter(w io.Writer, enc Encoding) *Writer {
	tw := transform.NewWriter(w, enc.encoder())
	return &Writer{buf: bufio.NewWriter(tw), enc: tw}
}

func (w *Writer) Write(row []string) error {
	if _, err := w.buf.WriteString(strings.Join(row, string(api.Separator))); err != nil {
		return err
	}
	_, err := w.buf.WriteString("\r\n")
	return err
}

func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		_ = w.enc.Close()
		return err
	}
	return w.enc.Close()
}
