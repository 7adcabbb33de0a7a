// Package challenge declares the fixed-width challenge line sent by the
// server and computes the answer the client must send back.
//
// A challenge line carries three integer operands in fixed-width
// columns:
//
//	010 020 030
//	^^^ ^^^ ^^^
//	 i   j   k
//
// The answer is ((i + j) * k) - i rendered in base 10.
package challenge

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ── Format errors ────────────────────────────────────────────────────

var (
	ErrShortLine    = errors.New("line too short")
	ErrBadSeparator = errors.New("unexpected separator")
	ErrNotNumeric   = errors.New("field is not an integer")

	// ErrInvalidFormat is returned for a Format that cannot describe
	// any line.
	ErrInvalidFormat = errors.New("invalid challenge format")
)

// FormatError reports a challenge line that does not match its Format.
type FormatError struct {
	Line   string
	Offset int   // byte offset of the offending field or separator
	Err    error // one of the Err* sentinels above
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("challenge %q at offset %d: %v", e.Line, e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ── Format ───────────────────────────────────────────────────────────

// Format describes the column layout of a challenge line.
type Format struct {
	// FieldWidth is the number of bytes in each operand column.
	FieldWidth int
	// Fields is the number of operand columns.
	Fields int
	// Separator is the byte between two columns.  Zero accepts any
	// single non-digit byte.
	Separator byte
}

// DefaultFormat is the layout the challenge server uses: three
// 3-byte columns at offsets [0,3), [4,7) and [8,11).
var DefaultFormat = Format{FieldWidth: 3, Fields: 3} //nolint:gochecknoglobals

// MinLen is the shortest line that can hold every column.
func (f Format) MinLen() int {
	if f.Fields <= 0 || f.FieldWidth <= 0 {
		return 0
	}
	return f.Fields*f.FieldWidth + (f.Fields - 1)
}

// Offsets returns the start offset of every column.
func (f Format) Offsets() []int {
	if f.Fields <= 0 || f.FieldWidth <= 0 {
		return nil
	}
	out := make([]int, f.Fields)
	for n := range out {
		out[n] = n * (f.FieldWidth + 1)
	}
	return out
}

// Split cuts line into its raw columns after validating the layout.
// Bytes past MinLen are ignored.
func (f Format) Split(line string) ([]string, error) {
	if f.Fields < 1 || f.FieldWidth < 1 {
		return nil, fmt.Errorf("%w: %d fields of width %d", ErrInvalidFormat, f.Fields, f.FieldWidth)
	}
	line = strings.TrimRight(line, "\r\n")
	if len(line) < f.MinLen() {
		return nil, &FormatError{Line: line, Offset: len(line), Err: ErrShortLine}
	}

	cols := make([]string, 0, f.Fields)
	for n, off := range f.Offsets() {
		if n > 0 {
			sep := off - 1
			if !f.separatorOK(line[sep]) {
				return nil, &FormatError{Line: line, Offset: sep, Err: ErrBadSeparator}
			}
		}
		cols = append(cols, line[off:off+f.FieldWidth])
	}
	return cols, nil
}

func (f Format) separatorOK(b byte) bool {
	if f.Separator != 0 {
		return b == f.Separator
	}
	return b < '0' || b > '9'
}

// Parse extracts the operands from line.  Columns may be zero- or
// space-padded and may carry a sign.
func (f Format) Parse(line string) (Operands, error) {
	if f.Fields != 3 {
		return Operands{}, fmt.Errorf("%w: %d fields, need 3", ErrInvalidFormat, f.Fields)
	}

	cols, err := f.Split(line)
	if err != nil {
		return Operands{}, err
	}

	var vals [3]int
	offs := f.Offsets()
	for n, col := range cols {
		v, err := strconv.Atoi(strings.TrimSpace(col))
		if err != nil {
			return Operands{}, &FormatError{
				Line:   strings.TrimRight(line, "\r\n"),
				Offset: offs[n],
				Err:    ErrNotNumeric,
			}
		}
		vals[n] = v
	}
	return Operands{I: vals[0], J: vals[1], K: vals[2]}, nil
}

// ── Operands ─────────────────────────────────────────────────────────

// Operands are the three integers carried by a challenge line.
type Operands struct {
	I, J, K int
}

// Answer returns ((I + J) * K) - I.
func (o Operands) Answer() int {
	return ((o.I + o.J) * o.K) - o.I
}

// String renders the operands the way they appear in the formula.
func (o Operands) String() string {
	return fmt.Sprintf("((%d + %d) * %d) - %d", o.I, o.J, o.K, o.I)
}

// Solve parses line with DefaultFormat and returns the decimal answer.
func Solve(line string) (string, error) {
	ops, err := DefaultFormat.Parse(line)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(ops.Answer()), nil
}
