// Package x12 implements the ANSI X12 EDI wire format used for HIPAA 005010
// healthcare transactions: generation of 837P (professional claim) and 270
// (eligibility inquiry) documents, and tokenization, structural validation,
// and semantic parsing of 835 (remittance advice) documents.
//
// Generation uses fixed delimiters; 835 parsing detects the sender's
// delimiters from the interchange header. All operations are pure, in-memory
// string transformations with no I/O.
package x12

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Delimiters is the character set governing X12 document structure.
type Delimiters struct {
	Element    byte // between elements within a segment
	Component  byte // between sub-parts of a composite element
	Terminator byte // between segments
}

// DefaultDelimiters is the fixed delimiter set used for generated documents.
var DefaultDelimiters = Delimiters{Element: '*', Component: ':', Terminator: '~'}

// repetitionSeparator is carried in ISA11 for version 005010.
const repetitionSeparator = "^"

// FormatError reports a value the generator cannot serialize, such as a
// zero date. Generation fails rather than emitting a malformed field.
type FormatError struct {
	Field  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("x12: cannot format %s: %s", e.Field, e.Reason)
}

// ValidationError reports caller-supplied data that violates the generator's
// contract, such as a malformed NPI or an out-of-range diagnosis pointer.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("x12: invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// BuildSegment joins the segment identifier and elements with the element
// separator and appends the segment terminator. Element-separator and
// terminator characters embedded in an element are stripped so a raw value
// can never corrupt document structure; component separators are preserved
// because composite elements are passed in pre-joined.
func (d Delimiters) BuildSegment(id string, elements ...string) string {
	var b strings.Builder
	b.WriteString(id)
	for _, el := range elements {
		b.WriteByte(d.Element)
		b.WriteString(d.stripStructural(el))
	}
	b.WriteByte(d.Terminator)
	return b.String()
}

// stripStructural removes the element separator and segment terminator from
// a single element value.
func (d Delimiters) stripStructural(s string) string {
	if !strings.ContainsAny(s, string([]byte{d.Element, d.Terminator})) {
		return s
	}
	s = strings.ReplaceAll(s, string(d.Element), "")
	return strings.ReplaceAll(s, string(d.Terminator), "")
}

// SanitizeText strips every character that collides with the delimiter set
// from a free-text value (names, addresses) before segment assembly.
func SanitizeText(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '*', '~', '^', ':':
			return -1
		}
		return r
	}, s)
}

// FormatDate renders a date as CCYYMMDD. A zero date is a caller-contract
// violation, not an empty field.
func FormatDate(t time.Time) (string, error) {
	if t.IsZero() {
		return "", &FormatError{Field: "date", Reason: "missing or zero value"}
	}
	return t.Format("20060102"), nil
}

// FormatShortDate renders a date as YYMMDD for the fixed-width ISA header.
func FormatShortDate(t time.Time) (string, error) {
	if t.IsZero() {
		return "", &FormatError{Field: "date", Reason: "missing or zero value"}
	}
	return t.Format("060102"), nil
}

// FormatTime renders a time of day as HHMM.
func FormatTime(t time.Time) (string, error) {
	if t.IsZero() {
		return "", &FormatError{Field: "time", Reason: "missing or zero value"}
	}
	return t.Format("1504"), nil
}

// FormatAmount renders a monetary amount with exactly two decimal places.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// ParseAmount converts an element value to a float64. Malformed or empty
// values resolve to 0; structural validation is expected to have flagged the
// document already if that matters.
func ParseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// FixedWidth pads s with trailing spaces to exactly n characters, truncating
// longer values. Used for the fixed-width interchange header.
func FixedWidth(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}

// ZeroPad renders n as a zero-padded decimal of the given width.
func ZeroPad(n int, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

// FormatNPI validates a National Provider Identifier. Non-numeric characters
// are stripped first; the result must be exactly 10 digits.
func FormatNPI(npi string) (string, error) {
	var digits strings.Builder
	for _, r := range npi {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	out := digits.String()
	if len(out) != 10 {
		return "", &ValidationError{Field: "npi", Value: npi, Reason: "must be exactly 10 digits"}
	}
	return out, nil
}

// formatUnits renders a service unit count, trimming a trailing ".0" so whole
// unit counts serialize as integers.
func formatUnits(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
