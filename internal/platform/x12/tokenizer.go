package x12

import (
	"strconv"
	"strings"
)

// Segment is the atomic unit of a tokenized document: a 2-3 character
// identifier followed by positionally significant elements. Absent trailing
// elements read as empty strings, never as an index error.
type Segment struct {
	ID       string
	Elements []string
}

// Element returns the element at the given 1-based X12 position, or "" when
// the segment is too short.
func (s Segment) Element(pos int) string {
	idx := pos - 1
	if idx < 0 || idx >= len(s.Elements) {
		return ""
	}
	return s.Elements[idx]
}

// DetectDelimiters reads the sender-chosen delimiter set from the fixed
// 106-character interchange header: the element separator is the 4th
// character, the component separator sits at a fixed offset inside ISA16,
// and the segment terminator is whatever non-space character follows it.
// Failures are reported as diagnostics, not errors.
func DetectDelimiters(raw string) (Delimiters, []Diagnostic) {
	if strings.TrimSpace(raw) == "" {
		return Delimiters{}, []Diagnostic{errorDiag("ISA", -1, "document is empty")}
	}
	if !strings.HasPrefix(raw, "ISA") {
		return Delimiters{}, []Diagnostic{errorDiag("ISA", 0, "document does not begin with an ISA interchange header")}
	}
	if len(raw) < isaByteCount {
		return Delimiters{}, []Diagnostic{errorDiag("ISA", 0,
			"interchange header is truncated: need %d characters, have %d", isaByteCount, len(raw))}
	}

	d := Delimiters{
		Element:   raw[isaElementSeparatorIndex],
		Component: raw[isaComponentIndex],
	}

	// Some senders terminate with a newline, or pad between the component
	// separator and the terminator; take the first non-space character.
	for i := isaTerminatorIndex; i < len(raw); i++ {
		if raw[i] != ' ' {
			d.Terminator = raw[i]
			break
		}
	}
	if d.Terminator == 0 {
		return Delimiters{}, []Diagnostic{errorDiag("ISA", 0, "no segment terminator found after the interchange header")}
	}
	return d, nil
}

// Tokenize splits raw document text into segments using the given delimiter
// set. Incidental whitespace around segments is trimmed (some senders wrap
// lines at 80 columns without semantic meaning) and empty segments are
// discarded.
func Tokenize(raw string, d Delimiters) []Segment {
	var segments []Segment
	for _, chunk := range strings.Split(raw, string(d.Terminator)) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		elements := strings.Split(chunk, string(d.Element))
		seg := Segment{ID: elements[0]}
		if len(elements) > 1 {
			seg.Elements = elements[1:]
		}
		segments = append(segments, seg)
	}
	return segments
}

// required835Segments are the top-level segments every structurally sound
// remittance carries; a missing one is fatal.
var required835Segments = []string{"ISA", "GS", "ST", "BPR", "TRN", "SE", "GE", "IEA"}

// Validate835 performs structural pre-validation of a raw 835 document and
// returns the resulting diagnostics. It never panics and never returns an
// error: a malformed document is a data problem, reported as diagnostics for
// operator review.
func Validate835(raw string) []Diagnostic {
	d, diags := DetectDelimiters(raw)
	if HasFatal(diags) {
		return diags
	}
	return validateSegments(Tokenize(raw, d))
}

func validateSegments(segments []Segment) []Diagnostic {
	var diags []Diagnostic

	index := make(map[string][]int)
	for i, seg := range segments {
		index[seg.ID] = append(index[seg.ID], i)
	}

	for _, id := range required835Segments {
		if len(index[id]) == 0 {
			diags = append(diags, errorDiag(id, -1, "required segment %s is missing", id))
		}
	}
	if HasFatal(diags) {
		return diags
	}

	first := func(id string) Segment { return segments[index[id][0]] }
	last := func(id string) Segment { return segments[index[id][len(index[id])-1]] }

	if code := first("ST").Element(1); code != "835" {
		diags = append(diags, errorDiag("ST", index["ST"][0],
			"transaction set code is %q, expected 835", code))
	}
	if fc := first("GS").Element(1); fc != "HP" {
		diags = append(diags, warnDiag("GS", index["GS"][0],
			"functional identifier code is %q, expected HP", fc))
	}

	// Control number integrity across the three nested envelope pairs.
	if isa, iea := strings.TrimSpace(first("ISA").Element(13)), strings.TrimSpace(last("IEA").Element(2)); isa != iea {
		diags = append(diags, errorDiag("IEA", index["IEA"][0],
			"interchange control numbers do not match: ISA13=%q IEA02=%q", isa, iea))
	}
	if gs, ge := first("GS").Element(6), last("GE").Element(2); gs != ge {
		diags = append(diags, errorDiag("GE", index["GE"][0],
			"group control numbers do not match: GS06=%q GE02=%q", gs, ge))
	}
	if st, se := first("ST").Element(2), first("SE").Element(2); st != se {
		diags = append(diags, errorDiag("SE", index["SE"][0],
			"transaction control numbers do not match: ST02=%q SE02=%q", st, se))
	}

	if len(index["CLP"]) == 0 {
		diags = append(diags, warnDiag("CLP", -1, "remittance contains no claim payment segments"))
	}

	if amount := first("BPR").Element(2); amount != "" {
		if _, err := strconv.ParseFloat(amount, 64); err != nil {
			diags = append(diags, errorDiag("BPR", index["BPR"][0],
				"payment amount %q is not numeric", amount))
		}
	} else {
		diags = append(diags, errorDiag("BPR", index["BPR"][0], "payment amount is empty"))
	}

	return diags
}
