package x12

import (
	"strconv"
	"time"
)

// ISA element widths for the fixed 106-character interchange header.
const (
	isaLenAuthQualifier     = 2
	isaLenAuthInfo          = 10
	isaLenSecurityQualifier = 2
	isaLenSecurityInfo      = 10
	isaLenIDQualifier       = 2
	isaLenSenderID          = 15
	isaLenReceiverID        = 15
	isaLenVersion           = 5

	isaByteCount             = 106
	isaElementSeparatorIndex = 3
	isaComponentIndex        = 104
	isaTerminatorIndex       = 105
)

// functionalIdentifierCodes maps a transaction set code to its GS01
// functional identifier.
var functionalIdentifierCodes = map[string]string{
	"270": "HS",
	"271": "HB",
	"835": "HP",
	"837": "HC",
}

// Implementation guide version codes (GS08/ST03) for the 005010 guides.
const (
	version837P = "005010X222A1"
	version270  = "005010X279A1"
	version835  = "005010X221A1"
)

// Generator produces outbound X12 documents. The zero value uses the fixed
// default delimiters, the process-wide sequential control number source, and
// the system clock.
type Generator struct {
	// Control supplies envelope control numbers; nil uses the shared
	// sequential source.
	Control ControlNumberSource
	// Now supplies generation timestamps; nil uses time.Now. Injected by
	// tests that need byte-stable output.
	Now func() time.Time
}

func (g *Generator) source() ControlNumberSource {
	if g != nil && g.Control != nil {
		return g.Control
	}
	return defaultSource
}

func (g *Generator) now() time.Time {
	if g != nil && g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// envelopeControl carries the three independently generated control numbers
// for one document, so each trailer can close its matching header.
type envelopeControl struct {
	interchange string
	group       string
	transaction string
}

func (g *Generator) newEnvelopeControl() envelopeControl {
	src := g.source()
	return envelopeControl{
		interchange: src.Next(interchangeControlWidth),
		group:       src.Next(groupControlWidth),
		transaction: src.Next(transactionControlWidth),
	}
}

// docBuilder accumulates segments for one document and tracks the ST
// position so the SE segment count can be computed.
type docBuilder struct {
	d       Delimiters
	segs    []string
	stIndex int
}

func newDocBuilder() *docBuilder {
	return &docBuilder{d: DefaultDelimiters, stIndex: -1}
}

func (b *docBuilder) add(id string, elements ...string) {
	if id == "ST" {
		b.stIndex = len(b.segs)
	}
	b.segs = append(b.segs, b.d.BuildSegment(id, elements...))
}

// transactionSegmentCount is the number of segments from ST through SE
// inclusive, assuming SE is added next.
func (b *docBuilder) transactionSegmentCount() int {
	return len(b.segs) - b.stIndex + 1
}

func (b *docBuilder) String() string {
	var out string
	for _, s := range b.segs {
		out += s
	}
	return out
}

// addISA appends the fixed-width interchange header. Usage indicator is "P"
// (production); sender and receiver use the mutually-defined "ZZ" qualifier.
func (b *docBuilder) addISA(senderID, receiverID string, at time.Time, ctl envelopeControl) error {
	date, err := FormatShortDate(at)
	if err != nil {
		return err
	}
	tm, err := FormatTime(at)
	if err != nil {
		return err
	}
	b.add("ISA",
		FixedWidth("00", isaLenAuthQualifier),
		FixedWidth("", isaLenAuthInfo),
		FixedWidth("00", isaLenSecurityQualifier),
		FixedWidth("", isaLenSecurityInfo),
		FixedWidth("ZZ", isaLenIDQualifier),
		FixedWidth(senderID, isaLenSenderID),
		FixedWidth("ZZ", isaLenIDQualifier),
		FixedWidth(receiverID, isaLenReceiverID),
		date,
		tm,
		repetitionSeparator,
		FixedWidth("00501", isaLenVersion),
		ctl.interchange,
		"0",
		"P",
		string(b.d.Component),
	)
	return nil
}

// addGS appends the functional group header for the given transaction set
// code and implementation guide version.
func (b *docBuilder) addGS(txSetCode, senderID, receiverID, guideVersion string, at time.Time, ctl envelopeControl) error {
	date, err := FormatDate(at)
	if err != nil {
		return err
	}
	tm, err := FormatTime(at)
	if err != nil {
		return err
	}
	b.add("GS",
		functionalIdentifierCodes[txSetCode],
		senderID,
		receiverID,
		date,
		tm,
		ctl.group,
		"X",
		guideVersion,
	)
	return nil
}

func (b *docBuilder) addST(txSetCode, guideVersion string, ctl envelopeControl) {
	b.add("ST", txSetCode, ctl.transaction, guideVersion)
}

// addTrailers closes the transaction, group, and interchange envelopes with
// control numbers matching their headers.
func (b *docBuilder) addTrailers(ctl envelopeControl) {
	b.add("SE", strconv.Itoa(b.transactionSegmentCount()), ctl.transaction)
	b.add("GE", "1", ctl.group)
	b.add("IEA", "1", ctl.interchange)
}
