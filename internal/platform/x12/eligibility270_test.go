package x12

import (
	"strings"
	"testing"
	"time"
)

func testInquiry() *Eligibility270 {
	return &Eligibility270{
		Payer: Party{Name: "UNITED HEALTH", ID: "87726"},
		Provider: Provider{
			OrgName: "SUNRISE FAMILY CLINIC",
			NPI:     "1234567893",
			TaxID:   "123456789",
		},
		Subscriber: Subscriber{
			FirstName: "JANE",
			LastName:  "DOE",
			MemberID:  "W12345678",
			BirthDate: time.Date(1980, 5, 15, 0, 0, 0, 0, time.UTC),
			Gender:    "F",
		},
		ServiceDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		TraceNumber: "TRACE0001",
	}
}

func TestGenerate270EnvelopeControlNumbersMatch(t *testing.T) {
	doc, err := testGenerator().Generate270(testInquiry())
	if err != nil {
		t.Fatalf("Generate270: %v", err)
	}
	segs := segmentsOf(t, doc)

	isa := findSegment(t, segs, "ISA")
	iea := findSegment(t, segs, "IEA")
	if got, want := iea.Element(2), strings.TrimSpace(isa.Element(13)); got != want {
		t.Errorf("IEA02 = %q, want ISA13 %q", got, want)
	}
	gs := findSegment(t, segs, "GS")
	ge := findSegment(t, segs, "GE")
	if gs.Element(6) != ge.Element(2) {
		t.Errorf("GS06 %q != GE02 %q", gs.Element(6), ge.Element(2))
	}
	st := findSegment(t, segs, "ST")
	se := findSegment(t, segs, "SE")
	if st.Element(2) != se.Element(2) {
		t.Errorf("ST02 %q != SE02 %q", st.Element(2), se.Element(2))
	}
}

func TestGenerate270HierarchicalLevels(t *testing.T) {
	doc, err := testGenerator().Generate270(testInquiry())
	if err != nil {
		t.Fatalf("Generate270: %v", err)
	}

	for _, want := range []string{
		"HL*1**20*1~",
		"HL*2*1*21*1~",
		"HL*3*2*22*0~",
		"NM1*PR*2*UNITED HEALTH*****PI*87726~",
		"NM1*1P*2*SUNRISE FAMILY CLINIC*****XX*1234567893~",
		"NM1*IL*1*DOE*JANE****MI*W12345678~",
		"TRN*1*TRACE0001*9123456789~",
		"DMG*D8*19800515*F~",
		"DTP*291*D8*20240115~",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("missing %q in %q", want, doc)
		}
	}
}

func TestGenerate270FunctionalIdentifier(t *testing.T) {
	doc, err := testGenerator().Generate270(testInquiry())
	if err != nil {
		t.Fatalf("Generate270: %v", err)
	}
	gs := findSegment(t, segmentsOf(t, doc), "GS")
	if gs.Element(1) != "HS" {
		t.Errorf("GS01 = %q, want HS", gs.Element(1))
	}
	if gs.Element(8) != version270 {
		t.Errorf("GS08 = %q, want %s", gs.Element(8), version270)
	}
}

func TestGenerate270DefaultsServiceTypeCode(t *testing.T) {
	doc, err := testGenerator().Generate270(testInquiry())
	if err != nil {
		t.Fatalf("Generate270: %v", err)
	}
	if !strings.Contains(doc, "EQ*30~") {
		t.Errorf("EQ should default to service type 30: %q", doc)
	}

	inq := testInquiry()
	inq.ServiceTypeCode = "98"
	doc, err = testGenerator().Generate270(inq)
	if err != nil {
		t.Fatalf("Generate270: %v", err)
	}
	if !strings.Contains(doc, "EQ*98~") {
		t.Errorf("EQ should honor the supplied service type: %q", doc)
	}
}

func TestGenerate270NormalizesGender(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"male", "M"},
		{"FEMALE", "F"},
		{"nonbinary", "U"},
		{"", "U"},
	}
	for _, tt := range tests {
		inq := testInquiry()
		inq.Subscriber.Gender = tt.in
		doc, err := testGenerator().Generate270(inq)
		if err != nil {
			t.Fatalf("Generate270: %v", err)
		}
		if !strings.Contains(doc, "DMG*D8*19800515*"+tt.want+"~") {
			t.Errorf("gender %q: want DMG code %q in %q", tt.in, tt.want, doc)
		}
	}
}

func TestGenerate270GeneratesTraceWhenAbsent(t *testing.T) {
	inq := testInquiry()
	inq.TraceNumber = ""
	doc, err := testGenerator().Generate270(inq)
	if err != nil {
		t.Fatalf("Generate270: %v", err)
	}
	trn := findSegment(t, segmentsOf(t, doc), "TRN")
	if trn.Element(2) == "" {
		t.Error("TRN02 should be generated when no trace number is supplied")
	}
}

func TestGenerate270RejectsInvalidNPI(t *testing.T) {
	inq := testInquiry()
	inq.Provider.NPI = "999"
	if _, err := testGenerator().Generate270(inq); err == nil {
		t.Fatal("expected error for invalid provider NPI")
	}
}

func TestGenerate270RejectsZeroServiceDate(t *testing.T) {
	inq := testInquiry()
	inq.ServiceDate = time.Time{}
	if _, err := testGenerator().Generate270(inq); err == nil {
		t.Fatal("expected error for zero service date")
	}
}
