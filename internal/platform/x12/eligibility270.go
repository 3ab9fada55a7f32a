package x12

import "time"

// Eligibility270 is the input to the eligibility inquiry generator.
type Eligibility270 struct {
	Payer      Party      `json:"payer"`
	Provider   Provider   `json:"provider"`
	Subscriber Subscriber `json:"subscriber"`

	ServiceDate time.Time `json:"service_date"`
	// ServiceTypeCode is the EQ01 benefit inquiry code; default "30"
	// (health benefit plan coverage).
	ServiceTypeCode string `json:"service_type_code,omitempty"`
	TraceNumber     string `json:"trace_number,omitempty"`
}

// Generate270 renders a complete 270 eligibility inquiry document using the
// default generator.
func Generate270(inq *Eligibility270) (string, error) {
	var g Generator
	return g.Generate270(inq)
}

// Generate270 renders a complete 270 eligibility inquiry: information source
// (payer), information receiver (provider), and subscriber hierarchical
// levels, with trace number, demographics, date of service, and service type
// inquiry, under the same envelope discipline as the claim generator.
func (g *Generator) Generate270(inq *Eligibility270) (string, error) {
	providerNPI, err := FormatNPI(inq.Provider.NPI)
	if err != nil {
		return "", err
	}

	now := g.now()
	ctl := g.newEnvelopeControl()
	b := newDocBuilder()

	if err := b.addISA(inq.Provider.TaxID, inq.Payer.ID, now, ctl); err != nil {
		return "", err
	}
	if err := b.addGS("270", inq.Provider.TaxID, inq.Payer.ID, version270, now, ctl); err != nil {
		return "", err
	}
	b.addST("270", version270, ctl)

	trace := inq.TraceNumber
	if trace == "" {
		trace = g.source().Next(interchangeControlWidth)
	}

	date, _ := FormatDate(now)
	tm, _ := FormatTime(now)
	b.add("BHT", "0022", "13", trace, date, tm)

	// 2000A information source (payer)
	b.add("HL", "1", "", "20", "1")
	b.add("NM1", "PR", "2", SanitizeText(inq.Payer.Name), "", "", "", "", "PI", inq.Payer.ID)

	// 2000B information receiver (provider)
	b.add("HL", "2", "1", "21", "1")
	b.add("NM1", "1P", "2", SanitizeText(inq.Provider.OrgName), "", "", "", "", "XX", providerNPI)

	// 2000C subscriber
	b.add("HL", "3", "2", "22", "0")
	// TRN03 originating company identifier: "9" plus the provider tax ID.
	b.add("TRN", "1", trace, "9"+inq.Provider.TaxID)
	b.add("NM1", "IL", "1",
		SanitizeText(inq.Subscriber.LastName), SanitizeText(inq.Subscriber.FirstName),
		"", "", "", "MI", inq.Subscriber.MemberID)
	dob, err := FormatDate(inq.Subscriber.BirthDate)
	if err != nil {
		return "", &FormatError{Field: "subscriber birth date", Reason: "missing or zero value"}
	}
	b.add("DMG", "D8", dob, normalizeGender(inq.Subscriber.Gender))

	svcDate, err := FormatDate(inq.ServiceDate)
	if err != nil {
		return "", &FormatError{Field: "service date", Reason: "missing or zero value"}
	}
	b.add("DTP", "291", "D8", svcDate)

	serviceType := inq.ServiceTypeCode
	if serviceType == "" {
		serviceType = "30"
	}
	b.add("EQ", serviceType)

	b.addTrailers(ctl)
	return b.String(), nil
}
