package x12

import (
	"strconv"
	"strings"
	"time"
)

// Address is a postal address carried in N3/N4 segments.
type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2,omitempty"`
	City  string `json:"city"`
	State string `json:"state"`
	Zip   string `json:"zip"`
}

// Party identifies a submitter, receiver, or payer.
type Party struct {
	Name         string `json:"name"`
	ID           string `json:"id"`
	ContactName  string `json:"contact_name,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
}

// Provider identifies a billing or rendering provider.
type Provider struct {
	OrgName      string  `json:"org_name,omitempty"`
	LastName     string  `json:"last_name,omitempty"`
	FirstName    string  `json:"first_name,omitempty"`
	NPI          string  `json:"npi"`
	TaxID        string  `json:"tax_id,omitempty"`
	TaxonomyCode string  `json:"taxonomy_code,omitempty"`
	Address      Address `json:"address"`
}

// Subscriber is the insured member (and, for this generator, the patient).
type Subscriber struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	MemberID  string    `json:"member_id"`
	BirthDate time.Time `json:"birth_date"`
	Gender    string    `json:"gender"`
	Address   Address   `json:"address"`
}

// ServiceLine837 is one claim service line (loop 2400).
type ServiceLine837 struct {
	ProcedureCode     string    `json:"procedure_code"`
	Modifiers         []string  `json:"modifiers,omitempty"` // up to 2
	Charge            float64   `json:"charge"`
	Units             float64   `json:"units"`
	ServiceDate       time.Time `json:"service_date"`
	DiagnosisPointers []int     `json:"diagnosis_pointers,omitempty"` // 1-based into DiagnosisCodes
}

// Claim837 is the input to the professional claim generator. The caller is
// responsible for business-rule validation; the generator performs only the
// structural checks it needs to serialize safely.
type Claim837 struct {
	Submitter         Party      `json:"submitter"`
	Receiver          Party      `json:"receiver"`
	BillingProvider   Provider   `json:"billing_provider"`
	RenderingProvider *Provider  `json:"rendering_provider,omitempty"`
	Payer             Party      `json:"payer"`
	Subscriber        Subscriber `json:"subscriber"`

	PatientControlNumber string `json:"patient_control_number"`
	PlaceOfService       string `json:"place_of_service,omitempty"` // default "11" (office)
	FrequencyCode        string `json:"frequency_code,omitempty"`   // default "1" (original)

	DiagnosisCodes []string         `json:"diagnosis_codes"` // up to 12, ICD-10-CM
	ServiceLines   []ServiceLine837 `json:"service_lines"`
}

// maxDiagnosisCodes is the HI segment capacity in the 2300 loop.
const maxDiagnosisCodes = 12

// TotalCharge sums the service line charges.
func (c *Claim837) TotalCharge() float64 {
	var total float64
	for _, l := range c.ServiceLines {
		total += l.Charge
	}
	return total
}

// Generate837P renders a complete 837P claim submission document using the
// default generator.
func Generate837P(claim *Claim837) (string, error) {
	var g Generator
	return g.Generate837P(claim)
}

// Generate837P renders a complete 837P claim submission document:
// interchange, group, and transaction headers, submitter/receiver loops,
// billing provider hierarchy, subscriber hierarchy with claim and diagnosis
// information, one 2400 loop per service line, and the matching trailers.
func (g *Generator) Generate837P(claim *Claim837) (string, error) {
	if err := claim.validate(); err != nil {
		return "", err
	}

	billingNPI, err := FormatNPI(claim.BillingProvider.NPI)
	if err != nil {
		return "", err
	}

	now := g.now()
	ctl := g.newEnvelopeControl()
	b := newDocBuilder()

	if err := b.addISA(claim.Submitter.ID, claim.Receiver.ID, now, ctl); err != nil {
		return "", err
	}
	if err := b.addGS("837", claim.Submitter.ID, claim.Receiver.ID, version837P, now, ctl); err != nil {
		return "", err
	}
	b.addST("837", version837P, ctl)

	date, _ := FormatDate(now)
	tm, _ := FormatTime(now)
	b.add("BHT", "0019", "00", ctl.transaction, date, tm, "CH")

	// 1000A submitter / 1000B receiver
	b.add("NM1", "41", "2", SanitizeText(claim.Submitter.Name), "", "", "", "", "46", claim.Submitter.ID)
	per := []string{"IC", SanitizeText(claim.Submitter.ContactName), "TE", claim.Submitter.ContactPhone}
	if claim.Submitter.ContactEmail != "" {
		per = append(per, "EM", claim.Submitter.ContactEmail)
	}
	b.add("PER", per...)
	b.add("NM1", "40", "2", SanitizeText(claim.Receiver.Name), "", "", "", "", "46", claim.Receiver.ID)

	// 2000A billing provider hierarchical loop
	b.add("HL", "1", "", "20", "1")
	if claim.BillingProvider.TaxonomyCode != "" {
		b.add("PRV", "BI", "PXC", claim.BillingProvider.TaxonomyCode)
	}
	b.add("NM1", "85", "2", SanitizeText(claim.BillingProvider.OrgName), "", "", "", "", "XX", billingNPI)
	addAddress(b, claim.BillingProvider.Address)
	if claim.BillingProvider.TaxID != "" {
		b.add("REF", "EI", claim.BillingProvider.TaxID)
	}

	// 2000B subscriber hierarchical loop
	b.add("HL", "2", "1", "22", "0")
	b.add("SBR", "P", "18", "", "", "", "", "", "", "CI")
	b.add("NM1", "IL", "1",
		SanitizeText(claim.Subscriber.LastName), SanitizeText(claim.Subscriber.FirstName),
		"", "", "", "MI", claim.Subscriber.MemberID)
	addAddress(b, claim.Subscriber.Address)
	dob, err := FormatDate(claim.Subscriber.BirthDate)
	if err != nil {
		return "", &FormatError{Field: "subscriber birth date", Reason: "missing or zero value"}
	}
	b.add("DMG", "D8", dob, normalizeGender(claim.Subscriber.Gender))
	b.add("NM1", "PR", "2", SanitizeText(claim.Payer.Name), "", "", "", "", "PI", claim.Payer.ID)

	// 2300 claim
	pos := claim.PlaceOfService
	if pos == "" {
		pos = "11"
	}
	freq := claim.FrequencyCode
	if freq == "" {
		freq = "1"
	}
	facility := pos + string(DefaultDelimiters.Component) + "B" + string(DefaultDelimiters.Component) + freq
	b.add("CLM",
		claim.PatientControlNumber,
		FormatAmount(claim.TotalCharge()),
		"", "",
		facility,
		"Y", "A", "Y", "Y")
	b.add("HI", diagnosisComposites(claim.DiagnosisCodes)...)

	// 2310B rendering provider, omitted entirely without an NPI
	if rp := claim.RenderingProvider; rp != nil && rp.NPI != "" {
		renderingNPI, err := FormatNPI(rp.NPI)
		if err != nil {
			return "", err
		}
		b.add("NM1", "82", "1", SanitizeText(rp.LastName), SanitizeText(rp.FirstName), "", "", "", "XX", renderingNPI)
		if rp.TaxonomyCode != "" {
			b.add("PRV", "PE", "PXC", rp.TaxonomyCode)
		}
	}

	// 2400 service lines
	for i, line := range claim.ServiceLines {
		b.add("LX", strconv.Itoa(i+1))
		b.add("SV1",
			procedureComposite(line.ProcedureCode, line.Modifiers),
			FormatAmount(line.Charge),
			"UN",
			formatUnits(line.Units),
			"", "",
			pointerComposite(line.DiagnosisPointers))
		dos, err := FormatDate(line.ServiceDate)
		if err != nil {
			return "", &FormatError{Field: "service date", Reason: "missing or zero value"}
		}
		b.add("DTP", "472", "D8", dos)
	}

	b.addTrailers(ctl)
	return b.String(), nil
}

// validate checks the structural invariants the generator cannot serialize
// around: diagnosis list capacity and pointer ranges.
func (c *Claim837) validate() error {
	if len(c.DiagnosisCodes) == 0 {
		return &ValidationError{Field: "diagnosis_codes", Value: "", Reason: "at least one diagnosis code is required"}
	}
	if len(c.DiagnosisCodes) > maxDiagnosisCodes {
		return &ValidationError{
			Field:  "diagnosis_codes",
			Value:  strconv.Itoa(len(c.DiagnosisCodes)),
			Reason: "at most 12 diagnosis codes are allowed",
		}
	}
	if len(c.ServiceLines) == 0 {
		return &ValidationError{Field: "service_lines", Value: "", Reason: "at least one service line is required"}
	}
	for i, line := range c.ServiceLines {
		if len(line.Modifiers) > 2 {
			return &ValidationError{
				Field:  "service line modifiers",
				Value:  strings.Join(line.Modifiers, ","),
				Reason: "at most 2 modifiers are allowed",
			}
		}
		for _, p := range line.DiagnosisPointers {
			if p < 1 || p > len(c.DiagnosisCodes) {
				return &ValidationError{
					Field:  "diagnosis pointer",
					Value:  strconv.Itoa(p),
					Reason: "line " + strconv.Itoa(i+1) + " references a diagnosis position that does not exist",
				}
			}
		}
	}
	return nil
}

func addAddress(b *docBuilder, a Address) {
	if a.Line2 != "" {
		b.add("N3", SanitizeText(a.Line1), SanitizeText(a.Line2))
	} else {
		b.add("N3", SanitizeText(a.Line1))
	}
	b.add("N4", SanitizeText(a.City), a.State, a.Zip)
}

// diagnosisComposites renders the HI segment elements: the first code uses
// the ABK (principal) qualifier, the rest ABF.
func diagnosisComposites(codes []string) []string {
	sep := string(DefaultDelimiters.Component)
	out := make([]string, len(codes))
	for i, code := range codes {
		qualifier := "ABF"
		if i == 0 {
			qualifier = "ABK"
		}
		out[i] = qualifier + sep + code
	}
	return out
}

// procedureComposite renders SV101: HC:code with up to two modifiers, absent
// modifiers omitted rather than zero-padded.
func procedureComposite(code string, modifiers []string) string {
	sep := string(DefaultDelimiters.Component)
	parts := append([]string{"HC", code}, modifiers...)
	return strings.Join(parts, sep)
}

// pointerComposite renders SV107, defaulting to the first diagnosis when the
// caller supplies no pointers.
func pointerComposite(pointers []int) string {
	if len(pointers) == 0 {
		return "1"
	}
	sep := string(DefaultDelimiters.Component)
	parts := make([]string, len(pointers))
	for i, p := range pointers {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, sep)
}

// normalizeGender maps free-form gender values to the M/F/U codes DMG03
// accepts.
func normalizeGender(g string) string {
	switch strings.ToUpper(strings.TrimSpace(g)) {
	case "M", "MALE":
		return "M"
	case "F", "FEMALE":
		return "F"
	default:
		return "U"
	}
}
