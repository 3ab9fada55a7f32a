package x12

// RemittanceFile is the typed result of parsing one 835 document. The tree
// is built once per parse call and never mutated afterwards; persistence is
// the caller's concern.
type RemittanceFile struct {
	Envelope     Envelope      `json:"envelope"`
	Transactions []Transaction `json:"transactions"`
	Diagnostics  []Diagnostic  `json:"diagnostics"`
	SegmentCount int           `json:"segment_count"`
}

// Envelope carries the interchange and functional group identities.
type Envelope struct {
	SenderID           string `json:"sender_id"`
	ReceiverID         string `json:"receiver_id"`
	Date               string `json:"date"`
	ControlNumber      string `json:"control_number"`       // ISA13
	FunctionalCode     string `json:"functional_code"`      // GS01
	GroupControlNumber string `json:"group_control_number"` // GS06
	VersionCode        string `json:"version_code"`         // GS08
}

// Transaction is one ST..SE remittance transaction.
type Transaction struct {
	ControlNumber       string               `json:"control_number"` // ST02
	TransactionType     string               `json:"transaction_type"`
	TotalPaid           float64              `json:"total_paid"`
	PaymentMethod       string               `json:"payment_method"`
	PaymentDate         string               `json:"payment_date"` // BPR16
	TraceNumber         string               `json:"trace_number"` // TRN02
	ProductionDate      string               `json:"production_date,omitempty"`
	Payer               Payer                `json:"payer"`
	Payee               Payee                `json:"payee"`
	Claims              []ClaimPayment       `json:"claims"`
	ProviderAdjustments []ProviderAdjustment `json:"provider_adjustments,omitempty"`
}

// Payer is the N1*PR identity loop.
type Payer struct {
	Name         string      `json:"name"`
	PayerID      string      `json:"payer_id,omitempty"`
	Address1     string      `json:"address1,omitempty"`
	Address2     string      `json:"address2,omitempty"`
	City         string      `json:"city,omitempty"`
	State        string      `json:"state,omitempty"`
	Zip          string      `json:"zip,omitempty"`
	ContactName  string      `json:"contact_name,omitempty"`
	ContactPhone string      `json:"contact_phone,omitempty"`
	References   []Reference `json:"references,omitempty"`
}

// Payee is the N1*PE identity loop. The NPI and tax ID are disambiguated by
// their identifier qualifiers.
type Payee struct {
	Name       string      `json:"name"`
	NPI        string      `json:"npi,omitempty"`
	TaxID      string      `json:"tax_id,omitempty"`
	Address1   string      `json:"address1,omitempty"`
	City       string      `json:"city,omitempty"`
	State      string      `json:"state,omitempty"`
	Zip        string      `json:"zip,omitempty"`
	References []Reference `json:"references,omitempty"`
}

// NamedParty is an NM1 identity within a claim payment loop.
type NamedParty struct {
	LastName    string `json:"last_name"`
	FirstName   string `json:"first_name,omitempty"`
	MiddleName  string `json:"middle_name,omitempty"`
	IDQualifier string `json:"id_qualifier,omitempty"`
	ID          string `json:"id,omitempty"`
}

// ClaimPayment is one loop 2100 claim payment record.
type ClaimPayment struct {
	PatientControlNumber  string  `json:"patient_control_number"` // CLP01
	StatusCode            string  `json:"status_code"`            // CLP02
	ChargeAmount          float64 `json:"charge_amount"`          // CLP03
	PaidAmount            float64 `json:"paid_amount"`            // CLP04
	PatientResponsibility float64 `json:"patient_responsibility"` // CLP05
	ClaimFilingCode       string  `json:"claim_filing_code,omitempty"`
	PayerControlNumber    string  `json:"payer_control_number,omitempty"` // CLP07
	FacilityCode          string  `json:"facility_code,omitempty"`
	FrequencyCode         string  `json:"frequency_code,omitempty"`

	Patient          *NamedParty `json:"patient,omitempty"`           // NM1*QC
	Insured          *NamedParty `json:"insured,omitempty"`           // NM1*IL
	CorrectedPatient *NamedParty `json:"corrected_patient,omitempty"` // NM1*74
	Rendering        *NamedParty `json:"rendering,omitempty"`         // NM1*82
	CrossoverCarrier *NamedParty `json:"crossover_carrier,omitempty"` // NM1*TT

	// MIA and MOA are mutually exclusive inpatient/outpatient adjudication
	// records.
	Inpatient  *InpatientAdjudication  `json:"inpatient,omitempty"`
	Outpatient *OutpatientAdjudication `json:"outpatient,omitempty"`

	StatementStart string `json:"statement_start,omitempty"` // DTM*232
	StatementEnd   string `json:"statement_end,omitempty"`   // DTM*233

	OriginalReference string `json:"original_reference,omitempty"` // REF*F8
	PolicyNumber      string `json:"policy_number,omitempty"`      // REF*1K
	BillType          string `json:"bill_type,omitempty"`          // REF*BLT
	MedicalRecordID   string `json:"medical_record_id,omitempty"`  // REF*EA

	Adjustments  []Adjustment         `json:"adjustments,omitempty"`
	References   []Reference          `json:"references,omitempty"`
	Amounts      []SupplementalAmount `json:"amounts,omitempty"`
	ServiceLines []ServiceLinePayment `json:"service_lines,omitempty"`
}

// InpatientAdjudication is the MIA segment.
type InpatientAdjudication struct {
	CoveredDays        float64  `json:"covered_days"`
	RemarkCodes        []string `json:"remark_codes,omitempty"`
	ClaimPayableAmount float64  `json:"claim_payable_amount,omitempty"`
}

// OutpatientAdjudication is the MOA segment.
type OutpatientAdjudication struct {
	ReimbursementRate  float64  `json:"reimbursement_rate,omitempty"`
	ClaimPayableAmount float64  `json:"claim_payable_amount,omitempty"`
	RemarkCodes        []string `json:"remark_codes,omitempty"`
}

// Adjustment is one CAS segment: a group code with up to six reason-coded
// detail triples.
type Adjustment struct {
	GroupCode string             `json:"group_code"`
	Details   []AdjustmentDetail `json:"details"`
}

// AdjustmentDetail is one (reason, amount, quantity) triple within a CAS
// segment.
type AdjustmentDetail struct {
	ReasonCode string  `json:"reason_code"`
	Amount     float64 `json:"amount"`
	Quantity   float64 `json:"quantity,omitempty"`
}

// Procedure is a decomposed SVC01/SVC06 composite.
type Procedure struct {
	Qualifier string   `json:"qualifier"`
	Code      string   `json:"code"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// ServiceLinePayment is one loop 2110 service line payment record.
type ServiceLinePayment struct {
	Procedure          Procedure  `json:"procedure"`
	ChargeAmount       float64    `json:"charge_amount"`
	PaidAmount         float64    `json:"paid_amount"`
	RevenueCode        string     `json:"revenue_code,omitempty"`
	Units              float64    `json:"units,omitempty"`
	CorrectedProcedure *Procedure `json:"corrected_procedure,omitempty"` // SVC06

	ServiceDateStart string `json:"service_date_start,omitempty"` // DTM*472
	ServiceDateEnd   string `json:"service_date_end,omitempty"`

	AllowedAmount float64              `json:"allowed_amount,omitempty"` // AMT*B6
	Adjustments   []Adjustment         `json:"adjustments,omitempty"`
	References    []Reference          `json:"references,omitempty"`
	Amounts       []SupplementalAmount `json:"amounts,omitempty"`
	RemarkCodes   []string             `json:"remark_codes,omitempty"` // LQ
}

// ProviderAdjustment is one PLB segment: a transaction-scoped balance
// adjustment such as a recoupment, not tied to any claim.
type ProviderAdjustment struct {
	ProviderID      string                     `json:"provider_id"`
	FiscalPeriodEnd string                     `json:"fiscal_period_end,omitempty"`
	Adjustments     []ProviderAdjustmentDetail `json:"adjustments"`
}

// ProviderAdjustmentDetail is one reason/amount pair within a PLB segment.
// The reason element is itself a code[:reference] composite.
type ProviderAdjustmentDetail struct {
	ReasonCode  string  `json:"reason_code"`
	ReferenceID string  `json:"reference_id,omitempty"`
	Amount      float64 `json:"amount"`
}

// Reference is a generic REF qualifier/value pair.
type Reference struct {
	Qualifier string `json:"qualifier"`
	Value     string `json:"value"`
}

// SupplementalAmount is a generic AMT qualifier/amount pair.
type SupplementalAmount struct {
	Qualifier string  `json:"qualifier"`
	Amount    float64 `json:"amount"`
}
