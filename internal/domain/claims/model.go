package claims

import (
	"time"

	"github.com/google/uuid"
)

// Claim statuses follow the claim through its submission lifecycle.
const (
	StatusDraft     = "draft"
	StatusReady     = "ready"
	StatusGenerated = "generated"
	StatusSubmitted = "submitted"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusPaid      = "paid"
)

// Claim maps to the claims table: one professional claim, with its service
// lines loaded separately.
type Claim struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ClaimNumber string    `db:"claim_number" json:"claim_number"`
	Status      string    `db:"status" json:"status"`

	BillingOrgName      string  `db:"billing_org_name" json:"billing_org_name"`
	BillingNPI          string  `db:"billing_npi" json:"billing_npi"`
	BillingTaxID        string  `db:"billing_tax_id" json:"billing_tax_id"`
	BillingTaxonomyCode *string `db:"billing_taxonomy_code" json:"billing_taxonomy_code,omitempty"`
	BillingAddressLine1 *string `db:"billing_address_line1" json:"billing_address_line1,omitempty"`
	BillingAddressLine2 *string `db:"billing_address_line2" json:"billing_address_line2,omitempty"`
	BillingCity         *string `db:"billing_city" json:"billing_city,omitempty"`
	BillingState        *string `db:"billing_state" json:"billing_state,omitempty"`
	BillingPostalCode   *string `db:"billing_postal_code" json:"billing_postal_code,omitempty"`

	RenderingLastName  *string `db:"rendering_last_name" json:"rendering_last_name,omitempty"`
	RenderingFirstName *string `db:"rendering_first_name" json:"rendering_first_name,omitempty"`
	RenderingNPI       *string `db:"rendering_npi" json:"rendering_npi,omitempty"`

	SubscriberLastName     string     `db:"subscriber_last_name" json:"subscriber_last_name"`
	SubscriberFirstName    string     `db:"subscriber_first_name" json:"subscriber_first_name"`
	SubscriberMemberID     string     `db:"subscriber_member_id" json:"subscriber_member_id"`
	SubscriberBirthDate    *time.Time `db:"subscriber_birth_date" json:"subscriber_birth_date,omitempty"`
	SubscriberGender       *string    `db:"subscriber_gender" json:"subscriber_gender,omitempty"`
	SubscriberAddressLine1 *string    `db:"subscriber_address_line1" json:"subscriber_address_line1,omitempty"`
	SubscriberCity         *string    `db:"subscriber_city" json:"subscriber_city,omitempty"`
	SubscriberState        *string    `db:"subscriber_state" json:"subscriber_state,omitempty"`
	SubscriberPostalCode   *string    `db:"subscriber_postal_code" json:"subscriber_postal_code,omitempty"`

	PayerName string  `db:"payer_name" json:"payer_name"`
	PayerID   *string `db:"payer_id" json:"payer_id,omitempty"`

	DiagnosisCodes []string   `db:"diagnosis_codes" json:"diagnosis_codes"`
	PlaceOfService string     `db:"place_of_service" json:"place_of_service"`
	OnsetDate      *time.Time `db:"onset_date" json:"onset_date,omitempty"`

	EDIDocument      *string    `db:"edi_document" json:"edi_document,omitempty"`
	GeneratedAt      *time.Time `db:"generated_at" json:"generated_at,omitempty"`
	SubmittedAt      *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	ClearinghouseRef *string    `db:"clearinghouse_ref" json:"clearinghouse_ref,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Lines []*ServiceLine `db:"-" json:"lines,omitempty"`
}

// TotalCharge sums the charges of the loaded service lines.
func (c *Claim) TotalCharge() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.ChargeAmount
	}
	return total
}

// ServiceLine maps to the service_lines table.
type ServiceLine struct {
	ID                uuid.UUID `db:"id" json:"id"`
	ClaimID           uuid.UUID `db:"claim_id" json:"claim_id"`
	LineNumber        int       `db:"line_number" json:"line_number"`
	ProcedureCode     string    `db:"procedure_code" json:"procedure_code"`
	Modifiers         []string  `db:"modifiers" json:"modifiers,omitempty"`
	ChargeAmount      float64   `db:"charge_amount" json:"charge_amount"`
	Units             float64   `db:"units" json:"units"`
	ServiceDate       time.Time `db:"service_date" json:"service_date"`
	DiagnosisPointers []int     `db:"diagnosis_pointers" json:"diagnosis_pointers,omitempty"`
}

// EligibilityInquiry maps to the eligibility_inquiries table. The generated
// 270 document is stored alongside the inquiry inputs.
type EligibilityInquiry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	TraceNumber string    `db:"trace_number" json:"trace_number"`

	PayerName string  `db:"payer_name" json:"payer_name"`
	PayerID   *string `db:"payer_id" json:"payer_id,omitempty"`

	ProviderOrgName string `db:"provider_org_name" json:"provider_org_name"`
	ProviderNPI     string `db:"provider_npi" json:"provider_npi"`

	SubscriberLastName  string     `db:"subscriber_last_name" json:"subscriber_last_name"`
	SubscriberFirstName string     `db:"subscriber_first_name" json:"subscriber_first_name"`
	SubscriberMemberID  string     `db:"subscriber_member_id" json:"subscriber_member_id"`
	SubscriberBirthDate *time.Time `db:"subscriber_birth_date" json:"subscriber_birth_date,omitempty"`

	ServiceTypeCode string    `db:"service_type_code" json:"service_type_code"`
	ServiceDate     time.Time `db:"service_date" json:"service_date"`

	EDIDocument *string   `db:"edi_document" json:"edi_document,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
