package remits

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Remittance statuses. A structurally unsound document is stored as
// rejected with its diagnostics; a sound one is stored as parsed.
const (
	StatusReceived = "received"
	StatusParsed   = "parsed"
	StatusRejected = "rejected"
)

// Remittance maps to the remittances table: one ingested 835 document with
// its raw text, parsed tree, and diagnostics.
type Remittance struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ControlNumber string    `db:"control_number" json:"control_number"`
	TraceNumber   *string   `db:"trace_number" json:"trace_number,omitempty"`
	Status        string    `db:"status" json:"status"`

	PayerName  *string `db:"payer_name" json:"payer_name,omitempty"`
	PayerID    *string `db:"payer_id" json:"payer_id,omitempty"`
	PayeeName  *string `db:"payee_name" json:"payee_name,omitempty"`
	PayeeNPI   *string `db:"payee_npi" json:"payee_npi,omitempty"`
	PayeeTaxID *string `db:"payee_tax_id" json:"payee_tax_id,omitempty"`

	TotalPaid     float64    `db:"total_paid" json:"total_paid"`
	PaymentMethod *string    `db:"payment_method" json:"payment_method,omitempty"`
	PaymentDate   *time.Time `db:"payment_date" json:"payment_date,omitempty"`

	SegmentCount int             `db:"segment_count" json:"segment_count"`
	RawDocument  string          `db:"raw_document" json:"-"`
	Parsed       json.RawMessage `db:"parsed" json:"parsed,omitempty"`
	Diagnostics  json.RawMessage `db:"diagnostics" json:"diagnostics"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Claims []*RemitClaim `db:"-" json:"claims,omitempty"`
}

// RemitClaim maps to the remit_claims table: one claim payment record from a
// remittance, optionally linked to the claim it pays.
type RemitClaim struct {
	ID                    uuid.UUID       `db:"id" json:"id"`
	RemittanceID          uuid.UUID       `db:"remittance_id" json:"remittance_id"`
	ClaimNumber           string          `db:"claim_number" json:"claim_number"`
	StatusCode            *string         `db:"status_code" json:"status_code,omitempty"`
	ChargeAmount          float64         `db:"charge_amount" json:"charge_amount"`
	PaidAmount            float64         `db:"paid_amount" json:"paid_amount"`
	PatientResponsibility float64         `db:"patient_responsibility" json:"patient_responsibility"`
	PayerControlNumber    *string         `db:"payer_control_number" json:"payer_control_number,omitempty"`
	ClaimID               *uuid.UUID      `db:"claim_id" json:"claim_id,omitempty"`
	Detail                json.RawMessage `db:"detail" json:"detail,omitempty"`
}
