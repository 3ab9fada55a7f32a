package claims

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/claimlink/claimlink/internal/platform/clearinghouse"
	"github.com/claimlink/claimlink/internal/platform/db"
	"github.com/claimlink/claimlink/internal/platform/x12"
)

// TradingPartner is the submitter/receiver identity stamped into every
// generated document's envelopes.
type TradingPartner struct {
	SubmitterID   string
	SubmitterName string
	ReceiverID    string
	ReceiverName  string
	ContactName   string
	ContactPhone  string
}

// Submitter forwards generated documents to a clearinghouse. Nil when no
// clearinghouse is configured.
type Submitter interface {
	SubmitClaim(ctx context.Context, claimNumber, document string) (*clearinghouse.SubmissionResult, error)
	CheckEligibility(ctx context.Context, traceNumber, document string) (*clearinghouse.EligibilityResult, error)
}

type Service struct {
	claims    ClaimRepository
	inquiries InquiryRepository
	gen       *x12.Generator
	partner   TradingPartner
	ch        Submitter
	tx        db.TxRunner
}

// NewService wires the claims service. A nil tx runs multi-statement writes
// without transactional guarantees.
func NewService(cl ClaimRepository, inq InquiryRepository, gen *x12.Generator, partner TradingPartner, ch Submitter, tx db.TxRunner) *Service {
	if tx == nil {
		tx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return &Service{claims: cl, inquiries: inq, gen: gen, partner: partner, ch: ch, tx: tx}
}

var validClaimStatuses = map[string]bool{
	StatusDraft: true, StatusReady: true, StatusGenerated: true,
	StatusSubmitted: true, StatusAccepted: true, StatusRejected: true, StatusPaid: true,
}

func (s *Service) CreateClaim(ctx context.Context, c *Claim) error {
	if c.ClaimNumber == "" {
		return fmt.Errorf("claim_number is required")
	}
	if c.BillingOrgName == "" {
		return fmt.Errorf("billing_org_name is required")
	}
	if c.BillingNPI == "" {
		return fmt.Errorf("billing_npi is required")
	}
	if c.BillingTaxID == "" {
		return fmt.Errorf("billing_tax_id is required")
	}
	if c.SubscriberLastName == "" || c.SubscriberFirstName == "" {
		return fmt.Errorf("subscriber name is required")
	}
	if c.SubscriberMemberID == "" {
		return fmt.Errorf("subscriber_member_id is required")
	}
	if c.PayerName == "" {
		return fmt.Errorf("payer_name is required")
	}
	if len(c.DiagnosisCodes) == 0 {
		return fmt.Errorf("at least one diagnosis code is required")
	}
	if len(c.DiagnosisCodes) > 12 {
		return fmt.Errorf("at most 12 diagnosis codes are allowed")
	}
	if len(c.Lines) == 0 {
		return fmt.Errorf("at least one service line is required")
	}
	if c.Status == "" {
		c.Status = StatusDraft
	}
	if !validClaimStatuses[c.Status] {
		return fmt.Errorf("invalid claim status: %s", c.Status)
	}
	if c.PlaceOfService == "" {
		c.PlaceOfService = "11"
	}

	for i, l := range c.Lines {
		if l.LineNumber == 0 {
			l.LineNumber = i + 1
		}
		if l.Units == 0 {
			l.Units = 1
		}
		if l.ProcedureCode == "" {
			return fmt.Errorf("service line %d: procedure_code is required", l.LineNumber)
		}
	}

	return s.tx(ctx, func(ctx context.Context) error {
		if err := s.claims.Create(ctx, c); err != nil {
			return err
		}
		for _, l := range c.Lines {
			l.ClaimID = c.ID
			if err := s.claims.AddServiceLine(ctx, l); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) GetClaim(ctx context.Context, id uuid.UUID) (*Claim, error) {
	c, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Lines, err = s.claims.GetServiceLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetClaimByNumber(ctx context.Context, claimNumber string) (*Claim, error) {
	c, err := s.claims.GetByClaimNumber(ctx, claimNumber)
	if err != nil {
		return nil, err
	}
	c.Lines, err = s.claims.GetServiceLines(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateClaim(ctx context.Context, c *Claim) error {
	if c.Status != "" && !validClaimStatuses[c.Status] {
		return fmt.Errorf("invalid claim status: %s", c.Status)
	}
	existing, err := s.claims.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if existing.Status == StatusSubmitted || existing.Status == StatusAccepted || existing.Status == StatusPaid {
		return fmt.Errorf("claim %s can no longer be modified", existing.ClaimNumber)
	}
	return s.claims.Update(ctx, c)
}

func (s *Service) DeleteClaim(ctx context.Context, id uuid.UUID) error {
	existing, err := s.claims.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status != StatusDraft && existing.Status != StatusReady {
		return fmt.Errorf("claim %s can no longer be deleted", existing.ClaimNumber)
	}
	return s.claims.Delete(ctx, id)
}

func (s *Service) ListClaims(ctx context.Context, status string, limit, offset int) ([]*Claim, int, error) {
	if status != "" && !validClaimStatuses[status] {
		return nil, 0, fmt.Errorf("invalid claim status: %s", status)
	}
	return s.claims.List(ctx, status, limit, offset)
}

// GenerateClaim renders the 837P document for a stored claim and records it
// on the claim row. A claim may be regenerated until it has been submitted.
func (s *Service) GenerateClaim(ctx context.Context, id uuid.UUID) (*Claim, error) {
	c, err := s.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == StatusSubmitted || c.Status == StatusAccepted || c.Status == StatusPaid {
		return nil, fmt.Errorf("claim %s has already been submitted", c.ClaimNumber)
	}

	doc, err := s.gen.Generate837P(s.buildClaim837(c))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.claims.SetDocument(ctx, c.ID, doc, now); err != nil {
		return nil, err
	}

	c.EDIDocument = &doc
	c.GeneratedAt = &now
	c.Status = StatusGenerated
	return c, nil
}

// SubmitClaim forwards a generated claim document to the clearinghouse.
func (s *Service) SubmitClaim(ctx context.Context, id uuid.UUID) (*Claim, error) {
	if s.ch == nil {
		return nil, fmt.Errorf("no clearinghouse is configured")
	}

	c, err := s.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.EDIDocument == nil || c.Status != StatusGenerated {
		return nil, fmt.Errorf("claim %s has no generated document", c.ClaimNumber)
	}

	result, err := s.ch.SubmitClaim(ctx, c.ClaimNumber, *c.EDIDocument)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.claims.MarkSubmitted(ctx, c.ID, result.SubmissionID, now); err != nil {
		return nil, err
	}

	c.ClearinghouseRef = &result.SubmissionID
	c.SubmittedAt = &now
	c.Status = StatusSubmitted
	return c, nil
}

func (s *Service) buildClaim837(c *Claim) *x12.Claim837 {
	out := &x12.Claim837{
		Submitter: x12.Party{
			Name:         s.partner.SubmitterName,
			ID:           s.partner.SubmitterID,
			ContactName:  s.partner.ContactName,
			ContactPhone: s.partner.ContactPhone,
		},
		Receiver: x12.Party{
			Name: s.partner.ReceiverName,
			ID:   s.partner.ReceiverID,
		},
		BillingProvider: x12.Provider{
			OrgName:      c.BillingOrgName,
			NPI:          c.BillingNPI,
			TaxID:        c.BillingTaxID,
			TaxonomyCode: deref(c.BillingTaxonomyCode),
			Address: x12.Address{
				Line1: deref(c.BillingAddressLine1),
				Line2: deref(c.BillingAddressLine2),
				City:  deref(c.BillingCity),
				State: deref(c.BillingState),
				Zip:   deref(c.BillingPostalCode),
			},
		},
		Payer: x12.Party{
			Name: c.PayerName,
			ID:   deref(c.PayerID),
		},
		Subscriber: x12.Subscriber{
			FirstName: c.SubscriberFirstName,
			LastName:  c.SubscriberLastName,
			MemberID:  c.SubscriberMemberID,
			Gender:    deref(c.SubscriberGender),
			Address: x12.Address{
				Line1: deref(c.SubscriberAddressLine1),
				City:  deref(c.SubscriberCity),
				State: deref(c.SubscriberState),
				Zip:   deref(c.SubscriberPostalCode),
			},
		},
		PatientControlNumber: c.ClaimNumber,
		PlaceOfService:       c.PlaceOfService,
		DiagnosisCodes:       c.DiagnosisCodes,
	}
	if c.SubscriberBirthDate != nil {
		out.Subscriber.BirthDate = *c.SubscriberBirthDate
	}
	if npi := deref(c.RenderingNPI); npi != "" {
		out.RenderingProvider = &x12.Provider{
			LastName:  deref(c.RenderingLastName),
			FirstName: deref(c.RenderingFirstName),
			NPI:       npi,
		}
	}
	for _, l := range c.Lines {
		out.ServiceLines = append(out.ServiceLines, x12.ServiceLine837{
			ProcedureCode:     l.ProcedureCode,
			Modifiers:         l.Modifiers,
			Charge:            l.ChargeAmount,
			Units:             l.Units,
			ServiceDate:       l.ServiceDate,
			DiagnosisPointers: l.DiagnosisPointers,
		})
	}
	return out
}

// CreateInquiry validates the inquiry, renders its 270 document, stores the
// row with the document attached, and optionally forwards it to the
// clearinghouse.
func (s *Service) CreateInquiry(ctx context.Context, inq *EligibilityInquiry) error {
	if inq.PayerName == "" {
		return fmt.Errorf("payer_name is required")
	}
	if inq.ProviderOrgName == "" {
		return fmt.Errorf("provider_org_name is required")
	}
	if inq.ProviderNPI == "" {
		return fmt.Errorf("provider_npi is required")
	}
	if inq.SubscriberLastName == "" || inq.SubscriberFirstName == "" {
		return fmt.Errorf("subscriber name is required")
	}
	if inq.SubscriberMemberID == "" {
		return fmt.Errorf("subscriber_member_id is required")
	}
	if inq.SubscriberBirthDate == nil {
		return fmt.Errorf("subscriber_birth_date is required")
	}
	if inq.ServiceDate.IsZero() {
		return fmt.Errorf("service_date is required")
	}
	if inq.ServiceTypeCode == "" {
		inq.ServiceTypeCode = "30"
	}
	if inq.TraceNumber == "" {
		inq.TraceNumber = uuid.NewString()[:8]
	}

	x12Inq := &x12.Eligibility270{
		Payer: x12.Party{
			Name: inq.PayerName,
			ID:   deref(inq.PayerID),
		},
		Provider: x12.Provider{
			OrgName: inq.ProviderOrgName,
			NPI:     inq.ProviderNPI,
			TaxID:   s.partner.SubmitterID,
		},
		Subscriber: x12.Subscriber{
			FirstName: inq.SubscriberFirstName,
			LastName:  inq.SubscriberLastName,
			MemberID:  inq.SubscriberMemberID,
		},
		ServiceDate:     inq.ServiceDate,
		ServiceTypeCode: inq.ServiceTypeCode,
		TraceNumber:     inq.TraceNumber,
	}
	if inq.SubscriberBirthDate != nil {
		x12Inq.Subscriber.BirthDate = *inq.SubscriberBirthDate
	}

	doc, err := s.gen.Generate270(x12Inq)
	if err != nil {
		return err
	}
	inq.EDIDocument = &doc

	if err := s.inquiries.Create(ctx, inq); err != nil {
		return err
	}

	if s.ch != nil {
		if _, err := s.ch.CheckEligibility(ctx, inq.TraceNumber, doc); err != nil {
			return fmt.Errorf("inquiry stored but clearinghouse submission failed: %w", err)
		}
	}
	return nil
}

func (s *Service) GetInquiry(ctx context.Context, id uuid.UUID) (*EligibilityInquiry, error) {
	return s.inquiries.GetByID(ctx, id)
}

func (s *Service) ListInquiries(ctx context.Context, limit, offset int) ([]*EligibilityInquiry, int, error) {
	return s.inquiries.List(ctx, limit, offset)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
