package remits

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/claimlink/claimlink/internal/domain/claims"
	"github.com/claimlink/claimlink/internal/platform/db"
	"github.com/claimlink/claimlink/internal/platform/x12"
)

// ClaimMatcher resolves remittance claim payments back to stored claims so
// payment outcomes can be posted onto them. Nil disables matching.
type ClaimMatcher interface {
	GetByClaimNumber(ctx context.Context, claimNumber string) (*claims.Claim, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

type Service struct {
	repo   Repository
	claims ClaimMatcher
	tx     db.TxRunner
	logger zerolog.Logger
}

// NewService wires the remits service. A nil tx runs multi-statement writes
// without transactional guarantees.
func NewService(repo Repository, matcher ClaimMatcher, tx db.TxRunner, logger zerolog.Logger) *Service {
	if tx == nil {
		tx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return &Service{repo: repo, claims: matcher, tx: tx, logger: logger}
}

var validRemitStatuses = map[string]bool{
	StatusReceived: true, StatusParsed: true, StatusRejected: true,
}

// Ingest parses a raw 835 document and stores the result. A structurally
// unsound document is stored as rejected with its diagnostics; the raw text
// is kept either way so a document can be re-examined later.
func (s *Service) Ingest(ctx context.Context, raw string) (*Remittance, error) {
	if raw == "" {
		return nil, fmt.Errorf("document body is required")
	}

	file := x12.Parse835(raw)

	diagnostics, err := json.Marshal(file.Diagnostics)
	if err != nil {
		return nil, err
	}
	if file.Diagnostics == nil {
		diagnostics = []byte("[]")
	}

	rm := &Remittance{
		Status:       StatusReceived,
		SegmentCount: file.SegmentCount,
		RawDocument:  raw,
		Diagnostics:  diagnostics,
	}

	if x12.HasFatal(file.Diagnostics) {
		rm.Status = StatusRejected
		if err := s.repo.Create(ctx, rm); err != nil {
			return nil, err
		}
		s.logger.Warn().
			Str("remittance_id", rm.ID.String()).
			Int("diagnostics", len(file.Diagnostics)).
			Msg("remittance rejected by structural validation")
		return rm, nil
	}

	parsed, err := json.Marshal(file)
	if err != nil {
		return nil, err
	}

	rm.Status = StatusParsed
	rm.ControlNumber = file.Envelope.ControlNumber
	rm.Parsed = parsed
	rm.PayerName = strOrNil(file.Envelope.SenderID)

	if len(file.Transactions) > 0 {
		tx := file.Transactions[0]
		rm.TraceNumber = strOrNil(tx.TraceNumber)
		rm.PaymentMethod = strOrNil(tx.PaymentMethod)
		rm.PaymentDate = parseCCYYMMDD(tx.PaymentDate)
		if tx.Payer.Name != "" {
			rm.PayerName = &tx.Payer.Name
		}
		rm.PayerID = strOrNil(tx.Payer.PayerID)
		rm.PayeeName = strOrNil(tx.Payee.Name)
		rm.PayeeNPI = strOrNil(tx.Payee.NPI)
		rm.PayeeTaxID = strOrNil(tx.Payee.TaxID)
	}
	for _, tx := range file.Transactions {
		rm.TotalPaid += tx.TotalPaid
	}

	// The remittance header and its claim rows land together or not at all.
	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, rm); err != nil {
			return err
		}
		for _, tx := range file.Transactions {
			for i := range tx.Claims {
				cp := &tx.Claims[i]
				rc := &RemitClaim{
					RemittanceID:          rm.ID,
					ClaimNumber:           cp.PatientControlNumber,
					StatusCode:            strOrNil(cp.StatusCode),
					ChargeAmount:          cp.ChargeAmount,
					PaidAmount:            cp.PaidAmount,
					PatientResponsibility: cp.PatientResponsibility,
					PayerControlNumber:    strOrNil(cp.PayerControlNumber),
				}
				if detail, err := json.Marshal(cp); err == nil {
					rc.Detail = detail
				}
				s.matchClaim(ctx, rc, cp.StatusCode)
				if err := s.repo.AddClaim(ctx, rc); err != nil {
					return err
				}
				rm.Claims = append(rm.Claims, rc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("remittance_id", rm.ID.String()).
		Str("control_number", rm.ControlNumber).
		Int("claims", len(rm.Claims)).
		Float64("total_paid", rm.TotalPaid).
		Msg("remittance ingested")
	return rm, nil
}

// matchClaim links a claim payment to the stored claim with the same claim
// number, if one exists, and posts the payment outcome onto it. A claim that
// has not been submitted is linked but not transitioned.
func (s *Service) matchClaim(ctx context.Context, rc *RemitClaim, statusCode string) {
	if s.claims == nil {
		return
	}
	cl, err := s.claims.GetByClaimNumber(ctx, rc.ClaimNumber)
	if err != nil {
		return
	}
	rc.ClaimID = &cl.ID

	if cl.Status != claims.StatusSubmitted && cl.Status != claims.StatusAccepted {
		return
	}
	next := claimStatusFor(statusCode)
	if next == "" {
		return
	}
	if err := s.claims.SetStatus(ctx, cl.ID, next); err != nil {
		s.logger.Error().Err(err).
			Str("claim_number", rc.ClaimNumber).
			Msg("failed to post payment status onto claim")
		return
	}
	s.logger.Info().
		Str("claim_number", rc.ClaimNumber).
		Str("status", next).
		Msg("claim status posted from remittance")
}

// claimStatusFor maps a CLP02 claim status code to the claim lifecycle
// status it implies, or "" when the code carries no transition.
func claimStatusFor(code string) string {
	switch code {
	case "1", "2", "3", "19", "20", "21":
		return claims.StatusPaid
	case "4":
		return claims.StatusRejected
	default:
		return ""
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Remittance, error) {
	rm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rm.Claims, err = s.repo.GetClaims(ctx, id)
	if err != nil {
		return nil, err
	}
	return rm, nil
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]*Remittance, int, error) {
	if status != "" && !validRemitStatuses[status] {
		return nil, 0, fmt.Errorf("invalid remittance status: %s", status)
	}
	return s.repo.List(ctx, status, limit, offset)
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseCCYYMMDD converts an 835 date element to a time, or nil when the
// element is absent or malformed.
func parseCCYYMMDD(s string) *time.Time {
	t, err := time.Parse("20060102", s)
	if err != nil {
		return nil
	}
	return &t
}
