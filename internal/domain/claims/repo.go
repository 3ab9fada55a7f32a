package claims

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ClaimRepository interface {
	Create(ctx context.Context, c *Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*Claim, error)
	GetByClaimNumber(ctx context.Context, claimNumber string) (*Claim, error)
	Update(ctx context.Context, c *Claim) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, status string, limit, offset int) ([]*Claim, int, error)
	// Service lines
	AddServiceLine(ctx context.Context, l *ServiceLine) error
	GetServiceLines(ctx context.Context, claimID uuid.UUID) ([]*ServiceLine, error)
	// Generation bookkeeping
	SetDocument(ctx context.Context, id uuid.UUID, document string, generatedAt time.Time) error
	MarkSubmitted(ctx context.Context, id uuid.UUID, clearinghouseRef string, submittedAt time.Time) error
	// SetStatus records a status transition driven by remittance posting.
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

type InquiryRepository interface {
	Create(ctx context.Context, inq *EligibilityInquiry) error
	GetByID(ctx context.Context, id uuid.UUID) (*EligibilityInquiry, error)
	List(ctx context.Context, limit, offset int) ([]*EligibilityInquiry, int, error)
}
