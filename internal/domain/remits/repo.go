package remits

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Remittance) error
	GetByID(ctx context.Context, id uuid.UUID) (*Remittance, error)
	List(ctx context.Context, status string, limit, offset int) ([]*Remittance, int, error)
	AddClaim(ctx context.Context, rc *RemitClaim) error
	GetClaims(ctx context.Context, remittanceID uuid.UUID) ([]*RemitClaim, error)
}
