package remits

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/claimlink/claimlink/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const remitCols = `id, control_number, trace_number, status,
	payer_name, payer_id, payee_name, payee_npi, payee_tax_id,
	total_paid, payment_method, payment_date,
	segment_count, raw_document, parsed, diagnostics, created_at`

func (r *repoPG) scanRemittance(row pgx.Row) (*Remittance, error) {
	var rm Remittance
	err := row.Scan(&rm.ID, &rm.ControlNumber, &rm.TraceNumber, &rm.Status,
		&rm.PayerName, &rm.PayerID, &rm.PayeeName, &rm.PayeeNPI, &rm.PayeeTaxID,
		&rm.TotalPaid, &rm.PaymentMethod, &rm.PaymentDate,
		&rm.SegmentCount, &rm.RawDocument, &rm.Parsed, &rm.Diagnostics, &rm.CreatedAt)
	return &rm, err
}

const remitClaimCols = `id, remittance_id, claim_number, status_code,
	charge_amount, paid_amount, patient_responsibility,
	payer_control_number, claim_id, detail`

func (r *repoPG) scanRemitClaim(row pgx.Row) (*RemitClaim, error) {
	var rc RemitClaim
	err := row.Scan(&rc.ID, &rc.RemittanceID, &rc.ClaimNumber, &rc.StatusCode,
		&rc.ChargeAmount, &rc.PaidAmount, &rc.PatientResponsibility,
		&rc.PayerControlNumber, &rc.ClaimID, &rc.Detail)
	return &rc, err
}

func (r *repoPG) Create(ctx context.Context, rm *Remittance) error {
	rm.ID = uuid.New()
	diagnostics := rm.Diagnostics
	if diagnostics == nil {
		diagnostics = []byte("[]")
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO remittances (id, control_number, trace_number, status,
			payer_name, payer_id, payee_name, payee_npi, payee_tax_id,
			total_paid, payment_method, payment_date,
			segment_count, raw_document, parsed, diagnostics)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		rm.ID, rm.ControlNumber, rm.TraceNumber, rm.Status,
		rm.PayerName, rm.PayerID, rm.PayeeName, rm.PayeeNPI, rm.PayeeTaxID,
		rm.TotalPaid, rm.PaymentMethod, rm.PaymentDate,
		rm.SegmentCount, rm.RawDocument, rm.Parsed, diagnostics)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Remittance, error) {
	return r.scanRemittance(r.conn(ctx).QueryRow(ctx, `SELECT `+remitCols+` FROM remittances WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, status string, limit, offset int) ([]*Remittance, int, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = ` WHERE status = $1`
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM remittances`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := `SELECT ` + remitCols + ` FROM remittances` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Remittance
	for rows.Next() {
		rm, err := r.scanRemittance(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rm)
	}
	return items, total, rows.Err()
}

func (r *repoPG) AddClaim(ctx context.Context, rc *RemitClaim) error {
	rc.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO remit_claims (id, remittance_id, claim_number, status_code,
			charge_amount, paid_amount, patient_responsibility,
			payer_control_number, claim_id, detail)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rc.ID, rc.RemittanceID, rc.ClaimNumber, rc.StatusCode,
		rc.ChargeAmount, rc.PaidAmount, rc.PatientResponsibility,
		rc.PayerControlNumber, rc.ClaimID, rc.Detail)
	return err
}

func (r *repoPG) GetClaims(ctx context.Context, remittanceID uuid.UUID) ([]*RemitClaim, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+remitClaimCols+` FROM remit_claims WHERE remittance_id = $1 ORDER BY claim_number`, remittanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*RemitClaim
	for rows.Next() {
		rc, err := r.scanRemitClaim(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rc)
	}
	return items, rows.Err()
}
