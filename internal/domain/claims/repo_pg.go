package claims

import (
	"context"
	"strconv"
	"time"

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

// =========== Claim Repository ===========

type claimRepoPG struct{ pool *pgxpool.Pool }

func NewClaimRepoPG(pool *pgxpool.Pool) ClaimRepository { return &claimRepoPG{pool: pool} }

func (r *claimRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const claimCols = `id, claim_number, status,
	billing_org_name, billing_npi, billing_tax_id, billing_taxonomy_code,
	billing_address_line1, billing_address_line2, billing_city, billing_state, billing_postal_code,
	rendering_last_name, rendering_first_name, rendering_npi,
	subscriber_last_name, subscriber_first_name, subscriber_member_id,
	subscriber_birth_date, subscriber_gender,
	subscriber_address_line1, subscriber_city, subscriber_state, subscriber_postal_code,
	payer_name, payer_id,
	diagnosis_codes, place_of_service, onset_date,
	edi_document, generated_at, submitted_at, clearinghouse_ref,
	created_at, updated_at`

func (r *claimRepoPG) scanClaim(row pgx.Row) (*Claim, error) {
	var c Claim
	err := row.Scan(&c.ID, &c.ClaimNumber, &c.Status,
		&c.BillingOrgName, &c.BillingNPI, &c.BillingTaxID, &c.BillingTaxonomyCode,
		&c.BillingAddressLine1, &c.BillingAddressLine2, &c.BillingCity, &c.BillingState, &c.BillingPostalCode,
		&c.RenderingLastName, &c.RenderingFirstName, &c.RenderingNPI,
		&c.SubscriberLastName, &c.SubscriberFirstName, &c.SubscriberMemberID,
		&c.SubscriberBirthDate, &c.SubscriberGender,
		&c.SubscriberAddressLine1, &c.SubscriberCity, &c.SubscriberState, &c.SubscriberPostalCode,
		&c.PayerName, &c.PayerID,
		&c.DiagnosisCodes, &c.PlaceOfService, &c.OnsetDate,
		&c.EDIDocument, &c.GeneratedAt, &c.SubmittedAt, &c.ClearinghouseRef,
		&c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *claimRepoPG) Create(ctx context.Context, c *Claim) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO claims (id, claim_number, status,
			billing_org_name, billing_npi, billing_tax_id, billing_taxonomy_code,
			billing_address_line1, billing_address_line2, billing_city, billing_state, billing_postal_code,
			rendering_last_name, rendering_first_name, rendering_npi,
			subscriber_last_name, subscriber_first_name, subscriber_member_id,
			subscriber_birth_date, subscriber_gender,
			subscriber_address_line1, subscriber_city, subscriber_state, subscriber_postal_code,
			payer_name, payer_id,
			diagnosis_codes, place_of_service, onset_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29)`,
		c.ID, c.ClaimNumber, c.Status,
		c.BillingOrgName, c.BillingNPI, c.BillingTaxID, c.BillingTaxonomyCode,
		c.BillingAddressLine1, c.BillingAddressLine2, c.BillingCity, c.BillingState, c.BillingPostalCode,
		c.RenderingLastName, c.RenderingFirstName, c.RenderingNPI,
		c.SubscriberLastName, c.SubscriberFirstName, c.SubscriberMemberID,
		c.SubscriberBirthDate, c.SubscriberGender,
		c.SubscriberAddressLine1, c.SubscriberCity, c.SubscriberState, c.SubscriberPostalCode,
		c.PayerName, c.PayerID,
		c.DiagnosisCodes, c.PlaceOfService, c.OnsetDate)
	return err
}

func (r *claimRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Claim, error) {
	return r.scanClaim(r.conn(ctx).QueryRow(ctx, `SELECT `+claimCols+` FROM claims WHERE id = $1`, id))
}

func (r *claimRepoPG) GetByClaimNumber(ctx context.Context, claimNumber string) (*Claim, error) {
	return r.scanClaim(r.conn(ctx).QueryRow(ctx, `SELECT `+claimCols+` FROM claims WHERE claim_number = $1`, claimNumber))
}

func (r *claimRepoPG) Update(ctx context.Context, c *Claim) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE claims SET status=$2,
			billing_org_name=$3, billing_npi=$4, billing_tax_id=$5, billing_taxonomy_code=$6,
			subscriber_last_name=$7, subscriber_first_name=$8, subscriber_member_id=$9,
			subscriber_birth_date=$10, subscriber_gender=$11,
			payer_name=$12, payer_id=$13,
			diagnosis_codes=$14, place_of_service=$15, onset_date=$16, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Status,
		c.BillingOrgName, c.BillingNPI, c.BillingTaxID, c.BillingTaxonomyCode,
		c.SubscriberLastName, c.SubscriberFirstName, c.SubscriberMemberID,
		c.SubscriberBirthDate, c.SubscriberGender,
		c.PayerName, c.PayerID,
		c.DiagnosisCodes, c.PlaceOfService, c.OnsetDate)
	return err
}

func (r *claimRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM claims WHERE id = $1`, id)
	return err
}

func (r *claimRepoPG) List(ctx context.Context, status string, limit, offset int) ([]*Claim, int, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = ` WHERE status = $1`
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM claims`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := `SELECT ` + claimCols + ` FROM claims` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Claim
	for rows.Next() {
		c, err := r.scanClaim(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

const lineCols = `id, claim_id, line_number, procedure_code, modifiers,
	charge_amount, units, service_date, diagnosis_pointers`

func (r *claimRepoPG) scanLine(row pgx.Row) (*ServiceLine, error) {
	var l ServiceLine
	err := row.Scan(&l.ID, &l.ClaimID, &l.LineNumber, &l.ProcedureCode, &l.Modifiers,
		&l.ChargeAmount, &l.Units, &l.ServiceDate, &l.DiagnosisPointers)
	return &l, err
}

func (r *claimRepoPG) AddServiceLine(ctx context.Context, l *ServiceLine) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO service_lines (id, claim_id, line_number, procedure_code, modifiers,
			charge_amount, units, service_date, diagnosis_pointers)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		l.ID, l.ClaimID, l.LineNumber, l.ProcedureCode, l.Modifiers,
		l.ChargeAmount, l.Units, l.ServiceDate, l.DiagnosisPointers)
	return err
}

func (r *claimRepoPG) GetServiceLines(ctx context.Context, claimID uuid.UUID) ([]*ServiceLine, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+lineCols+` FROM service_lines WHERE claim_id = $1 ORDER BY line_number`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []*ServiceLine
	for rows.Next() {
		l, err := r.scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *claimRepoPG) SetDocument(ctx context.Context, id uuid.UUID, document string, generatedAt time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE claims SET edi_document=$2, generated_at=$3, status=$4, updated_at=NOW()
		WHERE id = $1`,
		id, document, generatedAt, StatusGenerated)
	return err
}

func (r *claimRepoPG) MarkSubmitted(ctx context.Context, id uuid.UUID, clearinghouseRef string, submittedAt time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE claims SET clearinghouse_ref=$2, submitted_at=$3, status=$4, updated_at=NOW()
		WHERE id = $1`,
		id, clearinghouseRef, submittedAt, StatusSubmitted)
	return err
}

func (r *claimRepoPG) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE claims SET status=$2, updated_at=NOW() WHERE id = $1`,
		id, status)
	return err
}

// =========== Inquiry Repository ===========

type inquiryRepoPG struct{ pool *pgxpool.Pool }

func NewInquiryRepoPG(pool *pgxpool.Pool) InquiryRepository { return &inquiryRepoPG{pool: pool} }

func (r *inquiryRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const inquiryCols = `id, trace_number, payer_name, payer_id,
	provider_org_name, provider_npi,
	subscriber_last_name, subscriber_first_name, subscriber_member_id, subscriber_birth_date,
	service_type_code, service_date, edi_document, created_at`

func (r *inquiryRepoPG) scanInquiry(row pgx.Row) (*EligibilityInquiry, error) {
	var inq EligibilityInquiry
	err := row.Scan(&inq.ID, &inq.TraceNumber, &inq.PayerName, &inq.PayerID,
		&inq.ProviderOrgName, &inq.ProviderNPI,
		&inq.SubscriberLastName, &inq.SubscriberFirstName, &inq.SubscriberMemberID, &inq.SubscriberBirthDate,
		&inq.ServiceTypeCode, &inq.ServiceDate, &inq.EDIDocument, &inq.CreatedAt)
	return &inq, err
}

func (r *inquiryRepoPG) Create(ctx context.Context, inq *EligibilityInquiry) error {
	inq.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO eligibility_inquiries (id, trace_number, payer_name, payer_id,
			provider_org_name, provider_npi,
			subscriber_last_name, subscriber_first_name, subscriber_member_id, subscriber_birth_date,
			service_type_code, service_date, edi_document)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		inq.ID, inq.TraceNumber, inq.PayerName, inq.PayerID,
		inq.ProviderOrgName, inq.ProviderNPI,
		inq.SubscriberLastName, inq.SubscriberFirstName, inq.SubscriberMemberID, inq.SubscriberBirthDate,
		inq.ServiceTypeCode, inq.ServiceDate, inq.EDIDocument)
	return err
}

func (r *inquiryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*EligibilityInquiry, error) {
	return r.scanInquiry(r.conn(ctx).QueryRow(ctx, `SELECT `+inquiryCols+` FROM eligibility_inquiries WHERE id = $1`, id))
}

func (r *inquiryRepoPG) List(ctx context.Context, limit, offset int) ([]*EligibilityInquiry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM eligibility_inquiries`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+inquiryCols+` FROM eligibility_inquiries ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*EligibilityInquiry
	for rows.Next() {
		inq, err := r.scanInquiry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, inq)
	}
	return items, total, rows.Err()
}
