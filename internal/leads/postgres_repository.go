package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var leadsTracer = otel.Tracer("site.internal.leads")

// PgxPool is the subset of pgxpool.Pool the stores use; pgxmock satisfies it.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	selectActiveInterestSQL = `SELECT id FROM interests WHERE code = $1 AND active LIMIT 1`

	insertContactRequestSQL = `
		INSERT INTO contact_requests (
			product, form_type, name, role, municipality, uf, email, whatsapp, interest_id,
			message, observations, page_url, utm_source, utm_medium, utm_campaign, utm_term, utm_content,
			ip, user_agent
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at
	`

	selectModulesByCodeSQL = `SELECT id, code FROM modules WHERE code = ANY($1)`

	insertRequestModuleSQL = `
		INSERT INTO contact_request_modules (request_id, module_id)
		VALUES ($1, $2)
		ON CONFLICT (request_id, module_id) DO NOTHING
	`
)

// PostgresRepository stores contact requests in the relational database.
type PostgresRepository struct {
	pool    PgxPool
	timeout time.Duration
}

// NewPostgresRepository initializes a repo backed by pgxpool. timeout bounds
// each Create call; zero leaves the caller's context untouched.
func NewPostgresRepository(pool *pgxpool.Pool, timeout time.Duration) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool, timeout: timeout}
}

// Create resolves the interest, inserts the request and links the selected
// modules inside one transaction.
func (r *PostgresRepository) Create(ctx context.Context, req *ContactRequest) (int64, error) {
	ctx, span := leadsTracer.Start(ctx, "leads.persist", trace.WithAttributes(
		attribute.String("lead.form_type", string(req.FormType)),
		attribute.String("lead.product", req.Product),
	))
	defer span.End()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	id, err := r.create(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return 0, err
	}
	span.SetAttributes(attribute.Int64("lead.id", id))
	return id, nil
}

func (r *PostgresRepository) create(ctx context.Context, req *ContactRequest) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("leads: begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	req.InterestID = nil
	if req.FormType == FormPresentation && req.InterestCode != nil && *req.InterestCode != "" {
		interestID, err := lookupActiveInterest(ctx, tx, *req.InterestCode)
		if err != nil {
			return 0, err
		}
		req.InterestID = interestID
	}

	if err := tx.QueryRow(ctx, insertContactRequestSQL,
		req.Product,
		string(req.FormType),
		req.Name,
		req.Role,
		req.Municipality,
		req.UF,
		req.Email,
		req.Whatsapp,
		req.InterestID,
		req.Message,
		req.Observations,
		req.PageURL,
		req.UTM.Source,
		req.UTM.Medium,
		req.UTM.Campaign,
		req.UTM.Term,
		req.UTM.Content,
		req.IP,
		req.UserAgent,
	).Scan(&req.ID, &req.CreatedAt); err != nil {
		return 0, fmt.Errorf("leads: insert contact request: %w", err)
	}

	if req.FormType == FormDemo && len(req.ModuleCodes) > 0 {
		if err := linkModules(ctx, tx, req.ID, uniqueCodes(req.ModuleCodes)); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("leads: commit: %w", err)
	}
	committed = true
	return req.ID, nil
}

func lookupActiveInterest(ctx context.Context, tx pgx.Tx, code string) (*int64, error) {
	var id int64
	err := tx.QueryRow(ctx, selectActiveInterestSQL, code).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leads: lookup interest: %w", err)
	}
	return &id, nil
}

// linkModules inserts one association per known code; unknown codes are skipped.
func linkModules(ctx context.Context, tx pgx.Tx, requestID int64, moduleCodes []string) error {
	rows, err := tx.Query(ctx, selectModulesByCodeSQL, moduleCodes)
	if err != nil {
		return fmt.Errorf("leads: resolve modules: %w", err)
	}
	var moduleIDs []int64
	for rows.Next() {
		var (
			id   int64
			code string
		)
		if err := rows.Scan(&id, &code); err != nil {
			rows.Close()
			return fmt.Errorf("leads: scan module: %w", err)
		}
		moduleIDs = append(moduleIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("leads: resolve modules: %w", err)
	}

	for _, moduleID := range moduleIDs {
		if _, err := tx.Exec(ctx, insertRequestModuleSQL, requestID, moduleID); err != nil {
			return fmt.Errorf("leads: link module %d: %w", moduleID, err)
		}
	}
	return nil
}
