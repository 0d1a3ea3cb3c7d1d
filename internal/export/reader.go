// Package export dumps contact requests to spreadsheets for the sales team.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const selectContactRequestsSQL = `
	SELECT
		cr.id, cr.created_at, cr.product, cr.form_type, cr.name, cr.role,
		cr.municipality, cr.uf, cr.email, cr.whatsapp, i.code, cr.message,
		cr.observations, cr.page_url, cr.utm_source, cr.utm_medium, cr.utm_campaign,
		COALESCE(array_agg(m.code ORDER BY m.code) FILTER (WHERE m.code IS NOT NULL), '{}') AS module_codes
	FROM contact_requests cr
	LEFT JOIN interests i ON i.id = cr.interest_id
	LEFT JOIN contact_request_modules crm ON crm.request_id = cr.id
	LEFT JOIN modules m ON m.id = crm.module_id
	WHERE cr.created_at >= $1 AND cr.created_at < $2
	GROUP BY cr.id, i.code
	ORDER BY cr.id
`

// Row is one contact request as it appears in the export.
type Row struct {
	ID           int64
	CreatedAt    time.Time
	Product      string
	FormType     string
	Name         string
	Role         sql.NullString
	Municipality sql.NullString
	UF           sql.NullString
	Email        string
	Whatsapp     sql.NullString
	Interest     sql.NullString
	Message      sql.NullString
	Observations sql.NullString
	PageURL      sql.NullString
	UTMSource    sql.NullString
	UTMMedium    sql.NullString
	UTMCampaign  sql.NullString
	Modules      []string
}

// Reader loads contact requests through database/sql.
type Reader struct {
	db *sql.DB
}

// NewReader wraps an open database handle.
func NewReader(db *sql.DB) *Reader {
	if db == nil {
		panic("export: db required")
	}
	return &Reader{db: db}
}

// ContactRequests returns the requests created in [from, to), oldest first.
func (r *Reader) ContactRequests(ctx context.Context, from, to time.Time) ([]Row, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("export: empty range %s..%s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	rows, err := r.db.QueryContext(ctx, selectContactRequestsSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("export: query contact requests: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(
			&row.ID,
			&row.CreatedAt,
			&row.Product,
			&row.FormType,
			&row.Name,
			&row.Role,
			&row.Municipality,
			&row.UF,
			&row.Email,
			&row.Whatsapp,
			&row.Interest,
			&row.Message,
			&row.Observations,
			&row.PageURL,
			&row.UTMSource,
			&row.UTMMedium,
			&row.UTMCampaign,
			pq.Array(&row.Modules),
		); err != nil {
			return nil, fmt.Errorf("export: scan contact request: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("export: iterate contact requests: %w", err)
	}
	return out, nil
}
