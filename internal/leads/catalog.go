package leads

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/didax-edu/site-api/pkg/logging"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	selectActiveInterestsSQL = `SELECT code, label FROM interests WHERE active ORDER BY id`
	selectActiveModulesSQL   = `SELECT code, label FROM modules WHERE active ORDER BY id`
)

// PostgresCatalog reads the interests and modules reference tables.
type PostgresCatalog struct {
	pool    PgxPool
	timeout time.Duration
}

// NewPostgresCatalog builds a catalog over the shared pool.
func NewPostgresCatalog(pool *pgxpool.Pool, timeout time.Duration) *PostgresCatalog {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresCatalog{pool: pool, timeout: timeout}
}

// ActiveInterests lists active interests in display order.
func (c *PostgresCatalog) ActiveInterests(ctx context.Context) ([]CatalogEntry, error) {
	return c.list(ctx, selectActiveInterestsSQL, "interests")
}

// ActiveModules lists active modules in display order.
func (c *PostgresCatalog) ActiveModules(ctx context.Context) ([]CatalogEntry, error) {
	return c.list(ctx, selectActiveModulesSQL, "modules")
}

func (c *PostgresCatalog) list(ctx context.Context, query, table string) ([]CatalogEntry, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("leads: list %s: %w", table, err)
	}
	defer rows.Close()

	entries := []CatalogEntry{}
	for rows.Next() {
		var e CatalogEntry
		if err := rows.Scan(&e.Code, &e.Label); err != nil {
			return nil, fmt.Errorf("leads: scan %s: %w", table, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CatalogHandler serves the reference lists the site forms render.
type CatalogHandler struct {
	catalog Catalog
	logger  *logging.Logger
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(catalog Catalog, logger *logging.Logger) *CatalogHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CatalogHandler{catalog: catalog, logger: logger}
}

type catalogResponse struct {
	Items []CatalogEntry `json:"items"`
}

// ListInterests handles GET /api/public/interests
func (h *CatalogHandler) ListInterests(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "interests", h.catalog.ActiveInterests)
}

// ListModules handles GET /api/public/modules
func (h *CatalogHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "modules", h.catalog.ActiveModules)
}

func (h *CatalogHandler) serve(w http.ResponseWriter, r *http.Request, kind string, list func(context.Context) ([]CatalogEntry, error)) {
	items, err := list(r.Context())
	if err != nil {
		h.logger.Error("failed to list catalog", "kind", kind, "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: msgInternalError})
		return
	}
	if items == nil {
		items = []CatalogEntry{}
	}
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeJSON(w, http.StatusOK, catalogResponse{Items: items})
}
