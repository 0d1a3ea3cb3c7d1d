package leads

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for lead storage
type Repository interface {
	// Create stores the request and its module links, returning the new id.
	// req.InterestID is filled in when the interest code resolves.
	Create(ctx context.Context, req *ContactRequest) (int64, error)
}

// Catalog lists the active reference entries the site forms offer.
type Catalog interface {
	ActiveInterests(ctx context.Context) ([]CatalogEntry, error)
	ActiveModules(ctx context.Context) ([]CatalogEntry, error)
}

type referenceRow struct {
	id     int64
	label  string
	active bool
}

// InMemoryRepository keeps contact requests in process memory. It backs
// local development without DATABASE_URL and the handler tests.
type InMemoryRepository struct {
	mu        sync.RWMutex
	nextID    int64
	requests  map[int64]*ContactRequest
	links     map[[2]int64]struct{}
	interests map[string]referenceRow
	modules   map[string]referenceRow
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		requests:  make(map[int64]*ContactRequest),
		links:     make(map[[2]int64]struct{}),
		interests: make(map[string]referenceRow),
		modules:   make(map[string]referenceRow),
	}
}

// NewSeededInMemoryRepository returns a repository holding the same
// reference data the migrations seed.
func NewSeededInMemoryRepository() *InMemoryRepository {
	r := NewInMemoryRepository()
	for i, e := range DefaultInterests {
		r.AddInterest(int64(i+1), e.Code, e.Label, true)
	}
	for i, e := range DefaultModules {
		r.AddModule(int64(i+1), e.Code, e.Label, true)
	}
	return r
}

// AddInterest registers a reference interest.
func (r *InMemoryRepository) AddInterest(id int64, code, label string, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interests[code] = referenceRow{id: id, label: label, active: active}
}

// AddModule registers a reference module.
func (r *InMemoryRepository) AddModule(id int64, code, label string, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[code] = referenceRow{id: id, label: label, active: active}
}

// Create stores a contact request in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *ContactRequest) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	req.InterestID = nil
	if req.FormType == FormPresentation && req.InterestCode != nil {
		if row, ok := r.interests[*req.InterestCode]; ok && row.active {
			id := row.id
			req.InterestID = &id
		}
	}

	r.nextID++
	stored := *req
	stored.ID = r.nextID
	stored.CreatedAt = time.Now().UTC()
	stored.ModuleCodes = nil
	r.requests[stored.ID] = &stored

	if req.FormType == FormDemo {
		for _, code := range uniqueCodes(req.ModuleCodes) {
			row, ok := r.modules[code]
			if !ok {
				continue
			}
			r.links[[2]int64{stored.ID, row.id}] = struct{}{}
			stored.ModuleCodes = append(stored.ModuleCodes, code)
		}
	}

	return stored.ID, nil
}

// Get returns a copy of a stored request, including the linked module codes.
func (r *InMemoryRepository) Get(id int64) (ContactRequest, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return ContactRequest{}, false
	}
	return *req, true
}

// Count returns the number of stored requests.
func (r *InMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.requests)
}

// LinkCount returns the number of request/module associations.
func (r *InMemoryRepository) LinkCount(requestID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for link := range r.links {
		if link[0] == requestID {
			n++
		}
	}
	return n
}

// ActiveInterests lists active interests ordered by id.
func (r *InMemoryRepository) ActiveInterests(ctx context.Context) ([]CatalogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return activeEntries(r.interests), nil
}

// ActiveModules lists active modules ordered by id.
func (r *InMemoryRepository) ActiveModules(ctx context.Context) ([]CatalogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return activeEntries(r.modules), nil
}

func activeEntries(rows map[string]referenceRow) []CatalogEntry {
	type ordered struct {
		id    int64
		entry CatalogEntry
	}
	var list []ordered
	for code, row := range rows {
		if row.active {
			list = append(list, ordered{id: row.id, entry: CatalogEntry{Code: code, Label: row.label}})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].id < list[j].id })
	out := make([]CatalogEntry, 0, len(list))
	for _, o := range list {
		out = append(out, o.entry)
	}
	return out
}

// DefaultInterests are the options of the presentation form's interest select.
var DefaultInterests = []CatalogEntry{
	{Code: "geral", Label: "Apresentação geral"},
	{Code: "siduc", Label: "SIDUC"},
	{Code: "integracoes", Label: "Integrações"},
	{Code: "outro", Label: "Outro"},
}

// DefaultModules are the module checkboxes of the demo form.
var DefaultModules = []CatalogEntry{
	{Code: "transporte_escolar", Label: "Transporte Escolar"},
	{Code: "escolas", Label: "Escolas"},
	{Code: "alunos", Label: "Alunos"},
	{Code: "professores", Label: "Professores"},
	{Code: "merenda", Label: "Merenda"},
	{Code: "pre_matricula_matricula", Label: "Pré-matrícula / Matrícula"},
	{Code: "diario_do_aluno", Label: "Diário do Aluno"},
	{Code: "relatorios_indicadores", Label: "Relatórios & Indicadores"},
	{Code: "usuarios_permissoes", Label: "Usuários e Permissões"},
}
