package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresCatalog_ActiveInterests(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	catalog := &PostgresCatalog{pool: mock}
	mock.ExpectQuery("SELECT code, label FROM interests").
		WillReturnRows(pgxmock.NewRows([]string{"code", "label"}).
			AddRow("geral", "Apresentação geral").
			AddRow("siduc", "SIDUC"))

	entries, err := catalog.ActiveInterests(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []CatalogEntry{
		{Code: "geral", Label: "Apresentação geral"},
		{Code: "siduc", Label: "SIDUC"},
	}, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_ActiveModulesEmpty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	catalog := &PostgresCatalog{pool: mock}
	mock.ExpectQuery("SELECT code, label FROM modules").
		WillReturnRows(pgxmock.NewRows([]string{"code", "label"}))

	entries, err := catalog.ActiveModules(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	catalog := &PostgresCatalog{pool: mock}
	mock.ExpectQuery("SELECT code, label FROM modules").WillReturnError(errors.New("boom"))

	_, err = catalog.ActiveModules(context.Background())
	assert.ErrorContains(t, err, "leads: list modules")
}

func TestInMemoryRepository_ActiveEntriesSkipInactive(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.AddModule(2, "escolas", "Escolas", true)
	repo.AddModule(1, "transporte_escolar", "Transporte Escolar", true)
	repo.AddModule(3, "legado", "Legado", false)

	modules, err := repo.ActiveModules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []CatalogEntry{
		{Code: "transporte_escolar", Label: "Transporte Escolar"},
		{Code: "escolas", Label: "Escolas"},
	}, modules)
}

type failingCatalog struct{}

func (failingCatalog) ActiveInterests(context.Context) ([]CatalogEntry, error) {
	return nil, errors.New("db down")
}

func (failingCatalog) ActiveModules(context.Context) ([]CatalogEntry, error) {
	return nil, errors.New("db down")
}

func TestCatalogHandler_ListModules(t *testing.T) {
	handler := NewCatalogHandler(NewSeededInMemoryRepository(), nil)

	w := httptest.NewRecorder()
	handler.ListModules(w, httptest.NewRequest(http.MethodGet, "/api/public/modules", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp struct {
		Items []CatalogEntry `json:"items"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, DefaultModules, resp.Items)
}

func TestCatalogHandler_ListInterests(t *testing.T) {
	handler := NewCatalogHandler(NewSeededInMemoryRepository(), nil)

	w := httptest.NewRecorder()
	handler.ListInterests(w, httptest.NewRequest(http.MethodGet, "/api/public/interests", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Items []CatalogEntry `json:"items"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, DefaultInterests, resp.Items)
}

func TestCatalogHandler_Error(t *testing.T) {
	handler := NewCatalogHandler(failingCatalog{}, nil)

	w := httptest.NewRecorder()
	handler.ListInterests(w, httptest.NewRequest(http.MethodGet, "/api/public/interests", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"message":"Internal server error"}`, w.Body.String())
}
