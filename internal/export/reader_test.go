package export

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportColumns = []string{
	"id", "created_at", "product", "form_type", "name", "role",
	"municipality", "uf", "email", "whatsapp", "code", "message",
	"observations", "page_url", "utm_source", "utm_medium", "utm_campaign", "module_codes",
}

func TestReaderContactRequests(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	created := from.Add(36 * time.Hour)

	mock.ExpectQuery("FROM contact_requests cr").
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows(exportColumns).
			AddRow(int64(1), created, "didax", "demo", "Maria", "Secretária", "São Paulo", "SP",
				"maria@example.com", nil, nil, nil, "40 escolas", nil, "google", nil, nil, "{alunos,merenda}").
			AddRow(int64(2), created, "siduc", "presentation", "João", nil, nil, nil,
				"joao@example.com", "+55 81 90000-0000", "siduc", "Olá", nil, nil, nil, nil, nil, "{}"))

	rows, err := NewReader(db).ContactRequests(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, []string{"alunos", "merenda"}, rows[0].Modules)
	assert.Equal(t, "SP", rows[0].UF.String)
	assert.False(t, rows[0].Whatsapp.Valid)
	assert.Equal(t, "google", rows[0].UTMSource.String)

	assert.Equal(t, "siduc", rows[1].Interest.String)
	assert.Empty(t, rows[1].Modules)
	assert.False(t, rows[1].Role.Valid)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReaderRejectsEmptyRange(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = NewReader(db).ContactRequests(context.Background(), day, day)
	assert.Error(t, err)
}

func TestReaderQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM contact_requests cr").WillReturnError(errors.New("relation does not exist"))

	_, err = NewReader(db).ContactRequests(context.Background(), from, from.AddDate(0, 0, 1))
	assert.ErrorContains(t, err, "export: query contact requests")
	assert.NoError(t, mock.ExpectationsWereMet())
}
