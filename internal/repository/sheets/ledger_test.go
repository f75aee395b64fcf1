package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/herdbook/internal/config"
)

func newTestRepository(t *testing.T, handler http.HandlerFunc) *GoogleSheetRepository {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := sheetsapi.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	return &GoogleSheetRepository{service: svc, spreadsheetID: "sheet-1"}
}

func TestNewGoogleSheetRepository_RequiresConfig(t *testing.T) {
	_, err := NewGoogleSheetRepository(context.Background(), config.SheetsConfig{}, nil)
	assert.Error(t, err)
}

func TestEmptyRange(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	assert.ErrorIs(t, repo.WriteRow(context.Background(), "", nil), ErrEmptyRange)
	_, err := repo.ReadRange(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyRange)
}

func TestReadRange(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.URL.Path, "/v4/spreadsheets/sheet-1/values/")
		assert.Equal(t, "UNFORMATTED_VALUE", r.URL.Query().Get("valueRenderOption"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range":"Feed!A1:C2","values":[["2026-10-12","nursery",42.5]]}`))
	})

	rows, err := repo.ReadRange(context.Background(), FeedRange)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "nursery", rows[0][1])
	assert.Equal(t, 42.5, rows[0][2])
}
