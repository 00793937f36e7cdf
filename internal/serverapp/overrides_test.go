package serverapp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nameparse/internal/config"
	"nameparse/internal/naming"
	"nameparse/internal/surnames"
)

func TestBuildOverrideSource(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tests := []struct {
		name     string
		cfg      config.OverridesConfig
		withDB   bool
		describe string
		wantErr  bool
	}{
		{name: "none", cfg: config.OverridesConfig{Source: config.OverridesSourceNone}, describe: "none"},
		{name: "empty source", cfg: config.OverridesConfig{}, describe: "none"},
		{name: "file", cfg: config.OverridesConfig{Source: config.OverridesSourceFile, Path: "surnames.txt"}, describe: "file:surnames.txt"},
		{
			name:     "database",
			cfg:      config.OverridesConfig{Source: config.OverridesSourceDatabase, Table: "surname_overrides", Column: "surname"},
			withDB:   true,
			describe: "database:surname_overrides.surname",
		},
		{name: "database without connection", cfg: config.OverridesConfig{Source: config.OverridesSourceDatabase}, wantErr: true},
		{name: "unknown", cfg: config.OverridesConfig{Source: "redis"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := db
			if !tt.withDB {
				conn = nil
			}
			source, err := buildOverrideSource(tt.cfg, conn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.describe, source.Describe())
		})
	}
}

func TestParserStore_DatabaseReload(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `surname` FROM `surname_overrides`")).
		WillReturnRows(sqlmock.NewRows([]string{"surname"}).AddRow("MacDonald").AddRow("de la Cruz"))

	source := surnames.SQLSource{DB: db, Table: "surname_overrides", Column: "surname"}
	store := newParserStore(naming.Options{LcPrefix: true}, source, nil, time.Second)

	n, err := store.Reload(context.Background(), testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "de la Cruz", store.Parser().CaseSurname("DE LA CRUZ", false))
	assert.True(t, store.Parser().Options().LcPrefix)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParserStore_ConcurrentReadsDuringReload(t *testing.T) {
	store, _ := fileStore(t, "Macquarie\n")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				name := store.Parser().Parse("MR JOHN MACQUARIE")
				assert.Equal(t, "Mr John Macquarie", name.CaseAll())
			}
		}()
	}
	for i := 0; i < 5; i++ {
		_, err := store.Reload(context.Background(), testLogger())
		require.NoError(t, err)
	}
	wg.Wait()
}

func TestHealthHandler_DatabasePing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store, _ := fileStore(t, "Macquarie\n")

	mock.ExpectPing()
	rec := httptest.NewRecorder()
	healthHandler(db, store, time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)
	assert.Contains(t, rec.Body.String(), `"entries":1`)

	mock.ExpectPing().WillReturnError(errors.New("gone"))
	rec = httptest.NewRecorder()
	healthHandler(db, store, time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
	assert.Contains(t, rec.Body.String(), `"database":"failed"`)

	require.NoError(t, mock.ExpectationsWereMet())
}
