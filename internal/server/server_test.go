package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkin-desk/internal/checkin"
	"checkin-desk/internal/config"
	"checkin-desk/internal/logstore"
	"checkin-desk/internal/roster"
	"checkin-desk/internal/util"
)

type fakeRemote struct {
	sheets map[string][][]string
}

func (f *fakeRemote) ReadRows(sheet string) ([][]string, error) {
	rows := f.sheets[sheet]
	out := make([][]string, len(rows))
	copy(out, rows)
	return out, nil
}

func (f *fakeRemote) OverwriteRows(sheet string, rows [][]string) error {
	f.sheets[sheet] = rows
	return nil
}

func setupTestRouter(t *testing.T) (*gin.Engine, *fakeRemote, config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	remote := &fakeRemote{sheets: map[string][][]string{
		"Participants": {
			{"Name", "Category"},
			{"Alice", "CFT"},
		},
		"Logs": {},
	}}
	cfg := config.Config{
		SessionCodes: map[string]string{"Morning": "146865"},
		AdminSecret:  "s3cret",
	}
	backup := logstore.NewBackup(filepath.Join(t.TempDir(), "backup.csv"))
	store := logstore.New(remote, backup, 30*time.Second)
	ros := roster.New(remote, 10*time.Minute)
	pipe := checkin.New(cfg.SessionCodes, store, nil)

	r := NewRouter(Deps{
		Cfg:      cfg,
		Pipeline: pipe,
		Roster:   ros,
		Store:    store,
		Backup:   backup,
	})
	return r, remote, cfg
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetRoster(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/roster", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Participants []struct{ Name, Category string } `json:"participants"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Participants, 1)
	assert.Equal(t, "Alice", resp.Participants[0].Name)
}

func TestCheckinPreRegistered(t *testing.T) {
	r, remote, _ := setupTestRouter(t)

	w := postJSON(t, r, "/api/checkin/preregistered", gin.H{
		"session": "Morning", "code": "146865", "name": "Alice", "category": "CFT",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string `json:"status"`
		Record struct{ Name, Type string }
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "remote_and_local", resp.Status)
	assert.Equal(t, "CFT", resp.Record.Type)
	assert.Len(t, remote.sheets["Logs"], 2)
}

func TestCheckinWrongCode(t *testing.T) {
	r, remote, _ := setupTestRouter(t)

	w := postJSON(t, r, "/api/checkin/preregistered", gin.H{
		"session": "Morning", "code": "000000", "name": "Alice",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, remote.sheets["Logs"])
}

func TestCheckinWalkinInvalidEmail(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	w := postJSON(t, r, "/api/checkin/walkin", gin.H{
		"session": "Morning", "code": "146865",
		"name": "Bob", "email": "bob#example.com", "phone": "0123456789",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_email")
}

func TestLiveView(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	w := postJSON(t, r, "/api/checkin/walkin", gin.H{
		"session": "Morning", "code": "146865",
		"name": "Bob", "email": "bob@example.com", "phone": "0123456789",
	})
	require.Equal(t, http.StatusOK, w.Code)

	req, _ := http.NewRequest(http.MethodGet, "/api/live?session=Morning&limit=10", nil)
	lw := httptest.NewRecorder()
	r.ServeHTTP(lw, req)

	require.Equal(t, http.StatusOK, lw.Code)
	var resp struct {
		Checkins []struct{ Name, Session string } `json:"checkins"`
	}
	require.NoError(t, json.Unmarshal(lw.Body.Bytes(), &resp))
	require.Len(t, resp.Checkins, 1)
	assert.Equal(t, "Bob", resp.Checkins[0].Name)
}

func TestAdminAuth(t *testing.T) {
	r, _, cfg := setupTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/admin/export.csv", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code, "missing token")

	token := util.HMACSHA256Hex(cfg.AdminSecret, "admin")
	req, _ = http.NewRequest(http.MethodGet, "/admin/export.csv?token="+token, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "checkin_backup.csv")
}

func TestAdminSync(t *testing.T) {
	r, remote, cfg := setupTestRouter(t)

	// one record through the normal path, then sync is a no-op merge
	w := postJSON(t, r, "/api/checkin/preregistered", gin.H{
		"session": "Morning", "code": "146865", "name": "Alice",
	})
	require.Equal(t, http.StatusOK, w.Code)

	token := util.HMACSHA256Hex(cfg.AdminSecret, "admin")
	req, _ := http.NewRequest(http.MethodPost, "/admin/sync", nil)
	req.Header.Set("X-Admin-Token", token)
	sw := httptest.NewRecorder()
	r.ServeHTTP(sw, req)

	require.Equal(t, http.StatusOK, sw.Code)
	var resp struct{ Total, Added int }
	require.NoError(t, json.Unmarshal(sw.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 0, resp.Added)
	assert.Len(t, remote.sheets["Logs"], 2)
}
