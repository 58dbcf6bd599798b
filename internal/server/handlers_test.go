package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coacherp/coacherp/internal/auth"
	"github.com/coacherp/coacherp/internal/models"
	"github.com/coacherp/coacherp/internal/remote"
	"github.com/coacherp/coacherp/internal/service"
	"github.com/coacherp/coacherp/internal/state"
	syncengine "github.com/coacherp/coacherp/internal/sync"
)

const testPassword = "5290"

// nullRemote satisfies remote.Store for routes that never reach the network.
type nullRemote struct{}

func (nullRemote) List(ctx context.Context, name string) ([]remote.File, error) { return nil, nil }
func (nullRemote) Download(ctx context.Context, id string) ([]byte, error)      { return nil, nil }
func (nullRemote) Create(ctx context.Context, name, mimeType string) (string, error) {
	return "file-1", nil
}
func (nullRemote) Upload(ctx context.Context, id string, content []byte, contentType string) error {
	return nil
}

func newTestRouter(t *testing.T, store *state.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gate, err := auth.NewGate(testPassword)
	if err != nil {
		t.Fatalf("NewGate failed: %v", err)
	}
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	session := auth.NewSession("client-id", "client-secret", "http://localhost/callback")
	rs := nullRemote{}
	engine := syncengine.New(syncengine.Config{
		State:   store,
		Remote:  rs,
		Locator: remote.NewLocator(rs, "CoachERP_data.json"),
	})

	h := NewHandler(
		service.NewStudentService(store),
		service.NewFeeService(store),
		service.NewSettingsService(store),
		service.NewDashboardService(store),
		service.NewSyncService(session, engine),
		gate,
		jwtManager,
	)
	return NewRouter(h)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{"password": testPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func TestPing(t *testing.T) {
	r := newTestRouter(t, state.New())
	w := doJSON(t, r, http.MethodGet, "/ping", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r := newTestRouter(t, state.New())
	w := doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{"password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestMutationsRequireToken(t *testing.T) {
	r := newTestRouter(t, state.New())

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/students"},
		{http.MethodPost, "/api/team"},
		{http.MethodPost, "/api/batches"},
		{http.MethodPost, "/api/sync/now"},
		{http.MethodPut, "/api/settings/profile-picture"},
	}
	for _, tc := range cases {
		w := doJSON(t, r, tc.method, tc.path, "", gin.H{})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without token, got %d", tc.method, tc.path, w.Code)
		}
	}

	w := doJSON(t, r, http.MethodPost, "/api/batches", "not-a-jwt", gin.H{"name": "X"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with garbage token, got %d", w.Code)
	}
}

func TestEnrollAndFetchStudent(t *testing.T) {
	r := newTestRouter(t, state.New())
	token := login(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/students", token, gin.H{
		"name":      "Aarav Sharma",
		"batch":     "JEE Mains 2025",
		"totalFees": 120000,
		"discount":  10000,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", w.Code, w.Body.String())
	}
	var created struct {
		Student models.Student `json:"student"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Student.ID == "" || created.Student.Status != models.StudentActive {
		t.Errorf("unexpected created student: %+v", created.Student)
	}

	w = doJSON(t, r, http.MethodGet, "/api/students/"+created.Student.ID, "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("get student: expected 200, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/students/CE2099999", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown student: expected 404, got %d", w.Code)
	}
}

func TestEnrollRejectsMissingName(t *testing.T) {
	r := newTestRouter(t, state.New())
	token := login(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/students", token, gin.H{"batch": "NEET 2025"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUpdateStudentStatus(t *testing.T) {
	store := state.New()
	r := newTestRouter(t, store)
	token := login(t, r)

	st := models.Student{
		ID:             "CE2024001",
		Name:           "Aarav Sharma",
		Batch:          "JEE Mains 2025",
		EnrollmentDate: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		Status:         models.StudentActive,
		TotalFees:      120000,
		Payments: []models.Payment{
			{ID: "PAY001", Date: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC), Amount: 50000, Mode: models.PaymentUPI},
		},
	}
	if err := store.AddStudent(st); err != nil {
		t.Fatalf("AddStudent failed: %v", err)
	}

	w := doJSON(t, r, http.MethodPut, "/api/students/CE2024001", token, gin.H{
		"name":           st.Name,
		"batch":          st.Batch,
		"enrollmentDate": st.EnrollmentDate,
		"status":         "Left",
		"totalFees":      st.TotalFees,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	got, _ := store.Student("CE2024001")
	if got.Status != models.StudentLeft {
		t.Errorf("status not updated: %s", got.Status)
	}

	// The response carries the stored record, payment history included.
	var resp struct {
		Student models.Student `json:"student"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Student.Payments) != 1 {
		t.Errorf("response should include preserved payments, got %+v", resp.Student.Payments)
	}

	w = doJSON(t, r, http.MethodPut, "/api/students/CE2024001", token, gin.H{
		"name":           st.Name,
		"enrollmentDate": st.EnrollmentDate,
		"status":         "Expelled",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown status: expected 400, got %d", w.Code)
	}
}

func TestRecordPaymentAndLedger(t *testing.T) {
	store := state.New()
	r := newTestRouter(t, store)
	token := login(t, r)

	st := models.Student{
		ID:             "CE2024001",
		Name:           "Aarav Sharma",
		EnrollmentDate: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		Status:         models.StudentActive,
		TotalFees:      100000,
		Payments:       []models.Payment{},
	}
	if err := store.AddStudent(st); err != nil {
		t.Fatalf("AddStudent failed: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/api/students/CE2024001/payments", token, gin.H{
		"amount": 40000,
		"mode":   "UPI",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/students/CE2024001/payments", token, gin.H{
		"amount": 100,
		"mode":   "Barter",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad mode: expected 400, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/students/CE2024001/ledger", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("ledger: expected 200, got %d", w.Code)
	}
	var led service.Ledger
	if err := json.Unmarshal(w.Body.Bytes(), &led); err != nil {
		t.Fatalf("decode ledger: %v", err)
	}
	if led.TotalPaid != 40000 || led.BalanceDue != 60000 {
		t.Errorf("unexpected ledger: %+v", led)
	}
}

func TestPaymentBatchValidation(t *testing.T) {
	store := state.New()
	r := newTestRouter(t, store)
	token := login(t, r)

	if err := store.AddStudent(models.Student{ID: "CE2024001", Name: "Aarav", Status: models.StudentActive, Payments: []models.Payment{}}); err != nil {
		t.Fatalf("AddStudent failed: %v", err)
	}

	w := doJSON(t, r, http.MethodPost, "/api/students/CE2024001/payments/batch", token, gin.H{
		"payments": []gin.H{},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty batch: expected 400, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/students/CE2024001/payments/batch", token, gin.H{
		"payments": []gin.H{
			{"amount": 1000, "mode": "Cash"},
			{"amount": 2000, "mode": "Cheque"},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", w.Code, w.Body.String())
	}
	got, _ := store.Student("CE2024001")
	if len(got.Payments) != 2 {
		t.Errorf("expected 2 payments, got %d", len(got.Payments))
	}
}

func TestSelectionFlow(t *testing.T) {
	store := state.New()
	r := newTestRouter(t, store)

	if err := store.AddStudent(models.Student{ID: "CE2024001", Name: "Aarav", Status: models.StudentActive, Payments: []models.Payment{}}); err != nil {
		t.Fatalf("AddStudent failed: %v", err)
	}

	w := doJSON(t, r, http.MethodGet, "/api/selection", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("no selection yet: expected 404, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/api/students/CE2024001/select", "", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("select: expected 204, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/selection", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("selection: expected 200, got %d", w.Code)
	}
}

func TestTeamAndBatchRoutes(t *testing.T) {
	store := state.New()
	r := newTestRouter(t, store)
	token := login(t, r)

	w := doJSON(t, r, http.MethodPost, "/api/team", token, gin.H{"name": "Ravi Kumar", "role": "Physics Faculty"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add team member: expected 201, got %d %s", w.Code, w.Body.String())
	}
	var added struct {
		TeamMember models.TeamMember `json:"teamMember"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &added); err != nil {
		t.Fatalf("decode: %v", err)
	}
	w = doJSON(t, r, http.MethodDelete, "/api/team/"+added.TeamMember.ID, token, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("remove team member: expected 204, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/batches", token, gin.H{"name": "NEET 2025"})
	if w.Code != http.StatusOK {
		t.Fatalf("add batch: expected 200, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, "/api/batches/NEET%202025", token, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("remove batch: expected 204, got %d", w.Code)
	}
	if got := len(store.Batches()); got != 0 {
		t.Errorf("expected 0 batches, got %d", got)
	}
}

func TestProfilePictureRoutes(t *testing.T) {
	store := state.New()
	r := newTestRouter(t, store)
	token := login(t, r)

	w := doJSON(t, r, http.MethodPut, "/api/settings/profile-picture", token, gin.H{"picture": "data:image/png;base64,abc"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("set picture: expected 204, got %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodGet, "/api/settings/profile-picture", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get picture: expected 200, got %d", w.Code)
	}
	var resp struct {
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Picture != "data:image/png;base64,abc" {
		t.Errorf("unexpected picture: %q", resp.Picture)
	}
}

func TestDashboardRoute(t *testing.T) {
	r := newTestRouter(t, state.New())
	w := doJSON(t, r, http.MethodGet, "/api/dashboard", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var stats service.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
}

func TestSyncStatusAndSyncNowDisconnected(t *testing.T) {
	r := newTestRouter(t, state.New())
	token := login(t, r)

	w := doJSON(t, r, http.MethodGet, "/api/sync/status", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("sync status: expected 200, got %d", w.Code)
	}
	var info service.SyncInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode sync info: %v", err)
	}
	if info.Connected || info.Status != models.SyncIdle || info.LastSynced != nil {
		t.Errorf("unexpected initial sync info: %+v", info)
	}

	w = doJSON(t, r, http.MethodPost, "/api/sync/now", token, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("sync now while disconnected: expected 409, got %d", w.Code)
	}
}

func TestSyncAuthURL(t *testing.T) {
	r := newTestRouter(t, state.New())
	w := doJSON(t, r, http.MethodGet, "/api/sync/auth-url?state=xyz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.URL == "" {
		t.Error("expected a consent URL")
	}
}
