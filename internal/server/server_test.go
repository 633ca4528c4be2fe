package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bandstand-io/bandstand/config"
	"github.com/bandstand-io/bandstand/internal/domain"
	"github.com/bandstand-io/bandstand/internal/storage"
	"github.com/bandstand-io/bandstand/internal/store"
)

func newTestServer(t *testing.T) *Server {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port: "8080",
		},
		Storage: config.StorageConfig{
			Type:      "local",
			OutputDir: t.TempDir(),
		},
		Notify: config.NotifyConfig{
			Scope:        "assignees",
			DueSoonHours: 48,
		},
	}
	artifacts, err := storage.NewLocalStorage(cfg.Storage.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	return New(cfg, store.NewMemory(), artifacts)
}

func doRequest(t *testing.T, server *Server, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		if raw, ok := payload.(string); ok {
			body = bytes.NewBufferString(raw)
		} else {
			data, err := json.Marshal(payload)
			if err != nil {
				t.Fatal(err)
			}
			body = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequest(method, path, body)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	server.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func createTestGroup(t *testing.T, server *Server, name string) domain.Group {
	t.Helper()

	rr := doRequest(t, server, "POST", "/api/v1/groups", map[string]string{"name": name})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status %d creating group, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	var group domain.Group
	decodeBody(t, rr, &group)
	return group
}

func addTestMember(t *testing.T, server *Server, groupID, name string) domain.Member {
	t.Helper()

	rr := doRequest(t, server, "POST", "/api/v1/groups/"+groupID+"/members", map[string]string{"name": name})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status %d adding member, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	var member domain.Member
	decodeBody(t, rr, &member)
	return member
}

func TestHealthCheck(t *testing.T) {
	server := newTestServer(t)

	rr := doRequest(t, server, "GET", "/health", nil)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var response map[string]interface{}
	decodeBody(t, rr, &response)
	if response["status"] != "ok" {
		t.Errorf("Expected status 'ok', got %v", response["status"])
	}
}

func TestCreateGroupValidation(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
	}{
		{
			name:           "valid request",
			requestBody:    map[string]string{"name": "The Midnight Ramblers"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing name",
			requestBody:    map[string]string{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, server, "POST", "/api/v1/groups", tt.requestBody)
			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestGroupLifecycle(t *testing.T) {
	server := newTestServer(t)

	group := createTestGroup(t, server, "Warehouse Collective")

	rr := doRequest(t, server, "GET", "/api/v1/groups/"+group.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}

	rr = doRequest(t, server, "PUT", "/api/v1/groups/"+group.ID, map[string]string{"name": "Warehouse Nine"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d renaming, got %d", http.StatusOK, rr.Code)
	}
	var renamed domain.Group
	decodeBody(t, rr, &renamed)
	if renamed.Name != "Warehouse Nine" {
		t.Errorf("Expected renamed group, got %q", renamed.Name)
	}

	rr = doRequest(t, server, "GET", "/api/v1/groups", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d listing, got %d", http.StatusOK, rr.Code)
	}
	var listing struct {
		Groups []domain.Group `json:"groups"`
	}
	decodeBody(t, rr, &listing)
	if len(listing.Groups) != 1 {
		t.Errorf("Expected 1 group in listing, got %d", len(listing.Groups))
	}
}

func TestGetGroup_NotFound(t *testing.T) {
	server := newTestServer(t)

	rr := doRequest(t, server, "GET", "/api/v1/groups/non-existent-group", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestTaskAssignmentFlow(t *testing.T) {
	server := newTestServer(t)

	group := createTestGroup(t, server, "Brass Ensemble")
	member := addTestMember(t, server, group.ID, "Ada")

	rr := doRequest(t, server, "POST", "/api/v1/groups/"+group.ID+"/tasks", map[string]interface{}{
		"title":        "Book rehearsal room",
		"assignee_ids": []string{member.ID},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status %d creating task, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	var task domain.Task
	decodeBody(t, rr, &task)

	// Completing twice stays idempotent
	for i := 0; i < 2; i++ {
		rr = doRequest(t, server, "POST", "/api/v1/groups/"+group.ID+"/tasks/"+task.ID+"/complete", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status %d completing task, got %d", http.StatusOK, rr.Code)
		}
	}
	var completed domain.Task
	decodeBody(t, rr, &completed)
	if !completed.Done {
		t.Error("Expected task to be done after completion")
	}

	// Creation and completion each notified the assignee
	rr = doRequest(t, server, "GET", "/api/v1/groups/"+group.ID+"/members/"+member.ID+"/notifications", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d listing notifications, got %d", http.StatusOK, rr.Code)
	}
	var feed struct {
		Notifications []domain.Notification `json:"notifications"`
	}
	decodeBody(t, rr, &feed)
	if len(feed.Notifications) != 2 {
		t.Errorf("Expected 2 notifications, got %d", len(feed.Notifications))
	}

	rr = doRequest(t, server, "POST", "/api/v1/groups/"+group.ID+"/members/"+member.ID+"/notifications/read-all", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d marking read, got %d", http.StatusOK, rr.Code)
	}
	var marked struct {
		MarkedRead int `json:"marked_read"`
	}
	decodeBody(t, rr, &marked)
	if marked.MarkedRead != 2 {
		t.Errorf("Expected 2 notifications marked read, got %d", marked.MarkedRead)
	}
}

func TestCreateTaskRejectsUnknownAssignee(t *testing.T) {
	server := newTestServer(t)

	group := createTestGroup(t, server, "Quartet")

	rr := doRequest(t, server, "POST", "/api/v1/groups/"+group.ID+"/tasks", map[string]interface{}{
		"title":        "Order strings",
		"assignee_ids": []string{"not-a-member"},
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestScheduleSetlist(t *testing.T) {
	server := newTestServer(t)

	group := createTestGroup(t, server, "Orchestra")
	concert := time.Date(2025, 9, 12, 20, 0, 0, 0, time.UTC)

	rr := doRequest(t, server, "POST", "/api/v1/groups/"+group.ID+"/setlists", map[string]interface{}{
		"name":         "Autumn Gala",
		"concert_date": concert,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status %d creating setlist, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	var set domain.Setlist
	decodeBody(t, rr, &set)

	songs := []map[string]interface{}{
		{"title": "Overture", "duration_min": 4, "duration_sec": 30},
		{"title": "Nocturne", "duration_min": 5},
	}
	for _, song := range songs {
		rr = doRequest(t, server, "POST", "/api/v1/groups/"+group.ID+"/setlists/"+set.ID+"/songs", song)
		if rr.Code != http.StatusCreated {
			t.Fatalf("Expected status %d adding song, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
		}
	}

	rr = doRequest(t, server, "POST", "/api/v1/groups/"+group.ID+"/setlists/"+set.ID+"/schedule", map[string]string{"mode": "sequential"})
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d scheduling, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var scheduled domain.Setlist
	decodeBody(t, rr, &scheduled)

	if scheduled.Songs[0].StartTime == nil || !scheduled.Songs[0].StartTime.Equal(concert) {
		t.Errorf("Expected first song to start at %v, got %v", concert, scheduled.Songs[0].StartTime)
	}
	wantSecond := concert.Add(4*time.Minute + 30*time.Second)
	if scheduled.Songs[1].StartTime == nil || !scheduled.Songs[1].StartTime.Equal(wantSecond) {
		t.Errorf("Expected second song to start at %v, got %v", wantSecond, scheduled.Songs[1].StartTime)
	}
}

func TestScheduleWithoutConcertDate(t *testing.T) {
	server := newTestServer(t)

	group := createTestGroup(t, server, "Acoustic Duo")

	rr := doRequest(t, server, "POST", "/api/v1/groups/"+group.ID+"/setlists", map[string]string{"name": "Open Mic"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status %d creating setlist, got %d", http.StatusCreated, rr.Code)
	}
	var set domain.Setlist
	decodeBody(t, rr, &set)

	rr = doRequest(t, server, "POST", "/api/v1/groups/"+group.ID+"/setlists/"+set.ID+"/schedule", map[string]string{"mode": "sequential"})
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status %d scheduling undated setlist, got %d", http.StatusConflict, rr.Code)
	}
}

func TestMerchSaleFlow(t *testing.T) {
	server := newTestServer(t)

	group := createTestGroup(t, server, "Merch Crew")

	rr := doRequest(t, server, "POST", "/api/v1/groups/"+group.ID+"/merch", map[string]interface{}{
		"name":        "Tour Shirt",
		"size":        "M",
		"price_cents": 2500,
		"stock":       3,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status %d creating item, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	var item domain.MerchItem
	decodeBody(t, rr, &item)

	rr = doRequest(t, server, "POST", "/api/v1/groups/"+group.ID+"/sales", map[string]interface{}{
		"item_id":  item.ID,
		"quantity": 2,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status %d recording sale, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	var sale domain.Sale
	decodeBody(t, rr, &sale)
	if sale.UnitPriceCents != 2500 {
		t.Errorf("Expected unit price to default to item price, got %d", sale.UnitPriceCents)
	}

	// Only one left in stock: overselling is rejected
	rr = doRequest(t, server, "POST", "/api/v1/groups/"+group.ID+"/sales", map[string]interface{}{
		"item_id":  item.ID,
		"quantity": 2,
	})
	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status %d overselling, got %d: %s", http.StatusConflict, rr.Code, rr.Body.String())
	}

	rr = doRequest(t, server, "GET", "/api/v1/groups/"+group.ID+"/merch/"+item.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d fetching item, got %d", http.StatusOK, rr.Code)
	}
	var remaining domain.MerchItem
	decodeBody(t, rr, &remaining)
	if remaining.Stock != 1 {
		t.Errorf("Expected stock 1 after sale, got %d", remaining.Stock)
	}
}

func TestFinanceSummary(t *testing.T) {
	server := newTestServer(t)

	group := createTestGroup(t, server, "Treasury")

	entries := []map[string]interface{}{
		{"title": "Festival fee", "amount_cents": 100000},
		{"title": "Van rental", "amount_cents": -25000},
	}
	for _, entry := range entries {
		rr := doRequest(t, server, "POST", "/api/v1/groups/"+group.ID+"/finance", entry)
		if rr.Code != http.StatusCreated {
			t.Fatalf("Expected status %d creating entry, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
		}
	}

	rr := doRequest(t, server, "GET", "/api/v1/groups/"+group.ID+"/finance/summary", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var summary domain.FinanceSummary
	decodeBody(t, rr, &summary)
	if summary.IncomeCents != 100000 {
		t.Errorf("Expected income 100000, got %d", summary.IncomeCents)
	}
	if summary.ExpenseCents != 25000 {
		t.Errorf("Expected expense 25000, got %d", summary.ExpenseCents)
	}
	if summary.NetCents != 75000 {
		t.Errorf("Expected net 75000, got %d", summary.NetCents)
	}
}

func TestGetExportStatus_NotFound(t *testing.T) {
	server := newTestServer(t)

	rr := doRequest(t, server, "GET", "/api/v1/exports/non-existent-job", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestCancelExport_NotFound(t *testing.T) {
	server := newTestServer(t)

	rr := doRequest(t, server, "POST", "/api/v1/exports/non-existent-job/cancel", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestListExports(t *testing.T) {
	server := newTestServer(t)

	rr := doRequest(t, server, "GET", "/api/v1/exports", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var response map[string]interface{}
	decodeBody(t, rr, &response)
	if _, exists := response["jobs"]; !exists {
		t.Error("Expected 'jobs' field in response")
	}
}

func TestSongDBSearchUnconfigured(t *testing.T) {
	server := newTestServer(t)

	rr := doRequest(t, server, "GET", "/api/v1/songdb/search?title=Nightcall", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Normal Setlist Name", "Normal Setlist Name"},
		{"Set/With\\Slash", "Set_With_Slash"},
		{"Set:With*Special?Chars", "Set_With_Special_Chars"},
		{"  Spaced Setlist  ", "Spaced Setlist"},
		{"Set<>With|Pipes", "Set__With_Pipes"},
		{"Set\"With'Quotes", "Set_With'Quotes"},
		{"...", "untitled"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := SanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
