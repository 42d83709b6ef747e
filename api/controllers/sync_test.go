package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lojinha-labs/storefront-backend/internal/peersync"
)

type stubChannel struct {
	stats peersync.Stats
}

func (s stubChannel) Stats() peersync.Stats { return s.stats }

func TestSyncStatusReportsChannelState(t *testing.T) {
	handler := SyncStatus(stubChannel{stats: peersync.Stats{State: "Open", Sent: 3}})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/sync/status", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"state":"Open"`) {
		t.Fatalf("expected channel state in payload: %s", w.Body.String())
	}
}

func TestSyncStatusWithoutChannel(t *testing.T) {
	handler := SyncStatus(nil)

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/sync/status", nil))

	if !strings.Contains(w.Body.String(), `"state":"Uninitialized"`) {
		t.Fatalf("expected uninitialized state: %s", w.Body.String())
	}
}
