package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIfMatchChecksum(t *testing.T) {
	for _, header := range []string{`abc`, `"abc"`, `W/"abc"`, ` "abc" `} {
		r := httptest.NewRequest(http.MethodPut, "/", nil)
		r.Header.Set("If-Match", header)
		if got := ifMatchChecksum(r); got != "abc" {
			t.Errorf("ifMatchChecksum(%s) = %q, want abc", header, got)
		}
	}
}

func TestReadJSON_Invalid(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	var v map[string]any
	if readJSON(w, r, &v) {
		t.Fatal("readJSON accepted invalid body")
	}
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "invalid JSON body") {
		t.Errorf("response = %d %s", w.Code, w.Body.String())
	}
}

func TestReadJSON_TooLarge(t *testing.T) {
	body := `{"content":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()
	var v map[string]any
	if readJSON(w, r, &v) {
		t.Fatal("readJSON accepted oversized body")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", w.Code)
	}
}
