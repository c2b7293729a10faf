package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGetenv(t *testing.T) {
	key := "TEST_ENV_VAR_FRONTEND"
	if got := getenv(key, "default_value"); got != "default_value" {
		t.Errorf("expected default_value, got %q", got)
	}

	t.Setenv(key, "set_value")
	if got := getenv(key, "default_value"); got != "set_value" {
		t.Errorf("expected set_value, got %q", got)
	}
}

func TestPageRendersTemplates(t *testing.T) {
	app := &App{API: "http://api", WS: "ws://ws"}

	for _, name := range []string{"map.gohtml", "declare.gohtml", "auth.gohtml"} {
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		app.page(name)(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", name, w.Code)
		}
		if !strings.Contains(w.Body.String(), "http://api") {
			t.Errorf("%s: API URL not injected", name)
		}
	}
}

func TestPageUnknownTemplate(t *testing.T) {
	app := &App{}

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	app.page("missing.gohtml")(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
