package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	t.Run("sets content-type and status", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusOK, []string{"USC00519397"})

		if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
			t.Errorf("Content-Type = %q; want application/json; charset=utf-8", got)
		}
		if w.Code != http.StatusOK {
			t.Errorf("Code = %d; want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("encodes nil pointers as null", func(t *testing.T) {
		w := httptest.NewRecorder()
		v := 0.08
		WriteJSON(w, http.StatusOK, map[string]*float64{"2017-08-22": &v, "2017-08-23": nil})

		var got map[string]*float64
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("body is not valid JSON: %v", err)
		}
		if got["2017-08-22"] == nil || *got["2017-08-22"] != 0.08 {
			t.Errorf("body[2017-08-22] = %v; want 0.08", got["2017-08-22"])
		}
		if p, ok := got["2017-08-23"]; !ok || p != nil {
			t.Errorf("body[2017-08-23] = %v, %v; want null", p, ok)
		}
	})

	t.Run("does not escape html", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusOK, "a<b")
		if got := strings.TrimSpace(w.Body.String()); got != `"a<b"` {
			t.Errorf("body = %s; want \"a<b\"", got)
		}
	})

	t.Run("unencodable value", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusOK, func() {})
		if w.Code != http.StatusOK {
			t.Errorf("Code = %d; want status kept at %d", w.Code, http.StatusOK)
		}
	})
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	status := http.StatusNotFound
	msg := "latest date: data unavailable"
	WriteError(w, status, msg)

	if w.Code != status {
		t.Errorf("Code = %d; want %d", w.Code, status)
	}

	var got map[string]any
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if got["error"] != http.StatusText(status) {
		t.Errorf("error = %q; want %q", got["error"], http.StatusText(status))
	}
	if got["message"] != msg {
		t.Errorf("message = %q; want %q", got["message"], msg)
	}
}

func TestWriteHTML(t *testing.T) {
	w := httptest.NewRecorder()
	WriteHTML(w, http.StatusOK, []byte("<h1>ok</h1>"))

	if got := w.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q; want text/html; charset=utf-8", got)
	}
	if w.Body.String() != "<h1>ok</h1>" {
		t.Errorf("body = %q", w.Body.String())
	}
}
