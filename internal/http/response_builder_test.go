package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusCreated).
		Header("X-Test", "1").
		JSON(map[string]int{"count": 2}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Header().Get("X-Test") != "1" {
		t.Error("custom header missing")
	}
	var body map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["count"] != 2 {
		t.Errorf("body = %q, err = %v", w.Body.String(), err)
	}
}

func TestResponseBuilder_CSV(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().CSV("debts.csv", "a,b\n").Write(w)

	if w.Body.String() != "a,b\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="debts.csv"` {
		t.Errorf("Content-Disposition = %q", got)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *ResponseBuilder
		code    int
		message string
	}{
		{"bad request", BadRequestError("bad"), http.StatusBadRequest, "bad"},
		{"unprocessable", UnprocessableEntityError("invalid amount"), http.StatusUnprocessableEntity, "invalid amount"},
		{"not found", NotFoundError("missing"), http.StatusNotFound, "missing"},
		{"internal", InternalServerError("boom"), http.StatusInternalServerError, "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.code {
				t.Errorf("Status = %d, want %d", w.Code, tt.code)
			}
			var body errorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.message {
				t.Errorf("error = %q, want %q", body.Error, tt.message)
			}
		})
	}
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NoContent().Write(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("code=%d body=%q", w.Code, w.Body.String())
	}
}
