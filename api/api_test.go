package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type body struct {
	Email string `json:"email" validate:"required,email"`
	Year  int    `json:"year" validate:"required"`
	Note  string `json:"note,omitempty"`
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr string
	}{
		{"valid", `{"email":"a@b.co","year":2020}`, ""},
		{"empty", ``, "request body is empty"},
		{"malformed", `{"email":`, "malformed JSON body"},
		{"missing fields", `{"note":"x"}`, `email: failed "required"; year: failed "required"`},
		{"bad email", `{"email":"nope","year":1}`, `email: failed "email"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.in))
			var b body
			err := Decode(r, &b)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tt.wantErr, verr.Error())
		})
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?skip=5&limit=abc&neg=-1", nil)

	n, err := QueryInt(r, "skip", 0, 0, 100)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	n, err = QueryInt(r, "absent", 7, 0, 100)
	require.NoError(t, err)
	require.Equal(t, 7, n)

	_, err = QueryInt(r, "limit", 0, 0, 100)
	require.Error(t, err)
	_, err = QueryInt(r, "neg", 0, 0, 100)
	require.Error(t, err)
}

func TestWriteHelpers(t *testing.T) {
	w := httptest.NewRecorder()
	Unauthorized(w, "nope")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	var e ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	require.Equal(t, "nope", e.Detail)

	w = httptest.NewRecorder()
	WriteDecodeError(w, &ValidationError{"bad"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
