package kit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type payload struct {
	Name *string `json:"name"`
	N    int     `json:"n"`
}

func decodeBody(t *testing.T, ctype, body string, max int64) (payload, *RejectionError) {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if ctype != "" {
		r.Header.Set("Content-Type", ctype)
	}
	var p payload
	rej := DecodeJSON(httptest.NewRecorder(), r, max, &p)
	return p, rej
}

func TestDecodeJSON_OK(t *testing.T) {
	p, rej := decodeBody(t, "application/json; charset=utf-8", `{"name":"a","n":3,"extra":true}`, 1024)
	require.Nil(t, rej)
	require.NotNil(t, p.Name)
	require.Equal(t, "a", *p.Name)
	require.Equal(t, 3, p.N)

	_, rej = decodeBody(t, "application/problem+json", `{"n":1}`, 1024)
	require.Nil(t, rej)
}

func TestDecodeJSON_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		ctype  string
		body   string
		max    int64
		status int
		kind   string
	}{
		{"no content type", "", `{}`, 1024, http.StatusUnsupportedMediaType, RejectMissingJSONCType},
		{"bad content type", "text/json", `{}`, 1024, http.StatusUnsupportedMediaType, RejectMissingJSONCType},
		{"syntax", "application/json", `{"n":1,}`, 1024, http.StatusBadRequest, RejectJSONSyntax},
		{"empty", "application/json", ``, 1024, http.StatusBadRequest, RejectJSONSyntax},
		{"truncated", "application/json", `{"n":`, 1024, http.StatusBadRequest, RejectJSONSyntax},
		{"trailing", "application/json", `{} []`, 1024, http.StatusBadRequest, RejectJSONSyntax},
		{"type mismatch", "application/json", `{"n":"x"}`, 1024, http.StatusUnprocessableEntity, RejectJSONData},
		{"too large", "application/json", `{"name":"` + strings.Repeat("x", 64) + `"}`, 16, http.StatusRequestEntityTooLarge, RejectBytes},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, rej := decodeBody(t, tc.ctype, tc.body, tc.max)
			require.NotNil(t, rej)
			require.Equal(t, tc.status, rej.Status)
			require.Equal(t, tc.kind, rej.Kind)
			require.NotEmpty(t, rej.Message)
		})
	}
}

func TestWriteRejection(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/item", nil)

	WriteRejection(rec, r, QueryRejection("missing field `%s`", "name"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t,
		`{"error":"FailedToDeserializeQueryString","message":"Failed to deserialize query string: missing field `+"`name`"+`"}`,
		rec.Body.String())
}
