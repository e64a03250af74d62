package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONAndError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]int{"n": 1})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteError(rec, http.StatusNotFound, "missing")
	assert.JSONEq(t, `{"error":"missing"}`, rec.Body.String())
}

func TestReadJSON(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c"}`))
	require.NoError(t, ReadJSON(req, &dst))
	assert.Equal(t, "a@b.c", dst.Email)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.NoError(t, ReadJSON(req, &dst))
	assert.Equal(t, "a@b.c", dst.Email)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
	assert.Error(t, ReadJSON(req, &dst))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
	assert.True(t, ContainsFold("Trail Runner", "RUN"))
	assert.True(t, ContainsFold("anything", ""))
	assert.False(t, ContainsFold("Cap", "boot"))
}
