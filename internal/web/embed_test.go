package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesParse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{"page", "status", "upload", "questions"} {
		assert.NotNil(t, tmpl.Lookup(name), "missing template %s", name)
	}
}

func TestStaticHandler(t *testing.T) {
	h, err := StaticHandler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data-copy")
}

func TestFormatMegabytes(t *testing.T) {
	assert.Equal(t, "1.4", FormatMegabytes(1.4))
	assert.Equal(t, "2", FormatMegabytes(2))
	assert.Equal(t, "0.25", FormatMegabytes(0.25))
}
