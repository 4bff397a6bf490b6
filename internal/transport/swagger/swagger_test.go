package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentPath = "../../../api/openapi.yml"

func TestLoadSpec(t *testing.T) {
	doc, err := LoadSpec(context.Background(), documentPath)
	require.NoError(t, err)

	assert.Equal(t, "Vesta Ledger API", doc.Info.Title)
	for _, path := range []string{"/loans/{id}/payments", "/savings/{id}/contributions", "/recurring-expenses/{id}/process"} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
}

func TestLoadSpecMissingFile(t *testing.T) {
	_, err := LoadSpec(context.Background(), "does-not-exist.yml")
	assert.Error(t, err)
}

func TestSpecHandler(t *testing.T) {
	doc, err := LoadSpec(context.Background(), documentPath)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	SpecHandler(doc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `"openapi":"3.0.3"`)
}
