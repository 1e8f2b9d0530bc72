package rank

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"rank-api/feature/rank/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupApp(t *testing.T, repo Repository) *fiber.App {
	t.Helper()
	app := fiber.New()
	feature := NewFeature(NewService(repo, zap.NewNop(), nil, 0))
	require.NoError(t, feature.Load(app))
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestHandler_Lifecycle(t *testing.T) {
	app := setupApp(t, NewMemoryRepository())

	status, body := doRequest(t, app, "POST", "/projects/p1/items", `{"itemId":"i1","min":1,"max":5}`)
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var created models.Rank
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "p1i1", created.ID)
	assert.Equal(t, "p1", created.ProjectID)

	status, body = doRequest(t, app, "POST", "/projects/p1/items/i1/rank", `{"score":4}`)
	require.Equal(t, fiber.StatusOK, status, string(body))
	var ranked models.Rank
	require.NoError(t, json.Unmarshal(body, &ranked))
	assert.Equal(t, int64(1), ranked.Total)
	assert.Equal(t, 4.0, ranked.Average)

	status, body = doRequest(t, app, "GET", "/projects/p1/items/i1", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"total":1`)
	assert.Contains(t, string(body), `"deletedAt":null`)

	status, body = doRequest(t, app, "GET", "/projects/p1/items", "")
	require.Equal(t, fiber.StatusOK, status)
	var list []models.Rank
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)

	status, _ = doRequest(t, app, "DELETE", "/projects/p1/items/i1", "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = doRequest(t, app, "GET", "/projects/p1/items/i1", "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = doRequest(t, app, "GET", "/projects/p1/items", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))
}

func TestHandler_ErrorStatuses(t *testing.T) {
	app := setupApp(t, NewMemoryRepository())
	status, _ := doRequest(t, app, "POST", "/projects/p1/items", `{"itemId":"i1","min":0,"max":100}`)
	require.Equal(t, fiber.StatusCreated, status)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"duplicate item", "POST", "/projects/p1/items", `{"itemId":"i1","min":0,"max":100}`, fiber.StatusConflict},
		{"malformed body", "POST", "/projects/p1/items", `{"itemId":`, fiber.StatusBadRequest},
		{"missing bounds", "POST", "/projects/p1/items", `{"itemId":"i2"}`, fiber.StatusBadRequest},
		{"score above max", "POST", "/projects/p1/items/i1/rank", `{"score":101}`, fiber.StatusBadRequest},
		{"score missing", "POST", "/projects/p1/items/i1/rank", `{}`, fiber.StatusBadRequest},
		{"rank unknown item", "POST", "/projects/p1/items/nope/rank", `{"score":1}`, fiber.StatusNotFound},
		{"get unknown item", "GET", "/projects/p1/items/nope", "", fiber.StatusNotFound},
		{"delete unknown item", "DELETE", "/projects/p1/items/nope", "", fiber.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, status, string(body))
			assert.Contains(t, string(body), `"error"`)
		})
	}
}

func TestHandler_InternalErrorIsMasked(t *testing.T) {
	app := setupApp(t, failingRepository{err: errors.New("firestore: deadline exceeded")})

	status, body := doRequest(t, app, "GET", "/projects/p1/items/i1", "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error":"internal server error"}`, string(body))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, fiber.StatusNotFound, StatusFor(models.ErrNotFound))
	assert.Equal(t, fiber.StatusConflict, StatusFor(models.ErrAlreadyExists))
	assert.Equal(t, fiber.StatusBadRequest, StatusFor(models.ErrScoreOutOfRange))
	assert.Equal(t, fiber.StatusBadRequest, StatusFor(models.ErrInvalidRequest))
	assert.Equal(t, fiber.StatusInternalServerError, StatusFor(errors.New("other")))
}

func TestFeature(t *testing.T) {
	f := NewFeature(NewService(NewMemoryRepository(), zap.NewNop(), nil, 0))
	assert.Equal(t, "rank", f.Name())
	assert.True(t, f.IsEnabled())
	assert.NotNil(t, f.Service())
}
