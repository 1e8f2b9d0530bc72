package export

import (
	"io"
	"net/http/httptest"
	"testing"

	"rank-api/core/storage/mocks"
	rankmodels "rank-api/feature/rank/models"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "rank-exports").Return(true, nil)
	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)
	client.On("ListObjects", mock.Anything, "rank-exports", mock.Anything).
		Return(objectChan(minio.ObjectInfo{Key: "exports/p/20240501T123015.250Z.json", Size: 42}))

	app := fiber.New()
	feature := NewFeature(newTestService(stubSource{ranks: []rankmodels.Rank{{ID: "pa"}}}, client))
	require.True(t, feature.IsEnabled())
	require.NoError(t, feature.Load(app))

	resp, err := app.Test(httptest.NewRequest("POST", "/projects/p/exports", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Contains(t, string(body), `"object":"exports/p/20240501T123015.250Z.json"`)
	assert.Contains(t, string(body), `"count":1`)

	resp, err = app.Test(httptest.NewRequest("GET", "/projects/p/exports", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"size":42`)
}

func TestFeature_DisabledWithoutService(t *testing.T) {
	f := NewFeature(nil)
	assert.Equal(t, "export", f.Name())
	assert.False(t, f.IsEnabled())
}
