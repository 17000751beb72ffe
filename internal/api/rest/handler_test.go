package rest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	app "leaf-counter/internal/application"
	"leaf-counter/internal/domain/entity"
	"leaf-counter/internal/infrastructure/imageio"
	"leaf-counter/internal/infrastructure/vision"
)

type staticSegmenter struct {
	masks []entity.RawMask
}

func (s staticSegmenter) Segment(ctx context.Context, img *entity.Image, confidence float64) ([]entity.RawMask, error) {
	return s.masks, nil
}

func newTestRouter(masks ...entity.RawMask) http.Handler {
	return newLimitedRouter(1<<20, masks...)
}

func newLimitedRouter(maxUploadSize int64, masks ...entity.RawMask) http.Handler {
	logger := zap.NewNop()
	analysis := app.NewAnalysisService(
		staticSegmenter{masks: masks},
		vision.NewCompositor(vision.DefaultOptions(), logger),
		imageio.Codec{},
		app.AnalysisConfig{},
		logger,
	)
	return NewRouter(NewHandler(analysis, 0.25, entity.FormatPNG, maxUploadSize, logger), "test")
}

func uploadRequest(t *testing.T, target string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if data != nil {
		part, err := w.CreateFormFile("image", "leaf.png")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	data, err := imageio.EncodeBytes(entity.NewImage(w, h), entity.FormatPNG)
	require.NoError(t, err)
	return data
}

func TestCount_JSON(t *testing.T) {
	router := newTestRouter(entity.UniformRawMask(50, 50, 1), entity.UniformRawMask(100, 100, 1))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "/api/v1/count", pngBytes(t, 100, 100), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, 2, resp.Data.Count)
	require.Equal(t, 20000, resp.Data.TotalPixels)
	require.Equal(t, 10000, resp.Data.UnionPixels)
	require.Equal(t, "png", resp.Data.Format)

	img, err := base64.StdEncoding.DecodeString(resp.Data.Image)
	require.NoError(t, err)
	decoded, err := imageio.Decode(img)
	require.NoError(t, err)
	require.Equal(t, 100, decoded.Width)
}

func TestCount_Render(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	req := uploadRequest(t, "/api/v1/count?render=1", pngBytes(t, 40, 30), map[string]string{"format": "jpeg"})
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	require.Equal(t, "0", rec.Header().Get("X-Object-Count"))
	require.Equal(t, "40x30", rec.Header().Get("X-Image-Size"))
}

func TestCount_MissingFile(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, uploadRequest(t, "/api/v1/count", nil, map[string]string{"confidence": "0.3"}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCount_CorruptImage(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, uploadRequest(t, "/api/v1/count", []byte("not an image"), nil))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCount_BadConfidence(t *testing.T) {
	rec := httptest.NewRecorder()
	req := uploadRequest(t, "/api/v1/count", pngBytes(t, 4, 4), map[string]string{"confidence": "abc"})
	newTestRouter().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req = uploadRequest(t, "/api/v1/count", pngBytes(t, 4, 4), map[string]string{"confidence": "7"})
	newTestRouter().ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCount_BodyOverLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	req := uploadRequest(t, "/api/v1/count", bytes.Repeat([]byte{0xff}, 1024+formOverhead+1), nil)
	newLimitedRouter(1024).ServeHTTP(rec, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCount_FileOverLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	req := uploadRequest(t, "/api/v1/count", bytes.Repeat([]byte{0xff}, 2048), nil)
	newLimitedRouter(1024).ServeHTTP(rec, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
