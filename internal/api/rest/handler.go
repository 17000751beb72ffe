package rest

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	app "leaf-counter/internal/application"
	"leaf-counter/internal/domain/entity"
)

// formOverhead запас на заголовки частей и текстовые поля формы
const formOverhead = 64 << 10

// Handler HTTP-обработчики подсчёта объектов
type Handler struct {
	analysis      *app.AnalysisService
	confidence    float64
	format        entity.OutputFormat
	maxUploadSize int64
	logger        *zap.Logger
}

// NewHandler создаёт обработчики с порогом и форматом по умолчанию
func NewHandler(analysis *app.AnalysisService, confidence float64, format entity.OutputFormat, maxUploadSize int64, logger *zap.Logger) *Handler {
	return &Handler{
		analysis:      analysis,
		confidence:    confidence,
		format:        format,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// NewRouter собирает gin с обработчиками и логированием запросов
func NewRouter(h *Handler, mode string) *gin.Engine {
	gin.SetMode(mode)

	r := gin.New()
	if h.maxUploadSize > 0 {
		r.MaxMultipartMemory = h.maxUploadSize
	}
	r.Use(gin.Recovery())
	r.Use(Logger(h.logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/count", h.Count)
	}

	return r
}

// Count принимает изображение в поле "image" и возвращает число объектов, площадь и картинку.
// С параметром render=1 в ответе сама картинка, итоги в заголовках X-Object-*.
func (h *Handler) Count(c *gin.Context) {
	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+formOverhead)
	}

	file, err := c.FormFile("image")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.tooLarge(c)
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "image file is required", Error: err.Error()})
		return
	}
	if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
		h.tooLarge(c)
		return
	}

	confidence := h.confidence
	if raw := c.PostForm("confidence"); raw != "" {
		confidence, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "confidence must be a number", Error: err.Error()})
			return
		}
	}

	format := h.format
	if raw := c.PostForm("format"); raw != "" {
		format, err = entity.ParseOutputFormat(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "unsupported format", Error: err.Error()})
			return
		}
	}

	data, err := readUpload(file)
	if err != nil {
		h.logger.Error("read upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "failed to read upload", Error: err.Error()})
		return
	}

	out, err := h.analysis.AnalyzeBytes(c.Request.Context(), data, confidence, format)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("analyze upload", zap.String("filename", file.Filename), zap.Error(err))
		}
		c.JSON(status, ErrorResponse{Message: "failed to analyze image", Error: err.Error()})
		return
	}

	if c.Query("render") == "1" {
		c.Header("X-Object-Count", strconv.Itoa(out.Result.Count))
		c.Header("X-Object-Pixels", strconv.Itoa(out.Result.TotalPixels))
		c.Header("X-Image-Size", out.Result.Size())
		c.Data(http.StatusOK, "image/"+string(out.Format), out.Encoded)
		return
	}

	c.JSON(http.StatusOK, CountResponse{
		Success: true,
		Message: "ok",
		Data: &CountData{
			Count:       out.Result.Count,
			TotalPixels: out.Result.TotalPixels,
			UnionPixels: out.Result.UnionPixels,
			Width:       out.Result.Width,
			Height:      out.Result.Height,
			Format:      string(out.Format),
			Image:       base64.StdEncoding.EncodeToString(out.Encoded),
		},
	})
}

func (h *Handler) tooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
		Message: fmt.Sprintf("file exceeds %d bytes", h.maxUploadSize),
	})
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// statusFor переводит ошибку анализа в HTTP-статус
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidInput), errors.Is(err, entity.ErrResourceUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, app.ErrQueueFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
