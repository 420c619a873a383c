package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sagarc03/filegate"
)

// FileField is the multipart form field carrying the uploaded file.
const FileField = "file"

// multipartMemory is how much of an upload ParseMultipartForm keeps in memory
// before spooling to a temp file.
const multipartMemory = 8 << 20

type Service interface {
	List(ctx context.Context, q filegate.ListQuery) (filegate.ListPage, error)
	Metadata(ctx context.Context, key string) (filegate.ObjectMeta, error)
	Get(ctx context.Context, key string) (filegate.ObjectMeta, io.ReadCloser, error)
	Put(ctx context.Context, obj filegate.PutObject) (filegate.PutResult, error)
	Delete(ctx context.Context, key string) error
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	// Bounds limits the page_size accepted by GET /files.
	Bounds filegate.PageSizeBounds
	// MaxUploadSize caps the request body of uploads in bytes. Zero means no limit.
	MaxUploadSize int64
	CORS          CORSConfig
	// Logger receives request logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Handler provides HTTP handlers for the file gateway.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.Bounds == (filegate.PageSizeBounds{}) {
		cfg.Bounds = filegate.DefaultPageSizeBounds()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Handler{
		config:  cfg,
		service: service,
	}
}

// Router returns an http.Handler serving the /files routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(h.config.Logger))
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/files", h.handleList)
	r.Put("/files/*", h.handlePut)
	r.Head("/files/*", h.handleHead)
	r.Get("/files/*", h.handleGet)
	r.Delete("/files/*", h.handleDelete)

	return r
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	params, err := bindListParams(r)
	if err != nil {
		HandleError(w, err)
		return
	}

	query, err := filegate.NewListQuery(params, h.config.Bounds)
	if err != nil {
		HandleError(w, err)
		return
	}

	page, err := h.service.List(r.Context(), query)
	if err != nil {
		HandleError(w, err)
		return
	}

	resp := GetFilesResponse{Files: page.Files}
	if resp.Files == nil {
		resp.Files = []filegate.FileMetadata{}
	}
	if page.NextPageToken != "" {
		token := page.NextPageToken
		resp.NextPageToken = &token
	}

	_ = WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	key := objectKey(r)
	if !filegate.IsValidKey(key) {
		HandleError(w, invalidKeyError(key))
		return
	}

	if h.config.MaxUploadSize > 0 {
		if r.ContentLength > h.config.MaxUploadSize {
			HandleError(w, ErrPayloadTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(w, ErrPayloadTooLarge)
			return
		}
		HandleError(w, filegate.NewValidationError(
			filegate.KindInvalidValue,
			[]string{"body"},
			"Invalid multipart form",
			nil,
		))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("failed to remove multipart temp files", "error", err)
		}
	}()

	file, header, err := r.FormFile(FileField)
	if err != nil {
		HandleError(w, filegate.NewValidationError(
			filegate.KindMissing,
			[]string{"body", FileField},
			"Field required",
			nil,
		))
		return
	}
	defer func() { _ = file.Close() }()

	res, err := h.service.Put(r.Context(), filegate.PutObject{
		Key:         key,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		HandleError(w, err)
		return
	}

	status := http.StatusOK
	message := "Existing file updated at path: /" + key
	if res.Created {
		status = http.StatusCreated
		message = "New file uploaded at path: /" + key
	}

	_ = WriteJSON(w, status, PutFileResponse{FilePath: key, Message: message})
}

func (h *Handler) handleHead(w http.ResponseWriter, r *http.Request) {
	meta, err := h.service.Metadata(r.Context(), objectKey(r))
	if err != nil {
		HandleError(w, err)
		return
	}

	setObjectHeaders(w, meta)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	meta, body, err := h.service.Get(r.Context(), objectKey(r))
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = body.Close() }()

	setObjectHeaders(w, meta)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("failed to stream object", "key", meta.Key, "error", err)
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), objectKey(r)); err != nil {
		HandleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// objectKey returns the decoded key following /files/.
func objectKey(r *http.Request) string {
	return strings.TrimPrefix(r.URL.Path, "/files/")
}

func setObjectHeaders(w http.ResponseWriter, meta filegate.ObjectMeta) {
	contentType := meta.ContentType
	if contentType == "" {
		contentType = filegate.DefaultContentType
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(meta.ContentLength, 10))
	if !meta.LastModified.IsZero() {
		w.Header().Set("Last-Modified", meta.LastModified.UTC().Format(http.TimeFormat))
	}
	if meta.ETag != "" {
		w.Header().Set("ETag", quoteETag(meta.ETag))
	}
}

func quoteETag(etag string) string {
	if strings.HasPrefix(etag, `"`) || strings.HasPrefix(etag, `W/"`) {
		return etag
	}
	return `"` + etag + `"`
}

func invalidKeyError(key string) error {
	return filegate.NewValidationError(
		filegate.KindInvalidValue,
		[]string{"path", "file_path"},
		"Invalid file path",
		key,
	)
}
