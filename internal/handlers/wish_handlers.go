package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
	"wishTracker/internal/filter"
	"wishTracker/internal/handlers/dto"
	"wishTracker/internal/logger"
	"wishTracker/internal/models/wish"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	serviceName = "wish-tracker"

	maxBodyBytes = 1 << 20
)

type WishHandler struct {
	WishService Service
	validator   *requestValidator
}

func NewWishHandler(wishService Service) *WishHandler {
	return &WishHandler{
		WishService: wishService,
		validator:   newRequestValidator(),
	}
}

// Routes mounts every wish endpoint on a fresh router.
func (h *WishHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", h.HealthCheck)
	r.Get("/categories", h.GetCategories)

	r.Route("/wishes", func(r chi.Router) {
		r.Get("/", h.GetFilteredWishes) // GET /wishes?status=&search=&category=
		r.Post("/", h.PostWish)         // POST /wishes
		r.Get("/all", h.GetAllWishes)   // GET /wishes/all

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetWishByID)       // GET /wishes/{id}
			r.Delete("/", h.DeleteWish)     // DELETE /wishes/{id}
			r.Put("/status", h.SetStatus)   // PUT /wishes/{id}/status
			r.Post("/achieve", h.Achieve)   // POST /wishes/{id}/achieve
			r.Post("/remarks", h.AddRemark) // POST /wishes/{id}/remarks
		})
	})

	return r
}

func (h *WishHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.WishService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: health check failed", err)
		responseWithPayload(w, http.StatusServiceUnavailable,
			toPayload("service", serviceName),
			toPayload("status", "unavailable"))
		return
	}
	responseWithPayload(w, http.StatusOK,
		toPayload("service", serviceName),
		toPayload("status", "ok"))
}

func (h *WishHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")
	responseWithJSON(w, http.StatusOK, h.WishService.Categories())
}

func (h *WishHandler) GetFilteredWishes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	query := r.URL.Query()
	criteria := filter.Criteria{
		Status:   wish.Status(query.Get("status")),
		Search:   query.Get("search"),
		Category: query.Get("category"),
	}

	wishes, err := h.WishService.FilterWishes(r.Context(), criteria)
	if err != nil {
		handleServiceError(w, r, err, "filter_wishes")
		return
	}

	logger.Info("HTTP_OUT: Wishes filtered",
		zap.Int("count", len(wishes)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromWishList(wishes))
}

func (h *WishHandler) GetAllWishes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	wishes, err := h.WishService.ListWishes(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "list_wishes")
		return
	}

	logger.Info("HTTP_OUT: Wishes listed",
		zap.Int("count", len(wishes)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromWishList(wishes))
}

func (h *WishHandler) PostWish(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateWishRequest
	if !h.decodeRequest(w, r, &request) {
		return
	}

	created, err := h.WishService.AddWish(r.Context(), request.Title, request.Category, request.Status)
	if err != nil {
		handleServiceError(w, r, err, "create_wish")
		return
	}

	logger.Info("HTTP_OUT: Wish created",
		zap.String("wish_id", created.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, dto.FromWish(created))
}

func (h *WishHandler) GetWishByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	found, err := h.WishService.GetWish(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "get_wish")
		return
	}

	logger.Info("HTTP_OUT: Wish fetched",
		zap.String("wish_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromWish(found))
}

func (h *WishHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateStatusRequest
	if !h.decodeRequest(w, r, &request) {
		return
	}

	updated, err := h.WishService.SetStatus(r.Context(), id, request.Status)
	if err != nil {
		handleServiceError(w, r, err, "set_status")
		return
	}

	logger.Info("HTTP_OUT: Status updated",
		zap.String("wish_id", id.String()),
		zap.String("status", string(updated.Status)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromWish(updated))
}

func (h *WishHandler) Achieve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	updated, err := h.WishService.MoveToAchieved(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err, "achieve_wish")
		return
	}

	logger.Info("HTTP_OUT: Wish achieved",
		zap.String("wish_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromWish(updated))
}

func (h *WishHandler) DeleteWish(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.WishService.DeleteWish(r.Context(), id); err != nil {
		handleServiceError(w, r, err, "delete_wish")
		return
	}

	logger.Info("HTTP_OUT: Wish deleted",
		zap.String("wish_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

func (h *WishHandler) AddRemark(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var request dto.AddRemarkRequest
	if !h.decodeRequest(w, r, &request) {
		return
	}

	remark, err := h.WishService.AddRemark(r.Context(), id, request.Content)
	if err != nil {
		handleServiceError(w, r, err, "add_remark")
		return
	}

	logger.Info("HTTP_OUT: Remark added",
		zap.String("wish_id", id.String()),
		zap.String("remark_id", remark.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, dto.FromRemark(*remark))
}

// decodeRequest reads and validates a JSON body, writing the error response itself.
func (h *WishHandler) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: wrong content type",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}

	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		logger.Warn("HTTP: failed to read JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			responseWithError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if dec.More() {
		logger.Warn("HTTP: trailing data after JSON body",
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "invalid request body: unexpected data after JSON object")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		logger.Warn("HTTP: validation failed",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		logger.Warn("HTTP: failed to parse id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "invalid id: "+err.Error())
		return uuid.Nil, false
	}

	if id == uuid.Nil {
		logger.Warn("HTTP: nil id",
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "id must not be empty")
		return uuid.Nil, false
	}
	return id, true
}
