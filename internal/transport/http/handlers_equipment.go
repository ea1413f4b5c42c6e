package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	equipmentmodels "trafficwatch/internal/equipment/models"
	violationmodels "trafficwatch/internal/violation/models"
	dErrors "trafficwatch/pkg/domain-errors"
	"trafficwatch/pkg/platform/httputil"
	"trafficwatch/pkg/requestcontext"
)

// EquipmentService is the equipment directory as seen from the HTTP layer.
type EquipmentService interface {
	Create(ctx context.Context, eq equipmentmodels.Equipment) (equipmentmodels.Equipment, error)
	List(ctx context.Context) ([]equipmentmodels.Equipment, error)
	GetBySerial(ctx context.Context, serial string) (equipmentmodels.Equipment, error)
}

// EquipmentHandler wires the equipment endpoints to the directory service.
type EquipmentHandler struct {
	service    EquipmentService
	violations ViolationService
	logger     *slog.Logger
}

func NewEquipmentHandler(service EquipmentService, violations ViolationService, logger *slog.Logger) *EquipmentHandler {
	return &EquipmentHandler{service: service, violations: violations, logger: logger}
}

// Register mounts the equipment endpoints on the router.
func (h *EquipmentHandler) Register(r chi.Router) {
	r.Post("/equipments", h.HandleCreate)
	r.Get("/equipments", h.HandleList)
	r.Get("/equipments/{serial}", h.HandleGetBySerial)
	r.Get("/equipments/{serial}/violations", h.HandleListViolations)
}

type equipmentRequest struct {
	Serial    string  `json:"serial"`
	Model     string  `json:"model"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Active    *bool   `json:"active"`
}

func (req equipmentRequest) toDomain() equipmentmodels.Equipment {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return equipmentmodels.Equipment{
		Serial:    req.Serial,
		Model:     req.Model,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Active:    active,
	}
}

// HandleCreate handles POST /equipments.
func (h *EquipmentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req equipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.service.Create(ctx, req.toDomain())
	if err != nil {
		h.logger.ErrorContext(ctx, "equipment creation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Location", "/equipments/"+created.Serial)
	httputil.WriteJSON(w, http.StatusCreated, created)
}

// HandleList handles GET /equipments.
func (h *EquipmentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if all == nil {
		all = []equipmentmodels.Equipment{}
	}
	httputil.WriteJSON(w, http.StatusOK, all)
}

// HandleGetBySerial handles GET /equipments/{serial}.
func (h *EquipmentHandler) HandleGetBySerial(w http.ResponseWriter, r *http.Request) {
	eq, err := h.service.GetBySerial(r.Context(), chi.URLParam(r, "serial"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, eq)
}

// HandleListViolations handles GET /equipments/{serial}/violations with the
// optional from/to query parameters.
func (h *EquipmentHandler) HandleListViolations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	serial := chi.URLParam(r, "serial")

	from, err := parseDateParam(r.URL.Query().Get("from"), false)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid from date"))
		return
	}
	to, err := parseDateParam(r.URL.Query().Get("to"), true)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid to date"))
		return
	}

	violations, err := h.violations.ListByEquipment(ctx, serial, from, to)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if violations == nil {
		violations = []violationmodels.Violation{}
	}
	httputil.WriteJSON(w, http.StatusOK, violations)
}

// parseDateParam accepts RFC 3339 timestamps or plain dates. An empty value
// means the bound is absent. A plain date used as the upper bound covers the
// whole day, so to=2026-03-05 includes violations through 23:59:59 that day.
func parseDateParam(raw string, upperBound bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	if upperBound {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}
