package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"trafficwatch/internal/evidence"
	"trafficwatch/internal/violation/models"
	dErrors "trafficwatch/pkg/domain-errors"
	"trafficwatch/pkg/platform/httputil"
	"trafficwatch/pkg/requestcontext"
)

const (
	// maxMultipartMemory bounds in-memory multipart parsing; larger parts
	// spill to temporary files.
	maxMultipartMemory = 4 << 20

	// maxRequestBytes caps the whole multipart body: the image limit plus
	// headroom for the JSON part and multipart framing.
	maxRequestBytes = evidence.MaxImageSize + 64<<10
)

// ViolationService is the violation workflow as seen from the HTTP layer.
type ViolationService interface {
	Create(ctx context.Context, v models.Violation) (models.Violation, error)
	FindByID(ctx context.Context, id int64) (models.Violation, error)
	ListByEquipment(ctx context.Context, serial string, from, to *time.Time) ([]models.Violation, error)
}

// EvidenceStore validates and uploads the violation photo.
type EvidenceStore interface {
	StoreImage(ctx context.Context, img evidence.Image) (string, error)
}

// ViolationHandler wires the violation endpoints to the workflow service.
type ViolationHandler struct {
	service  ViolationService
	evidence EvidenceStore
	logger   *slog.Logger
}

func NewViolationHandler(service ViolationService, evidenceStore EvidenceStore, logger *slog.Logger) *ViolationHandler {
	return &ViolationHandler{service: service, evidence: evidenceStore, logger: logger}
}

// Register mounts the violation endpoints on the router.
func (h *ViolationHandler) Register(r chi.Router) {
	r.Post("/violations", h.HandleCreate)
	r.Get("/violations/{id}", h.HandleFindByID)
}

type violationRequest struct {
	EquipmentSerial string    `json:"equipmentSerial"`
	OccurredAt      time.Time `json:"occurrenceDateUtc"`
	MeasuredSpeed   *float64  `json:"measuredSpeed"`
	ConsideredSpeed *float64  `json:"consideredSpeed"`
	RegulatedSpeed  *float64  `json:"regulatedSpeed"`
	Type            string    `json:"type"`
}

// validate enforces the speed-triple rule for VELOCITY violations before any
// equipment check or upload happens.
func (req violationRequest) validate() error {
	if req.EquipmentSerial == "" {
		return dErrors.New(dErrors.CodeUnprocessable, "equipmentSerial is required")
	}
	if req.OccurredAt.IsZero() {
		return dErrors.New(dErrors.CodeUnprocessable, "occurrenceDateUtc is required")
	}
	if req.Type == models.TypeVelocity {
		if req.MeasuredSpeed == nil || req.ConsideredSpeed == nil || req.RegulatedSpeed == nil {
			return dErrors.New(dErrors.CodeUnprocessable,
				"For VELOCITY type, measuredSpeed, consideredSpeed, and regulatedSpeed are required.")
		}
	}
	return nil
}

// HandleCreate handles POST /violations. The request is multipart: a
// "violation" JSON part and a "picture" file part.
func (h *ViolationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	// Bound the whole body so oversized uploads fail during parsing instead
	// of being spooled to disk.
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnprocessable, "Picture size exceeds 1MB"))
			return
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request must be multipart with violation and picture parts"))
		return
	}

	req, err := decodeViolationPart(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		h.logger.WarnContext(ctx, "violation payload rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	img, err := readPicturePart(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	pictureURL, err := h.evidence.StoreImage(ctx, img)
	if err != nil {
		h.logger.ErrorContext(ctx, "evidence upload failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	created, err := h.service.Create(ctx, models.Violation{
		EquipmentSerial: req.EquipmentSerial,
		OccurredAt:      req.OccurredAt.UTC(),
		MeasuredSpeed:   req.MeasuredSpeed,
		ConsideredSpeed: req.ConsideredSpeed,
		RegulatedSpeed:  req.RegulatedSpeed,
		Picture:         pictureURL,
		Type:            req.Type,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Location", "/violations/"+strconv.FormatInt(created.ID, 10))
	httputil.WriteJSON(w, http.StatusCreated, created)
}

// HandleFindByID handles GET /violations/{id}.
func (h *ViolationHandler) HandleFindByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "violation id must be numeric"))
		return
	}

	v, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v)
}

// decodeViolationPart reads the "violation" JSON part, accepting it either as
// a form field or as an attached file.
func decodeViolationPart(r *http.Request) (violationRequest, error) {
	var req violationRequest

	raw := r.FormValue("violation")
	if raw == "" {
		file, _, err := r.FormFile("violation")
		if err != nil {
			return req, dErrors.New(dErrors.CodeBadRequest, "violation part is required")
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return req, dErrors.New(dErrors.CodeBadRequest, "violation part is unreadable")
		}
		raw = string(data)
	}

	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return req, dErrors.New(dErrors.CodeBadRequest, "violation part is not valid JSON")
	}
	return req, nil
}

// readPicturePart reads the "picture" file part into an evidence image.
func readPicturePart(r *http.Request) (evidence.Image, error) {
	file, header, err := r.FormFile("picture")
	if err != nil {
		return evidence.Image{}, dErrors.New(dErrors.CodeBadRequest, "picture part is required")
	}
	defer file.Close()

	// Reject oversized parts from the header before buffering them.
	if header.Size > evidence.MaxImageSize {
		return evidence.Image{}, dErrors.New(dErrors.CodeUnprocessable, "Picture size exceeds 1MB")
	}

	data, err := io.ReadAll(io.LimitReader(file, evidence.MaxImageSize+1))
	if err != nil {
		return evidence.Image{}, dErrors.New(dErrors.CodeBadRequest, "picture part is unreadable")
	}
	if int64(len(data)) > evidence.MaxImageSize {
		return evidence.Image{}, dErrors.New(dErrors.CodeUnprocessable, "Picture size exceeds 1MB")
	}

	return evidence.Image{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        data,
	}, nil
}
