package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/bullscan/internal/contracts"
	"github.com/wonny/bullscan/pkg/logger"
)

const maxListLimit = 100

// ReportHandler serves persisted scan reports
// ⭐ SSOT: 스캔 결과 API 핸들러는 이 구조체에서만
type ReportHandler struct {
	store  contracts.ReportStore
	logger *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(store contracts.ReportStore, log *logger.Logger) *ReportHandler {
	return &ReportHandler{store: store, logger: log}
}

// Latest returns the most recent report
// GET /api/reports/latest
func (h *ReportHandler) Latest(w http.ResponseWriter, r *http.Request) {
	report, err := h.store.Latest(r.Context())
	if err != nil {
		h.fail(w, err, "latest")
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// List returns recent reports, newest first
// GET /api/reports?limit=20
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > maxListLimit {
			n = maxListLimit
		}
		limit = n
	}

	reports, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.fail(w, err, "list")
		return
	}
	if reports == nil {
		reports = []*contracts.RankedReport{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(reports),
		"reports": reports,
	})
}

// Get returns one report
// GET /api/reports/{run_id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["run_id"]

	report, err := h.store.Get(r.Context(), runID)
	if err != nil {
		h.fail(w, err, runID)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) fail(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, contracts.ErrReportNotFound) {
		respondError(w, http.StatusNotFound, "report not found")
		return
	}
	h.logger.WithError(err).WithField("report", what).Error("Failed to load report")
	respondError(w, http.StatusInternalServerError, "failed to load report")
}
