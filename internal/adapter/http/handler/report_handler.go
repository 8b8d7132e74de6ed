package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/iho/debtledger/internal/usecase"
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	Generate(ctx context.Context, userID string, debtorID int64, extension string) (*usecase.ReportFile, error)
}

// ReportHandler serves debtor reports as file downloads.
type ReportHandler struct {
	reportUC ReportService
	now      func() time.Time
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportUC ReportService) *ReportHandler {
	return &ReportHandler{reportUC: reportUC, now: time.Now}
}

// Download renders the report named by ?extension= as an attachment.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	debtorID, ok := pathID(w, r, "debtor_id")
	if !ok {
		return
	}

	extension := r.URL.Query().Get("extension")
	if extension == "" {
		writeMessages(w, http.StatusBadRequest, "missing get parameter: extension")
		return
	}

	file, err := h.reportUC.Generate(r.Context(), userID, debtorID, extension)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	filename := fmt.Sprintf("report_%s.%s", h.now().Format("02-01_2006"), file.Extension)

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Content)
}
