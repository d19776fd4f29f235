package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/zn-har/Bingo/internal/api/apierr"
	"github.com/zn-har/Bingo/internal/api/request"
	"github.com/zn-har/Bingo/internal/api/response"
	"github.com/zn-har/Bingo/internal/metrics"
	"github.com/zn-har/Bingo/internal/model"
	"github.com/zn-har/Bingo/internal/services/scan"
)

// ScanHandler handles scan endpoints
type ScanHandler struct {
	scans     scan.ControllerInterface
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(scans scan.ControllerInterface, publisher Publisher, metrics *metrics.Metrics, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{
		scans:     scans,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Submit handles POST /api/v1/scans
func (h *ScanHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.reject(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.ScannerID == "" || req.TargetID == "" || req.TaskID == 0 {
		h.reject(w, NewInvalidRequestError("scanner_id, target_id and task_id are required"))
		return
	}

	result, err := h.scans.Submit(r.Context(), scan.Submission{
		ScannerID: model.PlayerID(req.ScannerID),
		TargetID:  model.PlayerID(req.TargetID),
		TaskID:    model.TaskID(req.TaskID),
	})
	if err != nil {
		h.reject(w, err)
		return
	}

	h.metrics.ScanSubmitted(metrics.ScanAccepted)
	h.publishResult(result)

	response.JSON(w, http.StatusCreated, response.ScanResultFromModel(result))
}

// UpdateStatus handles PATCH /api/v1/scans/{id}
func (h *ScanHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		WriteError(w, NewInvalidRequestError("scan id must be an integer"))
		return
	}

	var req request.UpdateScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	record, err := h.scans.UpdateStatus(r.Context(), model.ScanID(id), model.VerificationStatus(req.Status))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ScanFromModel(record))
}

func (h *ScanHandler) reject(w http.ResponseWriter, err error) {
	h.metrics.ScanSubmitted(apierr.CodeOf(err))
	WriteError(w, err)
}

// publishResult emits the scan, any wins, and the end of the game
func (h *ScanHandler) publishResult(result *scan.Result) {
	ts := result.Scan.Timestamp

	h.publisher.Publish(model.Event{
		Type:      model.EventScanAccepted,
		Timestamp: ts,
		PlayerID:  result.Scan.ScannerID,
		Payload: model.ScanAcceptedPayload{
			Scan:           *result.Scan,
			CompletedLines: result.Progress.CompletedLines,
		},
	})

	if len(result.NewWins) > 0 {
		for _, t := range result.NewWins {
			h.metrics.WinRecorded(string(t))
		}
		h.publisher.Publish(model.Event{
			Type:      model.EventWinRecorded,
			Timestamp: ts,
			PlayerID:  result.Scan.ScannerID,
			Payload: model.WinRecordedPayload{
				PlayerName: result.Scanner.Name,
				WinTypes:   result.NewWins,
			},
		})
	}

	h.metrics.SetGameState(result.GameActive, result.WinnerCount)

	if result.GameEnded {
		h.logger.Info("winner quota reached",
			slog.Int("winner_count", result.WinnerCount),
		)
		h.publisher.Publish(model.Event{
			Type:      model.EventGameEnded,
			Timestamp: ts,
			PlayerID:  result.Scan.ScannerID,
			Payload: model.GameEndedPayload{
				WinnerCount: result.WinnerCount,
				MaxWinners:  result.MaxWinners,
			},
		})
	}
}
