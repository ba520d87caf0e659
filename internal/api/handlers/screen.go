package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mhzhou/ashare-screener/internal/contracts"
	"github.com/mhzhou/ashare-screener/internal/screening"
	"github.com/mhzhou/ashare-screener/pkg/logger"
)

// ScreenHandler handles universe and screening API endpoints.
type ScreenHandler struct {
	runner   *screening.Runner
	logger   *logger.Logger
	upgrader websocket.Upgrader
}

// NewScreenHandler creates a new screening handler.
func NewScreenHandler(runner *screening.Runner, log *logger.Logger) *ScreenHandler {
	return &ScreenHandler{
		runner: runner,
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The UI is served from another origin in development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// screenRequest is the POST /screen body.
type screenRequest struct {
	Mode  string `json:"mode"`
	Board string `json:"board,omitempty"`
}

// GetUniverse returns the qualified candidate table.
// GET /api/v1/universe
func (h *ScreenHandler) GetUniverse(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.runner.Universe(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to build qualified universe")
		respondError(w, http.StatusBadGateway, "failed to build qualified universe")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(candidates),
		"data":    candidates,
	})
}

// Screen runs a synchronous screening pass.
// POST /api/v1/screen
func (h *ScreenHandler) Screen(w http.ResponseWriter, r *http.Request) {
	var req screenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode, err := contracts.ParseMode(req.Mode)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.runner.Screen(r.Context(), mode, req.Board, nil)
	if err != nil {
		h.logger.WithError(err).Error("Screening run failed")
		respondError(w, http.StatusBadGateway, "screening run failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

// Export streams the screening result as CSV.
// GET /api/v1/screen/export?mode=all&board=主板
func (h *ScreenHandler) Export(w http.ResponseWriter, r *http.Request) {
	mode, err := contracts.ParseMode(queryDefault(r, "mode", "all"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	board := r.URL.Query().Get("board")

	result, err := h.runner.Screen(r.Context(), mode, board, nil)
	if err != nil {
		h.logger.WithError(err).Error("Screening run failed")
		respondError(w, http.StatusBadGateway, "screening run failed")
		return
	}

	filename := screening.ExportFilename(result)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := screening.WriteCSV(w, result); err != nil {
		h.logger.WithError(err).Error("CSV export failed")
	}
}

// wsFrame is one websocket message: either a progress update or the final
// result.
type wsFrame struct {
	Type     string               `json:"type"` // progress | result | error
	Progress *contracts.Progress  `json:"progress,omitempty"`
	Result   *contracts.RunResult `json:"result,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// ScreenWS runs a screening pass, pushing per-batch progress frames and a
// final result frame over a websocket.
// GET /api/v1/screen/ws?mode=all&board=主板
func (h *ScreenHandler) ScreenWS(w http.ResponseWriter, r *http.Request) {
	mode, err := contracts.ParseMode(queryDefault(r, "mode", "all"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	board := r.URL.Query().Get("board")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	onProgress := func(p contracts.Progress) {
		frame := wsFrame{Type: "progress", Progress: &p}
		if err := conn.WriteJSON(frame); err != nil {
			h.logger.WithError(err).Debug("Progress frame dropped")
		}
	}

	result, err := h.runner.Screen(r.Context(), mode, board, onProgress)
	if err != nil {
		_ = conn.WriteJSON(wsFrame{Type: "error", Error: err.Error()})
		return
	}

	if err := conn.WriteJSON(wsFrame{Type: "result", Result: result}); err != nil {
		h.logger.WithError(err).Warn("Result frame dropped")
	}
}

func queryDefault(r *http.Request, key, fallback string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return fallback
}
