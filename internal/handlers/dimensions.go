package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/aOelschlager/islandora-dimensions/internal/auth"
	"github.com/aOelschlager/islandora-dimensions/internal/models"
	"github.com/google/uuid"
)

type updateRequest struct {
	NodeID string `json:"node_id"`
}

// HandleUpdateDimensions is the action entry point. The repository's event
// system POSTs a node id with the acting user's bearer token; the handler
// checks update access with the repository and runs the dimension update.
func (h *Handler) HandleUpdateDimensions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token, err := auth.FromRequest(r)
	if err != nil {
		h.writeError(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		return
	}

	if h.jwtSecret != "" {
		principal, err := auth.Verify(token, h.jwtSecret)
		if err != nil {
			h.writeError(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}
		slog.Info("Dimension update requested", "user", principal.Name, "uid", principal.UID)
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.NodeID == "" {
		h.writeError(w, "Missing node_id", http.StatusBadRequest)
		return
	}

	allowed, err := h.dimensionsService.CanUpdate(r.Context(), req.NodeID, token)
	if err != nil {
		h.writeError(w, "Access check failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if !allowed {
		h.writeError(w, "Forbidden: no update access to node "+req.NodeID, http.StatusForbidden)
		return
	}

	run := &models.Run{
		ID:        uuid.NewString(),
		NodeID:    req.NodeID,
		Status:    models.StatusRunning,
		CreatedAt: time.Now(),
	}
	h.runStore.Set(run.ID, run)

	results, err := h.dimensionsService.UpdateNodeDimensions(r.Context(), req.NodeID, token)
	run.Results = results
	if err != nil {
		run.Status = models.StatusFailed
		run.Error = err.Error()
		h.runStore.Set(run.ID, run)
		h.writeError(w, "Dimension update failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	run.Status = models.StatusComplete
	h.runStore.Set(run.ID, run)
	slog.Info("Dimension update complete", "run", run.ID, "node", req.NodeID, "media_processed", len(results))
	w.WriteHeader(http.StatusNoContent)
}
