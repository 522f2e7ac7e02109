package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pocketbase/pocketbase/core"
)

// HandleFloorView returns the selected floor and the cached floor list.
func HandleFloorView(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "floor_view", err)
		}
		return respondView(e, "floor_view", ctrl)
	}
}

// HandleFloorSelect switches the editor to another floor. The previous
// floor's edits are kept in the session cache.
func HandleFloorSelect(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "floor_select", err)
		}
		var body struct {
			Floor string `json:"floor"`
		}
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		}
		if err := ctrl.Select(body.Floor); err != nil {
			return respondError(e, "floor_select", err)
		}
		return respondView(e, "floor_select", ctrl)
	}
}

// HandleFloorCopy copies one floor's quantities and materials onto others.
func HandleFloorCopy(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "floor_copy", err)
		}
		var body struct {
			Source  string   `json:"source"`
			Targets []string `json:"targets"`
		}
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		}
		if err := ctrl.Copy(body.Source, body.Targets); err != nil {
			return respondError(e, "floor_copy", err)
		}
		return respondView(e, "floor_copy", ctrl)
	}
}

// HandleEstimationSave persists every floor of the session and reloads it.
func HandleEstimationSave(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "estimation_save", err)
		}
		if err := ctrl.Save(e.Request.Context()); err != nil {
			return respondError(e, "estimation_save", err)
		}
		return respondView(e, "estimation_save", ctrl)
	}
}

// HandleEstimationRefresh discards unsaved edits and reloads from storage.
func HandleEstimationRefresh(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, id, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "estimation_refresh", err)
		}
		if err := ctrl.Refresh(e.Request.Context(), id); err != nil {
			return respondError(e, "estimation_refresh", err)
		}
		return respondView(e, "estimation_refresh", ctrl)
	}
}

// HandleEstimationClose drops the editor session without saving.
func HandleEstimationClose(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if id == "" {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "missing estimation ID"})
		}
		sessions.Drop(id)
		return e.NoContent(http.StatusNoContent)
	}
}
