package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase/core"
)

// HandleMaterialCellEdit applies one material grid edit. An empty childId
// edits the component row itself (labour rate, remarks).
func HandleMaterialCellEdit(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "material_edit", err)
		}
		var body struct {
			ChildID string `json:"childId"`
			Field   string `json:"field"`
			Value   any    `json:"value"`
		}
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		}
		if err := ctrl.EditMaterialCell(e.Request.PathValue("rowId"), body.ChildID, body.Field, body.Value); err != nil {
			return respondError(e, "material_edit", err)
		}
		return respondView(e, "material_edit", ctrl)
	}
}

// HandleMaterialAdd adds a catalog material to a component's breakdown.
func HandleMaterialAdd(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "material_add", err)
		}
		var body struct {
			Material        string  `json:"material"`
			ConsumptionRate float64 `json:"consumptionRate"`
		}
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		}
		child, err := ctrl.AddMaterial(e.Request.PathValue("rowId"), body.Material, body.ConsumptionRate)
		if err != nil {
			return respondError(e, "material_add", err)
		}
		return e.JSON(http.StatusCreated, child)
	}
}

// HandleMaterialDelete removes a material from a component's breakdown.
func HandleMaterialDelete(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "material_delete", err)
		}
		if err := ctrl.DeleteMaterial(e.Request.PathValue("rowId"), e.Request.PathValue("childId")); err != nil {
			return respondError(e, "material_delete", err)
		}
		return respondView(e, "material_delete", ctrl)
	}
}

// HandleExpensePercent changes one indirect expense percentage.
func HandleExpensePercent(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "expense_percent", err)
		}
		index, err := strconv.Atoi(e.Request.PathValue("index"))
		if err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "invalid expense index"})
		}
		var body struct {
			Percent *float64 `json:"allocationPercent"`
		}
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil || body.Percent == nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "allocationPercent is required"})
		}
		exp, err := ctrl.EditPercent(index, *body.Percent)
		if err != nil {
			return respondError(e, "expense_percent", err)
		}
		return e.JSON(http.StatusOK, exp)
	}
}
