package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"floorestimate/services"
)

type cellEdit struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// HandleDetailCellEdit applies one quantity grid cell edit.
func HandleDetailCellEdit(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "detail_edit", err)
		}
		var body cellEdit
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		}
		groupID, rowID := e.Request.PathValue("groupId"), e.Request.PathValue("rowId")
		if err := ctrl.EditDetailCell(groupID, rowID, body.Field, body.Value); err != nil {
			return respondError(e, "detail_edit", err)
		}
		return respondView(e, "detail_edit", ctrl)
	}
}

// HandleDetailRowAdd appends an empty measurement row.
func HandleDetailRowAdd(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "detail_add", err)
		}
		row, err := ctrl.AddDetailRow(e.Request.PathValue("groupId"))
		if err != nil {
			return respondError(e, "detail_add", err)
		}
		return e.JSON(http.StatusCreated, row)
	}
}

// HandleDetailRowsPaste inserts pasted rows at the requested position.
func HandleDetailRowsPaste(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "detail_paste", err)
		}
		var body struct {
			At   int                  `json:"at"`
			Rows []services.DetailRow `json:"rows"`
		}
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		}
		for i := range body.Rows {
			body.Rows[i].Recalculate()
		}
		if err := ctrl.InsertDetailRows(e.Request.PathValue("groupId"), body.At, body.Rows); err != nil {
			return respondError(e, "detail_paste", err)
		}
		return respondView(e, "detail_paste", ctrl)
	}
}

// HandleDetailRowDelete removes a measurement row.
func HandleDetailRowDelete(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "detail_delete", err)
		}
		if err := ctrl.DeleteDetailRow(e.Request.PathValue("groupId"), e.Request.PathValue("rowId")); err != nil {
			return respondError(e, "detail_delete", err)
		}
		return respondView(e, "detail_delete", ctrl)
	}
}

// HandleDeductionToggle flips a row between addition and deduction.
func HandleDeductionToggle(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "deduction_toggle", err)
		}
		if err := ctrl.ToggleDeduction(e.Request.PathValue("groupId"), e.Request.PathValue("rowId")); err != nil {
			return respondError(e, "deduction_toggle", err)
		}
		return respondView(e, "deduction_toggle", ctrl)
	}
}

// HandleAvailableComponents lists template components that can still be
// added to the current floor.
func HandleAvailableComponents(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "components_available", err)
		}
		groups, err := ctrl.AvailableComponents()
		if err != nil {
			return respondError(e, "components_available", err)
		}
		names := make([]string, len(groups))
		for i, g := range groups {
			names[i] = g.Name
		}
		return e.JSON(http.StatusOK, map[string]any{"components": names})
	}
}

// HandleComponentAdd adds a template component to the current floor.
func HandleComponentAdd(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "component_add", err)
		}
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		}
		g, err := ctrl.AddComponent(body.Name)
		if err != nil {
			return respondError(e, "component_add", err)
		}
		return e.JSON(http.StatusCreated, g)
	}
}

// HandleComponentDelete removes a component and its rows from the floor.
func HandleComponentDelete(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "component_delete", err)
		}
		if err := ctrl.DeleteComponent(e.Request.PathValue("groupId")); err != nil {
			return respondError(e, "component_delete", err)
		}
		return respondView(e, "component_delete", ctrl)
	}
}

// HandleMeasurementImport pastes the rows of an uploaded .csv or .xlsx
// measurement sheet at the end of a component.
func HandleMeasurementImport(sessions *Sessions) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ctrl, _, err := controllerFor(e, sessions)
		if err != nil {
			return respondError(e, "measurement_import", err)
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "please select a file to upload"})
		}
		defer file.Close()

		res, err := services.ParseMeasurementSheet(file, header.Filename)
		if err != nil {
			return respondError(e, "measurement_import", err)
		}
		if err := ctrl.InsertDetailRows(e.Request.PathValue("groupId"), int(^uint(0)>>1), res.Rows); err != nil {
			return respondError(e, "measurement_import", err)
		}
		return e.JSON(http.StatusOK, map[string]any{
			"imported":        len(res.Rows),
			"issues":          res.Issues,
			"ignored_columns": res.Ignored,
		})
	}
}
