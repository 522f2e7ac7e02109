package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"floorestimate/services"
)

// sanitizeFilename replaces characters that are unsafe in download names.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

// buildFloorExports projects the session's floors for export. With a
// ?floor= query only that floor is included. Untitled estimations are
// headed with defaultTitle.
func buildFloorExports(app *pocketbase.PocketBase, sessions *Sessions, defaultTitle string, e *core.RequestEvent) ([]services.ExportData, string, error) {
	ctrl, id, err := controllerFor(e, sessions)
	if err != nil {
		return nil, "", err
	}
	estimation, err := app.FindRecordById(services.EstimationsCollection, id)
	if err != nil {
		return nil, "", &services.NotFoundError{Kind: "estimation", Name: id}
	}
	title := estimation.GetString("title")
	if title == "" {
		title = defaultTitle
	}
	now := time.Now()

	if floor := e.Request.URL.Query().Get("floor"); floor != "" {
		data, err := ctrl.ExportProjection(floor, title, now)
		if err != nil {
			return nil, "", err
		}
		return []services.ExportData{data}, title + "_" + floor, nil
	}
	floors, err := ctrl.ExportAll(title, now)
	if err != nil {
		return nil, "", err
	}
	return floors, title, nil
}

// HandleEstimationExportExcel downloads the estimation as a workbook with
// one sheet per floor.
func HandleEstimationExportExcel(app *pocketbase.PocketBase, sessions *Sessions, defaultTitle string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		floors, name, err := buildFloorExports(app, sessions, defaultTitle, e)
		if err != nil {
			return respondError(e, "export_excel", err)
		}

		xlsxBytes, err := services.GenerateExcel(floors)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to generate Excel file"})
		}

		filename := fmt.Sprintf("Estimate_%s_%d.xlsx", sanitizeFilename(name), time.Now().Year())
		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleEstimationExportPDF downloads the estimation as a PDF, one section
// per floor.
func HandleEstimationExportPDF(app *pocketbase.PocketBase, sessions *Sessions, defaultTitle string) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		floors, name, err := buildFloorExports(app, sessions, defaultTitle, e)
		if err != nil {
			return respondError(e, "export_pdf", err)
		}

		pdfBytes, err := services.GeneratePDF(floors)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to generate PDF file"})
		}

		filename := fmt.Sprintf("Estimate_%s_%d.pdf", sanitizeFilename(name), time.Now().Year())
		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}
