package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"floorestimate/services"
)

type estimationSummary struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	ReferenceNumber string `json:"reference_number"`
	Created         string `json:"created"`
}

func summarize(r *core.Record) estimationSummary {
	return estimationSummary{
		ID:              r.Id,
		Title:           r.GetString("title"),
		ReferenceNumber: r.GetString("reference_number"),
		Created:         r.GetDateTime("created").Time().Format("02 Jan 2006"),
	}
}

// HandleEstimationList returns every estimation, newest first.
func HandleEstimationList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter(services.EstimationsCollection, "id != ''", "-created", 0, 0)
		if err != nil {
			log.Printf("estimation_list: query failed: %v", err)
			return e.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to load estimations"})
		}
		out := make([]estimationSummary, len(records))
		for i, r := range records {
			out[i] = summarize(r)
		}
		return e.JSON(http.StatusOK, out)
	}
}

// HandleEstimationCreate creates an empty estimation.
func HandleEstimationCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body struct {
			Title           string `json:"title"`
			ReferenceNumber string `json:"reference_number"`
		}
		if err := json.NewDecoder(e.Request.Body).Decode(&body); err != nil {
			return e.JSON(http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		}
		title := strings.TrimSpace(body.Title)
		if title == "" {
			return respondError(e, "estimation_create", &services.ValidationError{Field: "title", Message: "title is required"})
		}

		col, err := app.FindCollectionByNameOrId(services.EstimationsCollection)
		if err != nil {
			return respondError(e, "estimation_create", err)
		}
		record := core.NewRecord(col)
		record.Set("title", title)
		record.Set("reference_number", strings.TrimSpace(body.ReferenceNumber))
		if err := app.Save(record); err != nil {
			return respondError(e, "estimation_create", err)
		}
		log.Printf("estimation_create: created %s (%q)", record.Id, title)
		return e.JSON(http.StatusCreated, summarize(record))
	}
}
