package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"floorestimate/collections"
	"floorestimate/config"
	"floorestimate/handlers"
	"floorestimate/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: cfg.DataDir,
	})
	sessions := handlers.NewSessions(app, cfg.SettleDelay, cfg.SessionIdle)

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if cfg.Seed {
			if err := collections.Seed(app); err != nil {
				log.Printf("Warning: seed data failed: %v", err)
			}
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Estimations ─────────────────────────────────────────
		se.Router.GET("/estimations", handlers.HandleEstimationList(app))
		se.Router.POST("/estimations", handlers.HandleEstimationCreate(app))

		// ── Editor session ──────────────────────────────────────
		se.Router.GET("/estimations/{id}/floor", handlers.HandleFloorView(sessions))
		se.Router.POST("/estimations/{id}/floor", handlers.HandleFloorSelect(sessions))
		se.Router.POST("/estimations/{id}/copy", handlers.HandleFloorCopy(sessions))
		se.Router.POST("/estimations/{id}/save", handlers.HandleEstimationSave(sessions))
		se.Router.POST("/estimations/{id}/refresh", handlers.HandleEstimationRefresh(sessions))
		se.Router.DELETE("/estimations/{id}/session", handlers.HandleEstimationClose(sessions))

		// ── Quantity grid ───────────────────────────────────────
		se.Router.GET("/estimations/{id}/components/available", handlers.HandleAvailableComponents(sessions))
		se.Router.POST("/estimations/{id}/components", handlers.HandleComponentAdd(sessions))
		se.Router.DELETE("/estimations/{id}/components/{groupId}", handlers.HandleComponentDelete(sessions))
		se.Router.POST("/estimations/{id}/components/{groupId}/rows", handlers.HandleDetailRowAdd(sessions))
		se.Router.POST("/estimations/{id}/components/{groupId}/paste", handlers.HandleDetailRowsPaste(sessions))
		se.Router.POST("/estimations/{id}/components/{groupId}/import", handlers.HandleMeasurementImport(sessions))
		se.Router.PATCH("/estimations/{id}/components/{groupId}/rows/{rowId}", handlers.HandleDetailCellEdit(sessions))
		se.Router.POST("/estimations/{id}/components/{groupId}/rows/{rowId}/deduction", handlers.HandleDeductionToggle(sessions))
		se.Router.DELETE("/estimations/{id}/components/{groupId}/rows/{rowId}", handlers.HandleDetailRowDelete(sessions))

		// ── Material grid and expenses ──────────────────────────
		se.Router.PATCH("/estimations/{id}/materials/{rowId}", handlers.HandleMaterialCellEdit(sessions))
		se.Router.POST("/estimations/{id}/materials/{rowId}/items", handlers.HandleMaterialAdd(sessions))
		se.Router.DELETE("/estimations/{id}/materials/{rowId}/items/{childId}", handlers.HandleMaterialDelete(sessions))
		se.Router.PATCH("/estimations/{id}/expenses/{index}", handlers.HandleExpensePercent(sessions))

		// ── Export ──────────────────────────────────────────────
		se.Router.GET("/estimations/{id}/export/excel", handlers.HandleEstimationExportExcel(app, sessions, cfg.ReportTitle))
		se.Router.GET("/estimations/{id}/export/pdf", handlers.HandleEstimationExportPDF(app, sessions, cfg.ReportTitle))

		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/estimations")
		})

		return se.Next()
	})

	app.RootCmd.AddCommand(newExportCommand(app, cfg))

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// newExportCommand writes an estimation's workbook or PDF without starting
// the HTTP server.
func newExportCommand(app *pocketbase.PocketBase, cfg *config.Config) *cobra.Command {
	var estimationID, format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an estimation as xlsx or pdf",
		RunE: func(cmd *cobra.Command, args []string) error {
			collections.Setup(app)

			estimation, err := app.FindRecordById(services.EstimationsCollection, estimationID)
			if err != nil {
				return fmt.Errorf("estimation %q not found: %w", estimationID, err)
			}
			title := estimation.GetString("title")
			if title == "" {
				title = cfg.ReportTitle
			}

			ctrl, err := services.NewPocketBaseStore(app).NewEstimationSession(0)
			if err != nil {
				return err
			}
			if err := ctrl.LoadInitial(context.Background(), estimationID); err != nil {
				return err
			}
			floors, err := ctrl.ExportAll(title, time.Now())
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "xlsx":
				data, err = services.GenerateExcel(floors)
			case "pdf":
				data, err = services.GeneratePDF(floors)
			default:
				return fmt.Errorf("unsupported format %q (want xlsx or pdf)", format)
			}
			if err != nil {
				return err
			}

			if out == "" {
				out = fmt.Sprintf("estimate-%s.%s", estimationID, format)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			log.Printf("export: wrote %d floors to %s", len(floors), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&estimationID, "estimation", "", "estimation record ID")
	cmd.Flags().StringVar(&format, "format", "xlsx", "output format: xlsx or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default estimate-<id>.<format>)")
	_ = cmd.MarkFlagRequired("estimation")
	return cmd
}
