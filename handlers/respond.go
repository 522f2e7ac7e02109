package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"floorestimate/services"
)

// respondError maps service errors to HTTP status codes.
func respondError(e *core.RequestEvent, op string, err error) error {
	var (
		validation *services.ValidationError
		notFound   *services.NotFoundError
		fatal      *services.FatalStateError
		transient  *services.TransientIOError
	)
	switch {
	case errors.As(err, &validation):
		return e.JSON(http.StatusBadRequest, map[string]any{"error": validation.Message, "field": validation.Field})
	case errors.As(err, &notFound):
		return e.JSON(http.StatusNotFound, map[string]any{"error": notFound.Error()})
	case errors.As(err, &fatal):
		log.Printf("%s: %v", op, err)
		return e.JSON(http.StatusConflict, map[string]any{"error": fatal.Error()})
	case errors.As(err, &transient):
		log.Printf("%s: %v", op, err)
		return e.JSON(http.StatusBadGateway, map[string]any{"error": "estimation store unavailable, try again"})
	}
	log.Printf("%s: %v", op, err)
	return e.JSON(http.StatusInternalServerError, map[string]any{"error": "internal error"})
}

// respondView writes the current floor view of ctrl.
func respondView(e *core.RequestEvent, op string, ctrl *services.Controller) error {
	view, err := ctrl.View()
	if err != nil {
		return respondError(e, op, err)
	}
	state, floor := ctrl.State()
	return e.JSON(http.StatusOK, map[string]any{
		"state":  state.String(),
		"floor":  floor,
		"floors": ctrl.Floors(),
		"view":   view,
	})
}

// controllerFor resolves the {id} path value to an editor session.
func controllerFor(e *core.RequestEvent, sessions *Sessions) (*services.Controller, string, error) {
	id := e.Request.PathValue("id")
	if id == "" {
		return nil, "", &services.ValidationError{Field: "id", Message: "missing estimation ID"}
	}
	ctrl, err := sessions.Get(e.Request.Context(), id)
	return ctrl, id, err
}
