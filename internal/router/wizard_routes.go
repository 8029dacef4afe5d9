package router

// This file registers the multi-step booking wizard routes.  The wizard is
// addressed by an opaque session token, so no authentication is required;
// submit accepts an optional Bearer token to tie the reservation to an
// account.  The optional rate limiter protects the draft store from
// abusive session churn.

import (
	"github.com/labstack/echo/v4"

	"github.com/mzawadzki/camp-reservation/internal/handler"
	"github.com/mzawadzki/camp-reservation/internal/middleware"
)

// RegisterWizard registers the wizard flow under /v1/wizard.
func RegisterWizard(e *echo.Echo, h *handler.WizardHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	mws := []echo.MiddlewareFunc{middleware.OptionalJWTAuth(jwtSecret)}
	if rateLimit != nil {
		mws = append(mws, rateLimit)
	}
	g := e.Group("/v1/wizard", mws...)

	// Open a new draft session for a camp property.
	g.POST("/session", h.StartSession)
	// Save one step slice; 422 with field details when the gate fails.
	g.PUT("/:session/steps/:step", h.SaveStep)
	// View the accumulated draft with derived items and running total.
	g.GET("/:session", h.GetState)
	// Run the full validation and create the reservation.
	g.POST("/:session/submit", h.Submit)
	// Discard the draft.
	g.DELETE("/:session", h.Abandon)
}
