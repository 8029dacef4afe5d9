package router

// This file registers the reservation endpoints outside the wizard: the
// direct create used by clients that assemble the full payload themselves,
// the detail/listing endpoints and the partial edit shared by customers
// (own reservations) and admins (any reservation).

import (
	"github.com/labstack/echo/v4"

	"github.com/mzawadzki/camp-reservation/internal/handler"
	"github.com/mzawadzki/camp-reservation/internal/middleware"
)

// RegisterReservations registers reservation and document routes.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, d *handler.DocumentHandler, jwtSecret string) {
	// Direct create accepts guests, so authentication is optional; a valid
	// Bearer token ties the reservation to the account.  Both the bare and
	// the trailing-slash form are accepted.
	e.POST("/api/reservations", h.Create, middleware.OptionalJWTAuth(jwtSecret))
	e.POST("/api/reservations/", h.Create, middleware.OptionalJWTAuth(jwtSecret))

	// Everything below requires a session.  Ownership is enforced in the
	// handlers: customers reach only their own reservations, admins any.
	g := e.Group(
		"/api/reservations",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER", "ADMIN"),
	)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Patch)
	// Documents attached to a reservation (contracts, invoices,
	// qualification cards, payment attachments).
	g.GET("/:id/documents", d.List)
	g.POST("/:id/documents", d.Upload)

	auth := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER", "ADMIN"),
	)
	// Profile listing, newest first.
	auth.GET("/my-reservations", h.ListMine)
	// Stream one document blob under its original filename.
	auth.GET("/documents/:id/download", d.Download)
}
