package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/mzawadzki/camp-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/mzawadzki/camp-reservation/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/mzawadzki/camp-reservation/internal/model"      // import the catalog kind constants
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (register, login, refresh).  Each of
	// these handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", a.Login)
	// Register a POST endpoint to refresh access tokens at /v1/auth/refresh. This rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Register a POST endpoint to issue a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Register a POST endpoint to log out.  The handler accepts either a
	// JSON body containing a `refresh_token` (terminates that session) or a
	// Bearer token (terminates every session of the user).
	g.POST("/logout", a.Logout)

	// Create another group for routes that require a valid access token.  All
	// handlers registered on this group will execute the JWTAuth middleware
	// before being invoked.  Protected endpoints live under /v1.
	auth := e.Group("/v1")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Both roles may call the generic authenticated endpoints; the middleware
	// rejects requests with missing or unknown roles.
	auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
	// Register a GET endpoint at /v1/me that returns the authenticated user's information.
	auth.GET("/me", a.Me)

	// Additionally map POST /v1/logout to the same handler so clients can
	// call either /v1/auth/logout or /v1/logout to terminate a session.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints on the provided
// Echo instance: camps, their properties (turnusy) and the priced catalogs
// rendered by the booking wizard.  The optional cache middleware is applied
// to every route here since the catalog changes rarely and is read heavily
// during enrollment periods.
func RegisterPublic(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	mws := []echo.MiddlewareFunc{}
	if cache != nil {
		mws = append(mws, cache)
	}
	g := e.Group("/v1", mws...)

	// Expose the list of all camps open for booking.
	g.GET("/camps", h.ListCamps)
	// List the bookable properties of a specific camp.
	g.GET("/camps/:campId/properties", h.ListProperties)

	// Property-scoped catalogs.  The turnus-specific list wins whenever it
	// holds at least one real entry; otherwise the general catalog is served.
	g.GET("/camps/:campId/properties/:propertyId/protections", h.Entries(model.KindProtection))
	g.GET("/camps/:campId/properties/:propertyId/diets", h.Entries(model.KindDiet))
	g.GET("/camps/:campId/properties/:propertyId/addons", h.Entries(model.KindAddon))
	g.GET("/camps/:campId/properties/:propertyId/promotions", h.Entries(model.KindPromotion))

	// General catalogs, independent of any property.
	g.GET("/general-protections/public", h.General(model.KindProtection))
	g.GET("/general-diets/public", h.General(model.KindDiet))
	g.GET("/general-addons/public", h.General(model.KindAddon))
	g.GET("/general-promotions/public", h.General(model.KindPromotion))
}
