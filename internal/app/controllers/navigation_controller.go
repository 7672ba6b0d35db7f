package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campushub/internal/app/access"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/middleware"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

// NavigationController exposes the access gate to the browser client
type NavigationController struct {
	gate *access.Gate
}

// NewNavigationController creates a new NavigationController
func NewNavigationController(gate *access.Gate) *NavigationController {
	return &NavigationController{gate: gate}
}

// Resolve godoc
// @Summary Decide a navigation attempt
// @Description Evaluates the route's rule against the caller's session. UNAUTHENTICATED and DENIED carry the redirect to follow.
// @Tags navigation
// @Produce json
// @Param path query string true "Client route, e.g. /admin/dashboard"
// @Success 200 {object} dto.APIResponse{data=dto.NavigationDecision}
// @Failure 400 {object} dto.ErrorResponse "Missing path"
// @Failure 404 {object} dto.ErrorResponse "No such page"
// @Router /navigation/resolve [get]
func (c *NavigationController) Resolve(ctx *gin.Context) {
	path := ctx.Query("path")
	if path == "" {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("path is required"))
		return
	}

	session, ok := middleware.CurrentSession(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, errors.New("navigation: no session on request"))
		return
	}

	decision, err := c.gate.Decide(ctx.Request.Context(), session, path)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NavigationDecision{
		State:       string(decision.State),
		Path:        decision.Path,
		RedirectTo:  decision.RedirectTo,
		ReturnTo:    decision.ReturnTo,
		RedirectURL: decision.RedirectURL(),
	}, "")
}

// Home godoc
// @Summary Landing route
// @Description The dashboard of the caller's highest-priority role
// @Tags navigation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.HomeResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /navigation/home [get]
func (c *NavigationController) Home(ctx *gin.Context) {
	session, ok := middleware.CurrentSession(ctx)
	if !ok || !session.Snapshot().Authenticated() {
		middleware.HandleAPIError(ctx, apperrors.ErrAuthRequired)
		return
	}

	snap := session.Snapshot()
	respond(ctx, http.StatusOK, dto.HomeResponse{
		PrimaryRole: snap.PrimaryRole(),
		Landing:     snap.Landing(),
	}, "")
}

// Destinations godoc
// @Summary Route table
// @Description Every client route with the rule that guards it
// @Tags navigation
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]access.Destination}
// @Router /navigation/destinations [get]
func (c *NavigationController) Destinations(ctx *gin.Context) {
	respond(ctx, http.StatusOK, c.gate.Destinations().All(), "")
}
