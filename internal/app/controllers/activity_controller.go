package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/services"
	"github.com/yigit/campushub/internal/middleware"
)

// ActivityController handles participation and sub-event registrations
type ActivityController struct {
	activityService services.ActivityService
}

// NewActivityController creates a new ActivityController
func NewActivityController(activityService services.ActivityService) *ActivityController {
	return &ActivityController{activityService: activityService}
}

// JoinEvent godoc
// @Summary Join an event
// @Description Makes the caller a participant, which sub-event registration requires
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 201 {object} dto.APIResponse{data=models.EventParticipant}
// @Failure 409 {object} dto.ErrorResponse "Event is not accepting participants"
// @Router /events/{id}/join [post]
func (c *ActivityController) JoinEvent(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	participant, err := c.activityService.JoinEvent(ctx.Request.Context(), actor, eventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, participant, "Joined event")
}

// LeaveEvent godoc
// @Summary Leave an event
// @Tags student
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse
// @Router /events/{id}/join [delete]
func (c *ActivityController) LeaveEvent(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.activityService.LeaveEvent(ctx.Request.Context(), actor, eventID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Left event")
}

// Register godoc
// @Summary Register for a sub-event
// @Description Full sub-events put the registration on the waitlist
// @Tags student
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sub-event ID"
// @Param request body dto.RegisterSubEventRequest true "Team details for team events"
// @Success 201 {object} dto.APIResponse{data=models.EventRegistration}
// @Failure 403 {object} dto.ErrorResponse "Join the event first"
// @Failure 409 {object} dto.ErrorResponse "Already registered or registration closed"
// @Router /sub-events/{id}/register [post]
func (c *ActivityController) Register(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	subEventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.RegisterSubEventRequest
	if ctx.Request.ContentLength != 0 && !middleware.BindAndValidate(ctx, &req) {
		return
	}

	reg, err := c.activityService.Register(ctx.Request.Context(), actor, subEventID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, reg, "Registered")
}

// MyEvents godoc
// @Summary My events
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MyEventsResponse}
// @Router /me/events [get]
func (c *ActivityController) MyEvents(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}

	resp, err := c.activityService.MyEvents(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp, "")
}

// ListRegistrations godoc
// @Summary Registrations of a sub-event
// @Description Each row carries the statuses it may move to
// @Tags event-admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sub-event ID"
// @Param status query string false "Filter by status"
// @Success 200 {object} dto.APIResponse{data=[]dto.RegistrationStatusOptions}
// @Router /admin/sub-events/{id}/registrations [get]
func (c *ActivityController) ListRegistrations(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	subEventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	regs, err := c.activityService.ListRegistrations(ctx.Request.Context(), actor, subEventID, ctx.Query("status"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, regs, "")
}

// UpdateRegistrationStatus godoc
// @Summary Change a registration's status
// @Tags event-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Param request body dto.UpdateRegistrationStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.EventRegistration}
// @Failure 409 {object} dto.ErrorResponse "Illegal status change"
// @Router /admin/registrations/{id}/status [patch]
func (c *ActivityController) UpdateRegistrationStatus(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	registrationID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateRegistrationStatusRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	reg, err := c.activityService.UpdateRegistrationStatus(ctx.Request.Context(), actor, registrationID, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, reg, "Registration updated")
}
