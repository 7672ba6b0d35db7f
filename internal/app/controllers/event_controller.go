package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/app/services"
	"github.com/yigit/campushub/internal/middleware"
	"github.com/yigit/campushub/internal/pkg/filestorage"
	"github.com/yigit/campushub/internal/pkg/helpers"
)

// EventController handles events, sub-events and coordinators
type EventController struct {
	eventService services.EventService
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService) *EventController {
	return &EventController{eventService: eventService}
}

// ListPublicEvents godoc
// @Summary List public events
// @Description Upcoming, active and completed events ordered by start date
// @Tags events
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Event}
// @Router /events [get]
func (c *EventController) ListPublicEvents(ctx *gin.Context) {
	events, err := c.eventService.ListPublicEvents(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, events, "")
}

// GetEventDetail godoc
// @Summary Event detail
// @Description Event with sub-events, results and gallery. Signed-in callers also get their registration state per sub-event.
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} dto.APIResponse{data=dto.EventDetailResponse}
// @Failure 404 {object} dto.ErrorResponse "Event not found"
// @Router /events/{slug} [get]
func (c *EventController) GetEventDetail(ctx *gin.Context) {
	detail, err := c.eventService.GetEventDetail(ctx.Request.Context(), ctx.Param("slug"), middleware.OptionalActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, detail, "")
}

// ListEvents godoc
// @Summary List all events
// @Tags super-admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param search query string false "Search by name"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse}
// @Router /super-admin/events [get]
func (c *EventController) ListEvents(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}

	page := helpers.ParsePaginationParams(ctx)
	result, err := c.eventService.ListEvents(ctx.Request.Context(), actor, ctx.Query("status"), ctx.Query("search"), page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, result, "")
}

// CreateEvent godoc
// @Summary Create an event
// @Tags super-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateEventRequest true "Event"
// @Success 201 {object} dto.APIResponse{data=models.Event}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Slug already taken"
// @Router /super-admin/events [post]
func (c *EventController) CreateEvent(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	var req dto.CreateEventRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	event, err := c.eventService.CreateEvent(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, event, "Event created")
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Fields present in the body are written. expectedUpdatedAt guards against concurrent edits.
// @Tags super-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.UpdateEventRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=models.Event}
// @Failure 409 {object} dto.ErrorResponse "Modified concurrently or illegal status change"
// @Router /super-admin/events/{id} [put]
func (c *EventController) UpdateEvent(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateEventRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	event, err := c.eventService.UpdateEvent(ctx.Request.Context(), actor, eventID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, event, "Event updated")
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags super-admin
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse
// @Router /super-admin/events/{id} [delete]
func (c *EventController) DeleteEvent(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.eventService.DeleteEvent(ctx.Request.Context(), actor, eventID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Event deleted")
}

// UploadBanner godoc
// @Summary Upload an event banner
// @Tags super-admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param banner formData file true "Image"
// @Success 200 {object} dto.APIResponse{data=models.Event}
// @Router /super-admin/events/{id}/banner [post]
func (c *EventController) UploadBanner(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	upload, ok := readUpload(ctx, "banner", filestorage.MaxImageSize)
	if !ok {
		return
	}

	event, err := c.eventService.UploadBanner(ctx.Request.Context(), actor, eventID, upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, event, "Banner uploaded")
}

// ListCoordinators godoc
// @Summary List event coordinators
// @Tags super-admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]models.CoordinatorDetail}
// @Router /super-admin/events/{id}/coordinators [get]
func (c *EventController) ListCoordinators(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	coordinators, err := c.eventService.ListCoordinators(ctx.Request.Context(), actor, eventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, coordinators, "")
}

// AddCoordinator godoc
// @Summary Assign a coordinator
// @Description Adds the user as coordinator and grants event_admin
// @Tags super-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.AddCoordinatorRequest true "User by id or e-mail"
// @Success 201 {object} dto.APIResponse{data=models.EventCoordinator}
// @Router /super-admin/events/{id}/coordinators [post]
func (c *EventController) AddCoordinator(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.AddCoordinatorRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	coordinator, err := c.eventService.AddCoordinator(ctx.Request.Context(), actor, eventID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, coordinator, "Coordinator added")
}

// RemoveCoordinator godoc
// @Summary Remove a coordinator
// @Tags super-admin
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param userId path int true "User ID"
// @Success 200 {object} dto.APIResponse
// @Router /super-admin/events/{id}/coordinators/{userId} [delete]
func (c *EventController) RemoveCoordinator(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	if err := c.eventService.RemoveCoordinator(ctx.Request.Context(), actor, eventID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Coordinator removed")
}

// ListManagedEvents godoc
// @Summary Events the caller manages
// @Description Coordinated events for event admins, every event for super admins
// @Tags event-admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Event}
// @Router /admin/events [get]
func (c *EventController) ListManagedEvents(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}

	events, err := c.eventService.ListManagedEvents(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, events, "")
}

// GetManagedEvent godoc
// @Summary One managed event
// @Tags event-admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=models.Event}
// @Failure 403 {object} dto.ErrorResponse "Not a coordinator of this event"
// @Router /admin/events/{id} [get]
func (c *EventController) GetManagedEvent(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	event, err := c.eventService.GetManagedEvent(ctx.Request.Context(), actor, eventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, event, "")
}

// ListSubEvents godoc
// @Summary Sub-events of a managed event
// @Tags event-admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} dto.APIResponse{data=[]models.SubEvent}
// @Router /admin/events/{id}/sub-events [get]
func (c *EventController) ListSubEvents(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	subEvents, err := c.eventService.ListSubEvents(ctx.Request.Context(), actor, eventID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, subEvents, "")
}

// CreateSubEvent godoc
// @Summary Create a sub-event
// @Tags event-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param request body dto.SubEventRequest true "Sub-event"
// @Success 201 {object} dto.APIResponse{data=models.SubEvent}
// @Router /admin/events/{id}/sub-events [post]
func (c *EventController) CreateSubEvent(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.SubEventRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	sub, err := c.eventService.CreateSubEvent(ctx.Request.Context(), actor, eventID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, sub, "Sub-event created")
}

// UpdateSubEvent godoc
// @Summary Update a sub-event
// @Tags event-admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sub-event ID"
// @Param request body dto.SubEventRequest true "Sub-event"
// @Success 200 {object} dto.APIResponse{data=models.SubEvent}
// @Router /admin/sub-events/{id} [put]
func (c *EventController) UpdateSubEvent(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	subEventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.SubEventRequest
	if !middleware.BindAndValidate(ctx, &req) {
		return
	}

	sub, err := c.eventService.UpdateSubEvent(ctx.Request.Context(), actor, subEventID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, sub, "Sub-event updated")
}

// DeleteSubEvent godoc
// @Summary Delete a sub-event
// @Tags event-admin
// @Security BearerAuth
// @Param id path int true "Sub-event ID"
// @Success 200 {object} dto.APIResponse
// @Router /admin/sub-events/{id} [delete]
func (c *EventController) DeleteSubEvent(ctx *gin.Context) {
	actor, ok := middleware.RequireActor(ctx)
	if !ok {
		return
	}
	subEventID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.eventService.DeleteSubEvent(ctx.Request.Context(), actor, subEventID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Sub-event deleted")
}
