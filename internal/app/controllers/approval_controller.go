package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/studenthub/backend/internal/app/models/dto"
	"github.com/studenthub/backend/internal/app/repositories"
	"github.com/studenthub/backend/internal/app/services"
	"github.com/studenthub/backend/internal/middleware"
	"github.com/studenthub/backend/internal/pkg/helpers"
)

// ApprovalController handles the activity review workflow
type ApprovalController struct {
	approvalService services.ApprovalService
	logger          zerolog.Logger
}

// NewApprovalController creates a new ApprovalController
func NewApprovalController(approvalService services.ApprovalService, logger zerolog.Logger) *ApprovalController {
	return &ApprovalController{
		approvalService: approvalService,
		logger:          logger,
	}
}

// GetPending lists the review queue
// @Summary List activities awaiting review
// @Description Lists activities joined with student identity, newest first. Filters are comma-separated lists; omitting status defaults to pending.
// @Tags approvals
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "Status filter (comma-separated)"
// @Param type query string false "Activity type filter (comma-separated)"
// @Param department query string false "Department filter (comma-separated)"
// @Param from query string false "Earliest activity date (YYYY-MM-DD)"
// @Param to query string false "Latest activity date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.PendingListResponse}
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /approvals/pending [get]
func (c *ApprovalController) GetPending(ctx *gin.Context) {
	params := repositories.ReviewListParams{
		Statuses:    splitCSV(ctx.Query("status")),
		Types:       splitCSV(ctx.Query("type")),
		Departments: splitCSV(ctx.Query("department")),
	}
	// Unparseable date bounds behave like absent ones
	if from, err := helpers.ParseDate(ctx.Query("from")); err == nil {
		params.From = &from
	}
	if to, err := helpers.ParseDate(ctx.Query("to")); err == nil {
		params.To = &to
	}

	response, err := c.approvalService.ListPending(ctx.Request.Context(), params)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to list review queue")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetActivity returns one activity with its audit trail
// @Summary Get an activity under review
// @Description Returns the activity, its full audit trail and the verifier's name when one is recorded.
// @Tags approvals
// @Produce json
// @Security ApiKeyAuth
// @Param activityId path int true "Activity ID"
// @Success 200 {object} dto.APIResponse{data=dto.ActivityResponse}
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /approvals/{activityId} [get]
func (c *ApprovalController) GetActivity(ctx *gin.Context) {
	activityID, err := parseIDParam(ctx, "activityId")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid activity ID").WithField("activityId")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	response, err := c.approvalService.GetActivity(ctx.Request.Context(), activityID)
	if err != nil {
		c.logger.Error().Err(err).Int64("activityId", activityID).Msg("Failed to get activity for review")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// Approve approves an activity
// @Summary Approve an activity
// @Description Marks the activity approved, records the verifier and optionally overwrites credits. A positive creditsAwarded also increments the student's credit total.
// @Tags approvals
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param activityId path int true "Activity ID"
// @Param request body dto.ApproveRequest false "Optional note and credit override"
// @Success 200 {object} dto.APIResponse{data=dto.DecisionResponse}
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /approvals/{activityId}/approve [post]
func (c *ApprovalController) Approve(ctx *gin.Context) {
	activityID, err := parseIDParam(ctx, "activityId")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid activity ID").WithField("activityId")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	// Malformed or missing body fields are treated as absent
	var req dto.ApproveRequest
	_ = ctx.ShouldBindJSON(&req)

	response, err := c.approvalService.Approve(ctx.Request.Context(), activityID, callerRef(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("activityId", activityID).Msg("Activity approved")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// Reject rejects an activity
// @Summary Reject an activity
// @Description Marks the activity rejected. Credits are never modified.
// @Tags approvals
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param activityId path int true "Activity ID"
// @Param request body dto.RejectRequest false "Optional rejection reason"
// @Success 200 {object} dto.APIResponse{data=dto.DecisionResponse}
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /approvals/{activityId}/reject [post]
func (c *ApprovalController) Reject(ctx *gin.Context) {
	activityID, err := parseIDParam(ctx, "activityId")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid activity ID").WithField("activityId")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.RejectRequest
	_ = ctx.ShouldBindJSON(&req)

	response, err := c.approvalService.Reject(ctx.Request.Context(), activityID, callerRef(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("activityId", activityID).Msg("Activity rejected")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// RequestChanges sends an activity back for changes
// @Summary Request changes on an activity
// @Description Marks the activity changes_requested and notifies the student.
// @Tags approvals
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param activityId path int true "Activity ID"
// @Param request body dto.RequestChangesRequest false "Optional reviewer comments"
// @Success 200 {object} dto.APIResponse{data=dto.DecisionResponse}
// @Failure 404 {object} dto.ErrorResponse "Activity not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /approvals/{activityId}/request-changes [post]
func (c *ApprovalController) RequestChanges(ctx *gin.Context) {
	activityID, err := parseIDParam(ctx, "activityId")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid activity ID").WithField("activityId")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.RequestChangesRequest
	_ = ctx.ShouldBindJSON(&req)

	response, err := c.approvalService.RequestChanges(ctx.Request.Context(), activityID, callerRef(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("activityId", activityID).Msg("Changes requested on activity")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// callerRef returns the authenticated user's ID as an audit actor reference.
func callerRef(ctx *gin.Context) *int64 {
	if id, ok := middleware.CallerUserID(ctx); ok {
		return &id
	}
	return nil
}

// splitCSV splits a comma-separated query value, dropping empty entries.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}
