package controllers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/studenthub/backend/internal/app/models"
	"github.com/studenthub/backend/internal/app/models/dto"
	"github.com/studenthub/backend/internal/app/services"
	"github.com/studenthub/backend/internal/middleware"
	"github.com/studenthub/backend/internal/pkg/helpers"
)

// StudentController handles student profiles, submissions and portfolios
type StudentController struct {
	studentService services.StudentService
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		logger:         logger,
	}
}

// canAccess reports whether the caller may act on the given student record.
// Faculty and admin reach any student; a student only their own record.
func canAccess(ctx *gin.Context, studentID int64) bool {
	role := ctx.GetString(middleware.ContextRole)
	if role == string(models.RoleFaculty) || role == string(models.RoleAdmin) {
		return true
	}
	own, ok := middleware.CallerStudentID(ctx)
	return ok && own == studentID
}

func forbid(ctx *gin.Context) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")
	ctx.JSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
}

// GetProfile returns a student profile
// @Summary Get student profile
// @Description Returns identity, credential snapshot and verified/pending activity counters
// @Tags students
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentProfileResponse}
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id} [get]
func (c *StudentController) GetProfile(ctx *gin.Context) {
	studentID, err := parseIDParam(ctx, "id")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student ID").WithField("id")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	if !canAccess(ctx, studentID) {
		forbid(ctx)
		return
	}

	response, err := c.studentService.GetProfile(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetActivities lists a student's activities
// @Summary List student activities
// @Description Returns one page of the student's activities, newest first, with best-effort proof download URLs
// @Tags students
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Student ID"
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ActivityListResponse}
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/activities [get]
func (c *StudentController) GetActivities(ctx *gin.Context) {
	studentID, err := parseIDParam(ctx, "id")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student ID").WithField("id")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	if !canAccess(ctx, studentID) {
		forbid(ctx)
		return
	}

	page, limit := helpers.ParsePaginationParams(ctx)
	response, err := c.studentService.ListActivities(ctx.Request.Context(), studentID, page, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(response, helpers.NewPaginationInfo(response.Total, page, limit)))
}

// PostActivity submits an activity
// @Summary Submit an activity
// @Description Accepts a direct multipart upload, or a JSON body with action=presign to obtain an upload target, or action=finalize to record the activity once its proof blob is uploaded
// @Tags students
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.PresignResponse} "Presign mode"
// @Success 201 {object} dto.APIResponse{data=dto.CreatedResponse} "Upload and finalize modes"
// @Failure 400 {object} dto.ErrorResponse "Missing fields or invalid action"
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/activities [post]
func (c *StudentController) PostActivity(ctx *gin.Context) {
	studentID, err := parseIDParam(ctx, "id")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student ID").WithField("id")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	if !canAccess(ctx, studentID) {
		forbid(ctx)
		return
	}

	if file, err := ctx.FormFile("file"); err == nil {
		c.submitUpload(ctx, studentID, file)
		return
	}

	var req dto.SubmitActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request body")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	switch req.Action {
	case "presign":
		response, err := c.studentService.Presign(ctx.Request.Context(), studentID, req.Filename, req.FileType)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
	case "finalize":
		response, err := c.studentService.Finalize(ctx.Request.Context(), studentID, &req)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		c.logger.Info().Int64("studentId", studentID).Int64("activityId", response.ID).Msg("Activity finalized")
		ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
	default:
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "invalid action")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
	}
}

// submitUpload handles the direct multipart mode: proof bytes plus activity
// fields in the same form.
func (c *StudentController) submitUpload(ctx *gin.Context, studentID int64, file *multipart.FileHeader) {
	opened, err := file.Open()
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Could not read uploaded file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	defer opened.Close()

	data, err := io.ReadAll(opened)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Could not read uploaded file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	credits := 0
	if v := ctx.PostForm("credits"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			credits = parsed
		}
	}

	submission := &services.UploadSubmission{
		Title:       ctx.PostForm("title"),
		Type:        ctx.PostForm("type"),
		Date:        ctx.PostForm("date"),
		Description: ctx.PostForm("description"),
		Credits:     credits,
		Data:        data,
		ContentType: file.Header.Get("Content-Type"),
	}

	response, err := c.studentService.SubmitUpload(ctx.Request.Context(), studentID, submission)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("studentId", studentID).Int64("activityId", response.ID).Msg("Activity submitted")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}

// GeneratePortfolio renders a portfolio PDF
// @Summary Generate portfolio PDF
// @Description Renders the student's approved activities into a stored PDF and returns its location
// @Tags students
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.PortfolioResponse}
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/portfolio [post]
func (c *StudentController) GeneratePortfolio(ctx *gin.Context) {
	studentID, err := parseIDParam(ctx, "id")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student ID").WithField("id")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	if !canAccess(ctx, studentID) {
		forbid(ctx)
		return
	}

	response, err := c.studentService.GeneratePortfolio(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetNotifications lists a student's notifications
// @Summary List notifications
// @Description Returns the student's in-app notifications, newest first
// @Tags students
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.NotificationResponse}
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/notifications [get]
func (c *StudentController) GetNotifications(ctx *gin.Context) {
	studentID, err := parseIDParam(ctx, "id")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student ID").WithField("id")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	if !canAccess(ctx, studentID) {
		forbid(ctx)
		return
	}

	response, err := c.studentService.ListNotifications(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}
