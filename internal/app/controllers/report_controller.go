package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/studenthub/backend/internal/app/models/dto"
	"github.com/studenthub/backend/internal/app/repositories"
	"github.com/studenthub/backend/internal/app/services"
	"github.com/studenthub/backend/internal/middleware"
	"github.com/studenthub/backend/internal/pkg/helpers"
)

// ReportController handles the reporting endpoints
type ReportController struct {
	reportService services.ReportService
	logger        zerolog.Logger
}

// NewReportController creates a new ReportController
func NewReportController(reportService services.ReportService, logger zerolog.Logger) *ReportController {
	return &ReportController{
		reportService: reportService,
		logger:        logger,
	}
}

// reportFilterParams are the query dimensions shared by every reporting
// endpoint.
var reportFilterParams = []string{"department", "year", "type", "status", "from", "to"}

func buildReportFilters(ctx *gin.Context) repositories.ReportFilters {
	filters := repositories.ReportFilters{
		Departments: splitCSV(ctx.Query("department")),
		Types:       splitCSV(ctx.Query("type")),
		Statuses:    splitCSV(ctx.Query("status")),
	}
	for _, y := range splitCSV(ctx.Query("year")) {
		if year, err := strconv.Atoi(y); err == nil {
			filters.Years = append(filters.Years, year)
		}
	}
	if from, err := helpers.ParseDate(ctx.Query("from")); err == nil {
		filters.From = &from
	}
	if to, err := helpers.ParseDate(ctx.Query("to")); err == nil {
		filters.To = &to
	}
	return filters
}

func rawReportFilters(ctx *gin.Context) map[string]string {
	raw := map[string]string{}
	for _, name := range reportFilterParams {
		if v := ctx.Query(name); v != "" {
			raw[name] = v
		}
	}
	return raw
}

// GetOverview returns the dashboard aggregate
// @Summary Institutional overview
// @Description Computes student totals, per-type activity counts, verified count and participation by department/year. Recomputed on every call.
// @Tags reports
// @Produce json
// @Security ApiKeyAuth
// @Param department query string false "Department filter (comma-separated)"
// @Param year query string false "Year filter (comma-separated)"
// @Param type query string false "Activity type filter (comma-separated)"
// @Param status query string false "Status filter (comma-separated)"
// @Param from query string false "Earliest activity date (YYYY-MM-DD)"
// @Param to query string false "Latest activity date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.OverviewResponse}
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/overview [get]
func (c *ReportController) GetOverview(ctx *gin.Context) {
	response, err := c.reportService.Overview(ctx.Request.Context(), buildReportFilters(ctx))
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to compute overview")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetNaac returns the accreditation export
// @Summary NAAC criteria export
// @Description Maps approved activity counts into NAAC criteria buckets.
// @Tags reports
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.APIResponse{data=dto.NaacResponse}
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/naac [get]
func (c *ReportController) GetNaac(ctx *gin.Context) {
	response, err := c.reportService.Naac(ctx.Request.Context(), buildReportFilters(ctx), rawReportFilters(ctx))
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to compute accreditation export")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// Export streams a report in JSON or CSV
// @Summary Export report data
// @Description Exports flattened activity records or the flat overview, as JSON or CSV.
// @Tags reports
// @Produce json
// @Produce text/csv
// @Security ApiKeyAuth
// @Param scope query string false "activities (default) or overview"
// @Param format query string false "json (default) or csv"
// @Success 200 {object} dto.ExportActivitiesResponse
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/export [get]
func (c *ReportController) Export(ctx *gin.Context) {
	scope := ctx.DefaultQuery("scope", "activities")
	format := ctx.DefaultQuery("format", "json")
	filters := buildReportFilters(ctx)

	if scope == "overview" {
		if format == "csv" {
			csv, err := c.reportService.ExportOverviewCSV(ctx.Request.Context(), filters)
			if err != nil {
				middleware.HandleAPIError(ctx, err)
				return
			}
			ctx.Data(http.StatusOK, "text/csv", []byte(csv))
			return
		}
		response, err := c.reportService.ExportOverview(ctx.Request.Context(), filters)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, response)
		return
	}

	if format == "csv" {
		csv, err := c.reportService.ExportActivitiesCSV(ctx.Request.Context(), filters)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.Data(http.StatusOK, "text/csv", []byte(csv))
		return
	}

	response, err := c.reportService.ExportActivities(ctx.Request.Context(), filters)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// GetStudentSummary returns one student's aggregate
// @Summary Per-student summary
// @Description Returns identity, credential snapshot and activity counts by status and type.
// @Tags reports
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentSummaryResponse}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /reports/student/{id} [get]
func (c *ReportController) GetStudentSummary(ctx *gin.Context) {
	studentID, err := parseIDParam(ctx, "id")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid student ID").WithField("id")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	response, err := c.reportService.StudentSummary(ctx.Request.Context(), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}
