package controllers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseIDParam parses a positive ID parameter from the request path
func parseIDParam(ctx *gin.Context, paramName string) (int64, error) {
	idStr := ctx.Param(paramName)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id parameter %q", idStr)
	}
	return id, nil
}
