// Package controllers handles HTTP request handling
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/campushub/internal/app/models/dto"
	"github.com/yigit/campushub/internal/pkg/filestorage"
)

// parseIDParam reads a positive int64 path parameter, writing a 400 when it is malformed.
func parseIDParam(ctx *gin.Context, paramName string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+paramName).
			WithField(paramName).
			WithDetails(paramName + " must be a positive number")
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// optionalIDQuery reads an optional positive int64 query parameter.
func optionalIDQuery(ctx *gin.Context, name string) (*int64, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).WithField(name)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return nil, false
	}
	return &id, true
}

// readUpload reads the multipart file in field. Oversized or missing files
// are rejected with a 400.
func readUpload(ctx *gin.Context, field string, maxBytes int64) (*filestorage.Upload, bool) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "File is required").WithField(field)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return nil, false
	}

	upload, err := filestorage.ReadUpload(fh, maxBytes)
	if err != nil {
		uploadError(ctx, field, err)
		return nil, false
	}
	return upload, true
}

// uploadError writes a 400 for file problems the client can fix.
func uploadError(ctx *gin.Context, field string, err error) {
	message := "Invalid file"
	switch {
	case errors.Is(err, filestorage.ErrFileTooLarge):
		message = "File is too large"
	case errors.Is(err, filestorage.ErrFileType):
		message = "File type not allowed"
	}
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message).WithField(field).WithDetails(err.Error())
	ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

func respond(ctx *gin.Context, status int, data interface{}, message string) {
	ctx.JSON(status, dto.NewSuccessResponse(data, message))
}
