package employee

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendify/internal/shared/apperror"
	"attendify/internal/shared/media"
	"attendify/internal/shared/response"
)

type AttendanceHandler struct {
	service AttendanceService
	media   media.Store
	logger  *zap.Logger
}

func NewAttendanceHandler(service AttendanceService, mediaStore media.Store, logger ...*zap.Logger) *AttendanceHandler {
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
	}
	return &AttendanceHandler{service: service, media: mediaStore, logger: l}
}

func (h *AttendanceHandler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("attendance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *AttendanceHandler) writeValidationError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
	h.logger.Warn("attendance request validation failed", zap.Error(err))
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *AttendanceHandler) Create(c *gin.Context) {
	h.logger.Debug("http create attendance")
	var req CreateAttendanceRequest
	if err := c.ShouldBind(&req); err != nil {
		h.writeValidationError(c, err)
		return
	}

	ref, err := saveUploadedImage(c, h.media, "employees/attendances")
	if err != nil {
		h.logger.Error("store attendance image failed", zap.Error(err))
		h.writeServiceError(c, apperror.ErrInternal)
		return
	}
	req.Image = ref

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, resp)
}

func (h *AttendanceHandler) GetAll(c *gin.Context) {
	resp, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

func (h *AttendanceHandler) GetById(c *gin.Context) {
	id := c.Param("id")
	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

func (h *AttendanceHandler) Update(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http update attendance", zap.String("attendance_id", id))

	var req UpdateAttendanceRequest
	if err := c.ShouldBind(&req); err != nil {
		h.writeValidationError(c, err)
		return
	}

	ref, err := saveUploadedImage(c, h.media, "employees/attendances")
	if err != nil {
		h.logger.Error("store attendance image failed", zap.Error(err))
		h.writeServiceError(c, apperror.ErrInternal)
		return
	}
	req.Image = ref

	resp, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

func (h *AttendanceHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http delete attendance", zap.String("attendance_id", id))

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.NoContent(c, http.StatusNoContent)
}
