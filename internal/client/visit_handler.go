package client

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendify/internal/shared/apperror"
	"attendify/internal/shared/response"
)

type VisitHandler struct {
	service Service
	logger  *zap.Logger
}

func NewVisitHandler(service Service, logger ...*zap.Logger) *VisitHandler {
	l := zap.L().Named("client.visit_handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("client.visit_handler")
	}
	return &VisitHandler{service: service, logger: l}
}

func (h *VisitHandler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("visit request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *VisitHandler) writeValidationError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
	h.logger.Warn("visit request validation failed", zap.Error(err))
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *VisitHandler) Create(c *gin.Context) {
	h.logger.Debug("http record visit")
	var req CreateVisitRequest
	if err := c.ShouldBind(&req); err != nil {
		h.writeValidationError(c, err)
		return
	}

	resp, err := h.service.RecordVisit(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, resp)
}

func (h *VisitHandler) GetAll(c *gin.Context) {
	h.logger.Debug("http get all visits")
	resp, err := h.service.GetAllVisits(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

func (h *VisitHandler) GetById(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http get visit by id", zap.String("visit_id", id))

	resp, err := h.service.GetVisitByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

func (h *VisitHandler) Update(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http update visit", zap.String("visit_id", id))

	var req UpdateVisitRequest
	if err := c.ShouldBind(&req); err != nil {
		h.writeValidationError(c, err)
		return
	}

	resp, err := h.service.UpdateVisit(c.Request.Context(), id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

func (h *VisitHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http delete visit", zap.String("visit_id", id))

	if err := h.service.DeleteVisit(c.Request.Context(), id); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.NoContent(c, http.StatusNoContent)
}
