package client

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"attendify/internal/shared/apperror"
	"attendify/internal/shared/media"
	"attendify/internal/shared/response"
)

type Handler struct {
	service Service
	media   media.Store
	logger  *zap.Logger
}

func NewHandler(service Service, mediaStore media.Store, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("client.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("client.handler")
	}
	return &Handler{service: service, media: mediaStore, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("client request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeValidationError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
	h.logger.Warn("client request validation failed", zap.Error(err))
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// saveUploadedImage stores the optional multipart "image" part and
// returns its blob reference. Requests without an image part are fine.
func saveUploadedImage(c *gin.Context, store media.Store, subdir string) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", nil
	}
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return store.Save(c.Request.Context(), subdir, file.Filename, src)
}

func (h *Handler) Create(c *gin.Context) {
	h.logger.Debug("http create client")
	var req CreateClientRequest
	if err := c.ShouldBind(&req); err != nil {
		h.writeValidationError(c, err)
		return
	}

	ref, err := saveUploadedImage(c, h.media, "clients")
	if err != nil {
		h.logger.Error("store client image failed", zap.Error(err))
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

func (h *Handler) GetAll(c *gin.Context) {
	h.logger.Debug("http get all clients")
	resp, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

func (h *Handler) GetById(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http get client by id", zap.String("client_id", id))

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http update client", zap.String("client_id", id))

	var req UpdateClientRequest
	if err := c.ShouldBind(&req); err != nil {
		h.writeValidationError(c, err)
		return
	}

	ref, err := saveUploadedImage(c, h.media, "clients")
	if err != nil {
		h.logger.Error("store client image failed", zap.Error(err))
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

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	h.logger.Debug("http delete client", zap.String("client_id", id))

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.NoContent(c, http.StatusNoContent)
}
