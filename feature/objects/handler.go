package objects

import (
	"bytes"
	"errors"
	"net/url"

	"asset-sync/core/logger"
	"asset-sync/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for stored objects.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the objects routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/objects")
	group.Get("/", h.HandleContainers)
	group.Get("/:container", h.HandleList)
	// HEAD before GET: Get also answers HEAD with the download handler.
	group.Head("/:container/*", h.HandleHead)
	group.Get("/:container/*", h.HandleDownload)
	group.Put("/:container/*", h.HandleUpload)
	group.Delete("/:container/*", h.HandleDelete)
}

// HandleContainers lists the served containers.
func (h *Handler) HandleContainers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"containers": h.service.Containers()})
}

// HandleList lists the objects below the path query parameter.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	files, err := h.service.Files(c.Context(), c.Params("container"))
	if err != nil {
		return h.fail(c, err)
	}

	path := c.Query("path")
	dirs, names, err := files.ListDir(c.Context(), path)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"container": files.Container(),
		"path":      path,
		"dirs":      dirs,
		"files":     names,
	})
}

// HandleHead reports whether an object exists, with its size and modification time.
func (h *Handler) HandleHead(c *fiber.Ctx) error {
	files, name, err := h.resolve(c)
	if err != nil {
		return h.fail(c, err)
	}

	info, err := files.Stat(c.Context(), name)
	if err != nil {
		return h.fail(c, err)
	}
	setObjectHeaders(c, info)
	c.Response().Header.SetContentLength(int(info.ContentLength))
	c.Status(fiber.StatusOK)
	return nil
}

// HandleDownload streams an object.
func (h *Handler) HandleDownload(c *fiber.Ctx) error {
	files, name, err := h.resolve(c)
	if err != nil {
		return h.fail(c, err)
	}

	info, err := files.Stat(c.Context(), name)
	if err != nil {
		return h.fail(c, err)
	}
	rc, err := files.Open(c.Context(), name)
	if err != nil {
		return h.fail(c, err)
	}

	setObjectHeaders(c, info)
	return c.SendStream(rc, int(info.ContentLength))
}

// HandleUpload stores the request body under the object name. The request's
// Content-Type is kept unless it is missing or generic.
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	files, name, err := h.resolve(c)
	if err != nil {
		return h.fail(c, err)
	}

	contentType := c.Get(fiber.HeaderContentType)
	if contentType == storage.DefaultContentType {
		contentType = ""
	}

	saved, err := files.Save(c.Context(), name, bytes.NewReader(c.Body()), contentType)
	if err != nil {
		return h.fail(c, err)
	}
	l.Info("Object saved", zap.String("container", files.Container()), zap.String("name", saved))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"name": saved})
}

// HandleDelete removes an object. Removing a missing object succeeds.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	files, name, err := h.resolve(c)
	if err != nil {
		return h.fail(c, err)
	}

	if err := files.Delete(c.Context(), name); err != nil {
		return h.fail(c, err)
	}
	l.Info("Object deleted", zap.String("container", files.Container()), zap.String("name", name))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) resolve(c *fiber.Ctx) (*storage.Files, string, error) {
	name, err := url.PathUnescape(c.Params("*"))
	if err != nil || name == "" {
		return nil, "", fiber.NewError(fiber.StatusBadRequest, "invalid object name")
	}
	files, err := h.service.Files(c.Context(), c.Params("container"))
	if err != nil {
		return nil, "", err
	}
	return files, name, nil
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	case errors.Is(err, ErrUnknownContainer), errors.Is(err, storage.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		logger.WithRayID(h.service.logger, c).Error("Object request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func setObjectHeaders(c *fiber.Ctx, info *storage.ObjectInfo) {
	contentType := info.ContentType
	if contentType == "" {
		contentType = storage.DefaultContentType
	}
	c.Set(fiber.HeaderContentType, contentType)
	if info.LastModified != "" {
		c.Set(fiber.HeaderLastModified, info.LastModified)
	}
}
