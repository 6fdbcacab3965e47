package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lumispa/booking-system/internal/api/metrics"
	"github.com/lumispa/booking-system/internal/core/domain"
	"github.com/lumispa/booking-system/internal/core/ports"
)

type CatalogHandler struct {
	catalog ports.CatalogService
}

func NewCatalogHandler(catalog ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List returns the current live snapshot of the service catalog.
//
// @Summary      List services
// @Tags         services
// @Produce      json
// @Success      200  {object}  catalogResponse
// @Security     BearerAuth
// @Router       /services [get]
func (h *CatalogHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, catalogResponse{
		Services: h.catalog.Snapshot(),
		Loading:  h.catalog.Loading(),
	})
}

// Create adds a new service document. Admin only.
//
// @Summary      Create a service
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        body  body      serviceRequest  true  "Service fields"
// @Success      201   {object}  createServiceResponse
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Security     BearerAuth
// @Router       /services [post]
func (h *CatalogHandler) Create(c echo.Context) error {
	var req serviceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		metrics.CatalogWritesTotal.WithLabelValues("create", "invalid").Inc()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	creator, err := ctxCreator(c)
	if err != nil {
		return err
	}

	id, err := h.catalog.Create(c.Request().Context(), domain.Service{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		CreatedBy:   creator,
	})
	if err != nil {
		return h.writeError(c, "create", err)
	}

	metrics.CatalogWritesTotal.WithLabelValues("create", "ok").Inc()
	return c.JSON(http.StatusCreated, createServiceResponse{ID: id})
}

// Update replaces the full mutable field set of a service. Admin only.
//
// @Summary      Update a service
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Service id"
// @Param        body  body      serviceRequest  true  "Full service fields"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Security     BearerAuth
// @Router       /services/{id} [put]
func (h *CatalogHandler) Update(c echo.Context) error {
	var req serviceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		metrics.CatalogWritesTotal.WithLabelValues("update", "invalid").Inc()
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	id := c.Param("id")
	err := h.catalog.Update(c.Request().Context(), id, domain.Service{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return h.writeError(c, "update", err)
	}

	metrics.CatalogWritesTotal.WithLabelValues("update", "ok").Inc()
	return c.JSON(http.StatusOK, map[string]string{"status": "updated"})
}

func (h *CatalogHandler) writeError(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrServiceNameRequired), errors.Is(err, domain.ErrInvalidPrice):
		metrics.CatalogWritesTotal.WithLabelValues(op, "invalid").Inc()
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrServiceNotFound):
		metrics.CatalogWritesTotal.WithLabelValues(op, "invalid").Inc()
		return c.JSON(http.StatusNotFound, map[string]string{"error": "service not found"})
	default:
		metrics.CatalogWritesTotal.WithLabelValues(op, "error").Inc()
		return err
	}
}
