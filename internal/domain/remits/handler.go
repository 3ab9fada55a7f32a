package remits

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/claimlink/claimlink/internal/platform/auth"
	"github.com/claimlink/claimlink/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireScope("edi:read"))
	readGroup.GET("/remits", h.ListRemittances)
	readGroup.GET("/remits/:id", h.GetRemittance)
	readGroup.GET("/remits/:id/document", h.GetRemittanceDocument)

	writeGroup := api.Group("", auth.RequireScope("edi:write"))
	writeGroup.POST("/remits/ingest", h.Ingest)
}

// Ingest accepts a raw 835 document as the request body. The document is
// stored whether or not it passes structural validation; a rejected document
// comes back as 422 with its diagnostics attached.
func (h *Handler) Ingest(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	if len(body) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "document body is required")
	}

	rm, err := h.svc.Ingest(c.Request().Context(), string(body))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if rm.Status == StatusRejected {
		return c.JSON(http.StatusUnprocessableEntity, rm)
	}
	return c.JSON(http.StatusCreated, rm)
}

func (h *Handler) GetRemittance(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rm, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "remittance not found")
	}
	return c.JSON(http.StatusOK, rm)
}

func (h *Handler) ListRemittances(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetRemittanceDocument(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rm, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "remittance not found")
	}
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(rm.RawDocument))
}
