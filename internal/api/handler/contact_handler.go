package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/identity-service/internal/core/ports"
)

const contactActionSend = "send"

// ContactHandler handles the public contact form.
type ContactHandler struct {
	service ports.ContactService
}

func NewContactHandler(service ports.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// Send handles POST /contact/:action. Only the "send" action exists.
//
// @Summary      Leave a contact message
// @Tags         contact
// @Accept       json
// @Produce      plain
// @Param        action  path      string          true  "Must be 'send'"
// @Param        body    body      contactRequest  true  "Contact message"
// @Success      200     {string}  string
// @Failure      400     {object}  errorResponse
// @Failure      500     {object}  errorResponse
// @Router       /contact/{action} [post]
func (h *ContactHandler) Send(c echo.Context) error {
	if c.Param("action") != contactActionSend {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.service.Send(c.Request().Context(), toContactInput(req)); err != nil {
		return err
	}
	return c.String(http.StatusOK, "Message sent. Thank you.")
}
