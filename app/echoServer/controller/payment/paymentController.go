package payment

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	es "github.com/lena-biju/library-managment/service/entitlement"
)

type Controller struct {
	Svc es.Service
	Log *slog.Logger
}

// POST /v1/payment/webhook
// The provider retries until it sees 200, so a replayed PAID event must be
// (and is) harmless: grants are keyed by the invoice id.
func (h *Controller) HandleCallback(c echo.Context) error {
	sig := c.Request().Header.Get("X-Callback-Token")
	raw, _ := io.ReadAll(c.Request().Body)

	if err := h.Svc.HandleCallback(c.Request().Context(), sig, raw); err != nil {
		h.Log.Error("payment callback error", "err", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "payment rejected"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}
