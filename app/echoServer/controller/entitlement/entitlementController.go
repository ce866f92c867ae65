package entitlement

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/lena-biju/library-managment/model"
	es "github.com/lena-biju/library-managment/service/entitlement"
)

type Controller struct {
	Svc es.Service
	V   *validator.Validate
	Log *slog.Logger
}

type CheckoutReq struct {
	BookID     int64        `json:"book_id" validate:"required,gt=0"`
	Kind       model.TxKind `json:"kind" validate:"required,oneof=purchase rental"`
	PayerEmail string       `json:"payer_email" validate:"required,email"`
}

type GrantReq struct {
	BookID     int64        `json:"book_id" validate:"required,gt=0"`
	Kind       model.TxKind `json:"kind" validate:"required,oneof=purchase rental"`
	Amount     float64      `json:"amount" validate:"gte=0"`
	PaymentRef string       `json:"payment_ref" validate:"required"`
}

type ReverseReq struct {
	PaymentRef string `json:"payment_ref" validate:"required"`
}

// POST /v1/checkout
func (h *Controller) Checkout(c echo.Context) error {
	var req CheckoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	out, err := h.Svc.Checkout(c.Request().Context(), uid, req.BookID, req.Kind, req.PayerEmail)
	if err != nil {
		return h.svcErr(c, err, "checkout")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"payment_link": out.PaymentLink,
		"payment_ref":  out.PaymentRef,
		"amount":       out.Amount,
		"expires_at":   out.ExpiresAt,
	})
}

// POST /v1/entitlements
// Idempotent by payment_ref: retrying after a network failure on an
// already-successful payment returns the original entry.
func (h *Controller) Grant(c echo.Context) error {
	var req GrantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	t, err := h.Svc.Grant(c.Request().Context(), uid, req.BookID, req.Kind, req.Amount, req.PaymentRef)
	if err != nil {
		return h.svcErr(c, err, "grant")
	}
	return c.JSON(http.StatusCreated, t)
}

// GET /v1/entitlements/my
func (h *Controller) MyHistory(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.History(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/entitlements/:userId/:bookId
// Users can query themselves; librarians can query anyone.
func (h *Controller) Access(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	bookID, err := strconv.ParseInt(c.Param("bookId"), 10, 64)
	if err != nil || bookID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}

	uid, _ := c.Get("user_id").(int64)
	role, _ := c.Get("role").(string)
	if uid != userID && model.Role(role) != model.RoleLibrarian {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}

	res, err := h.Svc.Access(c.Request().Context(), userID, bookID, time.Now().UTC())
	if err != nil {
		return h.svcErr(c, err, "access")
	}
	return c.JSON(http.StatusOK, res)
}

// POST /v1/entitlements/:id/reverse  (librarian)
func (h *Controller) Reverse(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req ReverseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	t, err := h.Svc.Reverse(c.Request().Context(), id, req.PaymentRef)
	if err != nil {
		return h.svcErr(c, err, "reverse")
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Controller) svcErr(c echo.Context, err error, op string) error {
	switch es.Code(err) {
	case es.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case es.ErrUserNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	case es.ErrEntryNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "ledger entry not found"})
	case es.ErrQuotaExceeded:
		return c.JSON(http.StatusConflict, echo.Map{"message": "rental quota exceeded"})
	case es.ErrUnavailable:
		return c.JSON(http.StatusConflict, echo.Map{"message": "book unavailable"})
	case es.ErrBadKind:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "kind must be purchase or rental"})
	default:
		h.Log.Error(op+" error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
