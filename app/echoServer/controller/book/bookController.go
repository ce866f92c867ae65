package book

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/lena-biju/library-managment/model"
	"github.com/lena-biju/library-managment/repository/catalog"
	"github.com/lena-biju/library-managment/repository/media"
	catalogsvc "github.com/lena-biju/library-managment/service/catalog"
)

// RevisionHeader carries the token a writer read with the collection; a
// stale token turns the write into a 409.
const RevisionHeader = "X-Revision"

type Controller struct {
	Svc   catalogsvc.Service
	Media media.Store
	V     *validator.Validate
	Log   *slog.Logger
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	rows, rev, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("book list error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	c.Response().Header().Set(RevisionHeader, rev)
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "revision": rev})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	row, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		}
		h.Log.Error("book detail error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	c.Response().Header().Set(RevisionHeader, h.Svc.Revision())
	return c.JSON(http.StatusOK, row)
}

// POST /v1/books  (librarian)
func (h *Controller) Create(c echo.Context) error {
	var req model.CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	b, err := h.Svc.Create(c.Request().Context(), req)
	if err != nil {
		return h.writeErr(c, err, "book create")
	}
	c.Response().Header().Set(RevisionHeader, h.Svc.Revision())
	return c.JSON(http.StatusCreated, b)
}

// PUT /v1/books/:id  (librarian, requires X-Revision)
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rev := c.Request().Header.Get(RevisionHeader)
	if rev == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing " + RevisionHeader + " header"})
	}
	var req model.CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	b, newRev, err := h.Svc.Update(c.Request().Context(), id, rev, req)
	if err != nil {
		return h.writeErr(c, err, "book update")
	}
	c.Response().Header().Set(RevisionHeader, newRev)
	return c.JSON(http.StatusOK, b)
}

// DELETE /v1/books/:id  (librarian, requires X-Revision)
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rev := c.Request().Header.Get(RevisionHeader)
	if rev == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing " + RevisionHeader + " header"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id, rev); err != nil {
		return h.writeErr(c, err, "book delete")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// POST /v1/books/:id/cover  (librarian)
// Stores the uploaded file and returns the path reference to put into
// cover_image; the record itself is updated through PUT.
func (h *Controller) UploadCover(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if _, err := h.Svc.Detail(c.Request().Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing file"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unreadable file"})
	}
	defer f.Close()

	path, err := h.Media.Save(c.Request().Context(), fh.Filename, f)
	if err != nil {
		h.Log.Error("cover upload error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"cover_image": path})
}

func (h *Controller) writeErr(c echo.Context, err error, op string) error {
	switch {
	case errors.Is(err, catalogsvc.ErrInvalid):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book payload"})
	case errors.Is(err, catalog.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	case errors.Is(err, catalog.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"message": "stale revision", "revision": h.Svc.Revision()})
	default:
		h.Log.Error(op+" error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
