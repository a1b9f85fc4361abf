package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fullindescription/VL-rebrand/internal/listing"
	"github.com/fullindescription/VL-rebrand/internal/model"
)

// ListingSource returns the sessions of one kind on one day.
type ListingSource interface {
	Sessions(ctx context.Context, kind model.Kind, date string) ([]model.Session, error)
}

// ListingHandler proxies the listing service.
type ListingHandler struct {
	Source ListingSource
	Now    func() time.Time
}

// List handles GET /v1/listings/:kind?date=YYYY-MM-DD.  The date
// defaults to today.  Responses are {"items": [...]}.
func (h *ListingHandler) List(c echo.Context) error {
	kind := model.Kind(c.Param("kind"))
	if !kind.Valid() {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown listing kind"})
	}
	date := c.QueryParam("date")
	if date == "" {
		now := time.Now
		if h.Now != nil {
			now = h.Now
		}
		date = now().Format(time.DateOnly)
	} else if _, err := time.Parse(time.DateOnly, date); err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}

	sessions, err := h.Source.Sessions(c.Request().Context(), kind, date)
	if err != nil {
		return listingError(c, err)
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": sessions})
}

func listingError(c echo.Context, err error) error {
	var apiErr *listing.APIError
	if errors.As(err, &apiErr) {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "listing service error"})
	}
	return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "listing service unavailable"})
}
