package rest

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cloudgroundcontrol/voice-channel/pkg/ledger"
)

type orphanController struct {
	ledger ledger.Ledger
}

func NewOrphanController(l ledger.Ledger) orphanController {
	return orphanController{l}
}

func (oc *orphanController) ListOrphans(c echo.Context) error {
	all := c.QueryParam("all") == "true"
	orphans, err := oc.ledger.List(c.Request().Context(), all)
	if err != nil {
		return httpError(err)
	}
	if orphans == nil {
		orphans = []ledger.Orphan{}
	}
	return c.JSON(http.StatusOK, orphans)
}

func (oc *orphanController) ResolveOrphan(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid orphan id")
	}
	if err = oc.ledger.Resolve(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
