package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/assembler"
	"github.com/Ramsey-B/fern/pkg/reconcile"
)

// AdminHandler handles operational recovery endpoints
type AdminHandler struct {
	sweeper   *reconcile.Sweeper
	assembler *assembler.Assembler
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(sweeper *reconcile.Sweeper, asm *assembler.Assembler) *AdminHandler {
	return &AdminHandler{
		sweeper:   sweeper,
		assembler: asm,
	}
}

// RegisterRoutes registers the admin routes
func (h *AdminHandler) RegisterRoutes(g *echo.Group) {
	admin := g.Group("/admin")
	admin.POST("/reconcile", h.Reconcile)
	admin.POST("/assemble/:id", h.Assemble)
}

// Reconcile handles POST /admin/reconcile. Overlapping sweeps are rejected
// with a 409 by the sweeper itself.
func (h *AdminHandler) Reconcile(c echo.Context) error {
	report, err := h.sweeper.Sweep(c.Request().Context())
	if err != nil {
		return err
	}
	return SuccessResponse(c, report)
}

// Assemble handles POST /admin/assemble/:id
func (h *AdminHandler) Assemble(c echo.Context) error {
	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	report, err := h.assembler.AssembleAgent(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return SuccessResponse(c, report)
}
