package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskify/taskify-api/internal/core/ports"
)

// ManagerHandler exposes elevated task operations. Routes are mounted behind
// RequireRole(manager) and the service checks the role again.
type ManagerHandler struct {
	service ports.TaskService
}

func NewManagerHandler(service ports.TaskService) *ManagerHandler {
	return &ManagerHandler{service: service}
}

// ListTasks handles GET /manager/tasks.
//
// @Summary      List every task
// @Tags         manager
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   taskResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /manager/tasks [get]
func (h *ManagerHandler) ListTasks(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	tasks, err := h.service.ListAll(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// DeleteTask handles DELETE /manager/tasks/:id.
//
// @Summary      Delete any task
// @Tags         manager
// @Security     BearerAuth
// @Param        id   path  int  true  "Task id"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /manager/tasks/{id} [delete]
func (h *ManagerHandler) DeleteTask(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := taskIDParam(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteAny(c.Request().Context(), identity, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
