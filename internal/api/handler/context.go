package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskify/taskify-api/internal/api/middleware"
	"github.com/taskify/taskify-api/internal/core/domain"
)

// currentIdentity returns the identity placed in the context by the
// Authenticate middleware. Its absence means the route was mounted without
// the middleware, which is treated as unauthenticated.
func currentIdentity(c echo.Context) (*domain.ResolvedIdentity, error) {
	identity := middleware.Identity(c)
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}
	return identity, nil
}

// bindAndValidate decodes the request body into req and runs the registered
// validator. Both failures are reported as 400.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func taskIDParam(c echo.Context) (int64, error) {
	var id int64
	if err := echo.PathParamsBinder(c).MustInt64("id", &id).BindError(); err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid task id")
	}
	return id, nil
}
