package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"wardcore/pkg/domain"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error      string             `json:"error"`
	Violations []domain.Violation `json:"violations,omitempty"`
	Fields     []string           `json:"fields,omitempty"`
}

// requestValidator adapts validator/v10 to echo.Validator.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (rv *requestValidator) Validate(i any) error {
	if err := rv.v.Struct(i); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]string, len(fieldErrs))
			for i, fe := range fieldErrs {
				fields[i] = fmt.Sprintf("%s:%s", fe.Namespace(), fe.Tag())
			}
			return echo.NewHTTPError(http.StatusBadRequest, errorBody{Error: "validation failed", Fields: fields})
		}
		return echo.NewHTTPError(http.StatusBadRequest, errorBody{Error: err.Error()})
	}
	return nil
}

// bind decodes the request body into dst and validates it.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return echo.NewHTTPError(http.StatusBadRequest, errorBody{Error: fmt.Sprint(he.Message)})
		}
		return echo.NewHTTPError(http.StatusBadRequest, errorBody{Error: err.Error()})
	}
	return c.Validate(dst)
}

// fail maps a service error to an HTTP error.
func fail(err error) error {
	var (
		nf      domain.NotFoundError
		blocked domain.RuleViolationError
	)
	switch {
	case errors.As(err, &nf):
		return echo.NewHTTPError(http.StatusNotFound, errorBody{Error: nf.Error()})
	case errors.As(err, &blocked):
		return echo.NewHTTPError(http.StatusConflict, errorBody{Error: blocked.Error(), Violations: blocked.Result.Violations})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusServiceUnavailable, errorBody{Error: "request canceled"})
	default:
		msg := err.Error()
		if strings.TrimSpace(msg) == "" {
			msg = http.StatusText(http.StatusInternalServerError)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, errorBody{Error: msg}).SetInternal(err)
	}
}
