package responses

import (
	"errors"

	"github.com/coopfin/coophub/lib/service"
	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error          bool   `json:"error"`
	Code           int    `json:"code"`
	Message        string `json:"message"`
	HttpStatusCode int    `json:"-"`
}

var GeneralServerError = ErrorResponse{
	Error:          true,
	Code:           6,
	Message:        "Something went wrong. Please try again later",
	HttpStatusCode: 500,
}

var BadArgumentsError = ErrorResponse{
	Error:          true,
	Code:           8,
	Message:        "Bad arguments",
	HttpStatusCode: 400,
}

var BadAuthError = ErrorResponse{
	Error:          true,
	Code:           1,
	Message:        "bad auth",
	HttpStatusCode: 401,
}

var NotFoundError = ErrorResponse{
	Error:          true,
	Code:           2,
	Message:        "not found",
	HttpStatusCode: 404,
}

var NotEnoughBalanceError = ErrorResponse{
	Error:          true,
	Code:           3,
	Message:        "not enough balance on the source account",
	HttpStatusCode: 400,
}

var PolicyViolationError = ErrorResponse{
	Error:          true,
	Code:           4,
	Message:        "operation forbidden by ledger policy",
	HttpStatusCode: 409,
}

var ConflictError = ErrorResponse{
	Error:          true,
	Code:           5,
	Message:        "storage conflict, please retry",
	HttpStatusCode: 409,
}

// ForServiceError maps the core error taxonomy onto HTTP responses. The
// concrete reason is carried in the message so operators see what the core
// rejected.
func ForServiceError(err error) ErrorResponse {
	var (
		validationErr        service.ValidationError
		notFoundErr          service.NotFoundError
		insufficientFundsErr service.InsufficientFundsError
		policyErr            service.PolicyError
		conflictErr          service.ConflictError
	)
	switch {
	case errors.As(err, &validationErr):
		resp := BadArgumentsError
		resp.Message = validationErr.Error()
		return resp
	case errors.As(err, &notFoundErr):
		resp := NotFoundError
		resp.Message = notFoundErr.Error()
		return resp
	case errors.As(err, &insufficientFundsErr):
		resp := NotEnoughBalanceError
		resp.Message = insufficientFundsErr.Error()
		return resp
	case errors.As(err, &policyErr):
		resp := PolicyViolationError
		resp.Message = policyErr.Error()
		return resp
	case errors.As(err, &conflictErr):
		return ConflictError
	default:
		return GeneralServerError
	}
}

func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Logger().Error(err)
	if hub := sentryecho.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetExtra("UserID", c.Get("UserID"))
			hub.CaptureException(err)
		})
	}
	if he, ok := err.(*echo.HTTPError); ok {
		c.JSON(he.Code, he.Message)
		return
	}
	resp := ForServiceError(err)
	c.JSON(resp.HttpStatusCode, resp)
}
