package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bannerdomain "github.com/smallbiznis/lokapasar/internal/banner/domain"
	categorydomain "github.com/smallbiznis/lokapasar/internal/category/domain"
	orderdomain "github.com/smallbiznis/lokapasar/internal/order/domain"
	paymentdomain "github.com/smallbiznis/lokapasar/internal/payment/domain"
	productdomain "github.com/smallbiznis/lokapasar/internal/product/domain"
	reviewdomain "github.com/smallbiznis/lokapasar/internal/review/domain"
	shippingdomain "github.com/smallbiznis/lokapasar/internal/shipping/domain"
	variantdomain "github.com/smallbiznis/lokapasar/internal/variant/domain"
	"github.com/smallbiznis/lokapasar/pkg/db/listquery"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, reviewdomain.ErrNoUser),
		errors.Is(err, orderdomain.ErrNoUser),
		errors.Is(err, paymentdomain.ErrInvalidSignature):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, reviewdomain.ErrNotOwner),
		errors.Is(err, orderdomain.ErrNotOwner):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, shippingdomain.ErrProviderFailure):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, listquery.ErrPriceRange),
		errors.Is(err, listquery.ErrDateRange):
		return true
	case isCategoryValidationError(err),
		isProductValidationError(err),
		isVariantValidationError(err),
		isReviewValidationError(err),
		isBannerValidationError(err),
		isShippingValidationError(err),
		isOrderValidationError(err),
		isPaymentValidationError(err):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, categorydomain.ErrNameTaken),
		errors.Is(err, categorydomain.ErrHasProducts),
		errors.Is(err, productdomain.ErrTitleTaken),
		errors.Is(err, variantdomain.ErrDuplicateAttribute),
		errors.Is(err, reviewdomain.ErrAlreadyReviewed),
		errors.Is(err, orderdomain.ErrInsufficientStock):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, categorydomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, productdomain.ErrImageNotFound),
		errors.Is(err, variantdomain.ErrNotFound),
		errors.Is(err, reviewdomain.ErrNotFound),
		errors.Is(err, bannerdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrProviderNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isCategoryValidationError(err error) bool {
	switch err {
	case categorydomain.ErrInvalidName,
		categorydomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isProductValidationError(err error) bool {
	switch err {
	case productdomain.ErrInvalidTitle,
		productdomain.ErrInvalidType,
		productdomain.ErrInvalidCategory,
		productdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isVariantValidationError(err error) bool {
	switch err {
	case variantdomain.ErrInvalidID,
		variantdomain.ErrInvalidPrice,
		variantdomain.ErrInvalidDiscount,
		variantdomain.ErrInvalidStock,
		variantdomain.ErrMissingSize,
		variantdomain.ErrMissingAmount:
		return true
	default:
		return false
	}
}

func isReviewValidationError(err error) bool {
	switch err {
	case reviewdomain.ErrInvalidID,
		reviewdomain.ErrInvalidRating:
		return true
	default:
		return false
	}
}

func isBannerValidationError(err error) bool {
	switch err {
	case bannerdomain.ErrInvalidTitle,
		bannerdomain.ErrInvalidID,
		bannerdomain.ErrInvalidWindow:
		return true
	default:
		return false
	}
}

func isShippingValidationError(err error) bool {
	switch err {
	case shippingdomain.ErrInvalidCountry,
		shippingdomain.ErrInvalidWeight,
		shippingdomain.ErrNoRate:
		return true
	default:
		return false
	}
}

func isOrderValidationError(err error) bool {
	switch err {
	case orderdomain.ErrInvalidID,
		orderdomain.ErrEmptyCart,
		orderdomain.ErrInvalidEmail,
		orderdomain.ErrInvalidQuantity,
		orderdomain.ErrInvalidStatus,
		orderdomain.ErrVariantUnavailable,
		orderdomain.ErrNotPaid:
		return true
	default:
		return false
	}
}

func isPaymentValidationError(err error) bool {
	switch err {
	case paymentdomain.ErrInvalidPayload,
		paymentdomain.ErrInvalidEvent,
		paymentdomain.ErrMissingOrderID:
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if code == "invalid_request" {
		return "request"
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog feeds the request logger a coarse error bucket plus the
// stable code, without leaking internals into log fields.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", payload.Type
	case status == http.StatusNotFound:
		return "not_found", payload.Type
	case len(payload.Errors) > 0:
		return "validation_error", payload.Errors[0].Code
	default:
		return "client_error", payload.Type
	}
}
