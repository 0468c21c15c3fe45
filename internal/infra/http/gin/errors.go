package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"stayquote/internal/app/commands"
	availabilityapp "stayquote/internal/app/handlers/availability"
	"stayquote/internal/app/middleware"
	"stayquote/internal/app/queries"
	authsvc "stayquote/internal/app/services/auth"
	domainauth "stayquote/internal/domain/auth"
	domainavailability "stayquote/internal/domain/availability"
	domaincontent "stayquote/internal/domain/content"
	domaininquiry "stayquote/internal/domain/inquiry"
	domainpricing "stayquote/internal/domain/pricing"
	"stayquote/internal/domain/shared/daterange"
	"stayquote/internal/domain/shared/money"
	domainstayrules "stayquote/internal/domain/stayrules"
	mongostore "stayquote/internal/infra/db/mongo"
	"stayquote/internal/infra/validation"
)

// errBadRequest wraps malformed bodies and query parameters.
var errBadRequest = errors.New("bad request")

var badRequestErrors = []error{
	errBadRequest,
	validation.ErrInvalidInput,
	daterange.ErrInvalidRange,
	daterange.ErrInvalidDate,
	money.ErrInvalidCurrency,
	money.ErrInvalidAmount,
	money.ErrCurrencyMismatch,
	availabilityapp.ErrWindowTooLarge,
	domainavailability.ErrReasonTooLong,
	domainstayrules.ErrNameRequired,
	domainstayrules.ErrMinNights,
	domainstayrules.ErrExactNights,
	domainstayrules.ErrExactBelowMin,
	domainstayrules.ErrInvalidWeekday,
	domainpricing.ErrNameRequired,
	domainpricing.ErrNegativeComponent,
	domainpricing.ErrMinAboveMax,
	domaininquiry.ErrInvalidGuests,
	domaininquiry.ErrNameRequired,
	domaininquiry.ErrEmailRequired,
	domaininquiry.ErrCheckInInPast,
	domaininquiry.ErrUnknownStatus,
	domaincontent.ErrTextRequired,
	domaincontent.ErrTextTooLong,
	domaincontent.ErrSingleLine,
}

var notFoundErrors = []error{
	domainavailability.ErrRangeNotFound,
	domainstayrules.ErrRuleNotFound,
	domainpricing.ErrSeasonNotFound,
	domaininquiry.ErrInquiryNotFound,
	domaincontent.ErrUnknownKey,
	domaincontent.ErrBlockNotFound,
}

var conflictErrors = []error{
	domainstayrules.ErrAmbiguousRule,
	domainpricing.ErrSeasonOverlap,
	domaininquiry.ErrInvalidTransition,
	domaininquiry.ErrVersionConflict,
	middleware.ErrIdempotencyKeyReused,
	mongostore.ErrDuplicateID,
	mongostore.ErrConcurrentCatalogWrite,
}

// statusFor maps application errors to HTTP status codes.
func statusFor(err error) int {
	var rejected *domainstayrules.RejectedError
	switch {
	case errors.As(err, &rejected):
		return http.StatusBadRequest
	case isAny(err, badRequestErrors):
		return http.StatusBadRequest
	case errors.Is(err, domainauth.ErrUnauthenticated),
		errors.Is(err, authsvc.ErrInvalidCredentials),
		errors.Is(err, authsvc.ErrAdminDisabled):
		return http.StatusUnauthorized
	case errors.Is(err, domainauth.ErrForbidden):
		return http.StatusForbidden
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case isAny(err, conflictErrors):
		return http.StatusConflict
	case errors.Is(err, commands.ErrHandlerNotFound), errors.Is(err, queries.ErrHandlerNotFound):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondWithError writes {"message": ...}. Server errors hide the cause from the client.
func respondWithError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "internal error"
		if logger != nil {
			logger.ErrorContext(c.Request.Context(), "request failed", "status", status, "path", c.FullPath(), "error", err)
		}
	} else if logger != nil {
		logger.DebugContext(c.Request.Context(), "request rejected", "status", status, "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

type inputError struct{ msg string }

func (e inputError) Error() string { return e.msg }

func (e inputError) Unwrap() error { return errBadRequest }

func badRequest(msg string) error {
	return inputError{msg: msg}
}

func parseIntWithDefault(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("expected an integer, got " + strconv.Quote(raw))
	}
	return v, nil
}
