package restapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"stablecoin_monitor/internal/domain/entity"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	statusSuccess = "success"
	statusError   = "error"

	msgInternal       = "Internal server error"
	msgNotFound       = "Endpoint not found"
	msgMethodNotAllow = "Method not allowed"
	msgBadBody        = "Request body must be a single JSON object"

	maxRequestBody = 1 << 20
)

// successEnvelope is used by the automation endpoints.
type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type failureEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// statusErrorBody is used by the registry endpoints and the router fallbacks.
type statusErrorBody struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, successEnvelope{Success: true, Data: data})
}

func respondFailure(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, failureEnvelope{Success: false, Error: message})
}

func respondStatusError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, statusErrorBody{Status: statusError, Message: message, Timestamp: time.Now().UTC()})
}

// httpStatusFor maps the error taxonomy to a status code. Unknown errors are 500.
func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrContractNotDeployed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage hides internal detail behind a generic message for 5xx responses.
func clientMessage(code int, err error) string {
	if code >= http.StatusInternalServerError {
		return msgInternal
	}
	return err.Error()
}

// decodeBody reads the whole request body as exactly one JSON value. An empty body leaves v
// untouched; trailing data after the value is rejected.
func decodeBody(r io.Reader, v any) error {
	raw, err := io.ReadAll(io.LimitReader(r, maxRequestBody+1))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", entity.ErrValidation, err)
	}
	if len(raw) > maxRequestBody {
		return fmt.Errorf("%w: body too large", entity.ErrValidation)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if raw[0] != '{' {
		return fmt.Errorf("%w: body is not a JSON object", entity.ErrValidation)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", entity.ErrValidation, err)
	}
	return nil
}
