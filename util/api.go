package util

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/bwise1/groupsplit_api/util/tracing"
	"github.com/bwise1/groupsplit_api/util/values"
)

// StatusCode returns the status code represented
// by the specified status. Note that this function
// returns a status code of 200 by default
func StatusCode(status string) int {
	switch status {
	case values.Error:
		return http.StatusInternalServerError
	case values.Created:
		return http.StatusCreated
	case values.BadRequestBody, values.QuotaExceeded, values.Failed:
		return http.StatusBadRequest
	case values.Unprocessable:
		return http.StatusUnprocessableEntity
	case values.NotAllowed:
		return http.StatusForbidden
	case values.Conflict:
		return http.StatusConflict
	case values.NotFound:
		return http.StatusNotFound
	case values.NotAuthorised, values.TokenExpired:
		return http.StatusUnauthorized
	default:
		return http.StatusOK
	}
}

// DecodeJSONBody ...
func DecodeJSONBody(tc *tracing.Context, body io.ReadCloser, target interface{}) error {
	if body == nil {
		return fmt.Errorf("missing request body for request: %v", tc)
	}
	defer func() {
		_ = body.Close()
	}()

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return errors.Wrapf(err, "Error parsing json body for request: %v", tc.RequestID)
	}

	return nil
}

// WithUserID stores the authenticated account id on ctx.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, values.ContextUserIDKey, userID.String())
}

// GetUserIDFromContext extracts the user ID from the context.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	userIDStr, ok := ctx.Value(values.ContextUserIDKey).(string)
	if !ok || userIDStr == "" {
		return uuid.Nil, errors.New("user ID not found in context")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, errors.New("invalid user ID format")
	}

	return userID, nil
}

// string to UUID
func StringToUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// OptionalUUID parses s, returning nil for an empty string.
func OptionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
