package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bwise1/groupsplit_api/internal/apperror"
	"github.com/bwise1/groupsplit_api/internal/model"
	"github.com/bwise1/groupsplit_api/util"
	"github.com/bwise1/groupsplit_api/util/values"
)

// helperError maps a store or service error to a response status. The
// error's own message wins over fallback when it has one.
func helperError(err error, fallback string) (string, string) {
	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		return values.NotFound, apperror.Message(err, fallback)
	case apperror.KindForbidden:
		return values.NotAllowed, apperror.Message(err, fallback)
	case apperror.KindBadRequest:
		return values.BadRequestBody, apperror.Message(err, fallback)
	case apperror.KindQuotaExceeded:
		return values.QuotaExceeded, apperror.Message(err, fallback)
	case apperror.KindUnauthorized:
		return values.NotAuthorised, apperror.Message(err, fallback)
	case apperror.KindConflict:
		return values.Conflict, apperror.Message(err, fallback)
	default:
		return values.Error, fallback
	}
}

// validationMessage turns validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	return util.StringToUUID(chi.URLParam(r, name))
}

func sessionFromRequest(r *http.Request) (model.Session, error) {
	userID, err := util.GetUserIDFromContext(r.Context())
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{AccountID: userID}, nil
}

func success(status, message string, data interface{}) *ServerResponse {
	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       data,
	}
}
