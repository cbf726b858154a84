package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/lucsky/cuid"
	"github.com/sirupsen/logrus"

	"github.com/bwise1/groupsplit_api/util"
	"github.com/bwise1/groupsplit_api/util/tracing"
	"github.com/bwise1/groupsplit_api/util/values"
)

var errTokenExpired = errors.New("token expired")

type TokenClaims struct {
	UserID uuid.UUID
	Type   string
	Exp    int64
}

// RequestTracing handles the request tracing context
func RequestTracing(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		requestSource := r.Header.Get(values.HeaderRequestSource)
		if requestSource == "" {
			errM := errors.New("X-Request-Source is empty")

			writeErrorResponse(w, errM, values.BadRequestBody, errM.Error())
			return
		}

		requestID := r.Header.Get(values.HeaderRequestID)
		if requestID == "" {
			requestID = cuid.New()
		}
		w.Header().Set(values.HeaderRequestID, requestID)

		tracingContext := tracing.Context{
			RequestID:     requestID,
			RequestSource: requestSource,
		}

		ctx = context.WithValue(ctx, values.ContextTracingKey, tracingContext)
		next.ServeHTTP(w, r.WithContext(ctx))
	}

	return http.HandlerFunc(fn)
}

// RequestLogger logs one line per request once the response is written.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		tc := tracing.FromContext(r.Context())
		entry := util.Logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"route":       routePattern(r),
			"status":      m.Code,
			"duration_ms": m.Duration.Milliseconds(),
			"bytes":       m.Written,
			"request_id":  tc.RequestID,
			"source":      tc.RequestSource,
		})
		if m.Code >= http.StatusInternalServerError {
			entry.Error("request failed")
			return
		}
		entry.Info("request completed")
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// RequireLogin verifies the bearer access token and stores its subject as the
// caller's user id.
func (api *API) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.Split(r.Header.Get("Authorization"), " ")
		if len(authorization) != 2 || authorization[0] != "Bearer" {
			writeErrorResponse(w, errors.New(values.NotAuthorised), values.NotAuthorised, "not-authorized")
			return
		}

		claims, err := api.verifyToken(authorization[1])
		if err != nil {
			if errors.Is(err, errTokenExpired) {
				writeErrorResponse(w, err, values.TokenExpired, "token-expired")
				return
			}
			writeErrorResponse(w, err, values.NotAuthorised, "invalid-token")
			return
		}

		ctx := util.WithUserID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (api *API) verifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(api.Config.JwtSecret), nil
	})

	var ve *jwt.ValidationError
	if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
		return nil, errTokenExpired
	}
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	tokenType, _ := claims["typ"].(string)
	if tokenType != "access" {
		return nil, errors.New("invalid token type")
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, errors.New("invalid user id")
	}

	exp, _ := claims["exp"].(float64)
	return &TokenClaims{
		UserID: userID,
		Type:   tokenType,
		Exp:    int64(exp),
	}, nil
}
