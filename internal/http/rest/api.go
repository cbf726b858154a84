package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/bwise1/groupsplit_api/config"
	deps "github.com/bwise1/groupsplit_api/internal/debs"
	"github.com/bwise1/groupsplit_api/util"
	"github.com/bwise1/groupsplit_api/util/tracing"
	"github.com/bwise1/groupsplit_api/util/values"
)

const (
	defaultIdleTimeout  = time.Minute
	defaultReadTimeout  = 5 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

type Handler func(w http.ResponseWriter, r *http.Request) *ServerResponse

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := h(w, r)
	respByte, err := json.Marshal(resp)
	if err != nil {
		writeErrorResponse(w, err, values.Error, "unable to marshal server response")
		return
	}
	writeJSONResponse(w, respByte, resp.StatusCode)
}

// ServerResponse is the envelope of every JSON response.
type ServerResponse struct {
	Message    string      `json:"message"`
	Status     string      `json:"status"`
	StatusCode int         `json:"-"`
	Data       interface{} `json:"data,omitempty"`
}

type API struct {
	Server  *http.Server
	Config  *config.Config
	Deps    *deps.Dependencies
	Metrics *Metrics
}

func (api *API) Serve() error {
	api.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", api.Config.Port),
		IdleTimeout:  defaultIdleTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		Handler:      api.setUpServerHandler(),
	}
	return api.Server.ListenAndServe()
}

func (api *API) setUpServerHandler() http.Handler {
	mux := chi.NewRouter()
	mux.Use(RequestTracing)
	mux.Use(RequestLogger)
	if api.Metrics != nil {
		mux.Use(api.Metrics.Middleware)
		mux.Method(http.MethodGet, "/metrics", api.Metrics.Handler())
	}

	mux.Get("/",
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("Hello, World!"))
		},
	)

	mux.Mount("/groups", api.GroupRoutes())
	mux.Mount("/group-members", api.GroupMemberRoutes())
	mux.Mount("/group-expenses", api.GroupExpenseRoutes())
	mux.Mount("/group-payment-transactions", api.GroupPaymentTransactionRoutes())

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Get("/ws", api.Deps.WebSocket.HandleConnections)
	})

	return mux
}

func (api *API) Shutdown(ctx context.Context) error {
	return api.Server.Shutdown(ctx)
}

func respondWithError(err error, message, status string, tc *tracing.Context) *ServerResponse {
	fields := logrus.Fields{"error": err, "status": status}
	if tc != nil {
		fields["request_id"] = tc.RequestID
	}
	entry := util.Logger.WithFields(fields)
	if util.StatusCode(status) >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Debug(message)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
	}
}

func writeJSONResponse(w http.ResponseWriter, body []byte, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		util.Logger.WithFields(logrus.Fields{"error": err}).Warn("writing response body")
	}
}

func writeErrorResponse(w http.ResponseWriter, err error, status, message string) {
	resp := respondWithError(err, message, status, nil)
	body, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		http.Error(w, message, resp.StatusCode)
		return
	}
	writeJSONResponse(w, body, resp.StatusCode)
}
