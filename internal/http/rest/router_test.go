package rest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-querystring/query"
	"github.com/google/uuid"

	"github.com/bwise1/groupsplit_api/internal/model"
	"github.com/bwise1/groupsplit_api/util/values"
)

type routeCase struct {
	name        string
	method      string
	path        string
	body        string
	wantCode    int
	wantMessage string
}

func serve(t *testing.T, handler http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(values.HeaderRequestSource, "test")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// These requests are rejected before any store or service call.
func TestRoutesRejectInvalidInput(t *testing.T) {
	handler := newTestAPI().setUpServerHandler()
	token := accessToken(t, uuid.New())
	member := uuid.New()

	expenseQuery, err := query.Values(model.GroupExpenseSearchQuery{
		SearchParams: model.SearchParams{Limit: 10},
		GroupID:      uuid.NewString(),
		StartDate:    "yesterday",
	})
	if err != nil {
		t.Fatal(err)
	}
	paymentQuery, err := query.Values(model.GroupPaymentTransactionSearchQuery{
		Status: "SETTLED",
	})
	if err != nil {
		t.Fatal(err)
	}
	pageQuery, err := query.Values(model.GroupSearchQuery{
		SearchParams: model.SearchParams{Limit: 500},
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []routeCase{
		{
			name:     "group body with unknown field",
			method:   http.MethodPost,
			path:     "/groups/",
			body:     `{"name":"Trip","owner":"me"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "group without name",
			method:   http.MethodPost,
			path:     "/groups/",
			body:     `{"description":"no name"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "group with unknown split type",
			method:   http.MethodPost,
			path:     "/groups/",
			body:     `{"name":"Trip","split_type":"RANDOM"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "group id is not a uuid",
			method:   http.MethodGet,
			path:     "/groups/not-a-uuid",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "archive with bad group id",
			method:   http.MethodPut,
			path:     "/groups/123/archive",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "search limit above maximum",
			method:   http.MethodGet,
			path:     "/groups/search?" + pageQuery.Encode(),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "member search with bad group id",
			method:   http.MethodGet,
			path:     "/group-members/search?group_id=abc",
			wantCode: http.StatusBadRequest,
		},
		{
			name:        "member update cannot set status",
			method:      http.MethodPut,
			path:        "/group-members/" + member.String(),
			body:        `{"status":"APPROVED"}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: "unable to decode request",
		},
		{
			name:        "member update cannot move account",
			method:      http.MethodPut,
			path:        "/group-members/" + member.String(),
			body:        `{"user_id":"` + uuid.NewString() + `"}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: "unable to decode request",
		},
		{
			name:     "expense search without group",
			method:   http.MethodGet,
			path:     "/group-expenses/search",
			wantCode: http.StatusBadRequest,
		},
		{
			name:        "expense search with bad start date",
			method:      http.MethodGet,
			path:        "/group-expenses/search?" + expenseQuery.Encode(),
			wantCode:    http.StatusBadRequest,
			wantMessage: "invalid start_date",
		},
		{
			name:     "expense with zero amount",
			method:   http.MethodPost,
			path:     "/group-expenses/",
			body:     `{"group_id":"` + uuid.NewString() + `","member_id":"` + member.String() + `","amount":"0"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:        "payment to self",
			method:      http.MethodPost,
			path:        "/group-payment-transactions/",
			body:        `{"group_id":"` + uuid.NewString() + `","sender_member_id":"` + member.String() + `","receiver_member_id":"` + member.String() + `","amount":"12.50"}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: "sender and receiver must be different members",
		},
		{
			name:     "payment search with unknown status",
			method:   http.MethodGet,
			path:     "/group-payment-transactions/search?" + paymentQuery.Encode(),
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, handler, tt.method, tt.path, tt.body, token)
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			resp := decodeResponse(t, rec.Body)
			if resp.Status != values.BadRequestBody {
				t.Errorf("expected status %q, got %q", values.BadRequestBody, resp.Status)
			}
			if tt.wantMessage != "" && resp.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, resp.Message)
			}
		})
	}
}

func TestRoutesRequireLogin(t *testing.T) {
	handler := newTestAPI().setUpServerHandler()

	paths := []string{
		"/groups/search",
		"/group-members/search",
		"/group-expenses/search",
		"/group-payment-transactions/search",
		"/ws",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := serve(t, handler, http.MethodGet, path, "", "")
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestAPI().setUpServerHandler()

	if rec := serve(t, handler, http.MethodGet, "/", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from index, got %d", rec.Code)
	}
	serve(t, handler, http.MethodGet, "/groups/search", "", "")

	rec := serve(t, handler, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"groupsplit_http_requests_total",
		`code="401"`,
		`route="/"`,
		"groupsplit_http_request_duration_seconds_bucket",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMetricsDisabled(t *testing.T) {
	api := newTestAPI()
	api.Metrics = nil

	rec := serve(t, api.setUpServerHandler(), http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics, got %d", rec.Code)
	}
}
