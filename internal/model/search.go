package model

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// SearchParams are the paging and sorting options shared by every search
// endpoint. Tags drive query decoding (schema), defaulting (default),
// validation (validate) and encoding (url).
type SearchParams struct {
	Limit           int    `schema:"limit" url:"limit,omitempty" default:"25" validate:"min=1,max=100"`
	Page            int    `schema:"page" url:"page,omitempty" default:"1" validate:"min=1"`
	SortBy          string `schema:"sort_by" url:"sort_by,omitempty" default:"created_at"`
	OrderBy         string `schema:"order_by" url:"order_by,omitempty" default:"desc" validate:"oneof=asc desc"`
	IncludeArchived bool   `schema:"include_archived" url:"include_archived,omitempty"`
}

func (p SearchParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

type GroupSearchQuery struct {
	SearchParams
	SearchText string `schema:"search_text" url:"search_text,omitempty"`
}

type GroupMemberSearchQuery struct {
	SearchParams
	GroupID string `schema:"group_id" url:"group_id,omitempty" validate:"omitempty,uuid"`
	UserID  string `schema:"user_id" url:"user_id,omitempty" validate:"omitempty,uuid"`
}

type GroupExpenseSearchQuery struct {
	SearchParams
	GroupID    string `schema:"group_id" url:"group_id,omitempty" validate:"required,uuid"`
	SearchText string `schema:"search_text" url:"search_text,omitempty"`
	StartDate  string `schema:"start_date" url:"start_date,omitempty"`
	EndDate    string `schema:"end_date" url:"end_date,omitempty"`
}

type GroupPaymentTransactionSearchQuery struct {
	SearchParams
	SearchText       string `schema:"search_text" url:"search_text,omitempty"`
	GroupID          string `schema:"group_id" url:"group_id,omitempty" validate:"omitempty,uuid"`
	SenderMemberID   string `schema:"sender_member_id" url:"sender_member_id,omitempty" validate:"omitempty,uuid"`
	ReceiverMemberID string `schema:"receiver_member_id" url:"receiver_member_id,omitempty" validate:"omitempty,uuid"`
	Status           string `schema:"status" url:"status,omitempty" validate:"omitempty,oneof=REQUESTED PAID REJECTED VOIDED"`
}

// Page is the envelope returned by every search endpoint.
type Page[T any] struct {
	Records      []T  `json:"records"`
	TotalRecords int  `json:"total_records"`
	TotalPages   int  `json:"total_pages"`
	CurrentPage  int  `json:"current_page"`
	NextPage     *int `json:"next_page"`
	PreviousPage *int `json:"previous_page"`
}

func NewPage[T any](records []T, totalRecords, limit, page int) Page[T] {
	if records == nil {
		records = []T{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (totalRecords + limit - 1) / limit
	}

	p := Page[T]{
		Records:      records,
		TotalRecords: totalRecords,
		TotalPages:   totalPages,
		CurrentPage:  page,
	}
	if page < totalPages {
		next := page + 1
		p.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		p.PreviousPage = &prev
	}
	return p
}
