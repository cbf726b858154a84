package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GroupExpense struct {
	ID          uuid.UUID       `json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate *time.Time      `json:"expense_date"`
	Description *string         `json:"description"`
	Tag         *string         `json:"tag"`
	GroupID     uuid.UUID       `json:"group_id"`
	MemberID    uuid.UUID       `json:"member_id"`
}

type CreateGroupExpense struct {
	Amount      decimal.Decimal
	ExpenseDate *time.Time
	Description *string
	Tag         *string
	GroupID     uuid.UUID
	MemberID    uuid.UUID
}

type UpdateGroupExpense struct {
	Amount      *decimal.Decimal
	ExpenseDate *time.Time
	Description *string
	Tag         *string
	MemberID    *uuid.UUID
}

type GroupExpenseSearchFilters struct {
	GroupID    uuid.UUID
	SearchText string
	StartDate  *time.Time
	EndDate    *time.Time
}

type CreateGroupExpenseRequest struct {
	GroupID     uuid.UUID       `json:"group_id" validate:"required"`
	MemberID    uuid.UUID       `json:"member_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"positive_decimal"`
	ExpenseDate *time.Time      `json:"expense_date"`
	Description *string         `json:"description" validate:"omitempty,max=1024"`
	Tag         *string         `json:"tag" validate:"omitempty,max=64"`
}

func (r CreateGroupExpenseRequest) Values() CreateGroupExpense {
	return CreateGroupExpense{
		Amount:      r.Amount,
		ExpenseDate: r.ExpenseDate,
		Description: r.Description,
		Tag:         r.Tag,
		GroupID:     r.GroupID,
		MemberID:    r.MemberID,
	}
}

type UpdateGroupExpenseRequest struct {
	Amount      *decimal.Decimal `json:"amount" validate:"omitempty,positive_decimal"`
	ExpenseDate *time.Time       `json:"expense_date"`
	Description *string          `json:"description" validate:"omitempty,max=1024"`
	Tag         *string          `json:"tag" validate:"omitempty,max=64"`
	MemberID    *uuid.UUID       `json:"member_id"`
}

func (r UpdateGroupExpenseRequest) Values() UpdateGroupExpense {
	return UpdateGroupExpense(r)
}
