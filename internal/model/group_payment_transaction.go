package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentRequested PaymentStatus = "REQUESTED"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentRejected  PaymentStatus = "REJECTED"
	PaymentVoided    PaymentStatus = "VOIDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentRequested, PaymentPaid, PaymentRejected, PaymentVoided:
		return true
	}
	return false
}

// GroupPaymentTransaction is a settlement payment from one member to another.
type GroupPaymentTransaction struct {
	ID               uuid.UUID       `json:"id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        *time.Time      `json:"deleted_at"`
	Amount           decimal.Decimal `json:"amount"`
	Description      *string         `json:"description"`
	Status           PaymentStatus   `json:"status"`
	GroupID          uuid.UUID       `json:"group_id"`
	SenderMemberID   uuid.UUID       `json:"sender_member_id"`
	ReceiverMemberID uuid.UUID       `json:"receiver_member_id"`
}

type CreateGroupPaymentTransaction struct {
	Amount           decimal.Decimal
	Description      *string
	Status           PaymentStatus
	GroupID          uuid.UUID
	SenderMemberID   uuid.UUID
	ReceiverMemberID uuid.UUID
}

type UpdateGroupPaymentTransaction struct {
	Amount      *decimal.Decimal
	Description *string
	Status      *PaymentStatus
}

type GroupPaymentTransactionSearchFilters struct {
	SearchText       string
	GroupID          *uuid.UUID
	SenderMemberID   *uuid.UUID
	ReceiverMemberID *uuid.UUID
	Status           *PaymentStatus
}

type CreateGroupPaymentTransactionRequest struct {
	GroupID          uuid.UUID       `json:"group_id" validate:"required"`
	SenderMemberID   uuid.UUID       `json:"sender_member_id" validate:"required"`
	ReceiverMemberID uuid.UUID       `json:"receiver_member_id" validate:"required"`
	Amount           decimal.Decimal `json:"amount" validate:"positive_decimal"`
	Description      *string         `json:"description" validate:"omitempty,max=1024"`
	Status           *PaymentStatus  `json:"status" validate:"omitempty,payment_status"`
}

func (r CreateGroupPaymentTransactionRequest) Values() CreateGroupPaymentTransaction {
	status := PaymentRequested
	if r.Status != nil {
		status = *r.Status
	}
	return CreateGroupPaymentTransaction{
		Amount:           r.Amount,
		Description:      r.Description,
		Status:           status,
		GroupID:          r.GroupID,
		SenderMemberID:   r.SenderMemberID,
		ReceiverMemberID: r.ReceiverMemberID,
	}
}

type UpdateGroupPaymentTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount" validate:"omitempty,positive_decimal"`
	Description *string          `json:"description" validate:"omitempty,max=1024"`
	Status      *PaymentStatus   `json:"status" validate:"omitempty,payment_status"`
}

func (r UpdateGroupPaymentTransactionRequest) Values() UpdateGroupPaymentTransaction {
	return UpdateGroupPaymentTransaction(r)
}
