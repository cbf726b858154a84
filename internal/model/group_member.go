package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MemberRole string

const (
	RoleOwner  MemberRole = "OWNER"
	RoleAdmin  MemberRole = "ADMIN"
	RoleMember MemberRole = "MEMBER"
)

func (r MemberRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// CanManageMembers reports whether the role may invite, remove and update members.
func (r MemberRole) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}

type MemberStatus string

const (
	StatusPending  MemberStatus = "PENDING"
	StatusApproved MemberStatus = "APPROVED"
	StatusRejected MemberStatus = "REJECTED"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether a membership may move from s to next.
// Only PENDING moves; APPROVED and REJECTED are terminal. Re-asserting the
// current status is a no-op and allowed.
func (s MemberStatus) CanTransitionTo(next MemberStatus) bool {
	if s == next {
		return true
	}
	return s == StatusPending && (next == StatusApproved || next == StatusRejected)
}

// GroupMember links a user, or a placeholder for someone without an account,
// to a group. UserID stays nil until a placeholder is claimed.
type GroupMember struct {
	ID                      uuid.UUID        `json:"id"`
	CreatedAt               time.Time        `json:"created_at"`
	UpdatedAt               time.Time        `json:"updated_at"`
	DeletedAt               *time.Time       `json:"deleted_at"`
	PercentageShare         *float64         `json:"percentage_share"`
	ExactShare              *decimal.Decimal `json:"exact_share"`
	Status                  MemberStatus     `json:"status"`
	Role                    MemberRole       `json:"role"`
	PlaceholderAssigneeName *string          `json:"placeholder_assignee_name"`
	UserID                  *uuid.UUID       `json:"user_id"`
	GroupID                 uuid.UUID        `json:"group_id"`
}

type CreateGroupMember struct {
	GroupID                 uuid.UUID
	UserID                  *uuid.UUID
	Role                    MemberRole
	Status                  MemberStatus
	PercentageShare         *float64
	ExactShare              *decimal.Decimal
	PlaceholderAssigneeName *string
}

// UpdateGroupMember holds a partial update; nil fields are left untouched.
type UpdateGroupMember struct {
	PercentageShare         *float64
	ExactShare              *decimal.Decimal
	Status                  *MemberStatus
	Role                    *MemberRole
	PlaceholderAssigneeName *string
	UserID                  *uuid.UUID
}

func (u UpdateGroupMember) IsEmpty() bool {
	return u.PercentageShare == nil && u.ExactShare == nil && u.Status == nil &&
		u.Role == nil && u.PlaceholderAssigneeName == nil && u.UserID == nil
}

// MemberLookup selects a single membership. At least one of ID or UserID must be set.
type MemberLookup struct {
	ID      *uuid.UUID
	UserID  *uuid.UUID
	GroupID *uuid.UUID
	// ActiveOnly excludes archived membership rows.
	ActiveOnly bool
}

type GroupMemberSearchFilters struct {
	GroupID *uuid.UUID
	UserID  *uuid.UUID
}

// InviteMember describes one invitee. A requested role is only honoured when
// the invitee has an account (UserID set); placeholders are always members.
type InviteMember struct {
	PlaceholderAssigneeName *string     `json:"placeholder_assignee_name" validate:"omitempty,max=255"`
	Role                    *MemberRole `json:"role" validate:"omitempty,member_role"`
	UserID                  *uuid.UUID  `json:"user_id"`
}

// MemberUpdate is one entry of a batch membership update, addressed by membership id.
type MemberUpdate struct {
	ID                      uuid.UUID        `json:"id" validate:"required"`
	PercentageShare         *float64         `json:"percentage_share" validate:"omitempty,gte=0,lte=100"`
	ExactShare              *decimal.Decimal `json:"exact_share" validate:"omitempty,decimal"`
	PlaceholderAssigneeName *string          `json:"placeholder_assignee_name" validate:"omitempty,max=255"`
	Role                    *MemberRole      `json:"role" validate:"omitempty,member_role"`
	Status                  *MemberStatus    `json:"status" validate:"omitempty,member_status"`
	UserID                  *uuid.UUID       `json:"user_id"`
}

func (m MemberUpdate) Values() UpdateGroupMember {
	return UpdateGroupMember{
		PercentageShare:         m.PercentageShare,
		ExactShare:              m.ExactShare,
		Status:                  m.Status,
		Role:                    m.Role,
		PlaceholderAssigneeName: m.PlaceholderAssigneeName,
		UserID:                  m.UserID,
	}
}

type InviteMembersRequest struct {
	Members []InviteMember `json:"members" validate:"dive"`
}

type RemoveMembersRequest struct {
	MemberIDs []uuid.UUID `json:"member_ids"`
}

type UpdateMembersRequest struct {
	Members []MemberUpdate `json:"members" validate:"dive"`
}

type CreateGroupMemberRequest struct {
	GroupID                 uuid.UUID        `json:"group_id" validate:"required"`
	UserID                  *uuid.UUID       `json:"user_id"`
	PercentageShare         *float64         `json:"percentage_share" validate:"omitempty,gte=0,lte=100"`
	ExactShare              *decimal.Decimal `json:"exact_share" validate:"omitempty,decimal"`
	PlaceholderAssigneeName *string          `json:"placeholder_assignee_name" validate:"omitempty,max=255"`
}

// UpdateGroupMemberRequest patches shares only. Status changes go through the
// invitation endpoints, roles and accounts through the group member workflow.
type UpdateGroupMemberRequest struct {
	PercentageShare *float64         `json:"percentage_share" validate:"omitempty,gte=0,lte=100"`
	ExactShare      *decimal.Decimal `json:"exact_share" validate:"omitempty,decimal"`
}

// Values creates a PENDING plain membership. Roles are only granted through
// the group workflows.
func (r CreateGroupMemberRequest) Values() CreateGroupMember {
	return CreateGroupMember{
		GroupID:                 r.GroupID,
		UserID:                  r.UserID,
		Role:                    RoleMember,
		Status:                  StatusPending,
		PercentageShare:         r.PercentageShare,
		ExactShare:              r.ExactShare,
		PlaceholderAssigneeName: r.PlaceholderAssigneeName,
	}
}

func (r UpdateGroupMemberRequest) Values() UpdateGroupMember {
	return UpdateGroupMember{
		PercentageShare: r.PercentageShare,
		ExactShare:      r.ExactShare,
	}
}
