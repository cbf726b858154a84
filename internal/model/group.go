package model

import (
	"time"

	"github.com/google/uuid"
)

type SplitType string

const (
	SplitTypeEqual      SplitType = "EQUAL"
	SplitTypePercentage SplitType = "PERCENTAGE"
	SplitTypeExact      SplitType = "EXACT"
)

func (s SplitType) Valid() bool {
	switch s {
	case SplitTypeEqual, SplitTypePercentage, SplitTypeExact:
		return true
	}
	return false
}

// Group is a shared-expense collective. Ownership lives on the membership rows:
// the member with RoleOwner owns the group.
type Group struct {
	ID                uuid.UUID          `json:"id"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	DeletedAt         *time.Time         `json:"deleted_at"`
	Name              string             `json:"name"`
	Description       *string            `json:"description"`
	Tag               *string            `json:"tag"`
	SplitType         SplitType          `json:"split_type"`
	SettlementSummary *SettlementSummary `json:"settlement_summary"`
}

func (g Group) Archived() bool {
	return g.DeletedAt != nil
}

type CreateGroup struct {
	Name              string
	Description       *string
	Tag               *string
	SplitType         SplitType
	SettlementSummary *SettlementSummary
}

// UpdateGroup holds a partial update; nil fields are left untouched.
type UpdateGroup struct {
	Name              *string
	Description       *string
	Tag               *string
	SplitType         *SplitType
	SettlementSummary *SettlementSummary
}

func (u UpdateGroup) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Tag == nil && u.SplitType == nil && u.SettlementSummary == nil
}

type GroupSearchFilters struct {
	SearchText string
}

type CreateGroupRequest struct {
	Name        string         `json:"name" validate:"required,max=255"`
	Description *string        `json:"description"`
	Tag         *string        `json:"tag" validate:"omitempty,max=64"`
	SplitType   *SplitType     `json:"split_type" validate:"omitempty,split_type"`
	Members     []InviteMember `json:"members" validate:"dive"`
}

// UpdateGroupRequest distinguishes an absent members list (nil) from an
// explicitly empty one ([]), which is rejected.
type UpdateGroupRequest struct {
	Name        *string        `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string        `json:"description"`
	Tag         *string        `json:"tag" validate:"omitempty,max=64"`
	SplitType   *SplitType     `json:"split_type" validate:"omitempty,split_type"`
	Members     []MemberUpdate `json:"members" validate:"omitempty,dive"`
}

func (r UpdateGroupRequest) GroupFields() UpdateGroup {
	return UpdateGroup{
		Name:        r.Name,
		Description: r.Description,
		Tag:         r.Tag,
		SplitType:   r.SplitType,
	}
}

// GroupUpdateResult is returned by the update-group workflow.
type GroupUpdateResult struct {
	GroupID        uuid.UUID     `json:"group_id"`
	UpdatedMembers []GroupMember `json:"updated_members"`
}

// GroupWithMembers is returned by the create-group workflow, owner first.
type GroupWithMembers struct {
	Group   Group         `json:"group"`
	Members []GroupMember `json:"members"`
}
