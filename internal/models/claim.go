// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// ClaimStatus represents the review state of an ownership claim.
type ClaimStatus string

const (
	// ClaimStatusPending indicates a submitted claim awaiting the finder's review.
	ClaimStatusPending ClaimStatus = "pending"
	// ClaimStatusForwardedToAdmin indicates the finder escalated the claim for admin review.
	ClaimStatusForwardedToAdmin ClaimStatus = "forwarded_to_admin"
	// ClaimStatusApproved indicates the claim won the item. Terminal.
	ClaimStatusApproved ClaimStatus = "approved"
	// ClaimStatusRejected indicates the claim was turned down. Terminal.
	ClaimStatusRejected ClaimStatus = "rejected"

	// Reserved states for future review flows. No operation transitions into
	// them, so they are unreachable until such a flow exists.

	// ClaimStatusNeedsMoreInfo is reserved for a finder requesting more proof.
	ClaimStatusNeedsMoreInfo ClaimStatus = "needs_more_info"
	// ClaimStatusDisputed is reserved for a claimant contesting a rejection.
	ClaimStatusDisputed ClaimStatus = "disputed"
	// ClaimStatusClosed is reserved for finalized claim processes.
	ClaimStatusClosed ClaimStatus = "closed"
)

// claimTransitions is the authoritative transition table for the claim state
// machine. Any transition not listed here is rejected, so adding a new flow
// means extending this table rather than scattering status checks.
var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimStatusPending:          {ClaimStatusForwardedToAdmin, ClaimStatusApproved, ClaimStatusRejected},
	ClaimStatusForwardedToAdmin: {ClaimStatusApproved, ClaimStatusRejected},
}

// CanTransitionTo reports whether the state machine permits moving from s to next.
func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	for _, allowed := range claimTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Active reports whether the claim is still awaiting a decision.
func (s ClaimStatus) Active() bool {
	return s == ClaimStatusPending || s == ClaimStatusForwardedToAdmin
}

// Terminal reports whether no further transitions are possible from s.
func (s ClaimStatus) Terminal() bool {
	return len(claimTransitions[s]) == 0
}

// TransitionSources returns every status from which the state machine permits
// moving to target. Conditional status updates use this as their WHERE set so
// an unmodeled transition cannot be written even under races.
func TransitionSources(target ClaimStatus) []ClaimStatus {
	var sources []ClaimStatus
	for from, allowed := range claimTransitions {
		for _, to := range allowed {
			if to == target {
				sources = append(sources, from)
			}
		}
	}
	return sources
}

// ActiveClaimStatuses lists the statuses in which a claim still competes for its item.
func ActiveClaimStatuses() []ClaimStatus {
	return []ClaimStatus{ClaimStatusPending, ClaimStatusForwardedToAdmin}
}

// Claim represents one user's assertion of ownership over a found item.
type Claim struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	Description    string      `gorm:"type:text;not null" json:"description"`
	ProofImagePath string      `json:"proof_image_path,omitempty"`
	Status         ClaimStatus `gorm:"type:varchar(32);not null;default:'pending';index:idx_claims_status" json:"status"`
	// RejectionReason is recorded for audit when a claim is rejected, either
	// directly by an admin or as part of an approval sweep.
	RejectionReason string    `json:"rejection_reason,omitempty"`
	ClaimDate       time.Time `json:"claim_date"`

	UserID uint `gorm:"not null;index:idx_claims_user_item" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"user"`
	ItemID uint `gorm:"not null;index:idx_claims_user_item;index:idx_claims_item" json:"item_id"`
	Item   Item `gorm:"foreignKey:ItemID" json:"item"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (Claim) TableName() string {
	return "claims"
}
