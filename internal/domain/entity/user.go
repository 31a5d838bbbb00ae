package entity

import "time"

// RoleGrant records a user's application for an elevated role and
// whether an admin has approved it.
type RoleGrant struct {
	Approved  bool      `firestore:"approved" json:"approved"`
	AppliedAt time.Time `firestore:"appliedAt" json:"appliedAt"`
}

// Capabilities holds the elevated roles a user may carry on top of the
// implicit buyer role. A nil grant means the user never applied.
type Capabilities struct {
	Admin       bool       `firestore:"admin" json:"admin"`
	Seller      *RoleGrant `firestore:"seller,omitempty" json:"seller,omitempty"`
	EscrowAgent *RoleGrant `firestore:"escrowAgent,omitempty" json:"escrowAgent,omitempty"`
}

type User struct {
	ID            string       `firestore:"-" json:"id"`
	Email         string       `firestore:"email" json:"email"`
	Username      string       `firestore:"username" json:"username"`
	EmailVerified bool         `firestore:"emailVerified" json:"emailVerified"`
	Capabilities  Capabilities `firestore:"capabilities" json:"capabilities"`
	Online        bool         `firestore:"online" json:"online"`
	LastSeenAt    *time.Time   `firestore:"lastSeenAt,omitempty" json:"lastSeenAt,omitempty"`
	CreatedAt     time.Time    `firestore:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time    `firestore:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Capabilities.Admin
}

func (u *User) IsApprovedSeller() bool {
	return u.Capabilities.Seller != nil && u.Capabilities.Seller.Approved
}

func (u *User) IsApprovedEscrowAgent() bool {
	return u.Capabilities.EscrowAgent != nil && u.Capabilities.EscrowAgent.Approved
}
