package domain

import "time"

// Role differentiates member vs operator principals.
type Role string

const (
	RoleMember   Role = "member"
	RoleOperator Role = "operator"
)

// Valid reports whether the role is one of the two known tags.
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleOperator
}

// Identity is the resolved view of an authenticated principal. The role
// always comes from the stored record, never from a token claim.
type Identity struct {
	ID          string
	Role        Role
	DisplayName string
	Email       string
}

// Recipient addresses exactly one principal. The pairing of role and id
// is the unit every notification query filters on.
type Recipient struct {
	Role Role
	ID   string
}

// MemberRecipient builds a member-addressed recipient.
func MemberRecipient(id string) Recipient {
	return Recipient{Role: RoleMember, ID: id}
}

// OperatorRecipient builds an operator-addressed recipient.
func OperatorRecipient(id string) Recipient {
	return Recipient{Role: RoleOperator, ID: id}
}

// Key returns the room key "{role}:{id}" used for broadcast targeting.
func (r Recipient) Key() string {
	return string(r.Role) + ":" + r.ID
}

// MemberStatus represents lifecycle states for a gym member.
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "ACTIVE"
	MemberStatusSuspended MemberStatus = "SUSPENDED"
)

// Member is the domain model for gym customers.
type Member struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       MemberStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Operator models a dashboard administrator.
type Operator struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AsIdentity converts a member record into the resolver's unified view.
func (m *Member) AsIdentity() *Identity {
	return &Identity{ID: m.ID, Role: RoleMember, DisplayName: m.Name, Email: m.Email}
}

// AsIdentity converts an operator record into the resolver's unified view.
func (o *Operator) AsIdentity() *Identity {
	return &Identity{ID: o.ID, Role: RoleOperator, DisplayName: o.Name, Email: o.Email}
}
