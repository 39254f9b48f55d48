package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RoleName is a named role assigned to users
type RoleName = string

const (
	// RoleUser is the default role assigned at sign-up
	RoleUser RoleName = "user"
	// RoleAdmin is the administrative role
	RoleAdmin RoleName = "admin"
)

// RolePrefix is prepended to a role name when it is folded into the
// authority set, e.g. ROLE_admin.
const RolePrefix = "ROLE_"

// TokenType tags the kind of credential a ledger row represents
type TokenType = string

// TokenTypeBearer is currently the only issued token type
const TokenTypeBearer TokenType = "bearer"

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	RoleID        uuid.UUID  `bun:"role_id,type:uuid" json:"role_id,omitempty"`
	Role          *Role      `bun:"rel:belongs-to,join:role_id=id" json:"role,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Role groups permissions under a stable name
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            uuid.UUID     `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          RoleName      `bun:"name,notnull,unique" json:"name,omitempty"`
	Permissions   []*Permission `bun:"m2m:role_permissions,join:Role=Permission" json:"permissions,omitempty"`
}

// Permission is a single named capability
type Permission struct {
	bun.BaseModel `bun:"table:permissions,alias:prm"`
	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string    `bun:"name,notnull" json:"name,omitempty"`
}

// RolePermission joins roles to permissions
type RolePermission struct {
	bun.BaseModel `bun:"table:role_permissions,alias:rp"`
	RoleID        uuid.UUID   `bun:"role_id,pk,type:uuid" json:"role_id,omitempty"`
	Role          *Role       `bun:"rel:belongs-to,join:role_id=id" json:"role,omitempty"`
	PermissionID  uuid.UUID   `bun:"permission_id,pk,type:uuid" json:"permission_id,omitempty"`
	Permission    *Permission `bun:"rel:belongs-to,join:permission_id=id" json:"permission,omitempty"`
}

// Token is one access token the system has handed out. Rows are only ever
// soft-revoked, never deleted; housekeeping of dead rows is external.
type Token struct {
	bun.BaseModel `bun:"table:jwts,alias:jwt"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"token,omitempty"`
	Type          TokenType  `bun:"type,notnull" json:"type,omitempty"`
	Revoked       bool       `bun:"revoked,notnull" json:"revoked"`
	Expired       bool       `bun:"expired,notnull" json:"expired"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Valid reports whether the row still authorizes requests.
func (t *Token) Valid() bool {
	return !t.Revoked && !t.Expired
}
