package types

import "time"

type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleOrgAdmin   Role = "org_admin"
	RoleUser       Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleOrgAdmin, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         Role      `db:"role" json:"role"`
	OrgID        *string   `db:"org_id" json:"orgId,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
