package domain

import "time"

type UserID int64

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleViewer UserRole = "viewer"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// User is a dashboard account. PasswordHash never leaves the process boundary.
type User struct {
	ID           UserID     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         UserRole   `json:"role"`
	Status       UserStatus `json:"status"`
	Avatar       string     `json:"avatar"`
	Permissions  []string   `json:"permissions"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// PermissionsForRole derives the permission set from a role.
func PermissionsForRole(role UserRole) []string {
	if role == RoleAdmin {
		return []string{"all"}
	}
	return []string{"view"}
}

// UserPatch carries a partial update. Nil fields are preserved on merge.
// PasswordHash is set by the service after hashing, never taken from request input.
type UserPatch struct {
	Username     *string     `json:"username"`
	Email        *string     `json:"email"`
	PasswordHash *string     `json:"-"`
	Role         *UserRole   `json:"role"`
	Status       *UserStatus `json:"status"`
	Avatar       *string     `json:"avatar"`
	LastLogin    *time.Time  `json:"-"`
}

// Apply merges the patch over the user. Permissions follow role changes.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		u.Role = *p.Role
		u.Permissions = PermissionsForRole(*p.Role)
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.LastLogin != nil {
		u.LastLogin = p.LastLogin
	}
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role   UserRole
	Status UserStatus
}

// UserStatsReport aggregates account counts for the admin dashboard.
type UserStatsReport struct {
	Total          int            `json:"total"`
	Active         int            `json:"active"`
	Roles          map[string]int `json:"roles"`
	NewToday       int            `json:"newToday"`
	LastWeekGrowth int            `json:"lastWeekGrowth"`
}
