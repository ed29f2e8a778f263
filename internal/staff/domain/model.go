package domain

import "time"

const (
	RoleStaff   = "staff"
	RoleManager = "manager"
)

func ValidRole(role string) bool {
	return role == RoleStaff || role == RoleManager
}

type StaffUser struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Username     string     `json:"username" gorm:"type:varchar(150);not null;uniqueIndex:ux_staff_users_username"`
	PasswordHash string     `json:"-" gorm:"type:varchar(255);not null"`
	Role         string     `json:"role" gorm:"type:varchar(20);not null;default:staff"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"not null"`
}

func (StaffUser) TableName() string { return "staff_users" }

// Subject is the casbin subject of the user.
func (u StaffUser) Subject() string { return "staff:" + u.Username }
