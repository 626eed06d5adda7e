package models

import (
	"gorm.io/gorm"
)

// User is an admin-app account. The public viewer is anonymous; accounts
// only exist to guard the management API.
type User struct {
	gorm.Model
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Name     string `json:"name"`
	Password string `json:"-" gorm:"not null"` // bcrypt hash
	Role     string `json:"role" gorm:"type:varchar(20);default:editor;index"` // editor, admin
}
