package models

import (
	"time"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"default:'employee'"` // admin, employee
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserRole string

const (
	Admin    UserRole = "admin"
	Employee UserRole = "employee"
)

// Invitation is a single-use code that lets a new staff member register.
type Invitation struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Code      string     `json:"code" gorm:"unique;not null"`
	Email     string     `json:"email,omitempty"` // empty means any address may use it
	Role      string     `json:"role" gorm:"default:'employee'"`
	ExpiresAt *time.Time `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	UsedBy    *uint      `json:"used_by"`
	CreatedBy uint       `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
}

// Usable reports whether the invitation can still be redeemed at now.
func (i *Invitation) Usable(now time.Time) bool {
	if i.UsedAt != nil {
		return false
	}
	return i.ExpiresAt == nil || now.Before(*i.ExpiresAt)
}
