package domain

import (
	"context"
	"time"
)

type UserType string

const (
	UserTypeUser  UserType = "USER"
	UserTypeAgent UserType = "AGENT"
	UserTypeAdmin UserType = "ADMIN"
)

func (t UserType) Valid() bool {
	switch t {
	case UserTypeUser, UserTypeAgent, UserTypeAdmin:
		return true
	}
	return false
}

// OrDefault returns USER for an empty type.
func (t UserType) OrDefault() UserType {
	if t == "" {
		return UserTypeUser
	}
	return t
}

type User struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Phone     *string   `gorm:"uniqueIndex;size:32" json:"phone"`
	Password  *string   `gorm:"size:100" json:"-"`
	Location  string    `gorm:"size:191" json:"location"`
	UserType  UserType  `gorm:"size:16;not null;default:USER" json:"userType"`
	Avatar    *string   `gorm:"size:512" json:"avatar,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// UserFields is the full set of columns an identity update overwrites.
type UserFields struct {
	Name     string
	Email    string
	Phone    *string
	Password *string
	Location string
	UserType UserType
	Avatar   *string
}

type UserStore interface {
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, id string, f UserFields) error
	Delete(ctx context.Context, id string) error
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
