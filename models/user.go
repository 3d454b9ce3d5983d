package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User roles
const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// BcryptCost is the adaptive hashing cost used for passwords
const BcryptCost = 10

// Address represents a postal address stored on a user profile
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// User represents a storefront account (customer, manager or admin)
type User struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	FirstName            string         `gorm:"not null" json:"firstName"`
	LastName             string         `gorm:"not null" json:"lastName"`
	Email                string         `gorm:"uniqueIndex;not null" json:"email"`
	Password             string         `gorm:"not null" json:"-"` // bcrypt hash, never serialized
	Role                 string         `gorm:"not null;default:'user'" json:"role"`
	IsEmailVerified      bool           `gorm:"not null;default:false" json:"isEmailVerified"`
	VerificationToken    *string        `json:"-"` // sha256 digest of the raw token
	ResetPasswordToken   *string        `json:"-"` // sha256 digest of the raw token
	ResetPasswordExpires *time.Time     `json:"-"`
	Address              Address        `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	PhoneNumber          string         `json:"phoneNumber"`
	LoyaltyPoints        int            `gorm:"not null;default:0" json:"loyaltyPoints"`
	PasswordChangedAt    *time.Time     `json:"-"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// SetPassword hashes the plaintext password and records the change time,
// which invalidates tokens issued before it.
func (u *User) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), BcryptCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	now := time.Now()
	u.PasswordChangedAt = &now
	return nil
}

// CheckPassword compares a plaintext candidate against the stored hash
func (u *User) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext)) == nil
}

// PasswordChangedAfter reports whether the password was changed after the
// given token issue time. Comparison is at second precision, matching the
// resolution of JWT iat claims.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Truncate(time.Second).After(issuedAt.Truncate(time.Second))
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
