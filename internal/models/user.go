package models

import "time"

// User is the per-identity profile document. Accounts and categories are
// stored as embedded JSON documents rather than joined rows: profile
// mutations are whole-document replacements keyed by id.
type User struct {
	Base
	Email      string   `gorm:"uniqueIndex;not null" json:"email"`
	Password   string   `gorm:"not null" json:"-"`
	Name       string   `gorm:"not null" json:"name"`
	Username   string   `json:"username"`
	PhotoURL   string   `json:"photo_url,omitempty"`
	Accounts   []string `gorm:"serializer:json" json:"accounts"`
	Categories []string `gorm:"serializer:json" json:"categories"`

	IsActive            bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash    string     `gorm:"size:64" json:"-"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
}

// DefaultAccounts are seeded into new profiles at registration.
var DefaultAccounts = []string{"Carteira", "Conta Corrente", "Cartão de Crédito", "Poupança"}

// DefaultCategories are seeded into new profiles at registration.
var DefaultCategories = []string{
	"Alimentação",
	"Moradia",
	"Transporte",
	"Saúde",
	"Educação",
	"Lazer",
	"Salário",
	"Outros",
}
