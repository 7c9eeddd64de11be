// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is the extended public record owned by exactly one User.
// The unique index on UserID enforces the 1:1 relationship.
type Profile struct {
	ID             uint     `gorm:"primaryKey" json:"id"`
	UserID         uint     `gorm:"not null;uniqueIndex" json:"user_id"`
	User           User     `gorm:"foreignKey:UserID" json:"user"`
	Handle         string   `gorm:"unique;not null" json:"handle"`
	Status         string   `gorm:"not null" json:"status"`
	Skills         []string `gorm:"serializer:json" json:"skills"`
	Company        string   `json:"company,omitempty"`
	Website        string   `json:"website,omitempty"`
	Location       string   `json:"location,omitempty"`
	Bio            string   `json:"bio,omitempty"`
	GithubUsername string   `json:"githubusername,omitempty"`
	Youtube        string   `json:"youtube,omitempty"`
	Twitter        string   `json:"twitter,omitempty"`
	Linkedin       string   `json:"linkedin,omitempty"`
	Instagram      string   `json:"instagram,omitempty"`

	// Embedded collections, newest entry first.
	Experience []Experience `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"experience"`
	Education  []Education  `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"education"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Experience is a work-history entry embedded in a Profile.
// The auto-increment ID serves as the entry's locally-unique identifier.
type Experience struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ProfileID   uint       `gorm:"not null;index" json:"-"`
	Title       string     `gorm:"not null" json:"title"`
	Company     string     `gorm:"not null" json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `gorm:"not null" json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `gorm:"default:false" json:"current"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Education is a schooling entry embedded in a Profile.
type Education struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ProfileID    uint       `gorm:"not null;index" json:"-"`
	School       string     `gorm:"not null" json:"school"`
	Degree       string     `gorm:"not null" json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy,omitempty"`
	From         time.Time  `gorm:"not null" json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `gorm:"default:false" json:"current"`
	Description  string     `json:"description,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
