package auth

import "time"

type Organization struct {
	OrgID     string    `gorm:"primaryKey" json:"org_id"`
	Name      string    `gorm:"uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Session struct {
	SessionID string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"not null;unique" json:"-"`
	ExpiresAt time.Time `gorm:"not null"`
}

type User struct {
	UserID         string  `gorm:"primaryKey" json:"user_id"`
	OrgID          string  `gorm:"index" json:"org_id"`
	Username       string  `gorm:"uniqueIndex" json:"username"`
	FullName       string  `json:"full_name"`
	Password       string  `json:"password" gorm:"-"`
	HashedPassword string  `json:"-"`
	Role           string  `gorm:"default:'employee'" json:"role"`
	Active         bool    `gorm:"default:true" json:"active"`
	Session        Session `gorm:"foreignKey:UserID" json:"-"`
}

func (Organization) TableName() string { return "app_auth.organizations" }
func (Session) TableName() string      { return "app_auth.sessions" }
func (User) TableName() string         { return "app_auth.users" }
