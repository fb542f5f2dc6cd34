package domain

import "time"

type UserApp struct {
	UserID    UserID    `gorm:"type:uuid;primaryKey" db:"user_id" json:"user_id"`
	AppName   string    `gorm:"type:text;primaryKey" db:"app_name" json:"app_name"`
	CreatedAt time.Time `gorm:"not null" db:"created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" db:"updated_at" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (UserApp) TableName() string { return "user_apps" }
