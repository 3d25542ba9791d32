package models

import (
	"time"
)

type User struct {
	ID     int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name   string    `json:"name" gorm:"type:text;not null"`
	Email  string    `json:"email" gorm:"type:text;uniqueIndex:idx_users_email,where:email <> ''"`
	Phone  string    `json:"phone" gorm:"type:text"`
	Status string    `json:"status" gorm:"type:text;not null;default:'ACTIVE'"`
	CDate  time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate  time.Time `json:"mdate" gorm:"autoUpdateTime"`
}
