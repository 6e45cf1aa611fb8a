package models

import (
	"time"

	"gorm.io/gorm"
)

type Enrollment struct {
	gorm.Model
	UserID    uint `gorm:"index;not null"`
	CourseID  uint `gorm:"index;not null"`
	StartDate time.Time
	Status    string `gorm:"default:active"` // active, completed, cancelled
}

// TermPurchase фиксирует покупку четверти курса
type TermPurchase struct {
	gorm.Model
	UserID   uint `gorm:"index;not null"`
	CourseID uint `gorm:"index;not null"`
	Term     string // term1, term2, term3
}

// ChapterSubscription — прямая подписка на отдельную четверть
type ChapterSubscription struct {
	gorm.Model
	UserID    uint `gorm:"index;not null"`
	ChapterID uint `gorm:"index;not null"`
}
