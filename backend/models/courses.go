package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	Title       string
	ShortDesc   string
	Description string
	AgeGroup    string // 4-6, 7-9, 10-12
	Subject     string
	AuthorID    uint
	LogoURL     string
	AccessLevel string `gorm:"default:public"` // public, private
	Chapters    []Chapter
}

// Chapter это учебная четверть курса (Quarter 1/2/3)
type Chapter struct {
	gorm.Model
	CourseID uint
	Title    string
	Sequence int    // 1-based quarter number, fixed ordering Q1 < Q2 < Q3
	Term     string // term1, term2, term3 — purchasable unit, 1:1 with the quarter
	Lessons  []Lesson
}

// Lesson — занятие внутри четверти; позиция в списке задает календарный порядок
type Lesson struct {
	gorm.Model
	ChapterID     uint
	Title         string
	Description   string
	Category      string // recorded, bonus
	SequenceOrder int
	VideoURL      string
	MediaID       uuid.UUID `gorm:"type:uuid"`
}
