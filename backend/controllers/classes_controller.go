package controllers

import (
	"errors"
	"strconv"

	"kidslearn/backend/config"
	"kidslearn/backend/models"
	"kidslearn/backend/unlock"
	"kidslearn/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ClassesController отдает расписание занятий: сегодняшний live-урок,
// списки Recorded/Bonus с флагами доступности и состояние четвертей.
// Вся логика расчета живет в пакете unlock, контроллер только собирает
// входные данные и раскладывает результат в JSON.
type ClassesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewClassesController(db *gorm.DB, cfg *config.Config) *ClassesController {
	return &ClassesController{DB: db, Cfg: cfg}
}

// quarterPlans строит план четвертей курса в порядке их следования
func (clc *ClassesController) quarterPlans(courseID int) ([]unlock.QuarterPlan, []models.Chapter, error) {
	var chapters []models.Chapter
	if err := clc.DB.Preload("Lessons").
		Where("course_id = ?", courseID).
		Order("sequence ASC").
		Find(&chapters).Error; err != nil {
		return nil, nil, err
	}

	plans := make([]unlock.QuarterPlan, 0, len(chapters))
	for _, chapter := range chapters {
		plan := unlock.QuarterPlan{
			ChapterID: chapter.ID,
			Term:      chapter.Term,
			Sequence:  chapter.Sequence,
		}
		for _, lesson := range chapter.Lessons {
			if lesson.Category == "bonus" {
				plan.BonusLessons++
			} else {
				plan.RecordedLessons++
			}
		}
		plans = append(plans, plan)
	}
	return plans, chapters, nil
}

// unlockEnrollment собирает снимок записи студента для расчета доступности
func (clc *ClassesController) unlockEnrollment(userID uint, courseID int, enrollment models.Enrollment) unlock.Enrollment {
	enr := unlock.Enrollment{
		StartDate:          enrollment.StartDate,
		HasStartDate:       !enrollment.StartDate.IsZero(),
		PurchasedTerms:     make(map[string]bool),
		SubscribedChapters: make(map[uint]bool),
	}

	var purchases []models.TermPurchase
	clc.DB.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&purchases)
	for _, purchase := range purchases {
		enr.PurchasedTerms[purchase.Term] = true
	}

	var subscriptions []models.ChapterSubscription
	clc.DB.Joins("JOIN chapters ON chapters.id = chapter_subscriptions.chapter_id").
		Where("chapter_subscriptions.user_id = ? AND chapters.course_id = ?", userID, courseID).
		Find(&subscriptions)
	for _, sub := range subscriptions {
		enr.SubscribedChapters[sub.ChapterID] = true
	}

	return enr
}

// findEnrollment возвращает запись студента на курс
func (clc *ClassesController) findEnrollment(userID uint, courseID int) (models.Enrollment, error) {
	var enrollment models.Enrollment
	err := clc.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	return enrollment, err
}

// GetLiveClass возвращает сегодняшнее занятие курса. В выходной занятий нет —
// отдаем явное состояние "no class today", а не пустой урок.
func (clc *ClassesController) GetLiveClass(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, clc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	enrollment, err := clc.findEnrollment(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Not enrolled in this course")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	today := Now()
	category := unlock.ClassifyDay(today)

	if category == unlock.CategoryNone {
		return c.JSON(fiber.Map{
			"active_category": category,
			"live":            nil,
			"message":         "No class today, see you on Monday!",
		})
	}

	// Без даты старта решение принять нельзя
	if enrollment.StartDate.IsZero() {
		return c.JSON(fiber.Map{
			"active_category": category,
			"live":            nil,
			"state":           unlock.GateIndeterminate,
		})
	}

	plans, chapters, err := clc.quarterPlans(courseID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if len(plans) == 0 {
		return utils.NotFound(c, "Course has no scheduled content")
	}

	enr := clc.unlockEnrollment(userID, courseID, enrollment)

	idx, err := unlock.TodayIndex(enrollment.StartDate, today, category)
	if err != nil {
		return utils.InternalServerError(c, "Could not resolve today's lesson")
	}

	// Находим четверть, в которую попадает сквозной индекс занятия
	remaining := idx
	for i, plan := range plans {
		listLen := plan.RecordedLessons
		if category == unlock.CategoryBonus {
			listLen = plan.BonusLessons
		}

		if remaining >= listLen && i < len(plans)-1 {
			remaining -= listLen
			continue
		}

		state := unlock.QuarterGate(plans, i, enr, today)
		if state != unlock.GateUnlocked {
			return c.JSON(fiber.Map{
				"active_category": category,
				"live":            nil,
				"state":           state,
				"chapter_id":      plan.ChapterID,
			})
		}

		var lessons []models.Lesson
		clc.DB.Where("chapter_id = ? AND category = ?", chapters[i].ID, string(category)).
			Order("sequence_order ASC").
			Find(&lessons)
		if len(lessons) == 0 {
			return utils.NotFound(c, "Chapter has no lessons in this category")
		}

		lesson := lessons[unlock.ClampIndex(remaining, len(lessons))]
		return c.JSON(fiber.Map{
			"active_category": category,
			"state":           state,
			"chapter_id":      chapters[i].ID,
			"lesson_index":    unlock.ClampIndex(remaining, len(lessons)),
			"live": fiber.Map{
				"id":        lesson.ID,
				"title":     lesson.Title,
				"video_url": lesson.VideoURL,
				"media_id":  lesson.MediaID,
			},
		})
	}

	return utils.NotFound(c, "Course has no scheduled content")
}

// GetChapterLessons возвращает уроки четверти с флагами доступности.
// Recorded открыты по сегодняшний день включительно, Bonus — по вчерашний.
func (clc *ClassesController) GetChapterLessons(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, clc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	chapterID, err := strconv.Atoi(c.Params("chapterId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid chapter ID")
	}

	category := unlock.Category(c.Query("category", "recorded"))
	if category != unlock.CategoryRecorded && category != unlock.CategoryBonus {
		return utils.BadRequest(c, "Invalid category")
	}

	enrollment, err := clc.findEnrollment(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Not enrolled in this course")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	plans, chapters, err := clc.quarterPlans(courseID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	quarterIdx := -1
	for i, chapter := range chapters {
		if chapter.ID == uint(chapterID) {
			quarterIdx = i
			break
		}
	}
	if quarterIdx == -1 {
		return utils.NotFound(c, "Chapter not found")
	}

	today := Now()
	enr := clc.unlockEnrollment(userID, courseID, enrollment)
	state := unlock.QuarterGate(plans, quarterIdx, enr, today)

	var lessons []models.Lesson
	clc.DB.Where("chapter_id = ? AND category = ?", chapterID, string(category)).
		Order("sequence_order ASC").
		Find(&lessons)

	unlockedCount := 0
	// GateUnlocked гарантирует известную дату старта
	if state == unlock.GateUnlocked {
		unlockedCount = unlock.UnlockedCount(enrollment.StartDate, today, category, len(lessons))
	}

	result := make([]fiber.Map, 0, len(lessons))
	for i, lesson := range lessons {
		item := fiber.Map{
			"id":       lesson.ID,
			"title":    lesson.Title,
			"unlocked": i < unlockedCount,
		}
		// Ссылки на видео отдаем только для открытых уроков
		if i < unlockedCount {
			item["video_url"] = lesson.VideoURL
			item["media_id"] = lesson.MediaID
		}
		result = append(result, item)
	}

	return c.JSON(fiber.Map{
		"chapter_id":     chapterID,
		"category":       category,
		"state":          state,
		"unlocked_count": unlockedCount,
		"lessons":        result,
	})
}

// GetQuarters возвращает состояние всех четвертей курса одним решением
func (clc *ClassesController) GetQuarters(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, clc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	enrollment, err := clc.findEnrollment(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Not enrolled in this course")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	plans, _, err := clc.quarterPlans(courseID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	enr := clc.unlockEnrollment(userID, courseID, enrollment)
	decision := unlock.Decide(plans, enr, Now())

	return c.JSON(decision)
}
