package controllers

import (
	"errors"
	"strconv"
	"time"

	"kidslearn/backend/config"
	"kidslearn/backend/models"
	"kidslearn/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EnrollmentController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewEnrollmentController(db *gorm.DB, cfg *config.Config) *EnrollmentController {
	return &EnrollmentController{DB: db, Cfg: cfg}
}

// Enroll записывает пользователя на курс. Дата старта фиксирует точку
// отсчета для открытия занятий; по умолчанию — день записи.
func (ec *EnrollmentController) Enroll(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	}
	// Тело запроса необязательно: без него дата старта — сегодня
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return utils.BadRequest(c, "Cannot parse JSON")
		}
	}

	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var course models.Course
	if err := ec.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var existing models.Enrollment
	if err := ec.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; err == nil {
		return utils.BadRequest(c, "Already enrolled in this course")
	}

	startDate := Now()
	if input.StartDate != "" {
		startDate, _ = time.Parse("2006-01-02", input.StartDate)
	}
	// Время суток на расписание не влияет
	startDate = time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.UTC)

	enrollment := models.Enrollment{
		UserID:    userID,
		CourseID:  uint(courseID),
		StartDate: startDate,
		Status:    "active",
	}

	if err := ec.DB.Create(&enrollment).Error; err != nil {
		return utils.InternalServerError(c, "Could not create enrollment")
	}

	return utils.Created(c, enrollment)
}

// PurchaseTerm фиксирует покупку четверти (term1/term2/term3)
func (ec *EnrollmentController) PurchaseTerm(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		Term string `json:"term" validate:"required,startswith=term"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	// Term должен существовать в курсе
	var chapter models.Chapter
	if err := ec.DB.Where("course_id = ? AND term = ?", courseID, input.Term).First(&chapter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Term not found in this course")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var existing models.TermPurchase
	if err := ec.DB.Where("user_id = ? AND course_id = ? AND term = ?", userID, courseID, input.Term).
		First(&existing).Error; err == nil {
		return utils.BadRequest(c, "Term already purchased")
	}

	purchase := models.TermPurchase{
		UserID:   userID,
		CourseID: uint(courseID),
		Term:     input.Term,
	}

	if err := ec.DB.Create(&purchase).Error; err != nil {
		return utils.InternalServerError(c, "Could not save purchase")
	}

	return utils.Created(c, purchase)
}

// SubscribeChapter — прямая подписка на отдельную четверть
func (ec *EnrollmentController) SubscribeChapter(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	chapterID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid chapter ID")
	}

	var chapter models.Chapter
	if err := ec.DB.First(&chapter, chapterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Chapter not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var existing models.ChapterSubscription
	if err := ec.DB.Where("user_id = ? AND chapter_id = ?", userID, chapterID).First(&existing).Error; err == nil {
		return utils.BadRequest(c, "Already subscribed to this chapter")
	}

	subscription := models.ChapterSubscription{
		UserID:    userID,
		ChapterID: uint(chapterID),
	}

	if err := ec.DB.Create(&subscription).Error; err != nil {
		return utils.InternalServerError(c, "Could not save subscription")
	}

	return utils.Created(c, subscription)
}

// GetEnrollments возвращает все записи пользователя на курсы
func (ec *EnrollmentController) GetEnrollments(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ec.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var enrollments []models.Enrollment
	if err := ec.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&enrollments).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var result []fiber.Map
	for _, enrollment := range enrollments {
		var course models.Course
		if err := ec.DB.First(&course, enrollment.CourseID).Error; err != nil {
			continue
		}

		var terms []string
		ec.DB.Model(&models.TermPurchase{}).
			Where("user_id = ? AND course_id = ?", userID, enrollment.CourseID).
			Pluck("term", &terms)

		result = append(result, fiber.Map{
			"course_id":       course.ID,
			"title":           course.Title,
			"start_date":      enrollment.StartDate,
			"status":          enrollment.Status,
			"purchased_terms": terms,
		})
	}

	return utils.Success(c, fiber.StatusOK, result)
}
