package controllers

import (
	"errors"
	"strconv"

	"kidslearn/backend/config"
	"kidslearn/backend/models"
	"kidslearn/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg}
}

func (cc *CoursesController) GetUserCourses(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var courses []models.Course
	cc.DB.Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.user_id = ? AND enrollments.deleted_at IS NULL", userID).
		Find(&courses)

	var result []fiber.Map
	for _, course := range courses {
		var enrollment models.Enrollment
		cc.DB.Where("user_id = ? AND course_id = ?", userID, course.ID).First(&enrollment)

		var lessonCount int64
		cc.DB.Model(&models.Lesson{}).
			Joins("JOIN chapters ON chapters.id = lessons.chapter_id").
			Where("chapters.course_id = ?", course.ID).
			Count(&lessonCount)

		result = append(result, fiber.Map{
			"id":         course.ID,
			"title":      course.Title,
			"age_group":  course.AgeGroup,
			"subject":    course.Subject,
			"logo_url":   course.LogoURL,
			"lessons":    lessonCount,
			"start_date": enrollment.StartDate,
			"status":     enrollment.Status,
		})
	}

	return c.JSON(result)
}

func (cc *CoursesController) GetAvailableCourses(c *fiber.Ctx) error {
	// Get query parameters
	ageGroup := c.Query("age_group")
	subject := c.Query("subject")

	query := cc.DB.Model(&models.Course{}).Where("access_level = 'public'")

	if ageGroup != "" {
		query = query.Where("age_group = ?", ageGroup)
	}

	if subject != "" {
		query = query.Where("subject LIKE ?", "%"+subject+"%")
	}

	var courses []models.Course
	query.Find(&courses)

	var result []fiber.Map
	for _, course := range courses {
		result = append(result, fiber.Map{
			"id":          course.ID,
			"title":       course.Title,
			"description": course.ShortDesc,
			"age_group":   course.AgeGroup,
			"subject":     course.Subject,
			"author":      course.AuthorID,
			"logo_url":    course.LogoURL,
		})
	}

	return c.JSON(result)
}

func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := cc.DB.Preload("Chapters.Lessons").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	var chapters []fiber.Map
	for _, chapter := range course.Chapters {
		recorded, bonus := 0, 0
		for _, lesson := range chapter.Lessons {
			if lesson.Category == "bonus" {
				bonus++
			} else {
				recorded++
			}
		}

		chapters = append(chapters, fiber.Map{
			"id":               chapter.ID,
			"title":            chapter.Title,
			"sequence":         chapter.Sequence,
			"term":             chapter.Term,
			"recorded_lessons": recorded,
			"bonus_lessons":    bonus,
		})
	}

	return c.JSON(fiber.Map{
		"course": fiber.Map{
			"id":          course.ID,
			"title":       course.Title,
			"description": course.Description,
			"short_desc":  course.ShortDesc,
			"age_group":   course.AgeGroup,
			"subject":     course.Subject,
			"logo_url":    course.LogoURL,
			"author":      course.AuthorID,
			"chapters":    chapters,
		},
	})
}

func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var input struct {
		Title       string `json:"title" validate:"required"`
		ShortDesc   string `json:"short_desc"`
		Description string `json:"description"`
		AgeGroup    string `json:"age_group" validate:"omitempty,oneof=4-6 7-9 10-12"`
		Subject     string `json:"subject"`
		LogoURL     string `json:"logo_url"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	course := models.Course{
		Title:       input.Title,
		ShortDesc:   input.ShortDesc,
		Description: input.Description,
		AgeGroup:    input.AgeGroup,
		Subject:     input.Subject,
		LogoURL:     input.LogoURL,
		AuthorID:    userID,
		AccessLevel: "public",
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create course",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Course created",
		"course":  course,
	})
}

func (cc *CoursesController) AddChapter(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var input struct {
		Title string `json:"title" validate:"required"`
		Term  string `json:"term" validate:"required,startswith=term"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	// Номер четверти — следующий по порядку
	var chapterCount int64
	cc.DB.Model(&models.Chapter{}).Where("course_id = ?", courseID).Count(&chapterCount)

	chapter := models.Chapter{
		CourseID: uint(courseID),
		Title:    input.Title,
		Term:     input.Term,
		Sequence: int(chapterCount) + 1,
	}

	if err := cc.DB.Create(&chapter).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create chapter",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Chapter added",
		"chapter": chapter,
	})
}

func (cc *CoursesController) AddLesson(c *fiber.Ctx) error {
	chapterID, err := strconv.Atoi(c.Params("chapterId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid chapter ID",
		})
	}

	var input struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		Category    string `json:"category" validate:"required,oneof=recorded bonus"`
		VideoURL    string `json:"video_url" validate:"omitempty,url"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var chapter models.Chapter
	if err := cc.DB.First(&chapter, chapterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Chapter not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	// Позиция в списке своей категории задает календарный порядок
	var lessonCount int64
	cc.DB.Model(&models.Lesson{}).
		Where("chapter_id = ? AND category = ?", chapterID, input.Category).
		Count(&lessonCount)

	lesson := models.Lesson{
		ChapterID:     uint(chapterID),
		Title:         input.Title,
		Description:   input.Description,
		Category:      input.Category,
		SequenceOrder: int(lessonCount) + 1,
		VideoURL:      input.VideoURL,
		MediaID:       uuid.New(),
	}

	if err := cc.DB.Create(&lesson).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create lesson",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Lesson added",
		"lesson":  lesson,
	})
}

func (cc *CoursesController) UpdateLesson(c *fiber.Ctx) error {
	chapterID, err := strconv.Atoi(c.Params("chapterId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid chapter ID",
		})
	}

	lessonID, err := strconv.Atoi(c.Params("lessonId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lesson ID",
		})
	}

	var input struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		VideoURL      string `json:"video_url" validate:"omitempty,url"`
		SequenceOrder int    `json:"sequence_order"`
	}

	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if errs := utils.ValidateStruct(input); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var lesson models.Lesson
	if err := cc.DB.Where("id = ? AND chapter_id = ?", lessonID, chapterID).First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Lesson not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not query database",
		})
	}

	// Update fields
	if input.Title != "" {
		lesson.Title = input.Title
	}
	if input.Description != "" {
		lesson.Description = input.Description
	}
	if input.VideoURL != "" {
		lesson.VideoURL = input.VideoURL
	}
	if input.SequenceOrder != 0 {
		lesson.SequenceOrder = input.SequenceOrder
	}

	if err := cc.DB.Save(&lesson).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update lesson",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Lesson updated",
		"lesson":  lesson,
	})
}
