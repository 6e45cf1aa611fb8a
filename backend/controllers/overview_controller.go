package controllers

import (
	"kidslearn/backend/config"
	"kidslearn/backend/models"
	"kidslearn/backend/unlock"
	"kidslearn/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OverviewController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Classes *ClassesController
}

func NewOverviewController(db *gorm.DB, cfg *config.Config) *OverviewController {
	return &OverviewController{DB: db, Cfg: cfg, Classes: NewClassesController(db, cfg)}
}

// SearchCourses возвращает курсы каталога по критериям поиска
func (oc *OverviewController) SearchCourses(c *fiber.Ctx) error {
	search := c.Query("search")
	ageGroup := c.Query("age_group")
	sort := c.Query("sort", "popularity") // popularity, newest

	query := oc.DB.Model(&models.Course{}).Where("access_level = 'public'")

	// Поиск по названию/описанию
	if search != "" {
		query = query.Where("title ILIKE ? OR short_desc ILIKE ? OR description ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	// Фильтр по возрастной группе
	if ageGroup != "" {
		query = query.Where("age_group = ?", ageGroup)
	}

	// Сортировка
	switch sort {
	case "newest":
		query = query.Order("created_at DESC")
	default: // popularity
		query = query.Order("(SELECT COUNT(*) FROM enrollments WHERE course_id = courses.id) DESC")
	}

	var courses []models.Course
	if err := query.Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch courses")
	}

	// Формируем упрощенный ответ
	var result []map[string]interface{}
	for _, course := range courses {
		// Получаем количество участников
		var enrollments int64
		oc.DB.Model(&models.Enrollment{}).
			Where("course_id = ?", course.ID).
			Count(&enrollments)

		result = append(result, map[string]interface{}{
			"id":          course.ID,
			"title":       course.Title,
			"short_desc":  course.ShortDesc,
			"age_group":   course.AgeGroup,
			"subject":     course.Subject,
			"logo_url":    course.LogoURL,
			"enrollments": enrollments,
			"created_at":  course.CreatedAt,
		})
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// GetUserOverview возвращает дашборд: серию входов, активные курсы и
// сегодняшнее занятие по каждому из них
func (oc *OverviewController) GetUserOverview(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, oc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	// Получаем прогресс пользователя
	var progress models.UserProgress
	oc.DB.Where("user_id = ?", userID).First(&progress)

	// Активные записи на курсы
	var enrollments []models.Enrollment
	if err := oc.DB.Where("user_id = ? AND status = 'active'", userID).
		Order("updated_at DESC").
		Find(&enrollments).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch enrollments")
	}

	today := Now()
	activeCategory := unlock.ClassifyDay(today)

	var activeCourses []fiber.Map
	for _, enrollment := range enrollments {
		var course models.Course
		if err := oc.DB.First(&course, enrollment.CourseID).Error; err != nil {
			continue
		}

		plans, _, err := oc.Classes.quarterPlans(int(enrollment.CourseID))
		if err != nil {
			continue
		}

		enr := oc.Classes.unlockEnrollment(userID, int(enrollment.CourseID), enrollment)
		decision := unlock.Decide(plans, enr, today)

		activeCourses = append(activeCourses, fiber.Map{
			"course_id": course.ID,
			"title":     course.Title,
			"logo_url":  course.LogoURL,
			"decision":  decision,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"streak_days":       progress.StreakDays,
		"courses_completed": progress.CoursesCompleted,
		"classes_watched":   progress.ClassesWatched,
		"active_category":   activeCategory,
		"active_courses":    activeCourses,
	})
}
