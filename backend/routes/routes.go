package routes

import (
	"kidslearn/backend/config"
	"kidslearn/backend/controllers"
	"kidslearn/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg)
	app.Get("/api/progress", authMiddleware, progressController.GetProgress)
	app.Get("/api/progress/overview", authMiddleware, progressController.GetProgressOverview)

	// Overview routes
	overviewController := controllers.NewOverviewController(db, cfg)
	app.Get("/api/overview/courses", authMiddleware, overviewController.SearchCourses)
	app.Get("/api/dashboard", authMiddleware, overviewController.GetUserOverview)

	// Courses routes
	coursesController := controllers.NewCoursesController(db, cfg)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.GetUserCourses)
	courses.Get("/available", coursesController.GetAvailableCourses)
	courses.Get("/:id", coursesController.GetCourseDetails)

	// Classes routes: расписание и доступность занятий
	classesController := controllers.NewClassesController(db, cfg)
	courses.Get("/:id/live", classesController.GetLiveClass)
	courses.Get("/:id/quarters", classesController.GetQuarters)
	courses.Get("/:id/chapters/:chapterId/lessons", classesController.GetChapterLessons)

	// Enrollment routes
	enrollmentController := controllers.NewEnrollmentController(db, cfg)
	app.Get("/api/enrollments", authMiddleware, enrollmentController.GetEnrollments)
	courses.Post("/:id/enroll", enrollmentController.Enroll)
	courses.Post("/:id/terms", enrollmentController.PurchaseTerm)
	app.Post("/api/chapters/:id/subscribe", authMiddleware, enrollmentController.SubscribeChapter)

	// Admin routes for courses
	adminCourses := app.Group("/api/admin/courses", authMiddleware, adminMiddleware)
	adminCourses.Post("/", coursesController.CreateCourse)
	adminCourses.Post("/:id/chapters", coursesController.AddChapter)
	adminCourses.Post("/:id/chapters/:chapterId/lessons", coursesController.AddLesson)
	adminCourses.Put("/:id/chapters/:chapterId/lessons/:lessonId", coursesController.UpdateLesson)
}
