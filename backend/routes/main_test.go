package routes

import (
	"os"
	"testing"
	"time"

	"kidslearn/backend/config"
	"kidslearn/backend/controllers"
	"kidslearn/backend/models"
	"kidslearn/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	app          *fiber.App
	db           *gorm.DB
	cfg          *config.Config
	student      models.User
	admin        models.User
	studentToken string
	adminToken   string
)

// Все расчеты доступности зависят от дня недели, поэтому "сегодня"
// фиксируется: среда 2024-01-10 (курс в тестах стартует в Пн 2024-01-01)
var testToday = time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	// Setup
	setup()
	// Run tests
	code := m.Run()
	// Cleanup
	teardown()
	os.Exit(code)
}

func setup() {
	// Load test configuration
	cfg = &config.Config{
		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "postgres",
		DBPassword: "postgres",
		DBName:     "kidslearn_test",
		JWTSecret:  "testsecret",
		ServerPort: "8080",
	}

	// Initialize database
	var err error
	db, err = utils.InitDB(cfg)
	if err != nil {
		panic(err)
	}

	if err := utils.MigrateDB(db); err != nil {
		panic(err)
	}

	// Фиксируем текущую дату для детерминизма
	controllers.Now = func() time.Time { return testToday }

	// Create test app
	app = fiber.New()
	SetupRoutes(app, db, cfg)

	// Create test users
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	student = models.User{
		Username:     "teststudent",
		Email:        "student@example.com",
		PasswordHash: string(hash),
		AgeGroup:     "7-9",
		ParentEmail:  "parent@example.com",
	}
	db.Create(&student)

	admin = models.User{
		Username:     "testadmin",
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		Role:         "admin",
	}
	db.Create(&admin)

	studentToken, _ = utils.GenerateJWTToken(student.ID, cfg)
	adminToken, _ = utils.GenerateJWTToken(admin.ID, cfg)
}

func teardown() {
	// Clean up test database
	db.Migrator().DropTable(
		&models.User{},
		&models.UserProgress{},
		&models.LoginHistory{},
		&models.Course{},
		&models.Chapter{},
		&models.Lesson{},
		&models.Enrollment{},
		&models.TermPurchase{},
		&models.ChapterSubscription{},
	)
}
