package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"kidslearn/backend/controllers"
	"kidslearn/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

func jsonID(t *testing.T, result map[string]interface{}, key string) int {
	t.Helper()
	obj, ok := result[key].(map[string]interface{})
	require.True(t, ok, "missing %q in %v", key, result)
	id, ok := obj["ID"].(float64)
	require.True(t, ok, "missing ID in %v", obj)
	return int(id)
}

// createScheduledCourse собирает через admin API курс с двумя четвертями:
// Q1 (term1) — 10 recorded + 8 bonus, Q2 (term2) — 4 recorded + 2 bonus
func createScheduledCourse(t *testing.T, title string) (courseID, chapter1ID, chapter2ID int) {
	t.Helper()

	status, result := doRequest(t, "POST", "/api/admin/courses", adminToken, map[string]interface{}{
		"title":     title,
		"age_group": "7-9",
		"subject":   "Math",
	})
	require.Equal(t, fiber.StatusOK, status)
	courseID = jsonID(t, result, "course")

	status, result = doRequest(t, "POST", fmt.Sprintf("/api/admin/courses/%d/chapters", courseID),
		adminToken, map[string]interface{}{"title": "Quarter 1", "term": "term1"})
	require.Equal(t, fiber.StatusOK, status)
	chapter1ID = jsonID(t, result, "chapter")

	status, result = doRequest(t, "POST", fmt.Sprintf("/api/admin/courses/%d/chapters", courseID),
		adminToken, map[string]interface{}{"title": "Quarter 2", "term": "term2"})
	require.Equal(t, fiber.StatusOK, status)
	chapter2ID = jsonID(t, result, "chapter")

	addLessons := func(chapterID, n int, category string) {
		for i := 1; i <= n; i++ {
			status, _ := doRequest(t, "POST",
				fmt.Sprintf("/api/admin/courses/%d/chapters/%d/lessons", courseID, chapterID),
				adminToken, map[string]interface{}{
					"title":    fmt.Sprintf("%s %d", category, i),
					"category": category,
				})
			require.Equal(t, fiber.StatusOK, status)
		}
	}

	addLessons(chapter1ID, 10, "recorded")
	addLessons(chapter1ID, 8, "bonus")
	addLessons(chapter2ID, 4, "recorded")
	addLessons(chapter2ID, 2, "bonus")

	return courseID, chapter1ID, chapter2ID
}

func enrollAndPurchase(t *testing.T, courseID int, terms ...string) {
	t.Helper()

	status, _ := doRequest(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID),
		studentToken, map[string]interface{}{"start_date": "2024-01-01"})
	require.Equal(t, fiber.StatusCreated, status)

	for _, term := range terms {
		status, _ := doRequest(t, "POST", fmt.Sprintf("/api/courses/%d/terms", courseID),
			studentToken, map[string]interface{}{"term": term})
		require.Equal(t, fiber.StatusCreated, status)
	}
}

func TestLiveClassToday(t *testing.T) {
	// Старт Пн 2024-01-01, сегодня Ср 2024-01-10: пятый recorded-день
	courseID, _, _ := createScheduledCourse(t, "Live Course")
	enrollAndPurchase(t, courseID, "term1")

	status, result := doRequest(t, "GET", fmt.Sprintf("/api/courses/%d/live", courseID), studentToken, nil)
	assert.Equal(t, fiber.StatusOK, status)

	assert.Equal(t, "recorded", result["active_category"])
	assert.Equal(t, "unlocked", result["state"])
	assert.Equal(t, float64(4), result["lesson_index"])

	live := result["live"].(map[string]interface{})
	assert.Equal(t, "recorded 5", live["title"])
	assert.NotEmpty(t, live["media_id"])
}

func TestLiveClassLockedWithoutPurchase(t *testing.T) {
	courseID, _, _ := createScheduledCourse(t, "Locked Course")

	status, _ := doRequest(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID),
		studentToken, map[string]interface{}{"start_date": "2024-01-01"})
	require.Equal(t, fiber.StatusCreated, status)

	status, result := doRequest(t, "GET", fmt.Sprintf("/api/courses/%d/live", courseID), studentToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "locked", result["state"])
	assert.Nil(t, result["live"])
}

func TestLiveClassOnWeekend(t *testing.T) {
	// Сб 2024-01-06 — занятий нет, явное состояние вместо пустого урока
	courseID, _, _ := createScheduledCourse(t, "Weekend Course")
	enrollAndPurchase(t, courseID, "term1")

	controllers.Now = func() time.Time {
		return time.Date(2024, time.January, 6, 10, 0, 0, 0, time.UTC)
	}
	defer func() {
		controllers.Now = func() time.Time { return testToday }
	}()

	status, result := doRequest(t, "GET", fmt.Sprintf("/api/courses/%d/live", courseID), studentToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "none", result["active_category"])
	assert.Nil(t, result["live"])
	assert.NotEmpty(t, result["message"])
}

func TestLiveClassIndeterminateWithoutStartDate(t *testing.T) {
	courseID, _, _ := createScheduledCourse(t, "No Start Date Course")

	// Запись без даты старта — решение принять нельзя
	db.Create(&models.Enrollment{UserID: student.ID, CourseID: uint(courseID), Status: "active"})

	status, result := doRequest(t, "GET", fmt.Sprintf("/api/courses/%d/live", courseID), studentToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "indeterminate", result["state"])
	assert.Nil(t, result["live"])
}

func TestChapterLessonsUnlockFlags(t *testing.T) {
	// Bonus-занятия открываются строго до сегодняшнего дня:
	// Вт(2), Чт(4), Вт(9) прошли — открыто 3 из 8
	courseID, chapter1ID, _ := createScheduledCourse(t, "Bonus Course")
	enrollAndPurchase(t, courseID, "term1")

	status, result := doRequest(t, "GET",
		fmt.Sprintf("/api/courses/%d/chapters/%d/lessons?category=bonus", courseID, chapter1ID),
		studentToken, nil)
	assert.Equal(t, fiber.StatusOK, status)

	assert.Equal(t, "unlocked", result["state"])
	assert.Equal(t, float64(3), result["unlocked_count"])

	lessons := result["lessons"].([]interface{})
	require.Len(t, lessons, 8)
	for i, raw := range lessons {
		lesson := raw.(map[string]interface{})
		assert.Equal(t, i < 3, lesson["unlocked"], "lesson %d", i)
		if i < 3 {
			assert.Contains(t, lesson, "media_id")
		} else {
			assert.NotContains(t, lesson, "media_id")
		}
	}
}

func TestChapterLessonsRecordedIncludeToday(t *testing.T) {
	// Recorded: Пн(1), Ср(3), Пт(5), Пн(8) и сегодняшняя Ср(10) — открыто 5
	courseID, chapter1ID, _ := createScheduledCourse(t, "Recorded Course")
	enrollAndPurchase(t, courseID, "term1")

	status, result := doRequest(t, "GET",
		fmt.Sprintf("/api/courses/%d/chapters/%d/lessons?category=recorded", courseID, chapter1ID),
		studentToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(5), result["unlocked_count"])
}

func TestQuartersGateStates(t *testing.T) {
	courseID, _, _ := createScheduledCourse(t, "Gate Course")
	enrollAndPurchase(t, courseID, "term1")

	status, result := doRequest(t, "GET", fmt.Sprintf("/api/courses/%d/quarters", courseID), studentToken, nil)
	assert.Equal(t, fiber.StatusOK, status)

	assert.Equal(t, "recorded", result["active_category"])

	quarters := result["quarters"].([]interface{})
	require.Len(t, quarters, 2)

	q1 := quarters[0].(map[string]interface{})
	assert.Equal(t, "unlocked", q1["state"])
	assert.Equal(t, float64(5), q1["unlocked_recorded"])
	assert.Equal(t, float64(3), q1["unlocked_bonus"])

	// term2 не куплен
	q2 := quarters[1].(map[string]interface{})
	assert.Equal(t, "locked", q2["state"])
}

func TestSecondQuarterLockedUntilFirstFinished(t *testing.T) {
	// Даже с купленным term2 вторая четверть ждет окончания первой:
	// прошло 8 учебных дней из 18 занятий Q1
	courseID, _, _ := createScheduledCourse(t, "Sequential Course")
	enrollAndPurchase(t, courseID, "term1", "term2")

	status, result := doRequest(t, "GET", fmt.Sprintf("/api/courses/%d/quarters", courseID), studentToken, nil)
	assert.Equal(t, fiber.StatusOK, status)

	quarters := result["quarters"].([]interface{})
	require.Len(t, quarters, 2)
	assert.Equal(t, "locked", quarters[1].(map[string]interface{})["state"])
}

func TestEnrollTwiceRejected(t *testing.T) {
	courseID, _, _ := createScheduledCourse(t, "Double Enroll Course")
	enrollAndPurchase(t, courseID)

	status, _ := doRequest(t, "POST", fmt.Sprintf("/api/courses/%d/enroll", courseID),
		studentToken, map[string]interface{}{"start_date": "2024-01-01"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestChapterSubscriptionUnlocksFirstQuarter(t *testing.T) {
	courseID, chapter1ID, _ := createScheduledCourse(t, "Subscription Course")
	enrollAndPurchase(t, courseID)

	status, _ := doRequest(t, "POST", fmt.Sprintf("/api/chapters/%d/subscribe", chapter1ID), studentToken, nil)
	require.Equal(t, fiber.StatusCreated, status)

	status, result := doRequest(t, "GET", fmt.Sprintf("/api/courses/%d/quarters", courseID), studentToken, nil)
	assert.Equal(t, fiber.StatusOK, status)

	quarters := result["quarters"].([]interface{})
	assert.Equal(t, "unlocked", quarters[0].(map[string]interface{})["state"])
}
