// Package unlock вычисляет доступность контента курса по дням недели:
// Live Class / Recorded Classes идут по понедельникам, средам и пятницам,
// Bonus Sessions — по вторникам и четвергам, в выходные занятий нет.
// Все функции чистые: текущая дата всегда передается параметром.
package unlock

import (
	"errors"
	"time"
)

// Category — тип занятия, назначенный дню недели
type Category string

const (
	CategoryNone     Category = "none" // выходной, занятий нет
	CategoryRecorded Category = "recorded"
	CategoryBonus    Category = "bonus"
)

// ErrNoCategory возвращается, когда для дня без занятий запрашивается индекс урока.
// Вызывающий обязан проверить ClassifyDay до обращения к TodayIndex.
var ErrNoCategory = errors.New("no class is scheduled for this day")

// midnight нормализует дату к полуночи UTC по ее календарному дню.
// Время суток и исходный часовой пояс на расчет не влияют: дата старта
// хранится как UTC-полночь, а "сегодня" может прийти в локальной зоне
// сервера — без единой зоны границы дней в переборе съезжали бы на сутки.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ClassifyDay возвращает категорию занятия для календарной даты.
// Функция тотальна: каждая дата попадает ровно в одну категорию.
func ClassifyDay(t time.Time) Category {
	switch midnight(t).Weekday() {
	case time.Monday, time.Wednesday, time.Friday:
		return CategoryRecorded
	case time.Tuesday, time.Thursday:
		return CategoryBonus
	default:
		return CategoryNone
	}
}

// CountSessions считает дни категории cat в закрытом интервале [start, asOf].
// Возвращает 0, если asOf раньше start.
func CountSessions(start, asOf time.Time, cat Category) int {
	if cat != CategoryRecorded && cat != CategoryBonus {
		return 0
	}

	day := midnight(start)
	end := midnight(asOf)

	count := 0
	for !day.After(end) {
		if ClassifyDay(day) == cat {
			count++
		}
		day = day.AddDate(0, 0, 1)
	}
	return count
}

// CountClassDays считает все учебные дни (пн-пт) в закрытом интервале [start, asOf].
// Используется только для последовательного открытия четвертей: там важно общее
// число прошедших занятий независимо от категории.
func CountClassDays(start, asOf time.Time) int {
	day := midnight(start)
	end := midnight(asOf)

	count := 0
	for !day.After(end) {
		if ClassifyDay(day) != CategoryNone {
			count++
		}
		day = day.AddDate(0, 0, 1)
	}
	return count
}

// TodayIndex возвращает индекс сегодняшнего урока в списке категории cat
// (нулевой, если до первого занятия еще не дошло — показываем первый урок).
// Для CategoryNone валидного индекса не существует.
func TodayIndex(start, today time.Time, cat Category) (int, error) {
	if cat != CategoryRecorded && cat != CategoryBonus {
		return 0, ErrNoCategory
	}

	n := CountSessions(start, today, cat)
	if n == 0 {
		return 0, nil
	}
	return n - 1, nil
}

// UnlockedCount возвращает число открытых уроков в списке длины listLen.
// Recorded открываются включая сегодняшний день (live-занятие идет сегодня),
// Bonus — строго до сегодняшнего (открыто только то, что уже прошло).
// Результат всегда в [0, listLen].
func UnlockedCount(start, today time.Time, cat Category, listLen int) int {
	if listLen <= 0 {
		return 0
	}
	if cat != CategoryRecorded && cat != CategoryBonus {
		return 0
	}

	asOf := midnight(today)
	if cat == CategoryBonus {
		asOf = asOf.AddDate(0, 0, -1)
	}

	n := CountSessions(start, asOf, cat)
	if n > listLen {
		n = listLen
	}
	return n
}

// ClampIndex ограничивает индекс последним валидным элементом списка
func ClampIndex(idx, listLen int) int {
	if listLen <= 0 {
		return 0
	}
	if idx >= listLen {
		return listLen - 1
	}
	if idx < 0 {
		return 0
	}
	return idx
}
