package unlock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func threeQuarters() []QuarterPlan {
	return []QuarterPlan{
		{ChapterID: 11, Term: "term1", Sequence: 1, RecordedLessons: 10, BonusLessons: 5},
		{ChapterID: 12, Term: "term2", Sequence: 2, RecordedLessons: 10, BonusLessons: 5},
		{ChapterID: 13, Term: "term3", Sequence: 3, RecordedLessons: 12, BonusLessons: 6},
	}
}

func enrolled(start time.Time, terms ...string) Enrollment {
	purchased := make(map[string]bool)
	for _, term := range terms {
		purchased[term] = true
	}
	return Enrollment{
		StartDate:          start,
		HasStartDate:       true,
		PurchasedTerms:     purchased,
		SubscribedChapters: map[uint]bool{},
	}
}

func TestFirstQuarterRequiresOnlyPayment(t *testing.T) {
	plans := threeQuarters()

	assert.Equal(t, GateLocked, QuarterGate(plans, 0, enrolled(monday), monday))
	assert.Equal(t, GateUnlocked, QuarterGate(plans, 0, enrolled(monday, "term1"), monday))
}

func TestChapterSubscriptionUnlocksQuarter(t *testing.T) {
	plans := threeQuarters()

	enr := enrolled(monday)
	enr.SubscribedChapters[11] = true
	assert.Equal(t, GateUnlocked, QuarterGate(plans, 0, enr, monday))
}

func TestSecondQuarterWaitsForFirstToFinish(t *testing.T) {
	// Q1 = 15 занятий, значит 15 учебных дней = ровно три недели.
	// Даже с купленным term2 вторая четверть закрыта, пока время не пройдено.
	plans := threeQuarters()
	enr := enrolled(monday, "term1", "term2")

	day14 := monday.AddDate(0, 0, 17) // Чт третьей недели, 14 учебных дней
	assert.Equal(t, GateLocked, QuarterGate(plans, 1, enr, day14))

	day15 := monday.AddDate(0, 0, 18) // Пт третьей недели, 15 учебных дней
	assert.Equal(t, GateUnlocked, QuarterGate(plans, 1, enr, day15))
}

func TestThirdQuarterCountsBothPriorQuarters(t *testing.T) {
	// Q1 + Q2 = 30 занятий = шесть недель учебных дней
	plans := threeQuarters()
	enr := enrolled(monday, "term1", "term2", "term3")

	day29 := monday.AddDate(0, 0, 38) // Чт 2024-02-08, 29 учебных дней
	assert.Equal(t, GateLocked, QuarterGate(plans, 2, enr, day29))

	day30 := monday.AddDate(0, 0, 39) // Пт 2024-02-09, 30 учебных дней
	assert.Equal(t, GateUnlocked, QuarterGate(plans, 2, enr, day30))
}

func TestUnpaidQuarterStaysLockedDespiteElapsedTime(t *testing.T) {
	plans := threeQuarters()
	enr := enrolled(monday, "term1")

	yearLater := monday.AddDate(1, 0, 0)
	assert.Equal(t, GateLocked, QuarterGate(plans, 1, enr, yearLater))
}

func TestMissingStartDateIsIndeterminate(t *testing.T) {
	// Без даты старта ни прохождение предыдущих четвертей, ни счетчики
	// открытых уроков не вычислимы: ни "открыто", ни "закрыто" —
	// явное третье состояние даже для оплаченной первой четверти
	plans := threeQuarters()
	enr := Enrollment{
		PurchasedTerms:     map[string]bool{"term1": true, "term2": true},
		SubscribedChapters: map[uint]bool{},
	}

	assert.Equal(t, GateIndeterminate, QuarterGate(plans, 0, enr, monday))
	assert.Equal(t, GateIndeterminate, QuarterGate(plans, 1, enr, monday))

	// Неоплаченная четверть закрыта независимо от даты старта
	assert.Equal(t, GateLocked, QuarterGate(plans, 2, enr, monday))
}

func TestQuarterGateOutOfRange(t *testing.T) {
	plans := threeQuarters()
	assert.Equal(t, GateIndeterminate, QuarterGate(plans, 3, enrolled(monday), monday))
	assert.Equal(t, GateIndeterminate, QuarterGate(plans, -1, enrolled(monday), monday))
}

func TestDecideOnClassDay(t *testing.T) {
	plans := threeQuarters()
	enr := enrolled(monday, "term1")

	wednesday := day(2)
	d := Decide(plans, enr, wednesday)

	assert.Equal(t, CategoryRecorded, d.ActiveCategory)
	assert.Equal(t, 1, d.TodayLessonIndex) // Пн был первым, Ср — второй урок
	assert.Len(t, d.Quarters, 3)

	q1 := d.Quarters[0]
	assert.Equal(t, GateUnlocked, q1.State)
	assert.Equal(t, 2, q1.UnlockedRecorded) // Пн + Ср
	assert.Equal(t, 1, q1.UnlockedBonus)    // только прошедший Вт

	assert.Equal(t, GateLocked, d.Quarters[1].State)
	assert.Equal(t, 0, d.Quarters[1].UnlockedRecorded)
}

func TestDecideOnWeekend(t *testing.T) {
	plans := threeQuarters()
	enr := enrolled(monday, "term1")

	saturday := day(5)
	d := Decide(plans, enr, saturday)

	assert.Equal(t, CategoryNone, d.ActiveCategory)
	// Открытые уроки не пропадают в выходной
	assert.Equal(t, 3, d.Quarters[0].UnlockedRecorded)
	assert.Equal(t, 2, d.Quarters[0].UnlockedBonus)
}

func TestDecideWithoutStartDate(t *testing.T) {
	plans := threeQuarters()
	enr := Enrollment{
		PurchasedTerms:     map[string]bool{"term1": true, "term2": true},
		SubscribedChapters: map[uint]bool{},
	}

	d := Decide(plans, enr, day(30))
	assert.Equal(t, 0, d.TodayLessonIndex)
	// Без даты старта «открыто» не выдается: нули в счетчиках идут
	// вместе с состоянием indeterminate, а не под видом unlocked
	assert.Equal(t, GateIndeterminate, d.Quarters[0].State)
	assert.Equal(t, 0, d.Quarters[0].UnlockedRecorded)
	assert.Equal(t, 0, d.Quarters[0].UnlockedBonus)
	assert.Equal(t, GateIndeterminate, d.Quarters[1].State)
}

func TestDecideClampsTodayIndex(t *testing.T) {
	// Спустя год после старта сырой индекс дня далеко за пределами
	// программы — наружу уходит индекс последнего урока, не сырой счетчик
	plans := threeQuarters() // 32 записанных урока суммарно
	enr := enrolled(monday, "term1", "term2", "term3")

	yearLater := monday.AddDate(1, 0, 0) // Ср 2025-01-01, учебный день
	d := Decide(plans, enr, yearLater)

	assert.Equal(t, CategoryRecorded, d.ActiveCategory)
	assert.Equal(t, 31, d.TodayLessonIndex)
}
