package unlock

import "time"

// GateState — состояние доступа к четверти. Третье состояние Indeterminate
// означает "не хватает данных для решения" и никогда не схлопывается в bool.
type GateState string

const (
	GateUnlocked      GateState = "unlocked"
	GateLocked        GateState = "locked"
	GateIndeterminate GateState = "indeterminate"
)

// QuarterPlan описывает одну четверть курса. Порядок в срезе planов
// задает последовательность открытия (Q1 < Q2 < Q3 < ...).
type QuarterPlan struct {
	ChapterID       uint
	Term            string
	Sequence        int
	RecordedLessons int
	BonusLessons    int
}

// TotalLessons — общее число занятий четверти (recorded + bonus)
func (p QuarterPlan) TotalLessons() int {
	return p.RecordedLessons + p.BonusLessons
}

// Enrollment — снимок данных записи студента на курс на момент расчета
type Enrollment struct {
	StartDate          time.Time
	HasStartDate       bool
	PurchasedTerms     map[string]bool
	SubscribedChapters map[uint]bool
}

// Accessible сообщает, оплачена ли четверть (куплен term или есть подписка на главу)
func (e Enrollment) Accessible(p QuarterPlan) bool {
	return e.PurchasedTerms[p.Term] || e.SubscribedChapters[p.ChapterID]
}

// QuarterGate возвращает состояние доступа к четверти plans[i].
// Четверть открыта, когда она оплачена и все предыдущие четверти "пройдены":
// суммарное число прошедших учебных дней (пн-пт) с начала курса не меньше
// суммы занятий всех предыдущих четвертей. Первая четверть требует
// только оплаты. Без даты старта ни прохождение предыдущих четвертей,
// ни счетчики открытых уроков вычислить нельзя — возвращается
// GateIndeterminate, а не молчаливое "все закрыто".
func QuarterGate(plans []QuarterPlan, i int, enr Enrollment, today time.Time) GateState {
	if i < 0 || i >= len(plans) {
		return GateIndeterminate
	}

	if !enr.Accessible(plans[i]) {
		return GateLocked
	}

	if !enr.HasStartDate {
		return GateIndeterminate
	}

	if i == 0 {
		return GateUnlocked
	}

	required := 0
	for _, prev := range plans[:i] {
		required += prev.TotalLessons()
	}

	if CountClassDays(enr.StartDate, today) < required {
		return GateLocked
	}
	return GateUnlocked
}

// QuarterDecision — решение по одной четверти
type QuarterDecision struct {
	ChapterID        uint      `json:"chapter_id"`
	Sequence         int       `json:"sequence"`
	State            GateState `json:"state"`
	UnlockedRecorded int       `json:"unlocked_recorded"`
	UnlockedBonus    int       `json:"unlocked_bonus"`
}

// Decision — полный результат расчета доступности для курса
type Decision struct {
	ActiveCategory   Category          `json:"active_category"`
	TodayLessonIndex int               `json:"today_lesson_index"`
	Quarters         []QuarterDecision `json:"quarters"`
}

// Decide вычисляет активную категорию дня, индекс сегодняшнего урока и
// состояние каждой четверти. TodayLessonIndex всегда ограничен последним
// уроком активной категории по всем четвертям курса. В выходной
// TodayLessonIndex равен 0 и ActiveCategory равна CategoryNone — индекс
// в этом случае смысла не имеет.
func Decide(plans []QuarterPlan, enr Enrollment, today time.Time) Decision {
	d := Decision{ActiveCategory: ClassifyDay(today)}

	if d.ActiveCategory != CategoryNone && enr.HasStartDate {
		idx, err := TodayIndex(enr.StartDate, today, d.ActiveCategory)
		if err == nil {
			total := 0
			for _, p := range plans {
				if d.ActiveCategory == CategoryBonus {
					total += p.BonusLessons
				} else {
					total += p.RecordedLessons
				}
			}
			d.TodayLessonIndex = ClampIndex(idx, total)
		}
	}

	for i, p := range plans {
		qd := QuarterDecision{
			ChapterID: p.ChapterID,
			Sequence:  p.Sequence,
			State:     QuarterGate(plans, i, enr, today),
		}
		// GateUnlocked возможен только при известной дате старта
		if qd.State == GateUnlocked {
			qd.UnlockedRecorded = UnlockedCount(enr.StartDate, today, CategoryRecorded, p.RecordedLessons)
			qd.UnlockedBonus = UnlockedCount(enr.StartDate, today, CategoryBonus, p.BonusLessons)
		}
		d.Quarters = append(d.Quarters, qd)
	}
	return d
}
