package recommend

import (
	"sort"

	"github.com/vladimiradmaev/health-helper/internal/domain"
)

// template is one entry of the fixed rule pool. active decides whether the
// template applies to the given metrics; both may be nil.
type template struct {
	rec    domain.Recommendation
	active func(bmi, glucose *float64) bool
}

func bmiBetween(lo, hi float64) func(bmi, glucose *float64) bool {
	return func(bmi, _ *float64) bool {
		return bmi != nil && *bmi > 0 && *bmi >= lo && *bmi < hi
	}
}

func glucoseBetween(lo, hi float64) func(bmi, glucose *float64) bool {
	return func(_, glucose *float64) bool {
		return glucose != nil && *glucose > 0 && *glucose >= lo && *glucose < hi
	}
}

// pool is evaluated in declaration order; ties in priority keep this order.
var pool = []template{
	{
		rec: domain.Recommendation{
			ID:          "diet-weight-gain",
			Title:       "Добавьте питательные калории",
			Description: "Ваш ИМТ ниже здорового диапазона. Добавляйте полезные жиры, нежирный белок и цельнозерновые продукты в каждый приём пищи, подумайте о дополнительном перекусе.",
			Type:        domain.TypeDiet,
			Priority:    domain.PriorityHigh,
			Icon:        domain.IconApple,
		},
		active: bmiBetween(0, 18.5),
	},
	{
		rec: domain.Recommendation{
			ID:          "diet-calorie-balance",
			Title:       "Создайте умеренный дефицит калорий",
			Description: "Ваш ИМТ выше здорового диапазона. Заполняйте половину тарелки овощами, выбирайте нежирный белок и ограничьте сладкие напитки и снеки.",
			Type:        domain.TypeDiet,
			Priority:    domain.PriorityHigh,
			Icon:        domain.IconSalad,
		},
		active: bmiBetween(25, 1e9),
	},
	{
		rec: domain.Recommendation{
			ID:          "exercise-low-impact",
			Title:       "Начните с щадящего кардио",
			Description: "Стремитесь к 150 минутам ходьбы, плавания или велосипеда в неделю, увеличивая нагрузку постепенно, чтобы беречь суставы.",
			Type:        domain.TypeExercise,
			Priority:    domain.PriorityHigh,
			Icon:        domain.IconFootprints,
		},
		active: bmiBetween(30, 1e9),
	},
	{
		rec: domain.Recommendation{
			ID:          "exercise-regular-activity",
			Title:       "Добавьте регулярную умеренную активность",
			Description: "Сочетайте 30 минут быстрой ходьбы в большинство дней с двумя силовыми тренировками в неделю.",
			Type:        domain.TypeExercise,
			Priority:    domain.PriorityMedium,
			Icon:        domain.IconDumbbell,
		},
		active: bmiBetween(25, 30),
	},
	{
		rec: domain.Recommendation{
			ID:          "exercise-strength",
			Title:       "Постепенно развивайте силу",
			Description: "Лёгкие силовые тренировки два-три раза в неделю вместе с профицитом калорий помогают набрать здоровую мышечную массу.",
			Type:        domain.TypeExercise,
			Priority:    domain.PriorityMedium,
			Icon:        domain.IconDumbbell,
		},
		active: bmiBetween(0, 18.5),
	},
	{
		rec: domain.Recommendation{
			ID:          "lifestyle-maintain-weight",
			Title:       "Поддерживайте здоровый вес",
			Description: "Ваш ИМТ в здоровом диапазоне. Сохраняйте сбалансированное питание и активность.",
			Type:        domain.TypeLifestyle,
			Priority:    domain.PriorityLow,
			Icon:        domain.IconScale,
		},
		active: bmiBetween(18.5, 25),
	},
	{
		rec: domain.Recommendation{
			ID:          "medical-glucose-high",
			Title:       "Обратитесь к врачу по поводу глюкозы",
			Description: "Уровень глюкозы в диапазоне диабета. Запишитесь к врачу для дополнительного обследования.",
			Type:        domain.TypeMedical,
			Priority:    domain.PriorityHigh,
			Icon:        domain.IconStethoscope,
		},
		active: glucoseBetween(126, 1e9),
	},
	{
		rec: domain.Recommendation{
			ID:          "diet-glucose-control",
			Title:       "Сократите быстрые углеводы",
			Description: "Уровень глюкозы повышен. Замените белый хлеб, сладости и сладкие напитки продуктами, богатыми клетчаткой.",
			Type:        domain.TypeDiet,
			Priority:    domain.PriorityMedium,
			Icon:        domain.IconDroplet,
		},
		active: func(_, glucose *float64) bool {
			return glucose != nil && *glucose > 99 && *glucose < 126
		},
	},
	{
		rec: domain.Recommendation{
			ID:          "medical-glucose-low",
			Title:       "Следите за низким уровнем глюкозы",
			Description: "Уровень глюкозы ниже нормы. Питайтесь регулярно и обратитесь к врачу при дрожи или головокружении.",
			Type:        domain.TypeMedical,
			Priority:    domain.PriorityMedium,
			Icon:        domain.IconDroplet,
		},
		active: glucoseBetween(0, 70),
	},
	{
		rec: domain.Recommendation{
			ID:          "lifestyle-glucose-check",
			Title:       "Продолжайте контролировать глюкозу",
			Description: "Уровень глюкозы в норме. Проверяйте его раз в год или по рекомендации врача.",
			Type:        domain.TypeLifestyle,
			Priority:    domain.PriorityLow,
			Icon:        domain.IconActivity,
		},
		active: func(_, glucose *float64) bool {
			return glucose != nil && *glucose >= 70 && *glucose <= 99
		},
	},
	{
		rec: domain.Recommendation{
			ID:          "lifestyle-sleep",
			Title:       "Уделите внимание сну и стрессу",
			Description: "Семь-девять часов сна и ежедневный отдых помогают регулировать аппетит, вес и уровень сахара.",
			Type:        domain.TypeLifestyle,
			Priority:    domain.PriorityLow,
			Icon:        domain.IconMoon,
		},
		active: func(bmi, glucose *float64) bool {
			return (bmi != nil && *bmi > 0) || (glucose != nil && *glucose > 0)
		},
	},
}

var generalWellness = domain.Recommendation{
	ID:          "lifestyle-general-wellness",
	Title:       "Сформируйте здоровые привычки",
	Description: "Питайтесь разнообразно, ешьте больше овощей, двигайтесь не менее 30 минут в день и заполните профиль для персональных советов.",
	Type:        domain.TypeLifestyle,
	Priority:    domain.PriorityMedium,
	Icon:        domain.IconHeartPulse,
}

// Generate returns the rule-based recommendations for bmi and glucose,
// ordered by priority and then by pool order. The result is never empty.
func Generate(bmi, glucose *float64) []domain.Recommendation {
	var out []domain.Recommendation
	for _, t := range pool {
		if t.active(bmi, glucose) {
			out = append(out, t.rec)
		}
	}
	if len(out) == 0 {
		out = append(out, generalWellness)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out
}
