package charts

import (
	"time"

	"github.com/sandeepkv93/adhdash/internal/model"
)

const (
	TargetMood       = "mood"
	TargetQuadrant   = "quadrant"
	TargetBadHabits  = "bad_habits"
	TargetGoodHabits = "good_habits"
	TargetTechniques = "techniques"
	TargetEnergy     = "energy"
	TargetContext    = "context"
	TargetTasksDone  = "tasks_done"
)

func AllTargets() []string {
	return []string{
		TargetMood, TargetQuadrant, TargetBadHabits, TargetGoodHabits,
		TargetTechniques, TargetEnergy, TargetContext, TargetTasksDone,
	}
}

var (
	quadrantKeys   = []string{"1", "2", "3", "4"}
	quadrantLabels = []string{"🔥 Crisis", "🌱 Growth", "⚡ Interruption", "🗑️ Waste"}
	energyKeys     = []string{"high", "medium", "low"}
	energyLabels   = []string{"🔥 High Focus", "⚡ Medium", "🪶 Low Focus"}
)

func Mood(r *Registry, target string, trend model.MoodTrend) error {
	if len(trend.Labels) == 0 {
		return nil
	}
	return r.Render(target, Spec{
		Kind:   KindLine,
		Title:  "Mood & energy",
		Labels: trend.Labels,
		Datasets: []Dataset{
			{Label: "Mood", Values: trend.Mood},
			{Label: "Energy", Values: trend.Energy},
		},
		Min: 0,
		Max: 10,
	})
}

func Quadrant(r *Registry, target string, byQuadrant map[string]int) error {
	if len(byQuadrant) == 0 {
		return nil
	}
	return r.Render(target, Spec{
		Kind:     KindDoughnut,
		Title:    "Eisenhower quadrants",
		Labels:   quadrantLabels,
		Datasets: []Dataset{{Values: pick(byQuadrant, quadrantKeys)}},
	})
}

func BadHabits(r *Registry, target string, counts []model.NamedCount) error {
	if len(counts) == 0 {
		return nil
	}
	labels := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, c := range counts {
		labels[i] = c.Name
		values[i] = float64(c.Count)
	}
	return r.Render(target, Spec{
		Kind:     KindHorizontalBar,
		Title:    "Bad habits",
		Labels:   labels,
		Datasets: []Dataset{{Label: "Times", Values: values}},
	})
}

func GoodHabits(r *Registry, target string, counts []model.DatedCount) error {
	if len(counts) == 0 {
		return nil
	}
	labels := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, c := range counts {
		labels[i] = c.Date
		values[i] = float64(c.Count)
	}
	return r.Render(target, Spec{
		Kind:     KindLine,
		Title:    "Good habits",
		Labels:   labels,
		Datasets: []Dataset{{Label: "Good habits", Values: values}},
	})
}

func Techniques(r *Registry, target string, values []model.NamedValue) error {
	if len(values) == 0 {
		return nil
	}
	labels := make([]string, len(values))
	data := make([]float64, len(values))
	for i, v := range values {
		labels[i] = v.Name
		data[i] = v.Value
	}
	return r.Render(target, Spec{
		Kind:     KindPie,
		Title:    "Techniques",
		Labels:   labels,
		Datasets: []Dataset{{Values: data}},
	})
}

func Energy(r *Registry, target string, byEnergy map[string]int) error {
	if len(byEnergy) == 0 {
		return nil
	}
	return r.Render(target, Spec{
		Kind:     KindDoughnut,
		Title:    "Energy",
		Labels:   energyLabels,
		Datasets: []Dataset{{Values: pick(byEnergy, energyKeys)}},
	})
}

func Context(r *Registry, target string, byContext map[string]int) error {
	if len(byContext) == 0 {
		return nil
	}
	labels := model.SortedKeys(byContext)
	return r.Render(target, Spec{
		Kind:     KindBar,
		Title:    "Contexts",
		Labels:   labels,
		Datasets: []Dataset{{Label: "Tasks", Values: pick(byContext, labels)}},
	})
}

func TasksDone(r *Registry, target string, series model.Series) error {
	if series.Empty() {
		return nil
	}
	return r.Render(target, Spec{
		Kind:     KindBar,
		Title:    "Tasks done",
		Labels:   series.Labels,
		Datasets: []Dataset{{Label: "Done", Values: series.Values}},
	})
}

// DailySeries lays counts out over the n days ending at end, filling gaps
// with zero. Dates are YYYY-MM-DD in UTC.
func DailySeries(counts []model.DatedCount, end time.Time, n int) model.Series {
	if n <= 0 {
		return model.Series{}
	}
	byDay := make(map[string]int, len(counts))
	for _, c := range counts {
		byDay[c.Date] += c.Count
	}
	end = end.UTC()
	series := model.Series{Labels: make([]string, n), Values: make([]float64, n)}
	for i := 0; i < n; i++ {
		day := end.AddDate(0, 0, i-n+1).Format("2006-01-02")
		series.Labels[i] = day[5:]
		series.Values[i] = float64(byDay[day])
	}
	return series
}

func pick(m map[string]int, keys []string) []float64 {
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = float64(m[k])
	}
	return out
}
