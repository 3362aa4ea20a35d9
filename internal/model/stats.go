package model

import "sort"

type Stats struct {
	Total            int            `json:"total"`
	Done             int            `json:"done"`
	Pending          int            `json:"pending"`
	Urgent           int            `json:"urgent"`
	DoneToday        int            `json:"done_today"`
	ByQuadrant       map[string]int `json:"by_quadrant,omitempty"`
	ByEnergy         map[string]int `json:"by_energy,omitempty"`
	ByContext        map[string]int `json:"by_context,omitempty"`
	QuickWinsPending int            `json:"quick_wins_pending"`
}

type ImportResult struct {
	Success  bool     `json:"success"`
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
	Error    string   `json:"error,omitempty"`
}

type MoodTrend struct {
	Labels []string  `json:"labels"`
	Mood   []float64 `json:"mood"`
	Energy []float64 `json:"energy"`
}

type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type DatedCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type NamedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type Series struct {
	Labels []string
	Values []float64
}

func (s Series) Empty() bool {
	return len(s.Labels) == 0
}

// SortedKeys returns map keys in ascending order so projections are stable.
func SortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
