// Package progress derives the aggregate figures the portal shows for a
// project: overall completion, phase counts and the latest metric readings.
package progress

import (
	"sort"

	"github.com/nordweb/portal/pkg/api"
)

// AverageProgress is the mean phase percentage rounded half up.
// A project without phases is at 0.
func AverageProgress(phases []*api.Phase) int {
	if len(phases) == 0 {
		return 0
	}
	sum := 0
	for _, ph := range phases {
		sum += clamp(ph.Percent)
	}
	n := len(phases)
	return (2*sum + n) / (2 * n)
}

// Summarize counts phases by status and includes AverageProgress.
func Summarize(phases []*api.Phase) api.PhaseSummary {
	s := api.PhaseSummary{Total: len(phases), Percent: AverageProgress(phases)}
	for _, ph := range phases {
		switch ph.Status {
		case api.PhaseCompleted:
			s.Completed++
		case api.PhaseInProgress:
			s.InProgress++
		default:
			s.Pending++
		}
	}
	return s
}

// LatestMetrics keeps the newest reading of each metric name and returns
// them sorted by name. Ties on RecordedAt go to the larger ID.
func LatestMetrics(metrics []*api.Metric) []*api.Metric {
	latest := make(map[string]*api.Metric)
	for _, m := range metrics {
		cur, ok := latest[m.Name]
		if !ok || m.RecordedAt.After(cur.RecordedAt) ||
			(m.RecordedAt.Equal(cur.RecordedAt) && m.ID > cur.ID) {
			latest[m.Name] = m
		}
	}

	out := make([]*api.Metric, 0, len(latest))
	for _, m := range latest {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func clamp(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
