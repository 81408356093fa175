// Package summary describes how an allocation spread participant IDs across groups.
package summary

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"randalloc/domain/allocation"
)

// GroupSummary describes one group's share of an allocation. MeanID and MedianID show where in
// the ID sequence the group landed; under a fair shuffle both sit near (N+1)/2.
type GroupSummary struct {
	GroupName string
	Count     int
	Share     float64
	MeanID    float64
	MedianID  float64
}

// Summarize computes per-group statistics in definition order. Groups that appear in the
// allocation without a definition are appended in order of first appearance.
func Summarize(result *allocation.Result) ([]GroupSummary, error) {
	if result.Total() == 0 {
		return nil, nil
	}

	ids := make(map[string][]float64)
	order := allocation.GroupNames(result.Groups)
	known := make(map[string]bool, len(order))
	for _, name := range order {
		known[name] = true
	}
	for _, rec := range result.Allocations {
		if !known[rec.GroupName] {
			known[rec.GroupName] = true
			order = append(order, rec.GroupName)
		}
		ids[rec.GroupName] = append(ids[rec.GroupName], float64(rec.ParticipantID))
	}

	total := float64(result.Total())
	summaries := make([]GroupSummary, 0, len(order))
	for _, name := range order {
		data := stats.Float64Data(ids[name])
		if len(data) == 0 {
			summaries = append(summaries, GroupSummary{GroupName: name})
			continue
		}

		mean, err := data.Mean()
		if err != nil {
			return nil, fmt.Errorf("mean participant id for %s: %w", name, err)
		}
		median, err := data.Median()
		if err != nil {
			return nil, fmt.Errorf("median participant id for %s: %w", name, err)
		}
		share, err := stats.Round(float64(len(data))/total, 4)
		if err != nil {
			return nil, fmt.Errorf("share for %s: %w", name, err)
		}

		summaries = append(summaries, GroupSummary{
			GroupName: name,
			Count:     len(data),
			Share:     share,
			MeanID:    mean,
			MedianID:  median,
		})
	}
	return summaries, nil
}
