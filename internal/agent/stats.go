package agent

import "sort"

// GetStatistics aggregates the feedback log into a dashboard snapshot.
func (a *Agent) GetStatistics() *Statistics {
	a.mu.Lock()
	defer a.mu.Unlock()

	history := a.memory.FeedbackHistory
	stats := &Statistics{
		TopActions:        []CountedItem{},
		TopSenders:        []CountedItem{},
		RecentPerformance: []PerformancePoint{},
	}
	if len(history) == 0 {
		return stats
	}

	stats.TotalFeedback = len(history)

	approvals := 0
	confidenceSum := 0.0
	actionCounts := make(map[string]int)
	senderCounts := make(map[string]int)
	for _, f := range history {
		if f.UserFeedback == "approve" {
			approvals++
		}
		confidenceSum += f.Confidence
		actionCounts[f.CorrectAction]++
		senderCounts[f.Sender]++
	}
	stats.ApprovalRate = round3(float64(approvals) / float64(len(history)))
	stats.AvgConfidence = round3(confidenceSum / float64(len(history)))
	stats.TopActions = topCounted(actionCounts, 5)
	stats.TopSenders = topCounted(senderCounts, 5)

	recent := history
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	for _, f := range recent {
		stats.RecentPerformance = append(stats.RecentPerformance, PerformancePoint{
			Timestamp:  f.Timestamp,
			Reward:     f.Reward,
			Confidence: f.Confidence,
		})
	}
	return stats
}

// topCounted returns the n most common labels, highest count first with
// alphabetical order breaking ties so output is stable.
func topCounted(counts map[string]int, n int) []CountedItem {
	items := make([]CountedItem, 0, len(counts))
	for label, count := range counts {
		items = append(items, CountedItem{Label: label, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Label < items[j].Label
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}
