package views

import (
	"strconv"

	"jobflow-dashboard/internal/models"
)

// Card 看板顶部的统计卡片
type Card struct {
	Title string
	Value string
}

// StatsCards 统计为空时各项显示 0
func StatsCards(stats *models.Stats) []Card {
	var s models.Stats
	if stats != nil {
		s = *stats
	}
	return []Card{
		{Title: "Total Applications", Value: strconv.Itoa(s.TotalApplications)},
		{Title: "Pending URLs", Value: strconv.Itoa(s.PendingURLs)},
		{Title: "Interviews", Value: strconv.Itoa(s.Interviews)},
		{Title: "Success Rate", Value: Percent(s.SuccessRate)},
	}
}
