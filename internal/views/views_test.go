package views

import (
	"bytes"
	"context"
	"testing"
	"time"

	"jobflow-dashboard/internal/apiclient"
	"jobflow-dashboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleURLs = []models.JobURL{
	{ID: "1", URL: "https://boards.greenhouse.io/techcorp/jobs/12345", Company: "TechCorp", Title: "Frontend Engineer", Status: models.JobURLPending},
	{ID: "2", URL: "https://jobs.lever.co/startupxyz/67890", Company: "StartupXYZ", Title: "Product Manager", Status: models.JobURLApplied},
	{ID: "3", URL: "https://workable.com/jobs/11111", Status: models.JobURLRejected},
}

func TestFilterJobURLs(t *testing.T) {
	assert.Len(t, FilterJobURLs(sampleURLs, "", ""), 3, "空条件返回全部")
	assert.Equal(t, "1", FilterJobURLs(sampleURLs, "techCORP", "")[0].ID)
	assert.Equal(t, "2", FilterJobURLs(sampleURLs, "lever", "")[0].ID, "匹配链接")
	assert.Equal(t, "3", FilterJobURLs(sampleURLs, "", "rejected")[0].ID)
	assert.Empty(t, FilterJobURLs(sampleURLs, "techcorp", "applied"))
}

func TestFilterApplications(t *testing.T) {
	apps := []models.Application{
		{ID: "a", Company: "Acme", Position: "Go Dev", Status: models.ApplicationInterview},
		{ID: "b", Company: "Globex", Position: "SRE", Status: models.ApplicationPending},
	}
	assert.Len(t, FilterApplications(apps, "go", ""), 1)
	assert.Len(t, FilterApplications(apps, "", "pending"), 1)
	assert.Len(t, Recent(apps, 3), 2)
	assert.Len(t, Recent(apps, 1), 1)
}

func TestSelection(t *testing.T) {
	s := NewSelection()
	s.Set("2", true)
	s.Set("1", true)
	s.Set("2", true)
	assert.Equal(t, []string{"2", "1"}, s.IDs(), "按勾选顺序且不重复")

	s.Toggle("2")
	assert.Equal(t, []string{"1"}, s.IDs())

	visible := []string{"1", "2", "3"}
	s.ToggleAll(visible)
	assert.Equal(t, visible, s.IDs())
	s.ToggleAll(visible)
	assert.Zero(t, s.Len())
}

func TestRelativeDate(t *testing.T) {
	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "1 day ago", RelativeDate(now.Add(-20*time.Hour), now))
	assert.Equal(t, "2 days ago", RelativeDate(now.Add(-25*time.Hour), now), "天数向上取整")
	assert.Equal(t, "6 days ago", RelativeDate(now.Add(-6*24*time.Hour), now))
	assert.Equal(t, "1/10/2024", RelativeDate(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "soon", RelativeDateString("soon", now))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "https://boards.greenhouse.io/techcorp/jo...", Truncate(sampleURLs[0].URL, URLDisplayLength))
	assert.Equal(t, "https://workable.com/jobs/11111", Truncate(sampleURLs[2].URL, URLDisplayLength))
}

func TestStatsCards(t *testing.T) {
	cards := StatsCards(&models.Stats{TotalApplications: 12, PendingURLs: 3, Interviews: 2, SuccessRate: 16.7})
	assert.Equal(t, Card{Title: "Success Rate", Value: "16.7%"}, cards[3])
	assert.Equal(t, "12", cards[0].Value)

	empty := StatsCards(nil)
	assert.Equal(t, "0%", empty[3].Value)
}

func TestState(t *testing.T) {
	ok := Load(context.Background(), func(context.Context) ([]int, error) { return []int{1}, nil })
	assert.True(t, ok.OK())
	assert.Equal(t, []int{1}, ok.Data)

	failed := Load(context.Background(), func(context.Context) ([]int, error) {
		return []int{9}, &apiclient.HTTPError{Status: 500, Message: "db unavailable"}
	})
	assert.False(t, failed.OK())
	assert.Nil(t, failed.Data, "出错时不展示数据")
	assert.Equal(t, "500: db unavailable", failed.Message())

	assert.Equal(t, "", State[int]{}.Message())
}

func TestRenderJobURLs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJobURLs(&buf, sampleURLs[:1]))
	out := buf.String()
	assert.Contains(t, out, "TechCorp")
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "...")

	buf.Reset()
	require.NoError(t, RenderJobURLs(&buf, nil))
	assert.Equal(t, "No job URLs found\n", buf.String())
}

func TestRenderListings(t *testing.T) {
	var buf bytes.Buffer
	jobs := []models.JobListing{{ID: "1", Title: "Go Dev", Company: "Acme", PostedDate: "2024-01-19"}, {ID: "2", Title: "SRE"}}
	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	require.NoError(t, RenderListings(&buf, jobs, NewSelection("2"), now))
	out := buf.String()
	assert.Contains(t, out, "2 jobs found • 1 selected")
	assert.Contains(t, out, "2 days ago")
	assert.Contains(t, out, "[x]")
}
