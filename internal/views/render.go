package views

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"jobflow-dashboard/internal/models"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// RenderStats 输出统计卡片
func RenderStats(w io.Writer, cards []Card) error {
	tw := newTable(w)
	for _, c := range cards {
		fmt.Fprintf(tw, "%s\t%s\n", c.Title, c.Value)
	}
	return tw.Flush()
}

// RenderJobURLs 输出岗位链接表格
func RenderJobURLs(w io.Writer, urls []models.JobURL) error {
	if len(urls) == 0 {
		_, err := fmt.Fprintln(w, "No job URLs found")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tCOMPANY\tTITLE\tURL\tSTATUS\tADDED")
	for _, u := range urls {
		title := u.Title
		if title == "" {
			title = u.Position
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, dash(u.Company), dash(title), Truncate(u.URL, URLDisplayLength), u.Status.Label(), FormatDate(u.CreatedAt))
	}
	return tw.Flush()
}

// RenderApplications 输出申请记录表格
func RenderApplications(w io.Writer, apps []models.Application) error {
	if len(apps) == 0 {
		_, err := fmt.Fprintln(w, "No applications found")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "COMPANY\tPOSITION\tLOCATION\tAPPLIED\tSTATUS\tLAST UPDATE")
	for _, a := range apps {
		location := a.Location
		if location == "" {
			location = "Not specified"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			dash(a.Company), dash(a.Position), location, FormatDate(a.AppliedDate), a.Status.Label(), dash(FormatDate(a.LastUpdate)))
	}
	return tw.Flush()
}

// RenderListings 输出发现的岗位，选中的条目前标记 [x]
func RenderListings(w io.Writer, jobs []models.JobListing, selected *Selection, now time.Time) error {
	if len(jobs) == 0 {
		_, err := fmt.Fprintln(w, "No jobs discovered yet")
		return err
	}
	if selected == nil {
		selected = NewSelection()
	}
	fmt.Fprintf(w, "%d jobs found • %d selected\n", len(jobs), selected.Len())
	tw := newTable(w)
	fmt.Fprintln(tw, "\tID\tTITLE\tCOMPANY\tLOCATION\tSOURCE\tPOSTED\tSALARY")
	for _, j := range jobs {
		mark := "[ ]"
		if selected.Contains(j.ID) {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			mark, j.ID, j.Title, j.Company, j.Location, dash(j.Source), RelativeDateString(j.PostedDate, now), dash(j.Salary))
	}
	return tw.Flush()
}

// RenderPreferences 输出求职偏好，nil 表示尚未设置
func RenderPreferences(w io.Writer, p *models.UserPreferences) error {
	if p == nil {
		_, err := fmt.Fprintln(w, "No preferences saved yet")
		return err
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "Qualifications\t%s\n", dash(p.Qualifications))
	fmt.Fprintf(tw, "Work experience\t%s\n", dash(p.WorkExperience))
	fmt.Fprintf(tw, "Job preferences\t%s\n", dash(p.JobPreferences))
	return tw.Flush()
}

// RenderProfile 输出职业档案摘要
func RenderProfile(w io.Writer, p *models.UserProfile) error {
	if p == nil {
		_, err := fmt.Fprintln(w, "No profile yet. Create one with: jobflow profile set -f profile.yaml")
		return err
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "Name\t%s\n", p.Name)
	fmt.Fprintf(tw, "Email\t%s\n", p.Email)
	fmt.Fprintf(tw, "Location\t%s\n", dash(p.Location))
	fmt.Fprintf(tw, "Experience\t%s\n", dash(p.Experience))
	fmt.Fprintf(tw, "Education\t%s\n", dash(p.Education))
	fmt.Fprintf(tw, "Availability\t%s\n", dash(p.Availability))
	fmt.Fprintf(tw, "Remote\t%t\n", p.RemotePreference)
	fmt.Fprintf(tw, "Skills\t%s\n", dash(strings.Join(p.Skills, ", ")))
	fmt.Fprintf(tw, "Languages\t%s\n", dash(strings.Join(p.Languages, ", ")))
	fmt.Fprintf(tw, "Work history\t%d entries\n", len(p.WorkHistory))
	return tw.Flush()
}

// RenderSettings 输出本地设置
func RenderSettings(w io.Writer, s models.Settings) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "apiEndpoint\t%s\n", s.APIEndpoint)
	fmt.Fprintf(tw, "syncFrequency\t%s\n", s.SyncFrequency)
	fmt.Fprintf(tw, "autoSubmit\t%t\n", s.AutoSubmit)
	fmt.Fprintf(tw, "confirmations\t%t\n", s.Confirmations)
	fmt.Fprintf(tw, "actionDelay\t%d\n", s.ActionDelay)
	fmt.Fprintf(tw, "localBackup\t%t\n", s.LocalBackup)
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
