// Package export 导出岗位链接和申请记录
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"jobflow-dashboard/internal/models"
)

// Format 导出格式
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat 不区分大小写
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("不支持的导出格式: %q", s)
	}
}

// Ext 文件扩展名
func (f Format) Ext() string {
	return "." + string(f)
}

// ContentType 下载时使用的 MIME 类型
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}

// Data 一次导出的全部内容
type Data struct {
	ExportedAt   time.Time            `json:"exportedAt"`
	Email        string               `json:"email,omitempty"`
	Stats        *models.Stats        `json:"stats,omitempty"`
	JobURLs      []models.JobURL      `json:"jobUrls"`
	Applications []models.Application `json:"applications"`
}

var (
	jobURLHeader      = []string{"id", "company", "title", "url", "status", "createdAt"}
	applicationHeader = []string{"id", "company", "position", "location", "appliedDate", "status", "lastUpdate", "jobType", "workType"}
)

func jobURLRow(u models.JobURL) []string {
	title := u.Title
	if title == "" {
		title = u.Position
	}
	return []string{u.ID, u.Company, title, u.URL, string(u.Status), u.CreatedAt}
}

func applicationRow(a models.Application) []string {
	return []string{a.ID, a.Company, a.Position, a.Location, a.AppliedDate, string(a.Status), a.LastUpdate, a.JobType, a.WorkType}
}

// Write 按格式写出
func Write(w io.Writer, f Format, d Data) error {
	switch f {
	case FormatJSON:
		return JSON(w, d)
	case FormatCSV:
		return CSV(w, d)
	case FormatXLSX:
		return XLSX(w, d)
	default:
		return fmt.Errorf("不支持的导出格式: %q", f)
	}
}

// JSON 缩进输出，空列表写成 []
func JSON(w io.Writer, d Data) error {
	if d.JobURLs == nil {
		d.JobURLs = []models.JobURL{}
	}
	if d.Applications == nil {
		d.Applications = []models.Application{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("写出JSON失败: %w", err)
	}
	return nil
}

// CSV 每条记录一行，第一列 type 区分 job_url 和 application
func CSV(w io.Writer, d Data) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(append([]string{"type"}, jobURLHeader...)); err != nil {
		return fmt.Errorf("写出CSV失败: %w", err)
	}
	for _, u := range d.JobURLs {
		if err := cw.Write(append([]string{"job_url"}, jobURLRow(u)...)); err != nil {
			return fmt.Errorf("写出CSV失败: %w", err)
		}
	}

	if err := cw.Write(append([]string{"type"}, applicationHeader...)); err != nil {
		return fmt.Errorf("写出CSV失败: %w", err)
	}
	for _, a := range d.Applications {
		if err := cw.Write(append([]string{"application"}, applicationRow(a)...)); err != nil {
			return fmt.Errorf("写出CSV失败: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("写出CSV失败: %w", err)
	}
	return nil
}
