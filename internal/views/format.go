package views

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"jobflow-dashboard/internal/models"
)

// DateLayout 日期的展示格式
const DateLayout = "1/2/2006"

// URLDisplayLength 列表中链接最多显示的字符数
const URLDisplayLength = 40

// RelativeDate 一天前显示 "1 day ago"，一周内显示 "N days ago"，更早显示日期
// 天数向上取整
func RelativeDate(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Ceil(diff.Hours() / 24))
	switch {
	case days == 1:
		return "1 day ago"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format(DateLayout)
	}
}

// RelativeDateString 解析失败时原样返回
func RelativeDateString(s string, now time.Time) string {
	t, ok := models.ParseTime(s)
	if !ok {
		return s
	}
	return RelativeDate(t, now)
}

// FormatDate 解析失败时原样返回
func FormatDate(s string) string {
	t, ok := models.ParseTime(s)
	if !ok {
		return s
	}
	return t.Format(DateLayout)
}

// Truncate 超过 n 个字符时截断并加 "..."
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// Percent 12 -> "12%"，12.5 -> "12.5%"
func Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// StatusTone 状态徽标的颜色
func StatusTone(status string) string {
	switch status {
	case "pending":
		return "yellow"
	case "applied", "interview":
		return "green"
	case "interviewed", "accepted":
		return "blue"
	case "rejected":
		return "red"
	default:
		return "gray"
	}
}
