// Package shell 页面路由表、侧边栏导航和登录守卫
package shell

import "strings"

// Route 一个页面
type Route struct {
	Path      string
	Name      string
	Title     string
	Protected bool
}

const (
	PathAuth         = "/auth"
	PathDashboard    = "/"
	PathURLs         = "/urls"
	PathApplications = "/applications"
	PathJobs         = "/jobs"
	PathProfile      = "/profile"
	PathCVBuilder    = "/cv-builder"
	PathSettings     = "/settings"
)

var routes = []Route{
	{Path: PathAuth, Name: "auth", Title: "Sign in"},
	{Path: PathDashboard, Name: "dashboard", Title: "Dashboard", Protected: true},
	{Path: PathURLs, Name: "urls", Title: "Job URLs", Protected: true},
	{Path: PathApplications, Name: "applications", Title: "Applications", Protected: true},
	{Path: PathJobs, Name: "jobs", Title: "Discovered Jobs", Protected: true},
	{Path: PathProfile, Name: "profile", Title: "Profile", Protected: true},
	{Path: PathCVBuilder, Name: "cv-builder", Title: "AI CV Builder", Protected: true},
	{Path: PathSettings, Name: "settings", Title: "Settings", Protected: true},
}

// NotFound 未知路径
var NotFound = Route{Name: "not-found", Title: "404 Page Not Found"}

// Routes 返回路由表副本
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Match 精确匹配路径，忽略结尾的 / 和查询参数
func Match(path string) (Route, bool) {
	path = normalize(path)
	for _, r := range routes {
		if r.Path == path {
			return r, true
		}
	}
	return NotFound, false
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}

// NavItem 侧边栏条目
type NavItem struct {
	ID    string
	Label string
	Path  string
}

var navItems = []NavItem{
	{ID: "dashboard", Label: "Dashboard", Path: PathDashboard},
	{ID: "urls", Label: "Job URLs", Path: PathURLs},
	{ID: "applications", Label: "Applications", Path: PathApplications},
	{ID: "cv-builder", Label: "AI CV Builder", Path: PathCVBuilder},
	{ID: "settings", Label: "Settings", Path: PathSettings},
}

// NavItems 侧边栏条目，顺序固定
func NavItems() []NavItem {
	out := make([]NavItem, len(navItems))
	copy(out, navItems)
	return out
}

// ActiveTab 当前路径对应的侧边栏条目 ID
// 发现的岗位和档案页面归在看板下
func ActiveTab(path string) string {
	switch p := normalize(path); p {
	case PathJobs, PathProfile:
		return "dashboard"
	default:
		for _, item := range navItems {
			if item.Path == p {
				return item.ID
			}
		}
		return ""
	}
}
