package views

import "slices"

// Selection 列表中勾选的条目，按勾选顺序保存 ID
type Selection struct {
	ids []string
}

// NewSelection 用已有 ID 初始化，重复的 ID 只保留一次
func NewSelection(ids ...string) *Selection {
	s := &Selection{}
	for _, id := range ids {
		s.Set(id, true)
	}
	return s
}

// Set 勾选或取消勾选
func (s *Selection) Set(id string, checked bool) {
	idx := slices.Index(s.ids, id)
	switch {
	case checked && idx < 0:
		s.ids = append(s.ids, id)
	case !checked && idx >= 0:
		s.ids = slices.Delete(s.ids, idx, idx+1)
	}
}

// Toggle 切换单个条目
func (s *Selection) Toggle(id string) {
	s.Set(id, !s.Contains(id))
}

// ToggleAll 已选数量等于可见数量时全部取消，否则选中全部可见条目
func (s *Selection) ToggleAll(visible []string) {
	if len(s.ids) == len(visible) {
		s.ids = nil
		return
	}
	s.ids = slices.Clone(visible)
}

func (s *Selection) Contains(id string) bool {
	return slices.Contains(s.ids, id)
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs 返回副本
func (s *Selection) IDs() []string {
	return slices.Clone(s.ids)
}
