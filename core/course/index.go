package course

import "sort"

// Index is the ordered Module -> Session -> ContentItem hierarchy of a single course.
// Duplicate order keys keep their input order.
type Index struct {
	courseID  string
	modules   []Module
	sessions  map[string][]Session     // {moduleID: sessions}
	contents  map[string][]ContentItem // {sessionID: items}
	flat      []ContentItem
	positions map[string]int // {contentItemID: index in flat}
}

// NewIndex builds the hierarchy of courseID out of the supplied collections.
// Ownership follows Module -> Session -> ContentItem: records whose owner is not part of the course are ignored,
// whatever their denormalized ids say.
func NewIndex(courseID string, modules []Module, sessions []Session, items []ContentItem) *Index {
	idx := &Index{
		courseID:  courseID,
		sessions:  make(map[string][]Session),
		contents:  make(map[string][]ContentItem),
		positions: make(map[string]int),
	}

	for _, m := range modules {
		if m.CourseID == courseID {
			idx.modules = append(idx.modules, m)
		}
	}
	sort.SliceStable(idx.modules, func(i, j int) bool { return idx.modules[i].Order < idx.modules[j].Order })

	owned := make(map[string]bool, len(idx.modules))
	for _, m := range idx.modules {
		owned[m.ID] = true
	}
	sessionModule := make(map[string]string)
	for _, s := range sessions {
		if !owned[s.ModuleID] {
			continue
		}
		idx.sessions[s.ModuleID] = append(idx.sessions[s.ModuleID], s)
		sessionModule[s.ID] = s.ModuleID
	}
	for modID := range idx.sessions {
		ss := idx.sessions[modID]
		sort.SliceStable(ss, func(i, j int) bool { return ss[i].Order < ss[j].Order })
	}

	for _, item := range items {
		modID, ok := sessionModule[item.SessionID]
		if !ok {
			continue
		}
		item.ModuleID = modID
		item.CourseID = courseID
		idx.contents[item.SessionID] = append(idx.contents[item.SessionID], item)
	}
	for sessID := range idx.contents {
		cs := idx.contents[sessID]
		sort.SliceStable(cs, func(i, j int) bool { return cs[i].Order < cs[j].Order })
	}

	for _, m := range idx.modules {
		for _, s := range idx.sessions[m.ID] {
			for _, item := range idx.contents[s.ID] {
				idx.positions[item.ID] = len(idx.flat)
				idx.flat = append(idx.flat, item)
			}
		}
	}
	return idx
}

func (idx *Index) CourseID() string { return idx.courseID }

// Len returns the number of content items of the course.
func (idx *Index) Len() int { return len(idx.flat) }

func (idx *Index) Modules() []Module {
	return append([]Module{}, idx.modules...)
}

func (idx *Index) Sessions(moduleID string) []Session {
	return append([]Session{}, idx.sessions[moduleID]...)
}

func (idx *Index) Contents(sessionID string) []ContentItem {
	return append([]ContentItem{}, idx.contents[sessionID]...)
}

// ModuleContents returns the content items of a module, in course order.
func (idx *Index) ModuleContents(moduleID string) []ContentItem {
	items := make([]ContentItem, 0)
	for _, s := range idx.sessions[moduleID] {
		items = append(items, idx.contents[s.ID]...)
	}
	return items
}

// Flatten returns every content item of the course: module order, then session order, then item order.
func (idx *Index) Flatten() []ContentItem {
	return append([]ContentItem{}, idx.flat...)
}

func (idx *Index) Item(contentItemID string) (ContentItem, bool) {
	pos, ok := idx.positions[contentItemID]
	if !ok {
		return ContentItem{}, false
	}
	return idx.flat[pos], true
}

// Next returns the item following contentItemID in course order.
func (idx *Index) Next(contentItemID string) (ContentItem, bool) {
	pos, ok := idx.positions[contentItemID]
	if !ok || pos+1 >= len(idx.flat) {
		return ContentItem{}, false
	}
	return idx.flat[pos+1], true
}

// Previous returns the item preceding contentItemID in course order.
func (idx *Index) Previous(contentItemID string) (ContentItem, bool) {
	pos, ok := idx.positions[contentItemID]
	if !ok || pos == 0 {
		return ContentItem{}, false
	}
	return idx.flat[pos-1], true
}

type (
	Outline struct {
		Course  Course          `json:"course"`
		Total   int             `json:"total_contents"`
		Modules []OutlineModule `json:"modules"`
	}

	OutlineModule struct {
		Module
		Sessions []OutlineSession `json:"sessions"`
	}

	OutlineSession struct {
		Session
		Contents []ContentItem `json:"contents"`
	}
)

// Outline returns the nested, ordered hierarchy of the course.
func (idx *Index) Outline(c Course) Outline {
	out := Outline{Course: c, Total: idx.Len(), Modules: make([]OutlineModule, 0, len(idx.modules))}
	for _, m := range idx.modules {
		om := OutlineModule{Module: m, Sessions: make([]OutlineSession, 0, len(idx.sessions[m.ID]))}
		for _, s := range idx.sessions[m.ID] {
			om.Sessions = append(om.Sessions, OutlineSession{Session: s, Contents: idx.Contents(s.ID)})
		}
		out.Modules = append(out.Modules, om)
	}
	return out
}
