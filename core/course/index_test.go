package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ids(items []ContentItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func sampleIndex() *Index {
	modules := []Module{
		{ID: "m2", CourseID: "c1", Order: 2},
		{ID: "m1", CourseID: "c1", Order: 1},
		{ID: "other", CourseID: "c2", Order: 0},
	}
	sessions := []Session{
		{ID: "s2", ModuleID: "m1", Order: 2},
		{ID: "s1", ModuleID: "m1", Order: 1},
		{ID: "s3", ModuleID: "m2", Order: 1},
		{ID: "s-other", ModuleID: "other", Order: 1},
	}
	items := []ContentItem{
		{ID: "i4", SessionID: "s3", Order: 1, Type: ContentVideo},
		{ID: "i2", SessionID: "s1", Order: 2, Type: ContentDocument},
		{ID: "i1", SessionID: "s1", Order: 1, Type: ContentVideo},
		{ID: "i3", SessionID: "s2", Order: 1, Type: ContentLink},
		// denormalized ids lie: ownership follows the session
		{ID: "i5", SessionID: "s-other", ModuleID: "m1", CourseID: "c1", Order: 1, Type: ContentLink},
	}
	return NewIndex("c1", modules, sessions, items)
}

func TestIndex_Flatten(t *testing.T) {
	idx := sampleIndex()

	assert.Equal(t, []string{"i1", "i2", "i3", "i4"}, ids(idx.Flatten()))
	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, "c1", idx.CourseID())

	mods := idx.Modules()
	if assert.Len(t, mods, 2) {
		assert.Equal(t, "m1", mods[0].ID)
		assert.Equal(t, "m2", mods[1].ID)
	}
	assert.Equal(t, []string{"i1", "i2", "i3"}, ids(idx.ModuleContents("m1")))
	assert.Equal(t, []string{"i4"}, ids(idx.ModuleContents("m2")))

	item, ok := idx.Item("i4")
	assert.True(t, ok)
	assert.Equal(t, "m2", item.ModuleID)
	assert.Equal(t, "c1", item.CourseID)

	_, ok = idx.Item("i5")
	assert.False(t, ok, "items of sessions outside the course must be ignored")
}

func TestIndex_Empty(t *testing.T) {
	idx := NewIndex("c1", []Module{{ID: "m1", CourseID: "c1"}}, nil, nil)

	if got := idx.Sessions("m1"); got == nil || len(got) != 0 {
		t.Errorf("failed! Sessions() = %v, want empty slice", got)
	}
	if got := idx.Contents("unknown"); got == nil || len(got) != 0 {
		t.Errorf("failed! Contents() = %v, want empty slice", got)
	}
	if got := idx.ModuleContents("m1"); got == nil || len(got) != 0 {
		t.Errorf("failed! ModuleContents() = %v, want empty slice", got)
	}
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Flatten())
}

func TestIndex_DuplicateOrderIsStable(t *testing.T) {
	idx := NewIndex(
		"c1",
		[]Module{{ID: "m1", CourseID: "c1", Order: 1}},
		[]Session{{ID: "s1", ModuleID: "m1", Order: 1}},
		[]ContentItem{
			{ID: "b", SessionID: "s1", Order: 1},
			{ID: "a", SessionID: "s1", Order: 1},
			{ID: "c", SessionID: "s1", Order: 0},
		},
	)
	assert.Equal(t, []string{"c", "b", "a"}, ids(idx.Flatten()))
}

func TestIndex_Navigation(t *testing.T) {
	idx := sampleIndex()

	tests := []struct {
		name     string
		id       string
		wantPrev string
		wantNext string
	}{
		{name: "first", id: "i1", wantNext: "i2"},
		{name: "crosses sessions", id: "i2", wantPrev: "i1", wantNext: "i3"},
		{name: "crosses modules", id: "i3", wantPrev: "i2", wantNext: "i4"},
		{name: "last", id: "i4", wantPrev: "i3"},
		{name: "unknown", id: "lol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev, _ := idx.Previous(tt.id)
			next, _ := idx.Next(tt.id)
			if prev.ID != tt.wantPrev {
				t.Errorf("failed! Previous() = %q, want %q", prev.ID, tt.wantPrev)
			}
			if next.ID != tt.wantNext {
				t.Errorf("failed! Next() = %q, want %q", next.ID, tt.wantNext)
			}
		})
	}
}

func TestIndex_Outline(t *testing.T) {
	idx := sampleIndex()
	out := idx.Outline(Course{ID: "c1", Title: "Go"})

	assert.Equal(t, 4, out.Total)
	if assert.Len(t, out.Modules, 2) {
		m1 := out.Modules[0]
		assert.Equal(t, "m1", m1.ID)
		if assert.Len(t, m1.Sessions, 2) {
			assert.Equal(t, "s1", m1.Sessions[0].ID)
			assert.Equal(t, []string{"i1", "i2"}, ids(m1.Sessions[0].Contents))
		}
	}
}
