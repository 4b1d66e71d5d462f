package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsArea(t *testing.T) {
	tests := []struct {
		tags map[string]string
		want bool
	}{
		{nil, false},
		{map[string]string{"highway": "residential"}, false},
		{map[string]string{"building": "yes"}, true},
		{map[string]string{"building": "no"}, false},
		{map[string]string{"highway": "pedestrian", "area": "yes"}, true},
		{map[string]string{"landuse": "forest", "area": "no"}, false},
		{map[string]string{"natural": "water", "name": "Lake"}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsArea(TagsFromMap(tt.tags)), "%v", tt.tags)
	}
}

func TestTagsFromMap(t *testing.T) {
	tags := TagsFromMap(map[string]string{"name": "A", "amenity": "cafe", "wifi": "yes"})
	assert.Equal(t, Tags{{"amenity", "cafe"}, {"name", "A"}, {"wifi", "yes"}}, tags)

	v, ok := tags.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "A", v)
	assert.False(t, tags.Has("shop"))
	assert.Equal(t, map[string]string{"name": "A", "amenity": "cafe", "wifi": "yes"}, tags.Map())
	assert.Nil(t, Tags(nil).Map())
}

func TestSplitTags(t *testing.T) {
	tags := TagsFromMap(map[string]string{
		"name":    "Bridge",
		"name:de": "Brücke",
		"highway": "primary",
		"surface": "asphalt",
	})

	t.Run("none", func(t *testing.T) {
		opt := DefaultOptions()
		opt.Columns = []string{"name", "highway"}
		s, keep := splitTags(&opt, tags)
		assert.True(t, keep)
		assert.Equal(t, map[string]string{"name": "Bridge", "highway": "primary"}, s.Columns)
		assert.Nil(t, s.Hstore)
		assert.Nil(t, s.Extra)
	})

	t.Run("norm", func(t *testing.T) {
		opt := DefaultOptions()
		opt.Columns = []string{"name"}
		opt.Hstore = HstoreNorm
		s, _ := splitTags(&opt, tags)
		assert.Equal(t, map[string]string{"name:de": "Brücke", "highway": "primary", "surface": "asphalt"}, s.Hstore)
	})

	t.Run("all", func(t *testing.T) {
		opt := DefaultOptions()
		opt.Columns = []string{"name"}
		opt.Hstore = HstoreAll
		opt.HstoreColumns = []string{"name:"}
		s, _ := splitTags(&opt, tags)
		assert.Len(t, s.Hstore, 4)
		assert.Equal(t, map[string]map[string]string{"name:": {"name:de": "Brücke"}}, s.Extra)
	})

	t.Run("match only", func(t *testing.T) {
		opt := DefaultOptions()
		opt.Hstore = HstoreAll
		opt.HstoreMatchOnly = true
		opt.Columns = []string{"building"}
		_, keep := splitTags(&opt, tags)
		assert.False(t, keep)

		opt.HstoreColumns = []string{"name:"}
		_, keep = splitTags(&opt, tags)
		assert.True(t, keep)
	})
}
