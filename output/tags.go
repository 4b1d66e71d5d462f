package output

import (
	"slices"
	"strings"
)

type Tag struct {
	Key   string
	Value string
}

// Tags is the key-value tag set of an entity.
type Tags []Tag

// TagsFromMap returns the tags of m sorted by key.
func TagsFromMap(m map[string]string) Tags {
	t := make(Tags, 0, len(m))
	for k, v := range m {
		t = append(t, Tag{k, v})
	}
	slices.SortFunc(t, func(a, b Tag) int {
		return strings.Compare(a.Key, b.Key)
	})
	return t
}

func (t Tags) Get(key string) (string, bool) {
	for _, tag := range t {
		if tag.Key == key {
			return tag.Value, true
		}
	}
	return "", false
}

func (t Tags) Has(key string) bool {
	_, ok := t.Get(key)
	return ok
}

func (t Tags) Map() map[string]string {
	if len(t) == 0 {
		return nil
	}
	m := make(map[string]string, len(t))
	for _, tag := range t {
		m[tag.Key] = tag.Value
	}
	return m
}

// areaKeys are the tag keys that make a closed way an area.
var areaKeys = map[string]bool{
	"aeroway":          true,
	"amenity":          true,
	"boundary":         true,
	"building":         true,
	"building:part":    true,
	"harbour":          true,
	"historic":         true,
	"landuse":          true,
	"leisure":          true,
	"man_made":         true,
	"military":         true,
	"natural":          true,
	"office":           true,
	"place":            true,
	"power":            true,
	"public_transport": true,
	"shop":             true,
	"sport":            true,
	"tourism":          true,
	"water":            true,
	"waterway":         true,
	"wetland":          true,
}

// IsArea reports whether the tags describe an area when set on a closed
// way. An explicit area=yes or area=no wins over everything else.
func IsArea(t Tags) bool {
	if v, ok := t.Get("area"); ok {
		switch v {
		case "yes", "1", "true":
			return true
		case "no", "0", "false":
			return false
		}
	}
	for _, tag := range t {
		if areaKeys[tag.Key] && tag.Value != "no" {
			return true
		}
	}
	return false
}

type tagSplit struct {
	Columns map[string]string
	Hstore  map[string]string
	Extra   map[string]map[string]string
}

// splitTags distributes tags between exclusive columns, the hstore column
// and the per-prefix hstore columns. keep is false if HstoreMatchOnly is on
// and nothing matched.
func splitTags(o *Options, tags Tags) (s tagSplit, keep bool) {
	for _, tag := range tags {
		isCol := o.isColumn(tag.Key)
		if isCol {
			s.Columns = put(s.Columns, tag.Key, tag.Value)
		}
		if o.Hstore == HstoreAll || (o.Hstore == HstoreNorm && !isCol) {
			s.Hstore = put(s.Hstore, tag.Key, tag.Value)
		}
		for _, prefix := range o.HstoreColumns {
			if strings.HasPrefix(tag.Key, prefix) {
				if s.Extra == nil {
					s.Extra = make(map[string]map[string]string)
				}
				s.Extra[prefix] = put(s.Extra[prefix], tag.Key, tag.Value)
			}
		}
	}
	keep = !o.HstoreMatchOnly || len(s.Columns) > 0 || len(s.Extra) > 0
	return s, keep
}

func put(m map[string]string, k, v string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	m[k] = v
	return m
}
