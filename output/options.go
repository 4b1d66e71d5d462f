package output

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"

	"github.com/andreyvit/georec"
	"gopkg.in/yaml.v3"
)

// HstoreMode selects which tags go into the key-value tags column.
type HstoreMode int

const (
	// HstoreNone stores no key-value tags column.
	HstoreNone HstoreMode = iota
	// HstoreNorm stores tags that don't have a column of their own.
	HstoreNorm
	// HstoreAll stores all tags, including those with their own column.
	HstoreAll
)

const (
	// DefaultScale keeps 40,000 * DefaultScale well below 2^32.
	DefaultScale  = 100
	DefaultPrefix = "planet_osm"
)

var reservedColumns = []string{"osm_id", "geom", "nodes", "members", "tags"}

func ParseHstoreMode(s string) (HstoreMode, error) {
	switch s {
	case "none", "":
		return HstoreNone, nil
	case "norm":
		return HstoreNorm, nil
	case "all":
		return HstoreAll, nil
	default:
		return HstoreNone, fmt.Errorf("invalid hstore mode %q (wanted none, norm or all)", s)
	}
}

func (m HstoreMode) String() string {
	switch m {
	case HstoreNone:
		return "none"
	case HstoreNorm:
		return "norm"
	case HstoreAll:
		return "all"
	default:
		return fmt.Sprintf("hstore(%d)", int(m))
	}
}

func (m HstoreMode) MarshalYAML() (any, error) {
	return m.String(), nil
}

func (m *HstoreMode) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := ParseHstoreMode(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Options configure a Dispatcher and the backends it drives.
type Options struct {
	// Scale is the number of output coordinate units per degree.
	Scale int `yaml:"scale"`

	// Prefix is prepended to table names.
	Prefix string `yaml:"prefix"`

	Hstore HstoreMode `yaml:"hstore"`

	// HstoreColumns lists key prefixes (e.g. "name:") whose tags are
	// collected into a key-value column of their own.
	HstoreColumns []string `yaml:"hstore_columns"`

	// HstoreMatchOnly drops entities that have no tag matching Columns or
	// HstoreColumns.
	HstoreMatchOnly bool `yaml:"hstore_match_only"`

	// Columns lists tag keys that get a column of their own.
	Columns []string `yaml:"columns"`

	// NumProcs bounds how many backends run Start, Flush and Stop at once.
	NumProcs int `yaml:"num_procs"`

	// Append keeps existing tables instead of recreating them on Start.
	Append bool `yaml:"append"`

	Logger *slog.Logger `yaml:"-"`
}

func DefaultOptions() Options {
	return Options{
		Scale:    DefaultScale,
		Prefix:   DefaultPrefix,
		Hstore:   HstoreNone,
		NumProcs: 1,
	}
}

// LoadOptions reads options from a YAML file. Fields missing from the file
// keep their DefaultOptions values; unknown fields are an error.
func LoadOptions(path string) (Options, error) {
	opt := DefaultOptions()
	raw, err := os.ReadFile(path)
	if err != nil {
		return opt, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&opt); err != nil && !errors.Is(err, io.EOF) {
		return opt, fmt.Errorf("%s: %w", path, err)
	}
	if err := opt.Validate(); err != nil {
		return opt, fmt.Errorf("%s: %w", path, err)
	}
	return opt, nil
}

func (o *Options) setDefaults() {
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.NumProcs <= 0 {
		o.NumProcs = 1
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

func (o *Options) Validate() error {
	if o.Scale <= 0 {
		return fmt.Errorf("invalid scale %d", o.Scale)
	}
	if !isIdent(o.Prefix) {
		return fmt.Errorf("invalid prefix %q: only letters, digits and underscores are allowed", o.Prefix)
	}
	if o.NumProcs < 1 {
		return fmt.Errorf("invalid num_procs %d", o.NumProcs)
	}
	if o.Hstore < HstoreNone || o.Hstore > HstoreAll {
		return fmt.Errorf("invalid hstore mode %v", o.Hstore)
	}
	seen := make(map[string]bool)
	for _, c := range append(slices.Clip(o.Columns), o.HstoreColumns...) {
		if c == "" {
			return errors.New("empty column name")
		}
		if slices.Contains(reservedColumns, c) {
			return fmt.Errorf("column name %q is reserved", c)
		}
		if seen[c] {
			return fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = true
	}
	return nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}

// TableName returns the name of the table for the given geometry class.
func (o *Options) TableName(t Table) string {
	return o.Prefix + "_" + string(t)
}

func (o *Options) isColumn(key string) bool {
	return slices.Contains(o.Columns, key)
}

// scaleCoord converts a fixed-point coordinate into output units.
func (o *Options) scaleCoord(v int32) int64 {
	return int64(math.Round(float64(v) * float64(o.Scale) / georec.CoordinatePrecision))
}
