package tags

import (
	"github.com/matzehuels/taggraph/pkg/errors"
)

// Modifier is a criterion comparison operator.
type Modifier string

const (
	Equals          Modifier = "EQUALS"
	NotEquals       Modifier = "NOT_EQUALS"
	GreaterThan     Modifier = "GREATER_THAN"
	LessThan        Modifier = "LESS_THAN"
	Between         Modifier = "BETWEEN"
	NotBetween      Modifier = "NOT_BETWEEN"
	Includes        Modifier = "INCLUDES"
	Excludes        Modifier = "EXCLUDES"
	IsNull          Modifier = "IS_NULL"
	NotNull         Modifier = "NOT_NULL"
	MatchesRegex    Modifier = "MATCHES_REGEX"
	NotMatchesRegex Modifier = "NOT_MATCHES_REGEX"
)

var modifiers = map[Modifier]bool{
	Equals: true, NotEquals: true, GreaterThan: true, LessThan: true,
	Between: true, NotBetween: true, Includes: true, Excludes: true,
	IsNull: true, NotNull: true, MatchesRegex: true, NotMatchesRegex: true,
}

// Valid reports whether m is a known modifier.
func (m Modifier) Valid() bool { return modifiers[m] }

// IntCriterion compares an integer field.
// Value2 is the upper bound for BETWEEN and NOT_BETWEEN.
type IntCriterion struct {
	Value    int      `json:"value" yaml:"value" toml:"value"`
	Value2   *int     `json:"value2,omitempty" yaml:"value2,omitempty" toml:"value2,omitempty"`
	Modifier Modifier `json:"modifier" yaml:"modifier" toml:"modifier"`
}

// StringCriterion compares a string field.
type StringCriterion struct {
	Value    string   `json:"value" yaml:"value" toml:"value"`
	Modifier Modifier `json:"modifier" yaml:"modifier" toml:"modifier"`
}

// TagFilter selects tags. Field names match the server's TagFilterType.
// Sub-filters combine with the criteria of the enclosing filter.
type TagFilter struct {
	Name        *StringCriterion `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Favorite    *bool            `json:"favorite,omitempty" yaml:"favorite,omitempty" toml:"favorite,omitempty"`
	SceneCount  *IntCriterion    `json:"scene_count,omitempty" yaml:"scene_count,omitempty" toml:"scene_count,omitempty"`
	ChildCount  *IntCriterion    `json:"child_count,omitempty" yaml:"child_count,omitempty" toml:"child_count,omitempty"`
	ParentCount *IntCriterion    `json:"parent_count,omitempty" yaml:"parent_count,omitempty" toml:"parent_count,omitempty"`

	And *TagFilter `json:"AND,omitempty" yaml:"AND,omitempty" toml:"AND,omitempty"`
	Or  *TagFilter `json:"OR,omitempty" yaml:"OR,omitempty" toml:"OR,omitempty"`
	Not *TagFilter `json:"NOT,omitempty" yaml:"NOT,omitempty" toml:"NOT,omitempty"`
}

// FindFilter controls paging and free-text search.
type FindFilter struct {
	Q       string `json:"q"`
	PerPage int    `json:"per_page"`
}

// AllResults requests every match in a single page.
var AllResults = FindFilter{Q: "", PerPage: -1}

// DefaultHierarchyFilter matches tags that have children or parents.
func DefaultHierarchyFilter() *TagFilter {
	return &TagFilter{
		ChildCount: &IntCriterion{Modifier: GreaterThan, Value: 0},
		Or: &TagFilter{
			ParentCount: &IntCriterion{Modifier: GreaterThan, Value: 0},
		},
	}
}

// NameFilter matches tags by name with the given modifier.
func NameFilter(value string, mod Modifier) *TagFilter {
	return &TagFilter{Name: &StringCriterion{Value: value, Modifier: mod}}
}

// Validate checks modifiers and bounds recursively. A nil filter is valid.
func (f *TagFilter) Validate() error {
	return f.validate("tag_filter")
}

func (f *TagFilter) validate(path string) error {
	if f == nil {
		return nil
	}
	if f.Name != nil {
		if err := checkModifier(path+".name", f.Name.Modifier); err != nil {
			return err
		}
	}
	ints := []struct {
		field string
		c     *IntCriterion
	}{
		{"scene_count", f.SceneCount},
		{"child_count", f.ChildCount},
		{"parent_count", f.ParentCount},
	}
	for _, ic := range ints {
		if ic.c == nil {
			continue
		}
		if err := ic.c.validate(path + "." + ic.field); err != nil {
			return err
		}
	}
	if err := f.And.validate(path + ".AND"); err != nil {
		return err
	}
	if err := f.Or.validate(path + ".OR"); err != nil {
		return err
	}
	return f.Not.validate(path + ".NOT")
}

func (c *IntCriterion) validate(path string) error {
	if err := checkModifier(path, c.Modifier); err != nil {
		return err
	}
	switch c.Modifier {
	case Between, NotBetween:
		if c.Value2 == nil {
			return errors.New(errors.ErrCodeInvalidFilter, "%s: %s requires value2", path, c.Modifier)
		}
	case MatchesRegex, NotMatchesRegex, Includes, Excludes:
		return errors.New(errors.ErrCodeInvalidFilter, "%s: modifier %s not valid for integers", path, c.Modifier)
	}
	return nil
}

func checkModifier(path string, m Modifier) error {
	if m == "" {
		return errors.New(errors.ErrCodeInvalidFilter, "%s: modifier is required", path)
	}
	if !m.Valid() {
		return errors.New(errors.ErrCodeInvalidFilter, "%s: unknown modifier %q", path, m)
	}
	return nil
}
