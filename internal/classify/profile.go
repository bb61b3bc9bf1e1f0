package classify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"treemerge/internal/errors"
	"treemerge/internal/tree"
)

// Match kinds of a Definition.
const (
	MatchSuffix = "suffix"
	MatchPrefix = "prefix"
	MatchString = "string"
	MatchParent = "parent"
	MatchLeaf   = "leaf"
	MatchAny    = "any"
)

// Definition describes one classifier of a profile.
type Definition struct {
	// Name identifies the classifier and feeds its fingerprint
	Name string `toml:"name" yaml:"name" json:"name" mapstructure:"name"`

	// Display is the name shown in reports; Name when empty
	Display string `toml:"display,omitempty" yaml:"display,omitempty" json:"display,omitempty" mapstructure:"display"`

	// Match is one of suffix, prefix, string, parent, leaf or any
	Match string `toml:"match" yaml:"match" json:"match" mapstructure:"match"`

	Suffixes    []string `toml:"suffixes,omitempty" yaml:"suffixes,omitempty" json:"suffixes,omitempty" mapstructure:"suffixes"`
	Prefixes    []string `toml:"prefixes,omitempty" yaml:"prefixes,omitempty" json:"prefixes,omitempty" mapstructure:"prefixes"`
	Conjunction bool     `toml:"conjunction,omitempty" yaml:"conjunction,omitempty" json:"conjunction,omitempty" mapstructure:"conjunction"`
	FoldCase    bool     `toml:"fold_case,omitempty" yaml:"fold_case,omitempty" json:"foldCase,omitempty" mapstructure:"fold_case"`

	// Approach is a hash approach name; exact-count when empty
	Approach string `toml:"approach,omitempty" yaml:"approach,omitempty" json:"approach,omitempty" mapstructure:"approach"`
}

// Profile is an ordered list of classifier definitions. Earlier definitions
// take priority.
type Profile struct {
	Name          string       `toml:"name,omitempty" yaml:"name,omitempty" json:"name,omitempty" mapstructure:"name"`
	FoldCacheSize int          `toml:"fold_cache_size,omitempty" yaml:"fold_cache_size,omitempty" json:"foldCacheSize,omitempty" mapstructure:"fold_cache_size"`
	Classifiers   []Definition `toml:"classifiers" yaml:"classifiers" json:"classifiers" mapstructure:"classifiers"`
}

// DefaultProfile returns the built-in file system profile.
func DefaultProfile() Profile {
	return Profile{
		Name: "default",
		Classifiers: []Definition{
			{
				Name:     "archive",
				Display:  "ARCHIVE",
				Match:    MatchSuffix,
				Suffixes: []string{".zip", ".tar", ".gz", ".tgz", ".bz2", ".xz", ".7z", ".rar"},
				FoldCase: true,
			},
			{
				Name:     "image",
				Display:  "IMAGE",
				Match:    MatchSuffix,
				Suffixes: []string{".jpeg", ".jpg", ".png", ".gif", ".bmp", ".svg", ".webp", ".tif", ".tiff"},
				FoldCase: true,
				Approach: tree.NoneOneMultiple.String(),
			},
			{
				Name:     "text",
				Display:  "TEXT",
				Match:    MatchSuffix,
				Suffixes: []string{".txt", ".md", ".rst", ".csv", ".log"},
				FoldCase: true,
			},
			{
				Name:    "directory",
				Display: "DIRECTORY",
				Match:   MatchParent,
			},
			{
				Name:    "other",
				Display: "OTHER",
				Match:   MatchAny,
			},
		},
	}
}

// Build turns a profile into a classifier set.
func Build(p Profile) (*tree.ClassifierSet, error) {
	var folder *Folder
	rules := make([]tree.Rule, 0, len(p.Classifiers))

	for i, d := range p.Classifiers {
		if d.FoldCase && folder == nil {
			var err error
			if folder, err = NewFolder(p.FoldCacheSize); err != nil {
				return nil, err
			}
		}

		m, err := d.matcher(folder)
		if err != nil {
			return nil, fmt.Errorf("classifier %d (%s): %w", i, d.Name, err)
		}
		approach, err := tree.ParseHashApproach(d.Approach)
		if err != nil {
			return nil, fmt.Errorf("classifier %d (%s): %w", i, d.Name, err)
		}

		rules = append(rules, tree.Rule{
			Classifier: tree.NewClassifier(d.Name, m),
			Display:    d.Display,
			Approach:   approach,
		})
	}
	return tree.NewClassifierSet(rules...)
}

func (d Definition) matcher(folder *Folder) (tree.Matcher, error) {
	if !d.FoldCase {
		folder = nil
	}

	switch strings.ToLower(d.Match) {
	case MatchSuffix:
		if len(d.Suffixes) == 0 {
			return nil, errors.Invalidf("match %q needs suffixes", d.Match)
		}
		return NewStringMatcher(d.Suffixes, nil, false, folder), nil
	case MatchPrefix:
		if len(d.Prefixes) == 0 {
			return nil, errors.Invalidf("match %q needs prefixes", d.Match)
		}
		return NewStringMatcher(nil, d.Prefixes, false, folder), nil
	case MatchString, "":
		if len(d.Suffixes) == 0 && len(d.Prefixes) == 0 {
			return nil, errors.Invalidf("no match kind and no suffixes or prefixes")
		}
		return NewStringMatcher(d.Suffixes, d.Prefixes, d.Conjunction, folder), nil
	case MatchParent:
		return HasChildren, nil
	case MatchLeaf:
		return IsLeaf, nil
	case MatchAny:
		return Any, nil
	default:
		return nil, errors.Invalidf("unknown match kind %q", d.Match)
	}
}

// ParseProfile decodes a profile. format is toml, yaml, yml or json.
func ParseProfile(data []byte, format string) (Profile, error) {
	var p Profile
	var err error

	switch strings.ToLower(format) {
	case "toml":
		err = toml.Unmarshal(data, &p)
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&p)
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&p)
	default:
		return Profile{}, errors.New(errors.UnsupportedFormat, fmt.Sprintf("unknown profile format %q", format))
	}
	if err != nil {
		return Profile{}, errors.Wrap(errors.InvalidConfig, "failed to parse profile", err)
	}
	if len(p.Classifiers) == 0 {
		return Profile{}, errors.New(errors.InvalidConfig, "profile defines no classifiers")
	}
	return p, nil
}

// LoadProfile reads a profile file, picking the decoder by file extension.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, errors.Wrap(errors.InvalidConfig, fmt.Sprintf("failed to read profile %s", path), err)
	}
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	return ParseProfile(data, format)
}
