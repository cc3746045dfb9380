package classify

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Family is an industrial enzyme family label.
type Family string

// Enzyme families, in fixed priority order. When rules from several
// families match the same gene, the family listed first wins.
const (
	FamilyNone       Family = ""
	FamilyLipase     Family = "lipase"
	FamilyProtease   Family = "protease"
	FamilyCellulase  Family = "cellulase"
	FamilyLaccase    Family = "laccase"
	FamilyAmylase    Family = "amylase"
	FamilyPeroxidase Family = "peroxidase"
	FamilyXylanase   Family = "xylanase"
	FamilyChitinase  Family = "chitinase"
)

// FamilyRule holds the classification rules for one family.
type FamilyRule struct {
	Family     Family   `yaml:"family"`
	ECPrefixes []string `yaml:"ec_prefixes"`
	Keywords   []string `yaml:"keywords"`
}

// RuleTable is a versioned, ordered set of family rules. Order is the
// family priority order: rules are evaluated first to last and the
// first satisfied rule wins.
type RuleTable struct {
	Version string       `yaml:"version"`
	Rules   []FamilyRule `yaml:"rules"`
}

// DefaultRules returns the built-in rule table.
func DefaultRules() *RuleTable {
	return &RuleTable{
		Version: "2024.1",
		Rules: []FamilyRule{
			{
				Family:     FamilyLipase,
				ECPrefixes: []string{"3.1.1"},
				Keywords:   []string{"lipase", "esterase"},
			},
			{
				Family:     FamilyProtease,
				ECPrefixes: []string{"3.4"},
				Keywords:   []string{"protease", "peptidase", "proteinase"},
			},
			{
				Family:     FamilyCellulase,
				ECPrefixes: []string{"3.2.1.4", "3.2.1.21", "3.2.1.91"},
				Keywords:   []string{"cellulase", "glucosidase", "cellobiohydrolase"},
			},
			{
				Family:     FamilyLaccase,
				ECPrefixes: []string{"1.10.3.2"},
				Keywords:   []string{"laccase", "polyphenol oxidase"},
			},
			{
				Family:     FamilyAmylase,
				ECPrefixes: []string{"3.2.1.1", "3.2.1.2", "3.2.1.41"},
				Keywords:   []string{"amylase", "pullulanase"},
			},
			{
				Family:     FamilyPeroxidase,
				ECPrefixes: []string{"1.11.1"},
				Keywords:   []string{"peroxidase"},
			},
			{
				Family:     FamilyXylanase,
				ECPrefixes: []string{"3.2.1.8", "3.2.1.37"},
				Keywords:   []string{"xylanase", "xylosidase"},
			},
			{
				Family:     FamilyChitinase,
				ECPrefixes: []string{"3.2.1.14"},
				Keywords:   []string{"chitinase", "chitosanase"},
			},
		},
	}
}

// LoadRules reads a rule table from a YAML file and validates it.
func LoadRules(path string) (*RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule table: %w", err)
	}

	var table RuleTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse rule table: %w", err)
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("rule table %s: %w", path, err)
	}

	return &table, nil
}

// Validate checks structural invariants of the rule table. A broken
// table would invalidate every classification, so callers should treat
// a validation failure as fatal.
func (t *RuleTable) Validate() error {
	if len(t.Rules) == 0 {
		return fmt.Errorf("no rules defined")
	}

	seenFamily := make(map[Family]bool)
	seenPrefix := make(map[string]Family)

	for _, r := range t.Rules {
		if r.Family == FamilyNone {
			return fmt.Errorf("rule with empty family name")
		}
		if seenFamily[r.Family] {
			return fmt.Errorf("family %q listed twice", r.Family)
		}
		seenFamily[r.Family] = true

		if len(r.ECPrefixes) == 0 && len(r.Keywords) == 0 {
			return fmt.Errorf("family %q has no EC prefixes and no keywords", r.Family)
		}

		for _, p := range r.ECPrefixes {
			if !validECPrefix(p) {
				return fmt.Errorf("family %q: malformed EC prefix %q", r.Family, p)
			}
			// EC matches must map to exactly one family, so a prefix
			// may not be claimed twice.
			if owner, ok := seenPrefix[p]; ok {
				return fmt.Errorf("EC prefix %q claimed by both %q and %q", p, owner, r.Family)
			}
			seenPrefix[p] = r.Family
		}
	}

	return nil
}
