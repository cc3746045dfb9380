package classify

import (
	"strings"
)

// Classifier maps gene records to enzyme families using a fixed rule
// table. It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	table *RuleTable
}

// NewClassifier creates a classifier for the given rule table.
// Pass DefaultRules() for the built-in table.
func NewClassifier(table *RuleTable) *Classifier {
	return &Classifier{table: table}
}

// Classify assigns at most one enzyme family to a gene record.
//
// EC-number matching takes precedence over keyword matching. Families
// are evaluated in rule-table order and the first match wins, so a
// gene can never belong to two families and repeated calls always
// return the same result. Malformed EC numbers are treated as absent.
func (c *Classifier) Classify(g GeneRecord) ClassifiedGene {
	if ec := normalizeEC(g.ECNumber); ec != "" {
		for _, rule := range c.table.Rules {
			for _, prefix := range rule.ECPrefixes {
				if ecHasPrefix(ec, prefix) {
					return ClassifiedGene{Gene: g, Family: rule.Family, Confidence: ConfidenceEC}
				}
			}
		}
	}

	product := strings.ToLower(g.Product)
	if product != "" {
		for _, rule := range c.table.Rules {
			for _, kw := range rule.Keywords {
				if strings.Contains(product, kw) {
					return ClassifiedGene{Gene: g, Family: rule.Family, Confidence: ConfidenceKeyword}
				}
			}
		}
	}

	return ClassifiedGene{Gene: g, Family: FamilyNone, Confidence: ConfidenceNone}
}

// ClassifyAll classifies every gene record, preserving input order.
func (c *Classifier) ClassifyAll(genes []GeneRecord) []ClassifiedGene {
	out := make([]ClassifiedGene, len(genes))
	for i, g := range genes {
		out[i] = c.Classify(g)
	}
	return out
}

// normalizeEC strips an optional "EC " prefix and returns the EC
// number if it is well formed, or "" otherwise. A well-formed EC
// number is 1 to 4 dot-separated components, each a number or "-".
func normalizeEC(ec string) string {
	ec = strings.TrimSpace(ec)
	ec = strings.TrimPrefix(ec, "EC ")
	ec = strings.TrimPrefix(ec, "EC:")
	if ec == "" || ec == "-" || strings.EqualFold(ec, "n/a") {
		return ""
	}

	parts := strings.Split(ec, ".")
	if len(parts) == 0 || len(parts) > 4 {
		return ""
	}
	for _, p := range parts {
		if p == "-" {
			continue
		}
		if p == "" {
			return ""
		}
		for i := 0; i < len(p); i++ {
			if p[i] < '0' || p[i] > '9' {
				return ""
			}
		}
	}
	return ec
}

// validECPrefix reports whether s is usable as a rule-table prefix:
// 1 to 4 dot-separated numeric components.
func validECPrefix(s string) bool {
	if s == "" {
		return false
	}
	parts := strings.Split(s, ".")
	if len(parts) > 4 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		for i := 0; i < len(p); i++ {
			if p[i] < '0' || p[i] > '9' {
				return false
			}
		}
	}
	return true
}

// ecHasPrefix matches component-wise: "3.1.1" covers "3.1.1.3" but
// not "3.1.11.2".
func ecHasPrefix(ec, prefix string) bool {
	if ec == prefix {
		return true
	}
	return strings.HasPrefix(ec, prefix+".")
}
