package config

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/mdtoken/domain"
)

// RuleList is an ordered list of pattern limits. Precedence between
// equally specific patterns follows list order, so decoding must keep
// the order rules appear in the file.
type RuleList []domain.LimitRule

// ruleEntry is the list form of a rule
type ruleEntry struct {
	Pattern   string `yaml:"pattern"`
	MaxTokens int    `yaml:"max_tokens"`
}

// UnmarshalYAML accepts the compact mapping form
//
//	limits:
//	  README.md: 3000
//	  docs/: 4000
//
// and the explicit list form
//
//	limits:
//	  - pattern: README.md
//	    max_tokens: 3000
//
// keeping document order in both cases. Generic YAML decoding into a map
// would lose the mapping order, so the mapping branch walks the raw
// nodes instead.
func (r *RuleList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		rules := make(RuleList, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := value.Content[i]
			var limit int
			if err := value.Content[i+1].Decode(&limit); err != nil {
				return fmt.Errorf("limit for pattern %q must be an integer: %w", key.Value, err)
			}
			rules = append(rules, domain.LimitRule{Pattern: key.Value, MaxTokens: limit})
		}
		*r = rules
		return nil
	case yaml.SequenceNode:
		var entries []ruleEntry
		if err := value.Decode(&entries); err != nil {
			return fmt.Errorf("invalid limits list: %w", err)
		}
		rules := make(RuleList, 0, len(entries))
		for _, e := range entries {
			rules = append(rules, domain.LimitRule{Pattern: e.Pattern, MaxTokens: e.MaxTokens})
		}
		*r = rules
		return nil
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*r = nil
			return nil
		}
	}
	return fmt.Errorf("limits must be a mapping or a list, got %s", value.Tag)
}

// MarshalYAML emits the compact mapping form with rules in order
func (r RuleList) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, rule := range r {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: rule.Pattern},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(rule.MaxTokens)},
		)
	}
	return node, nil
}
