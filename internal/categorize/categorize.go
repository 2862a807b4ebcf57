// Package categorize assigns a spending category to a transaction description
// using ordered keyword rules.
package categorize

import (
	"strings"

	"github.com/pennywyse/pennywyse/internal/model"
)

// Fallback is the category returned when no rule matches.
const Fallback = "Other"

// Rule maps a category to the keywords that select it.
type Rule struct {
	Category string
	Keywords []string
}

// Rules is an ordered ruleset; earlier rules win.
type Rules []Rule

// Categorizer classifies descriptions against a fixed ruleset.
type Categorizer struct {
	rules []compiledRule
	known map[string]string // lowercase name -> canonical name
}

type compiledRule struct {
	category string
	keywords []string // lowercase, non-blank
}

// New builds a Categorizer. The rules are copied; later edits to the slice do
// not affect classification.
func New(rules Rules) *Categorizer {
	c := &Categorizer{known: map[string]string{strings.ToLower(Fallback): Fallback}}
	for _, r := range rules {
		name := strings.TrimSpace(r.Category)
		if name == "" {
			continue
		}
		if _, ok := c.known[strings.ToLower(name)]; !ok {
			c.known[strings.ToLower(name)] = name
		}

		cr := compiledRule{category: name}
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				cr.keywords = append(cr.keywords, kw)
			}
		}
		if len(cr.keywords) > 0 {
			c.rules = append(c.rules, cr)
		}
	}
	return c
}

// Classify returns the first category with a keyword contained in desc,
// ignoring case, or Fallback.
func (c *Categorizer) Classify(desc string) string {
	d := strings.ToLower(desc)
	for _, r := range c.rules {
		for _, kw := range r.keywords {
			if strings.Contains(d, kw) {
				return r.category
			}
		}
	}
	return Fallback
}

// Known returns the canonical spelling of a category in the ruleset.
func (c *Categorizer) Known(name string) (string, bool) {
	canonical, ok := c.known[strings.ToLower(strings.TrimSpace(name))]
	return canonical, ok
}

// Apply sets Category on every transaction. A keyword match wins; when nothing
// matches, a category already on the row is kept if the ruleset knows it.
func (c *Categorizer) Apply(txns []model.Transaction) {
	for i := range txns {
		cat := c.Classify(txns[i].Particulars)
		if cat == Fallback {
			if known, ok := c.Known(txns[i].Category); ok {
				cat = known
			}
		}
		txns[i].Category = cat
	}
}

// FromCategories derives rules from category definitions in their given order.
func FromCategories(cats []model.Category) Rules {
	rules := make(Rules, 0, len(cats))
	for _, cat := range cats {
		rules = append(rules, Rule{Category: cat.Name, Keywords: cat.Keywords})
	}
	return rules
}
