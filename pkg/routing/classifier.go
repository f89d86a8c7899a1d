package routing

import (
	"sort"
	"strings"
	"sync"
)

type Classifier struct {
	rules []AllowlistRule
}

func NewClassifier(rules []AllowlistRule) *Classifier {
	copied := make([]AllowlistRule, 0, len(rules))
	for _, rule := range rules {
		rule.Prefix = strings.TrimSpace(rule.Prefix)
		if rule.Prefix == "" {
			continue
		}
		copied = append(copied, rule)
	}

	sort.SliceStable(copied, func(i, j int) bool {
		return len(copied[i].Prefix) > len(copied[j].Prefix)
	})

	return &Classifier{
		rules: copied,
	}
}

// Default classifies with the built-in server allowlist.
var Default = sync.OnceValue(func() *Classifier {
	rules, err := LoadAllowlist("", "server")
	if err != nil {
		panic(err)
	}
	return NewClassifier(rules)
})

func (c *Classifier) MatchAllowlist(path string) (RouteClass, bool) {
	for _, rule := range c.rules {
		if HasPathPrefixOnBoundary(path, rule.Prefix) {
			return rule.Class, true
		}
	}
	return "", false
}

// ClassifyPath falls back to ui for paths no rule covers.
func (c *Classifier) ClassifyPath(path string) RouteClass {
	if class, ok := c.MatchAllowlist(path); ok {
		return class
	}
	return RouteClassUI
}

func HasPathPrefixOnBoundary(path, prefix string) bool {
	if prefix == "" {
		return false
	}

	if prefix == "/" {
		return strings.HasPrefix(path, "/")
	}

	if !strings.HasPrefix(path, prefix) {
		return false
	}

	if len(path) == len(prefix) {
		return true
	}

	if strings.HasSuffix(prefix, "/") {
		return true
	}

	return path[len(prefix)] == '/'
}
