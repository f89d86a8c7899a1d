package routing

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type RouteClass string

const (
	RouteClassUI     RouteClass = "ui"
	RouteClassAPI    RouteClass = "api"
	RouteClassStatic RouteClass = "static"
	RouteClassOps    RouteClass = "ops"
)

var ErrAllowlistNotFound = errors.New("routing allowlist not found")

//go:embed allowlist.yaml
var defaultAllowlist []byte

type AllowlistRule struct {
	Prefix string     `yaml:"prefix"`
	Class  RouteClass `yaml:"class"`
}

type allowlistFile struct {
	Version     int                        `yaml:"version"`
	Entrypoints map[string][]AllowlistRule `yaml:"entrypoints"`
}

// LoadAllowlist reads the rules of entrypoint from path, or from the built-in
// allowlist when path is empty.
func LoadAllowlist(path, entrypoint string) ([]AllowlistRule, error) {
	raw := defaultAllowlist
	if strings.TrimSpace(path) != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrAllowlistNotFound, path)
			}
			return nil, err
		}
	}
	return ParseAllowlist(raw, entrypoint)
}

func ParseAllowlist(raw []byte, entrypoint string) ([]AllowlistRule, error) {
	var file allowlistFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, err
	}

	if file.Version != 1 {
		return nil, fmt.Errorf("unsupported allowlist version: %d", file.Version)
	}

	if strings.TrimSpace(entrypoint) == "" {
		entrypoint = "server"
	}
	rules, ok := file.Entrypoints[entrypoint]
	if !ok {
		return nil, fmt.Errorf("entrypoint %q not found in allowlist", entrypoint)
	}

	for i := range rules {
		rules[i].Prefix = strings.TrimSpace(rules[i].Prefix)
		if rules[i].Prefix == "" {
			return nil, fmt.Errorf("allowlist rule[%d]: empty prefix", i)
		}
		if !strings.HasPrefix(rules[i].Prefix, "/") {
			return nil, fmt.Errorf("allowlist rule[%d]: prefix must start with '/': %q", i, rules[i].Prefix)
		}
		switch rules[i].Class {
		case RouteClassUI, RouteClassAPI, RouteClassStatic, RouteClassOps:
		default:
			return nil, fmt.Errorf("allowlist rule[%d]: unknown class: %q", i, rules[i].Class)
		}
	}

	return rules, nil
}
