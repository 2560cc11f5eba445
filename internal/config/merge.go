package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyPaging      = "paging"
	keyView        = "view"
	keySource      = "source"
	keyDetailCache = "detail_cache"
	keyLogging     = "logging"
	keyMetrics     = "metrics"
)

// knownTopLevelKeys lists the YAML keys that correspond to Config sections.
// Keys not in this list are silently ignored during merge.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keyPaging:      true,
	keyView:        true,
	keySource:      true,
	keyDetailCache: true,
	keyLogging:     true,
	keyMetrics:     true,
}

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// the target Config. Keys present in the overlay replace entire sections
// in the target. Keys absent in the overlay are left unchanged.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	// Empty or comment-only file.
	if len(overlay) == 0 {
		return nil
	}

	for key, node := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}
		if err = unmarshalSection(target, key, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// unmarshalSection decodes node into the section of target named by key. Each
// section is decoded into a fresh zero value so the overlay replaces it completely.
func unmarshalSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyPaging:
		return decodeInto(node, &target.Paging)
	case keyView:
		return decodeInto(node, &target.View)
	case keySource:
		return decodeInto(node, &target.Source)
	case keyDetailCache:
		return decodeInto(node, &target.DetailCache)
	case keyLogging:
		return decodeInto(node, &target.Logging)
	case keyMetrics:
		return decodeInto(node, &target.Metrics)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}

func decodeInto[T any](node *yaml.Node, dst *T) error {
	var v T
	if err := node.Decode(&v); err != nil {
		return err
	}
	*dst = v
	return nil
}
