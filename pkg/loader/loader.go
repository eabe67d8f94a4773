// Package loader reads story definitions from YAML or JSON files.
//
// Documents are first decoded with yaml.v3 (JSON is a subset of YAML) into a
// generic map, then mapped onto domain.Story with mapstructure. Decode hooks
// accept the shorthands authors use in practice:
//
//	text: "single line"          # or a list of lines
//	target: hallway/entry        # or {knot: hallway, node: entry}, or just "entry"
//	ending: good                 # or {id: good, label: "Good ending"}
package loader

import (
	"fmt"
	"os"
	"reflect"

	"github.com/aretw0/knots/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Load reads and decodes the story at path.
func Load[E any](path string) (*domain.Story[E], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read story %s: %w", path, err)
	}
	story, err := Parse[E](data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return story, nil
}

// Parse decodes a YAML or JSON story document.
func Parse[E any](data []byte) (*domain.Story[E], error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse story: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("story document is empty")
	}
	return Decode[E](raw)
}

// Decode maps an already parsed document onto a story and normalizes it.
func Decode[E any](raw map[string]any) (*domain.Story[E], error) {
	var story domain.Story[E]

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			textHook,
			targetHook,
			endingHook,
		),
		Result:  &story,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode story: %w", err)
	}

	if err := normalize(&story); err != nil {
		return nil, err
	}
	return &story, nil
}

// normalize fills IDs from map keys and checks the shape rules the analyzer
// and runtime rely on. It does not check that targets exist: that is the
// analyzer's job.
func normalize[E any](story *domain.Story[E]) error {
	if story.Version == "" {
		story.Version = domain.DefaultVersion
	}
	if len(story.Knots) == 0 {
		return fmt.Errorf("story has no knots")
	}

	for knotID, knot := range story.Knots {
		if knot == nil {
			return fmt.Errorf("knot %s: empty definition", knotID)
		}
		if err := domain.CheckID(knotID); err != nil {
			return fmt.Errorf("knot %s: %w", knotID, err)
		}
		if knot.ID == "" {
			knot.ID = knotID
		} else if knot.ID != knotID {
			return fmt.Errorf("knot %s: id %q does not match its key", knotID, knot.ID)
		}

		for nodeID, node := range knot.Nodes {
			if err := domain.CheckID(nodeID); err != nil {
				return fmt.Errorf("node %s/%s: %w", knotID, nodeID, err)
			}
			if node == nil {
				node = &domain.Node[E]{}
				knot.Nodes[nodeID] = node
			}
			if node.ID == "" {
				node.ID = nodeID
			} else if node.ID != nodeID {
				return fmt.Errorf("node %s/%s: id %q does not match its key", knotID, nodeID, node.ID)
			}

			seen := make(map[string]bool, len(node.Choices))
			for i, c := range node.Choices {
				if c.ID == "" {
					return fmt.Errorf("node %s/%s: choice #%d missing id", knotID, nodeID, i+1)
				}
				if seen[c.ID] {
					return fmt.Errorf("node %s/%s: duplicate choice id %q", knotID, nodeID, c.ID)
				}
				seen[c.ID] = true
				if c.Target.Node == "" {
					return fmt.Errorf("node %s/%s: choice %q has no target node", knotID, nodeID, c.ID)
				}
				if c.Condition != nil && c.Condition.Hook == "" && c.Condition.Expression == "" {
					return fmt.Errorf("node %s/%s: choice %q has an empty condition", knotID, nodeID, c.ID)
				}
			}
		}
	}
	return nil
}

var (
	textType   = reflect.TypeOf(domain.Text{})
	targetType = reflect.TypeOf(domain.Target{})
	endingType = reflect.TypeOf(domain.Ending{})
)

// textHook wraps a single string into a one-line Text.
func textHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != textType || from.Kind() != reflect.String {
		return data, nil
	}
	return domain.Text{data.(string)}, nil
}

// targetHook parses the "knot/node" shorthand.
func targetHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != targetType || from.Kind() != reflect.String {
		return data, nil
	}
	return domain.ParseTarget(data.(string)), nil
}

// endingHook accepts a bare ending id.
func endingHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != endingType || from.Kind() != reflect.String {
		return data, nil
	}
	return domain.Ending{ID: data.(string)}, nil
}
