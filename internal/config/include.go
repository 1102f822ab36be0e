package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const includeTag = "!include"

// ExpandIncludes replaces every scalar tagged !include with the root of the
// YAML file it names, e.g. `source: !include db.yaml`. Relative paths resolve
// against baseDir, and against the including file's directory when nested.
func ExpandIncludes(raw []byte, baseDir string) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return raw, nil
	}
	root := doc.Content[0]
	if err := expandNode(root, baseDir, map[string]struct{}{}); err != nil {
		return nil, err
	}
	return yaml.Marshal(root)
}

func expandNode(n *yaml.Node, baseDir string, seen map[string]struct{}) error {
	if n == nil {
		return nil
	}

	if n.Tag == includeTag {
		if n.Kind != yaml.ScalarNode {
			return errors.New("!include must be applied to a file path")
		}
		inc, err := loadIncluded(n.Value, baseDir, seen)
		if err != nil {
			return err
		}
		*n = *inc
		return nil
	}

	for _, c := range n.Content {
		if err := expandNode(c, baseDir, seen); err != nil {
			return err
		}
	}
	return nil
}

func loadIncluded(path, baseDir string, seen map[string]struct{}) (*yaml.Node, error) {
	p := path
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, err
	}
	if _, ok := seen[abs]; ok {
		return nil, fmt.Errorf("include cycle detected for %s", abs)
	}
	seen[abs] = struct{}{}
	defer delete(seen, abs)

	b, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("included file not found: %s", path)
		}
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML in included file %s: %w", abs, err)
	}
	if len(doc.Content) == 0 {
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}, nil
	}
	root := doc.Content[0]
	if err := expandNode(root, filepath.Dir(abs), seen); err != nil {
		return nil, err
	}
	return root, nil
}
