package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// configFileName is the project config paconv reads, analogous to the
// teacher's ".lci.kdl".
const configFileName = ".paconv.kdl"

// LoadKDL loads configuration from projectRoot/.paconv.kdl, if present.
// A nil, nil return means no file was found and the caller should fall
// back to defaultConfig.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, configFileName)

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configFileName, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	if cfg.Project.Root != "" {
		var absRoot string
		if filepath.IsAbs(cfg.Project.Root) {
			absRoot = cfg.Project.Root
		} else {
			absRoot = filepath.Join(projectRoot, cfg.Project.Root)
		}
		cfg.Project.Root = filepath.Clean(absRoot)
	} else if absRoot, err := filepath.Abs(projectRoot); err == nil {
		cfg.Project.Root = absRoot
	} else {
		cfg.Project.Root = projectRoot
	}

	return cfg, nil
}

// LoadKDLFromFile loads configuration from an explicit file path rather
// than the conventional projectRoot/.paconv.kdl location, for the CLI's
// --config override. A missing file is an error here (unlike LoadKDL),
// since the user named it explicitly.
func LoadKDLFromFile(explicitPath, projectRoot string) (*Config, error) {
	content, err := os.ReadFile(explicitPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", explicitPath, err)
	}
	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}
	if cfg.Project.Root == "" {
		if absRoot, err := filepath.Abs(projectRoot); err == nil {
			cfg.Project.Root = absRoot
		} else {
			cfg.Project.Root = projectRoot
		}
	}
	return cfg, nil
}

// parseKDL parses a .paconv.kdl document's text into a fully-defaulted
// Config, overlaying whatever sections the document specifies.
func parseKDL(content string) (*Config, error) {
	defaultRoot, _ := os.Getwd()
	if defaultRoot == "" {
		defaultRoot = "."
	}
	cfg := defaultConfig(defaultRoot)
	excludeSet := false

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configFileName, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "convert":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "case_sensitive_names":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Convert.CaseSensitiveNames = b
					}
				case "collision_suffix_format":
					if s, ok := firstStringArg(cn); ok {
						cfg.Convert.CollisionSuffixFormat = s
					}
				case "fail_on_unsupported_property":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Convert.FailOnUnsupportedProperty = b
					}
				}
			}
		case "assets":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_size_mb":
					if v, ok := firstIntArg(cn); ok {
						cfg.Assets.MaxSizeMB = int64(v)
					}
				case "deterministic_rename":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Assets.DeterministicRename = b
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch.Enabled = b
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "suggest":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Suggest.Enabled = b
					}
				case "max_suggestions":
					if v, ok := firstIntArg(cn); ok {
						cfg.Suggest.MaxSuggestions = v
					}
				case "max_distance":
					if v, ok := firstIntArg(cn); ok {
						cfg.Suggest.MaxDistance = v
					}
				}
			}
		case "validation":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Validation.Enabled = b
					}
				case "schema_path":
					if s, ok := firstStringArg(cn); ok {
						cfg.Validation.SchemaPath = s
					}
				case "strict_mode":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Validation.StrictMode = b
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			// The file's own exclude list replaces the defaults; several
			// exclude nodes accumulate.
			if !excludeSet {
				cfg.Exclude = nil
				excludeSet = true
			}
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		}
	}

	return cfg, nil
}

// Helper functions over kdl-go's document model.
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// Block form: exclude { "pattern1" "pattern2" } — each pattern is
	// either a child node's sole argument or, written bare, the child
	// node's own name.
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
