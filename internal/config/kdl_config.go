package config

import (
	"fmt"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// parseKDL parses a .declgraph.kdl document:
//
//	project {
//	    root "."
//	    name "MyApp"
//	}
//	include "Sources/**/*.swift"
//	exclude "**/Generated/**"
//	output {
//	    format "json"
//	    path "graph.json"
//	}
//	performance {
//	    parallel_file_workers 4
//	}
//	verbose true
func parseKDL(content string) (*Config, error) {
	cfg := Default()
	cfg.Include = nil

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "include":
			cfg.Include = append(cfg.Include, stringArgs(n)...)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, stringArgs(n)...)
		case "output":
			for _, cn := range n.Children {
				assignSimpleString(cn, "format", func(v string) { cfg.Output.Format = v })
				assignSimpleString(cn, "path", func(v string) { cfg.Output.Path = v })
			}
		case "performance":
			for _, cn := range n.Children {
				if nodeName(cn) == "parallel_file_workers" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.ParallelFileWorkers = v
					}
				}
			}
		case "verbose":
			if b, ok := firstBoolArg(n); ok {
				cfg.Verbose = b
			}
		}
	}

	if len(cfg.Include) == 0 {
		cfg.Include = Default().Include
	}
	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func stringArgs(n *document.Node) []string {
	var out []string
	for _, arg := range n.Arguments {
		if s, ok := arg.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
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

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
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

// DefaultKDL is the config document written by `declgraph config init`.
const DefaultKDL = `project {
    root "."
}

include "**/*.swift"

output {
    format "json"
}
`
