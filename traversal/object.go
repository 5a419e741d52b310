package traversal

import "strings"

// ParseObject compiles the object form mirroring the string grammar:
// {type: LINK|EDGE|DIRECT, attr, edges, direction, child} (spec §4.3).
func ParseObject(raw map[string]any) (*Path, error) {
	root, err := parseObjectNode(raw)
	if err != nil {
		return nil, err
	}
	terminal := root
	for terminal.Child != nil {
		terminal = terminal.Child
	}
	return &Path{Root: root, Terminal: terminal}, nil
}

func parseObjectNode(raw map[string]any) (*Node, error) {
	typ, _ := raw["type"].(string)
	node := &Node{}
	switch strings.ToUpper(typ) {
	case string(NodeDirect), "":
		node.Type = NodeDirect
		attr, _ := raw["attr"].(string)
		if attr == "" {
			return nil, newValidationError("traversal", "DIRECT node requires attr", raw)
		}
		node.Attr = attr
	case string(NodeLink):
		node.Type = NodeLink
		attr, _ := raw["attr"].(string)
		if attr == "" {
			return nil, newValidationError("traversal", "LINK node requires attr", raw)
		}
		node.Attr = attr
	case string(NodeEdge):
		node.Type = NodeEdge
		if _, hasAttr := raw["attr"]; hasAttr {
			return nil, newValidationError("traversal", "EDGE node must not declare attr", raw)
		}
		dir, _ := raw["direction"].(string)
		if dir == "" {
			dir = string(DirectionBoth)
		}
		node.Direction = Direction(dir)
		if edges, ok := raw["edges"].([]any); ok {
			for _, e := range edges {
				if name, ok := e.(string); ok {
					node.Edges = append(node.Edges, name)
				}
			}
		}
	default:
		return nil, newValidationError("traversal", "unrecognized node type", typ)
	}

	if childRaw, ok := raw["child"]; ok && childRaw != nil {
		childMap, ok := childRaw.(map[string]any)
		if !ok {
			return nil, newValidationError("traversal", "child must be an object", childRaw)
		}
		child, err := parseObjectNode(childMap)
		if err != nil {
			return nil, err
		}
		node.Child = child
	}
	return node, nil
}
