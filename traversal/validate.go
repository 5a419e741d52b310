package traversal

import (
	"github.com/bcgsc/graphkb-core/schema"
)

// Validate walks path against reg starting from startClass, checking
// spec §4.3's structural rules:
//   - an EDGE node's edge class names must exist and be edge classes,
//   - a LINK node's attr must resolve against its property's
//     LinkedClass on the current class,
//   - the terminal node's Attr (when not a size() node) must be a
//     declared property of the class reached at that point.
//
// It returns the PropertyType the terminal node ultimately produces, or
// TypeInteger for a size() terminal.
func Validate(reg *schema.Registry, startClass string, path *Path) (schema.PropertyType, error) {
	class := startClass
	node := path.Root
	for node != nil {
		switch node.Type {
		case NodeEdge:
			if node.Attr != "" {
				return "", newValidationError("traversal", "EDGE node must not declare attr", node.Attr)
			}
			for _, edgeClass := range node.Edges {
				c, ok := reg.Get(edgeClass)
				if !ok {
					return "", newValidationError("traversal", "unknown edge class", edgeClass)
				}
				if !c.IsEdge {
					return "", newValidationError("traversal", "not an edge class", edgeClass)
				}
			}
			if node.Child == nil {
				return "", nil
			}
			node = node.Child
			continue
		case NodeDirect:
			if node.Size {
				if node.Child != nil {
					return "", newValidationError("traversal", "size() must be terminal", node)
				}
				return schema.TypeInteger, nil
			}
			props, err := reg.QueryProperties(class)
			if err != nil {
				return "", err
			}
			prop, ok := props[node.Attr]
			if !ok {
				return "", newValidationError("traversal", "unknown property on class "+class, node.Attr)
			}
			if node.Child == nil {
				return prop.Type, nil
			}
			if !prop.Type.IsEmbedded() && !prop.Type.IsLink() {
				return "", newValidationError("traversal", "cannot descend through scalar property", node.Attr)
			}
			class = prop.LinkedClass
			node = node.Child
			continue
		case NodeLink:
			props, err := reg.QueryProperties(class)
			if err != nil {
				return "", err
			}
			prop, ok := props[node.Attr]
			if !ok || prop.LinkedClass == "" {
				return "", newValidationError("traversal", "LINK node attr does not resolve to a linked class", node.Attr)
			}
			class = prop.LinkedClass
			if node.Child == nil {
				return "", newValidationError("traversal", "LINK node requires a child", node.Attr)
			}
			node = node.Child
			continue
		}
	}
	return "", newValidationError("traversal", "path terminated without a terminal value", path)
}
