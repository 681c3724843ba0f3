package parsers

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/declcat/internal/source"
)

// lowerProgram converts the top-level statements of a program node into
// declarations. Nested scopes (function bodies, namespaces, `declare module`
// blocks) are not visited.
func lowerProgram(root *sitter.Node, src []byte) []source.Decl {
	decls := []source.Decl{}
	for _, stmt := range namedChildren(root) {
		decls = lowerStatement(decls, stmt, stmt, false, src)
	}
	return decls
}

// lowerStatement appends the declarations found in node. outer is the
// outermost wrapper (export_statement, ambient_declaration) whose span is the
// declaration text, so `export`, `export default` and `declare` are kept.
func lowerStatement(decls []source.Decl, node, outer *sitter.Node, ambient bool, src []byte) []source.Decl {
	switch node.Kind() {
	case "export_statement":
		for _, child := range namedChildren(node) {
			decls = lowerStatement(decls, child, outer, ambient, src)
		}

	case "ambient_declaration":
		for _, child := range namedChildren(node) {
			decls = lowerStatement(decls, child, outer, true, src)
		}

	case "function_declaration", "generator_function_declaration":
		decls = append(decls, &source.FunctionDecl{
			Name:   nodeName(node, src),
			Source: nodeText(outer, src),
		})

	case "function_signature":
		// Overload signatures are skipped; only `declare function` counts.
		if ambient {
			decls = append(decls, &source.FunctionDecl{
				Name:   nodeName(node, src),
				Source: nodeText(outer, src),
			})
		}

	case "function_expression", "function", "generator_function":
		// `export default function () {}`
		if isDefaultExport(outer, node) {
			decls = append(decls, &source.FunctionDecl{
				Name:   nodeName(node, src),
				Source: nodeText(outer, src),
			})
		}

	case "class_declaration", "abstract_class_declaration":
		decls = append(decls, &source.ClassDecl{
			Name:   nodeName(node, src),
			Source: nodeText(outer, src),
		})

	case "class":
		// `export default class {}`
		if isDefaultExport(outer, node) {
			decls = append(decls, &source.ClassDecl{
				Name:   nodeName(node, src),
				Source: nodeText(outer, src),
			})
		}

	case "interface_declaration":
		decls = append(decls, &source.InterfaceDecl{
			Name:   nodeName(node, src),
			Source: nodeText(outer, src),
		})

	case "enum_declaration":
		decls = append(decls, &source.EnumDecl{
			Name:   nodeName(node, src),
			Source: nodeText(outer, src),
		})

	case "type_alias_declaration":
		decls = append(decls, &source.TypeAliasDecl{
			Name:   nodeName(node, src),
			Source: nodeText(outer, src),
		})

	case "lexical_declaration", "variable_declaration":
		for _, declarator := range namedChildren(node) {
			if declarator.Kind() != "variable_declarator" {
				continue
			}
			decls = append(decls, lowerDeclarator(declarator, src))
		}
	}

	return decls
}

// lowerDeclarator converts `name = value` into a VariableDecl. Destructuring
// patterns keep their pattern text as the name.
func lowerDeclarator(declarator *sitter.Node, src []byte) *source.VariableDecl {
	v := &source.VariableDecl{
		Name:   nodeName(declarator, src),
		Source: nodeText(declarator, src),
	}

	if value := declarator.ChildByFieldName("value"); value != nil {
		v.Initializer = &source.Initializer{
			Kind: initializerKind(value),
			Text: nodeText(value, src),
		}
	}
	return v
}

func initializerKind(value *sitter.Node) source.Kind {
	switch value.Kind() {
	case "arrow_function":
		return source.KindArrowFunction
	case "jsx_element", "jsx_self_closing_element":
		return source.KindJSXElement
	default:
		return source.KindOther
	}
}

// isDefaultExport reports whether node is the value of `export default`.
func isDefaultExport(outer, node *sitter.Node) bool {
	if outer.Kind() != "export_statement" {
		return false
	}
	value := outer.ChildByFieldName("value")
	return value != nil && value.Id() == node.Id()
}
