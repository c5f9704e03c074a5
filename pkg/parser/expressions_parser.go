package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"skim/interpreter-go/pkg/ast"
)

func parseExpression(node *sitter.Node, source []byte) (ast.Expression, error) {
	if node == nil {
		return nil, fmt.Errorf("parser: missing expression")
	}
	switch node.Kind() {
	case "parenthesized_expression":
		inner := unparenthesize(node)
		if inner == node {
			return nil, fmt.Errorf("parser: malformed parenthesized expression")
		}
		return parseExpression(inner, source)
	case "identifier", "property_identifier", "shorthand_property_identifier":
		return parseIdentifierNode(node, source)
	case "undefined":
		id := ast.NewIdentifier("undefined")
		ranged(id, node)
		return id, nil
	case "this":
		expr := ast.NewThisExpression()
		ranged(expr, node)
		return expr, nil
	case "number":
		text := sliceContent(node, source)
		value, err := parseNumberLiteral(text)
		if err != nil {
			return nil, err
		}
		lit := ast.NewLiteral(value, text)
		ranged(lit, node)
		return lit, nil
	case "string":
		text := sliceContent(node, source)
		value, err := unquoteString(text)
		if err != nil {
			return nil, err
		}
		lit := ast.NewLiteral(value, text)
		ranged(lit, node)
		return lit, nil
	case "true":
		lit := ast.NewLiteral(true, "true")
		ranged(lit, node)
		return lit, nil
	case "false":
		lit := ast.NewLiteral(false, "false")
		ranged(lit, node)
		return lit, nil
	case "null":
		lit := ast.NewLiteral(nil, "null")
		ranged(lit, node)
		return lit, nil
	case "regex":
		return nil, fmt.Errorf("parser: regex literals are not supported")
	case "template_string":
		return nil, fmt.Errorf("parser: template strings are not supported")
	case "arrow_function":
		return nil, fmt.Errorf("parser: arrow functions are not supported")
	case "class":
		return nil, fmt.Errorf("parser: classes are not supported")
	case "array":
		elements := make([]ast.Expression, 0, node.NamedChildCount())
		for _, child := range namedChildren(node) {
			el, err := parseExpression(child, source)
			if err != nil {
				return nil, err
			}
			elements = append(elements, el)
		}
		arr := ast.NewArrayExpression(elements)
		ranged(arr, node)
		return arr, nil
	case "object":
		return parseObjectLiteral(node, source)
	case "function_expression", "function":
		var id *ast.Identifier
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			var err error
			id, err = parseIdentifierNode(nameNode, source)
			if err != nil {
				return nil, err
			}
		}
		params, err := parseFormalParameters(node.ChildByFieldName("parameters"), source)
		if err != nil {
			return nil, err
		}
		body, err := parseBlock(node.ChildByFieldName("body"), source)
		if err != nil {
			return nil, err
		}
		fn := ast.NewFunctionExpression(id, params, body)
		ranged(fn, node)
		return fn, nil
	case "binary_expression":
		op := sliceContent(node.ChildByFieldName("operator"), source)
		left, err := parseExpression(node.ChildByFieldName("left"), source)
		if err != nil {
			return nil, err
		}
		right, err := parseExpression(node.ChildByFieldName("right"), source)
		if err != nil {
			return nil, err
		}
		var expr ast.Expression
		if op == "&&" || op == "||" {
			expr = ast.NewLogicalExpression(op, left, right)
		} else {
			expr = ast.NewBinaryExpression(op, left, right)
		}
		ranged(expr, node)
		return expr, nil
	case "unary_expression":
		op := sliceContent(node.ChildByFieldName("operator"), source)
		argument, err := parseExpression(node.ChildByFieldName("argument"), source)
		if err != nil {
			return nil, err
		}
		expr := ast.NewUnaryExpression(op, argument)
		ranged(expr, node)
		return expr, nil
	case "update_expression":
		opNode := node.ChildByFieldName("operator")
		argNode := node.ChildByFieldName("argument")
		if opNode == nil || argNode == nil {
			return nil, fmt.Errorf("parser: malformed update expression")
		}
		argument, err := parseExpression(argNode, source)
		if err != nil {
			return nil, err
		}
		prefix := opNode.StartByte() < argNode.StartByte()
		expr := ast.NewUpdateExpression(sliceContent(opNode, source), argument, prefix)
		ranged(expr, node)
		return expr, nil
	case "assignment_expression":
		left, err := parseExpression(node.ChildByFieldName("left"), source)
		if err != nil {
			return nil, err
		}
		right, err := parseExpression(node.ChildByFieldName("right"), source)
		if err != nil {
			return nil, err
		}
		expr := ast.NewAssignmentExpression("=", left, right)
		ranged(expr, node)
		return expr, nil
	case "augmented_assignment_expression":
		op := sliceContent(node.ChildByFieldName("operator"), source)
		left, err := parseExpression(node.ChildByFieldName("left"), source)
		if err != nil {
			return nil, err
		}
		right, err := parseExpression(node.ChildByFieldName("right"), source)
		if err != nil {
			return nil, err
		}
		expr := ast.NewAssignmentExpression(op, left, right)
		ranged(expr, node)
		return expr, nil
	case "ternary_expression":
		test, err := parseExpression(node.ChildByFieldName("condition"), source)
		if err != nil {
			return nil, err
		}
		consequent, err := parseExpression(node.ChildByFieldName("consequence"), source)
		if err != nil {
			return nil, err
		}
		alternate, err := parseExpression(node.ChildByFieldName("alternative"), source)
		if err != nil {
			return nil, err
		}
		expr := ast.NewConditionalExpression(test, consequent, alternate)
		ranged(expr, node)
		return expr, nil
	case "sequence_expression":
		exprs := make([]ast.Expression, 0, node.NamedChildCount())
		for _, child := range namedChildren(node) {
			expr, err := parseExpression(child, source)
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, expr)
		}
		if len(exprs) == 1 {
			return exprs[0], nil
		}
		expr := ast.NewSequenceExpression(exprs)
		ranged(expr, node)
		return expr, nil
	case "member_expression":
		object, err := parseExpression(node.ChildByFieldName("object"), source)
		if err != nil {
			return nil, err
		}
		property, err := parseIdentifierNode(node.ChildByFieldName("property"), source)
		if err != nil {
			return nil, err
		}
		expr := ast.NewMemberExpression(object, property, false)
		ranged(expr, node)
		return expr, nil
	case "subscript_expression":
		object, err := parseExpression(node.ChildByFieldName("object"), source)
		if err != nil {
			return nil, err
		}
		index, err := parseExpression(node.ChildByFieldName("index"), source)
		if err != nil {
			return nil, err
		}
		expr := ast.NewMemberExpression(object, index, true)
		ranged(expr, node)
		return expr, nil
	case "call_expression":
		callee, err := parseExpression(node.ChildByFieldName("function"), source)
		if err != nil {
			return nil, err
		}
		args, err := parseArguments(node.ChildByFieldName("arguments"), source)
		if err != nil {
			return nil, err
		}
		expr := ast.NewCallExpression(callee, args)
		ranged(expr, node)
		return expr, nil
	case "new_expression":
		callee, err := parseExpression(node.ChildByFieldName("constructor"), source)
		if err != nil {
			return nil, err
		}
		args, err := parseArguments(node.ChildByFieldName("arguments"), source)
		if err != nil {
			return nil, err
		}
		expr := ast.NewNewExpression(callee, args)
		ranged(expr, node)
		return expr, nil
	default:
		return nil, fmt.Errorf("parser: unsupported expression %s", node.Kind())
	}
}

func parseArguments(node *sitter.Node, source []byte) ([]ast.Expression, error) {
	if node == nil {
		return nil, nil
	}
	args := make([]ast.Expression, 0, node.NamedChildCount())
	for _, child := range namedChildren(node) {
		if child.Kind() == "spread_element" {
			return nil, fmt.Errorf("parser: spread arguments are not supported")
		}
		arg, err := parseExpression(child, source)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

func parseObjectLiteral(node *sitter.Node, source []byte) (ast.Expression, error) {
	props := make([]*ast.Property, 0, node.NamedChildCount())
	for _, child := range namedChildren(node) {
		switch child.Kind() {
		case "pair":
			key, err := parsePropertyKey(child.ChildByFieldName("key"), source)
			if err != nil {
				return nil, err
			}
			value, err := parseExpression(child.ChildByFieldName("value"), source)
			if err != nil {
				return nil, err
			}
			prop := ast.NewProperty(key, value, ast.PropertyInit)
			ranged(prop, child)
			props = append(props, prop)
		case "method_definition":
			prop, err := parseAccessorProperty(child, source)
			if err != nil {
				return nil, err
			}
			props = append(props, prop)
		case "spread_element":
			return nil, fmt.Errorf("parser: spread properties are not supported")
		case "shorthand_property_identifier":
			return nil, fmt.Errorf("parser: shorthand properties are not supported")
		default:
			return nil, fmt.Errorf("parser: unsupported object member %s", child.Kind())
		}
	}
	obj := ast.NewObjectExpression(props)
	ranged(obj, node)
	return obj, nil
}

func parsePropertyKey(node *sitter.Node, source []byte) (ast.Expression, error) {
	if node == nil {
		return nil, fmt.Errorf("parser: property missing key")
	}
	switch node.Kind() {
	case "property_identifier", "identifier":
		return parseIdentifierNode(node, source)
	case "string":
		text := sliceContent(node, source)
		value, err := unquoteString(text)
		if err != nil {
			return nil, err
		}
		lit := ast.NewLiteral(value, text)
		ranged(lit, node)
		return lit, nil
	case "number":
		text := sliceContent(node, source)
		value, err := parseNumberLiteral(text)
		if err != nil {
			return nil, err
		}
		lit := ast.NewLiteral(value, text)
		ranged(lit, node)
		return lit, nil
	default:
		return nil, fmt.Errorf("parser: unsupported property key %s", node.Kind())
	}
}

// parseAccessorProperty maps `get name() {}` / `set name(v) {}` members onto
// accessor properties. Plain ES6 method members are rejected.
func parseAccessorProperty(node *sitter.Node, source []byte) (*ast.Property, error) {
	kind := ast.PropertyKind("")
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.IsNamed() {
			continue
		}
		switch sliceContent(child, source) {
		case "get":
			kind = ast.PropertyGet
		case "set":
			kind = ast.PropertySet
		}
	}
	if kind == "" {
		return nil, fmt.Errorf("parser: method properties are not supported")
	}
	key, err := parsePropertyKey(node.ChildByFieldName("name"), source)
	if err != nil {
		return nil, err
	}
	params, err := parseFormalParameters(node.ChildByFieldName("parameters"), source)
	if err != nil {
		return nil, err
	}
	body, err := parseBlock(node.ChildByFieldName("body"), source)
	if err != nil {
		return nil, err
	}
	fn := ast.NewFunctionExpression(nil, params, body)
	ranged(fn, node)
	prop := ast.NewProperty(key, fn, kind)
	ranged(prop, node)
	return prop, nil
}
