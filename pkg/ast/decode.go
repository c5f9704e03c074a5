package ast

import (
	"encoding/json"
	"fmt"
)

// DecodeProgram decodes an ESTree Program produced by an external parser
// (acorn/esprima with ranges enabled) into the typed node set.
func DecodeProgram(data []byte) (*Program, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	program, ok := node.(*Program)
	if !ok {
		return nil, fmt.Errorf("expected Program root, got %s", node.NodeType())
	}
	return program, nil
}

type rangeSetter interface {
	setRange(start, end int)
}

// SetRange records the byte offsets of a node.
func SetRange(n Node, start, end int) {
	if setter, ok := n.(rangeSetter); ok {
		setter.setRange(start, end)
	}
}

func (n *nodeImpl) setRange(start, end int) {
	n.Start = start
	n.End = end
}

func withRange(node Node, raw map[string]any) Node {
	start, okStart := raw["start"].(float64)
	end, okEnd := raw["end"].(float64)
	if okStart && okEnd {
		if setter, ok := node.(rangeSetter); ok {
			setter.setRange(int(start), int(end))
		}
	}
	return node
}

func decodeNode(raw map[string]any) (Node, error) {
	typ, _ := raw["type"].(string)
	switch NodeType(typ) {
	case NodeProgram:
		body, err := decodeStatements(raw["body"])
		if err != nil {
			return nil, err
		}
		return withRange(NewProgram(body), raw), nil
	case NodeIdentifier:
		name, _ := raw["name"].(string)
		return withRange(NewIdentifier(name), raw), nil
	case NodeLiteral:
		rawText, _ := raw["raw"].(string)
		return withRange(NewLiteral(raw["value"], rawText), raw), nil
	case NodeThisExpression:
		return withRange(NewThisExpression(), raw), nil
	case NodeArrayExpression:
		elements, err := decodeExpressions(raw["elements"])
		if err != nil {
			return nil, err
		}
		return withRange(NewArrayExpression(elements), raw), nil
	case NodeObjectExpression:
		propsVal, _ := raw["properties"].([]any)
		props := make([]*Property, 0, len(propsVal))
		for _, entry := range propsVal {
			child, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid property entry %T", entry)
			}
			prop, err := decodeProperty(child)
			if err != nil {
				return nil, err
			}
			props = append(props, prop)
		}
		return withRange(NewObjectExpression(props), raw), nil
	case NodeFunctionExpression:
		id, params, body, err := decodeFunctionParts(raw)
		if err != nil {
			return nil, err
		}
		return withRange(NewFunctionExpression(id, params, body), raw), nil
	case NodeFunctionDeclaration:
		id, params, body, err := decodeFunctionParts(raw)
		if err != nil {
			return nil, err
		}
		if id == nil {
			return nil, fmt.Errorf("function declaration requires an identifier")
		}
		return withRange(NewFunctionDeclaration(id, params, body), raw), nil
	case NodeUnaryExpression:
		op, _ := raw["operator"].(string)
		arg, err := decodeExpression(raw["argument"])
		if err != nil {
			return nil, err
		}
		return withRange(NewUnaryExpression(op, arg), raw), nil
	case NodeUpdateExpression:
		op, _ := raw["operator"].(string)
		prefix, _ := raw["prefix"].(bool)
		arg, err := decodeExpression(raw["argument"])
		if err != nil {
			return nil, err
		}
		return withRange(NewUpdateExpression(op, arg, prefix), raw), nil
	case NodeBinaryExpression:
		op, _ := raw["operator"].(string)
		left, err := decodeExpression(raw["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(raw["right"])
		if err != nil {
			return nil, err
		}
		return withRange(NewBinaryExpression(op, left, right), raw), nil
	case NodeLogicalExpression:
		op, _ := raw["operator"].(string)
		left, err := decodeExpression(raw["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(raw["right"])
		if err != nil {
			return nil, err
		}
		return withRange(NewLogicalExpression(op, left, right), raw), nil
	case NodeAssignmentExpression:
		op, _ := raw["operator"].(string)
		left, err := decodeExpression(raw["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(raw["right"])
		if err != nil {
			return nil, err
		}
		return withRange(NewAssignmentExpression(op, left, right), raw), nil
	case NodeConditionalExpression:
		test, err := decodeExpression(raw["test"])
		if err != nil {
			return nil, err
		}
		consequent, err := decodeExpression(raw["consequent"])
		if err != nil {
			return nil, err
		}
		alternate, err := decodeExpression(raw["alternate"])
		if err != nil {
			return nil, err
		}
		return withRange(NewConditionalExpression(test, consequent, alternate), raw), nil
	case NodeCallExpression:
		callee, err := decodeExpression(raw["callee"])
		if err != nil {
			return nil, err
		}
		args, err := decodeExpressions(raw["arguments"])
		if err != nil {
			return nil, err
		}
		return withRange(NewCallExpression(callee, args), raw), nil
	case NodeNewExpression:
		callee, err := decodeExpression(raw["callee"])
		if err != nil {
			return nil, err
		}
		args, err := decodeExpressions(raw["arguments"])
		if err != nil {
			return nil, err
		}
		return withRange(NewNewExpression(callee, args), raw), nil
	case NodeMemberExpression:
		object, err := decodeExpression(raw["object"])
		if err != nil {
			return nil, err
		}
		property, err := decodeExpression(raw["property"])
		if err != nil {
			return nil, err
		}
		computed, _ := raw["computed"].(bool)
		return withRange(NewMemberExpression(object, property, computed), raw), nil
	case NodeSequenceExpression:
		exprs, err := decodeExpressions(raw["expressions"])
		if err != nil {
			return nil, err
		}
		return withRange(NewSequenceExpression(exprs), raw), nil
	case NodeExpressionStatement:
		expr, err := decodeExpression(raw["expression"])
		if err != nil {
			return nil, err
		}
		return withRange(NewExpressionStatement(expr), raw), nil
	case NodeBlockStatement:
		body, err := decodeStatements(raw["body"])
		if err != nil {
			return nil, err
		}
		return withRange(NewBlockStatement(body), raw), nil
	case NodeEmptyStatement:
		return withRange(NewEmptyStatement(), raw), nil
	case NodeIfStatement:
		test, err := decodeExpression(raw["test"])
		if err != nil {
			return nil, err
		}
		consequent, err := decodeStatement(raw["consequent"])
		if err != nil {
			return nil, err
		}
		var alternate Statement
		if raw["alternate"] != nil {
			alternate, err = decodeStatement(raw["alternate"])
			if err != nil {
				return nil, err
			}
		}
		return withRange(NewIfStatement(test, consequent, alternate), raw), nil
	case NodeForStatement:
		var init Node
		var err error
		if raw["init"] != nil {
			init, err = decodeChild(raw["init"])
			if err != nil {
				return nil, err
			}
		}
		var test, update Expression
		if raw["test"] != nil {
			test, err = decodeExpression(raw["test"])
			if err != nil {
				return nil, err
			}
		}
		if raw["update"] != nil {
			update, err = decodeExpression(raw["update"])
			if err != nil {
				return nil, err
			}
		}
		body, err := decodeStatement(raw["body"])
		if err != nil {
			return nil, err
		}
		return withRange(NewForStatement(init, test, update, body), raw), nil
	case NodeWhileStatement:
		test, err := decodeExpression(raw["test"])
		if err != nil {
			return nil, err
		}
		body, err := decodeStatement(raw["body"])
		if err != nil {
			return nil, err
		}
		return withRange(NewWhileStatement(test, body), raw), nil
	case NodeDoWhileStatement:
		body, err := decodeStatement(raw["body"])
		if err != nil {
			return nil, err
		}
		test, err := decodeExpression(raw["test"])
		if err != nil {
			return nil, err
		}
		return withRange(NewDoWhileStatement(body, test), raw), nil
	case NodeForInStatement:
		left, err := decodeChild(raw["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(raw["right"])
		if err != nil {
			return nil, err
		}
		body, err := decodeStatement(raw["body"])
		if err != nil {
			return nil, err
		}
		return withRange(NewForInStatement(left, right, body), raw), nil
	case NodeWithStatement:
		object, err := decodeExpression(raw["object"])
		if err != nil {
			return nil, err
		}
		body, err := decodeStatement(raw["body"])
		if err != nil {
			return nil, err
		}
		return withRange(NewWithStatement(object, body), raw), nil
	case NodeSwitchStatement:
		discriminant, err := decodeExpression(raw["discriminant"])
		if err != nil {
			return nil, err
		}
		casesVal, _ := raw["cases"].([]any)
		cases := make([]*SwitchCase, 0, len(casesVal))
		for _, entry := range casesVal {
			child, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid switch case entry %T", entry)
			}
			var test Expression
			if child["test"] != nil {
				test, err = decodeExpression(child["test"])
				if err != nil {
					return nil, err
				}
			}
			consequent, err := decodeStatements(child["consequent"])
			if err != nil {
				return nil, err
			}
			cases = append(cases, NewSwitchCase(test, consequent))
		}
		return withRange(NewSwitchStatement(discriminant, cases), raw), nil
	case NodeLabeledStatement:
		label, err := decodeIdentifier(raw["label"])
		if err != nil {
			return nil, err
		}
		body, err := decodeStatement(raw["body"])
		if err != nil {
			return nil, err
		}
		return withRange(NewLabeledStatement(label, body), raw), nil
	case NodeReturnStatement:
		var arg Expression
		var err error
		if raw["argument"] != nil {
			arg, err = decodeExpression(raw["argument"])
			if err != nil {
				return nil, err
			}
		}
		return withRange(NewReturnStatement(arg), raw), nil
	case NodeThrowStatement:
		arg, err := decodeExpression(raw["argument"])
		if err != nil {
			return nil, err
		}
		return withRange(NewThrowStatement(arg), raw), nil
	case NodeTryStatement:
		blockNode, err := decodeStatement(raw["block"])
		if err != nil {
			return nil, err
		}
		block, ok := blockNode.(*BlockStatement)
		if !ok {
			return nil, fmt.Errorf("try block must be a BlockStatement")
		}
		var handler *CatchClause
		if handlerRaw, ok := raw["handler"].(map[string]any); ok {
			param, err := decodeIdentifier(handlerRaw["param"])
			if err != nil {
				return nil, err
			}
			bodyNode, err := decodeStatement(handlerRaw["body"])
			if err != nil {
				return nil, err
			}
			body, ok := bodyNode.(*BlockStatement)
			if !ok {
				return nil, fmt.Errorf("catch body must be a BlockStatement")
			}
			handler = NewCatchClause(param, body)
		}
		var finalizer *BlockStatement
		if raw["finalizer"] != nil {
			finalNode, err := decodeStatement(raw["finalizer"])
			if err != nil {
				return nil, err
			}
			finalizer, ok = finalNode.(*BlockStatement)
			if !ok {
				return nil, fmt.Errorf("finally body must be a BlockStatement")
			}
		}
		return withRange(NewTryStatement(block, handler, finalizer), raw), nil
	case NodeBreakStatement:
		label, err := decodeOptionalIdentifier(raw["label"])
		if err != nil {
			return nil, err
		}
		return withRange(NewBreakStatement(label), raw), nil
	case NodeContinueStatement:
		label, err := decodeOptionalIdentifier(raw["label"])
		if err != nil {
			return nil, err
		}
		return withRange(NewContinueStatement(label), raw), nil
	case NodeVariableDeclaration:
		declsVal, _ := raw["declarations"].([]any)
		decls := make([]*VariableDeclarator, 0, len(declsVal))
		for _, entry := range declsVal {
			child, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("invalid declarator entry %T", entry)
			}
			id, err := decodeIdentifier(child["id"])
			if err != nil {
				return nil, err
			}
			var init Expression
			if child["init"] != nil {
				init, err = decodeExpression(child["init"])
				if err != nil {
					return nil, err
				}
			}
			decls = append(decls, NewVariableDeclarator(id, init))
		}
		return withRange(NewVariableDeclaration(decls), raw), nil
	default:
		return nil, fmt.Errorf("unsupported node type %q", typ)
	}
}

func decodeChild(value any) (Node, error) {
	raw, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid node %T", value)
	}
	return decodeNode(raw)
}

func decodeExpression(value any) (Expression, error) {
	node, err := decodeChild(value)
	if err != nil {
		return nil, err
	}
	expr, ok := node.(Expression)
	if !ok {
		return nil, fmt.Errorf("expected expression, got %s", node.NodeType())
	}
	return expr, nil
}

func decodeStatement(value any) (Statement, error) {
	node, err := decodeChild(value)
	if err != nil {
		return nil, err
	}
	if expr, ok := node.(Expression); ok {
		return NewExpressionStatement(expr), nil
	}
	stmt, ok := node.(Statement)
	if !ok {
		return nil, fmt.Errorf("expected statement, got %s", node.NodeType())
	}
	return stmt, nil
}

func decodeStatements(value any) ([]Statement, error) {
	entries, _ := value.([]any)
	out := make([]Statement, 0, len(entries))
	for _, entry := range entries {
		stmt, err := decodeStatement(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

func decodeExpressions(value any) ([]Expression, error) {
	entries, _ := value.([]any)
	out := make([]Expression, 0, len(entries))
	for _, entry := range entries {
		expr, err := decodeExpression(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}

func decodeIdentifier(value any) (*Identifier, error) {
	node, err := decodeChild(value)
	if err != nil {
		return nil, err
	}
	id, ok := node.(*Identifier)
	if !ok {
		return nil, fmt.Errorf("expected identifier, got %s", node.NodeType())
	}
	return id, nil
}

func decodeOptionalIdentifier(value any) (*Identifier, error) {
	if value == nil {
		return nil, nil
	}
	return decodeIdentifier(value)
}

func decodeProperty(raw map[string]any) (*Property, error) {
	key, err := decodeExpression(raw["key"])
	if err != nil {
		return nil, err
	}
	value, err := decodeExpression(raw["value"])
	if err != nil {
		return nil, err
	}
	kind := PropertyInit
	if k, ok := raw["kind"].(string); ok && k != "" {
		kind = PropertyKind(k)
	}
	prop := NewProperty(key, value, kind)
	if computed, ok := raw["computed"].(bool); ok {
		prop.Computed = computed
	}
	return withRange(prop, raw).(*Property), nil
}

func decodeFunctionParts(raw map[string]any) (*Identifier, []*Identifier, *BlockStatement, error) {
	var id *Identifier
	var err error
	if raw["id"] != nil {
		id, err = decodeIdentifier(raw["id"])
		if err != nil {
			return nil, nil, nil, err
		}
	}
	paramsVal, _ := raw["params"].([]any)
	params := make([]*Identifier, 0, len(paramsVal))
	for _, entry := range paramsVal {
		param, err := decodeIdentifier(entry)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("non-identifier parameters are not supported")
		}
		params = append(params, param)
	}
	bodyNode, err := decodeStatement(raw["body"])
	if err != nil {
		return nil, nil, nil, err
	}
	body, ok := bodyNode.(*BlockStatement)
	if !ok {
		return nil, nil, nil, fmt.Errorf("function body must be a BlockStatement")
	}
	return id, params, body, nil
}
