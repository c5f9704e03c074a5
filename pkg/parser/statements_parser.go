package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"skim/interpreter-go/pkg/ast"
)

func parseStatement(node *sitter.Node, source []byte) (ast.Statement, error) {
	switch node.Kind() {
	case "expression_statement":
		children := namedChildren(node)
		if len(children) != 1 {
			return nil, fmt.Errorf("parser: malformed expression statement")
		}
		expr, err := parseExpression(children[0], source)
		if err != nil {
			return nil, err
		}
		stmt := ast.NewExpressionStatement(expr)
		ranged(stmt, node)
		return stmt, nil
	case "variable_declaration":
		return parseVariableDeclaration(node, source)
	case "lexical_declaration":
		return nil, fmt.Errorf("parser: let/const declarations are not supported")
	case "statement_block":
		return parseBlock(node, source)
	case "if_statement":
		test, err := parseExpression(unparenthesize(node.ChildByFieldName("condition")), source)
		if err != nil {
			return nil, err
		}
		consequent, err := parseStatement(node.ChildByFieldName("consequence"), source)
		if err != nil {
			return nil, err
		}
		var alternate ast.Statement
		if alt := node.ChildByFieldName("alternative"); alt != nil {
			// else_clause wraps the actual statement.
			branches := namedChildren(alt)
			if len(branches) != 1 {
				return nil, fmt.Errorf("parser: malformed else clause")
			}
			alternate, err = parseStatement(branches[0], source)
			if err != nil {
				return nil, err
			}
		}
		stmt := ast.NewIfStatement(test, consequent, alternate)
		ranged(stmt, node)
		return stmt, nil
	case "while_statement":
		test, err := parseExpression(unparenthesize(node.ChildByFieldName("condition")), source)
		if err != nil {
			return nil, err
		}
		body, err := parseStatement(node.ChildByFieldName("body"), source)
		if err != nil {
			return nil, err
		}
		stmt := ast.NewWhileStatement(test, body)
		ranged(stmt, node)
		return stmt, nil
	case "do_statement":
		body, err := parseStatement(node.ChildByFieldName("body"), source)
		if err != nil {
			return nil, err
		}
		test, err := parseExpression(unparenthesize(node.ChildByFieldName("condition")), source)
		if err != nil {
			return nil, err
		}
		stmt := ast.NewDoWhileStatement(body, test)
		ranged(stmt, node)
		return stmt, nil
	case "for_statement":
		return parseForStatement(node, source)
	case "for_in_statement":
		return parseForInStatement(node, source)
	case "with_statement":
		object, err := parseExpression(unparenthesize(node.ChildByFieldName("object")), source)
		if err != nil {
			return nil, err
		}
		body, err := parseStatement(node.ChildByFieldName("body"), source)
		if err != nil {
			return nil, err
		}
		stmt := ast.NewWithStatement(object, body)
		ranged(stmt, node)
		return stmt, nil
	case "switch_statement":
		return parseSwitchStatement(node, source)
	case "labeled_statement":
		label, err := parseIdentifierNode(node.ChildByFieldName("label"), source)
		if err != nil {
			return nil, err
		}
		body, err := parseStatement(node.ChildByFieldName("body"), source)
		if err != nil {
			return nil, err
		}
		stmt := ast.NewLabeledStatement(label, body)
		ranged(stmt, node)
		return stmt, nil
	case "break_statement":
		label, err := optionalLabel(node, source)
		if err != nil {
			return nil, err
		}
		stmt := ast.NewBreakStatement(label)
		ranged(stmt, node)
		return stmt, nil
	case "continue_statement":
		label, err := optionalLabel(node, source)
		if err != nil {
			return nil, err
		}
		stmt := ast.NewContinueStatement(label)
		ranged(stmt, node)
		return stmt, nil
	case "return_statement":
		var argument ast.Expression
		if children := namedChildren(node); len(children) == 1 {
			var err error
			argument, err = parseExpression(children[0], source)
			if err != nil {
				return nil, err
			}
		}
		stmt := ast.NewReturnStatement(argument)
		ranged(stmt, node)
		return stmt, nil
	case "throw_statement":
		children := namedChildren(node)
		if len(children) != 1 {
			return nil, fmt.Errorf("parser: malformed throw statement")
		}
		argument, err := parseExpression(children[0], source)
		if err != nil {
			return nil, err
		}
		stmt := ast.NewThrowStatement(argument)
		ranged(stmt, node)
		return stmt, nil
	case "try_statement":
		return parseTryStatement(node, source)
	case "empty_statement":
		stmt := ast.NewEmptyStatement()
		ranged(stmt, node)
		return stmt, nil
	case "function_declaration":
		id, err := parseIdentifierNode(node.ChildByFieldName("name"), source)
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
		stmt := ast.NewFunctionDeclaration(id, params, body)
		ranged(stmt, node)
		return stmt, nil
	case "class_declaration":
		return nil, fmt.Errorf("parser: classes are not supported")
	case "import_statement", "export_statement":
		return nil, fmt.Errorf("parser: modules are not supported")
	default:
		// A bare expression node at statement position.
		expr, err := parseExpression(node, source)
		if err != nil {
			return nil, fmt.Errorf("parser: unsupported statement %s", node.Kind())
		}
		stmt := ast.NewExpressionStatement(expr)
		ranged(stmt, node)
		return stmt, nil
	}
}

func parseBlock(node *sitter.Node, source []byte) (*ast.BlockStatement, error) {
	if node == nil || node.Kind() != "statement_block" {
		return nil, fmt.Errorf("parser: expected block")
	}
	body := make([]ast.Statement, 0, node.NamedChildCount())
	for _, child := range namedChildren(node) {
		stmt, err := parseStatement(child, source)
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	block := ast.NewBlockStatement(body)
	ranged(block, node)
	return block, nil
}

func parseVariableDeclaration(node *sitter.Node, source []byte) (*ast.VariableDeclaration, error) {
	decls := make([]*ast.VariableDeclarator, 0, node.NamedChildCount())
	for _, child := range namedChildren(node) {
		if child.Kind() != "variable_declarator" {
			return nil, fmt.Errorf("parser: unexpected declaration child %s", child.Kind())
		}
		id, err := parseIdentifierNode(child.ChildByFieldName("name"), source)
		if err != nil {
			return nil, fmt.Errorf("parser: non-identifier declarator targets are not supported")
		}
		var init ast.Expression
		if valueNode := child.ChildByFieldName("value"); valueNode != nil {
			init, err = parseExpression(valueNode, source)
			if err != nil {
				return nil, err
			}
		}
		decl := ast.NewVariableDeclarator(id, init)
		ranged(decl, child)
		decls = append(decls, decl)
	}
	out := ast.NewVariableDeclaration(decls)
	ranged(out, node)
	return out, nil
}

func parseForStatement(node *sitter.Node, source []byte) (ast.Statement, error) {
	var init ast.Node
	if initNode := node.ChildByFieldName("initializer"); initNode != nil {
		switch initNode.Kind() {
		case "variable_declaration":
			decl, err := parseVariableDeclaration(initNode, source)
			if err != nil {
				return nil, err
			}
			init = decl
		case "lexical_declaration":
			return nil, fmt.Errorf("parser: let/const declarations are not supported")
		case "expression_statement":
			children := namedChildren(initNode)
			if len(children) != 1 {
				return nil, fmt.Errorf("parser: malformed for initializer")
			}
			expr, err := parseExpression(children[0], source)
			if err != nil {
				return nil, err
			}
			init = expr
		case "empty_statement":
		default:
			expr, err := parseExpression(initNode, source)
			if err != nil {
				return nil, err
			}
			init = expr
		}
	}

	var test ast.Expression
	if condNode := node.ChildByFieldName("condition"); condNode != nil {
		switch condNode.Kind() {
		case "expression_statement":
			children := namedChildren(condNode)
			if len(children) == 1 {
				expr, err := parseExpression(children[0], source)
				if err != nil {
					return nil, err
				}
				test = expr
			}
		case "empty_statement":
		default:
			expr, err := parseExpression(condNode, source)
			if err != nil {
				return nil, err
			}
			test = expr
		}
	}

	var update ast.Expression
	if incNode := node.ChildByFieldName("increment"); incNode != nil {
		expr, err := parseExpression(incNode, source)
		if err != nil {
			return nil, err
		}
		update = expr
	}

	body, err := parseStatement(node.ChildByFieldName("body"), source)
	if err != nil {
		return nil, err
	}
	stmt := ast.NewForStatement(init, test, update, body)
	ranged(stmt, node)
	return stmt, nil
}

func parseForInStatement(node *sitter.Node, source []byte) (ast.Statement, error) {
	if op := node.ChildByFieldName("operator"); op != nil && sliceContent(op, source) != "in" {
		return nil, fmt.Errorf("parser: for-of loops are not supported")
	}

	leftNode := node.ChildByFieldName("left")
	left, err := parseExpression(leftNode, source)
	if err != nil {
		return nil, err
	}
	var target ast.Node = left
	if kind := node.ChildByFieldName("kind"); kind != nil {
		if sliceContent(kind, source) != "var" {
			return nil, fmt.Errorf("parser: let/const declarations are not supported")
		}
		id, ok := left.(*ast.Identifier)
		if !ok {
			return nil, fmt.Errorf("parser: for-in declaration must bind an identifier")
		}
		decl := ast.NewVariableDeclaration([]*ast.VariableDeclarator{ast.NewVariableDeclarator(id, nil)})
		ranged(decl, leftNode)
		target = decl
	}

	right, err := parseExpression(node.ChildByFieldName("right"), source)
	if err != nil {
		return nil, err
	}
	body, err := parseStatement(node.ChildByFieldName("body"), source)
	if err != nil {
		return nil, err
	}
	stmt := ast.NewForInStatement(target, right, body)
	ranged(stmt, node)
	return stmt, nil
}

func parseSwitchStatement(node *sitter.Node, source []byte) (ast.Statement, error) {
	discriminant, err := parseExpression(unparenthesize(node.ChildByFieldName("value")), source)
	if err != nil {
		return nil, err
	}
	bodyNode := node.ChildByFieldName("body")
	if bodyNode == nil {
		return nil, fmt.Errorf("parser: switch missing body")
	}
	cases := make([]*ast.SwitchCase, 0, bodyNode.NamedChildCount())
	for _, child := range namedChildren(bodyNode) {
		switch child.Kind() {
		case "switch_case":
			test, err := parseExpression(unparenthesize(child.ChildByFieldName("value")), source)
			if err != nil {
				return nil, err
			}
			consequent, err := parseCaseBody(child, source)
			if err != nil {
				return nil, err
			}
			entry := ast.NewSwitchCase(test, consequent)
			ranged(entry, child)
			cases = append(cases, entry)
		case "switch_default":
			consequent, err := parseCaseBody(child, source)
			if err != nil {
				return nil, err
			}
			entry := ast.NewSwitchCase(nil, consequent)
			ranged(entry, child)
			cases = append(cases, entry)
		default:
			return nil, fmt.Errorf("parser: unexpected switch child %s", child.Kind())
		}
	}
	stmt := ast.NewSwitchStatement(discriminant, cases)
	ranged(stmt, node)
	return stmt, nil
}

func parseCaseBody(node *sitter.Node, source []byte) ([]ast.Statement, error) {
	valueNode := node.ChildByFieldName("value")
	stmts := make([]ast.Statement, 0, node.NamedChildCount())
	for _, child := range namedChildren(node) {
		if valueNode != nil && child.StartByte() == valueNode.StartByte() && child.EndByte() == valueNode.EndByte() {
			continue
		}
		stmt, err := parseStatement(child, source)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func parseTryStatement(node *sitter.Node, source []byte) (ast.Statement, error) {
	block, err := parseBlock(node.ChildByFieldName("body"), source)
	if err != nil {
		return nil, err
	}
	var handler *ast.CatchClause
	if handlerNode := node.ChildByFieldName("handler"); handlerNode != nil {
		param, err := parseIdentifierNode(handlerNode.ChildByFieldName("parameter"), source)
		if err != nil {
			return nil, err
		}
		body, err := parseBlock(handlerNode.ChildByFieldName("body"), source)
		if err != nil {
			return nil, err
		}
		handler = ast.NewCatchClause(param, body)
		ranged(handler, handlerNode)
	}
	var finalizer *ast.BlockStatement
	if finalNode := node.ChildByFieldName("finalizer"); finalNode != nil {
		finalizer, err = parseBlock(finalNode.ChildByFieldName("body"), source)
		if err != nil {
			return nil, err
		}
	}
	if handler == nil && finalizer == nil {
		return nil, fmt.Errorf("parser: try requires a catch or finally clause")
	}
	stmt := ast.NewTryStatement(block, handler, finalizer)
	ranged(stmt, node)
	return stmt, nil
}

func optionalLabel(node *sitter.Node, source []byte) (*ast.Identifier, error) {
	if labelNode := node.ChildByFieldName("label"); labelNode != nil {
		return parseIdentifierNode(labelNode, source)
	}
	for _, child := range namedChildren(node) {
		if child.Kind() == "statement_identifier" {
			return parseIdentifierNode(child, source)
		}
	}
	return nil, nil
}

func parseFormalParameters(node *sitter.Node, source []byte) ([]*ast.Identifier, error) {
	if node == nil {
		return nil, nil
	}
	params := make([]*ast.Identifier, 0, node.NamedChildCount())
	for _, child := range namedChildren(node) {
		param, err := parseIdentifierNode(child, source)
		if err != nil {
			return nil, fmt.Errorf("parser: non-identifier parameters are not supported")
		}
		params = append(params, param)
	}
	return params, nil
}
