package ast

// Tree-sitter node types for the JavaScript/JSX grammar.
// Reference: https://github.com/tree-sitter/tree-sitter-javascript
const (
	NodeProgram = "program"

	// Imports and exports
	NodeImportStatement = "import_statement"
	NodeImportClause    = "import_clause"
	NodeNamespaceImport = "namespace_import"
	NodeNamedImports    = "named_imports"
	NodeImportSpecifier = "import_specifier"
	NodeExportStatement = "export_statement"
	NodeExportClause    = "export_clause"
	NodeExportSpecifier = "export_specifier"
	NodeString          = "string"
	NodeStringFragment  = "string_fragment"

	// Declarations
	NodeFunctionDeclaration   = "function_declaration"
	NodeGeneratorFunctionDecl = "generator_function_declaration"
	NodeClassDeclaration      = "class_declaration"
	NodeLexicalDeclaration    = "lexical_declaration"
	NodeVariableDeclaration   = "variable_declaration"
	NodeVariableDeclarator    = "variable_declarator"
	NodeMethodDefinition      = "method_definition"
	NodeClassBody             = "class_body"

	// Functions
	NodeArrowFunction      = "arrow_function"
	NodeFunctionExpression = "function_expression"
	NodeGeneratorFunction  = "generator_function"
	NodeFormalParameters   = "formal_parameters"
	NodeStatementBlock     = "statement_block"
	NodeRestPattern        = "rest_pattern"
	NodeAssignmentPattern  = "assignment_pattern"

	// Expressions
	NodeIdentifier           = "identifier"
	NodePropertyIdentifier   = "property_identifier"
	NodeCallExpression       = "call_expression"
	NodeNewExpression        = "new_expression"
	NodeMemberExpression     = "member_expression"
	NodeSubscriptExpression  = "subscript_expression"
	NodeArguments            = "arguments"
	NodeAssignmentExpression = "assignment_expression"
	NodeAugmentedAssignment  = "augmented_assignment_expression"
	NodeBinaryExpression     = "binary_expression"
	NodeTernaryExpression    = "ternary_expression"
	NodeObject               = "object"
	NodePair                 = "pair"
	NodeArrayPattern         = "array_pattern"
	NodeObjectPattern        = "object_pattern"

	// Control flow
	NodeIfStatement    = "if_statement"
	NodeForStatement   = "for_statement"
	NodeForInStatement = "for_in_statement"
	NodeWhileStatement = "while_statement"
	NodeDoStatement    = "do_statement"
	NodeSwitchCase     = "switch_case"
	NodeCatchClause    = "catch_clause"
	NodeThrowStatement = "throw_statement"

	// JSX
	NodeJSXElement            = "jsx_element"
	NodeJSXSelfClosingElement = "jsx_self_closing_element"
	NodeJSXOpeningElement     = "jsx_opening_element"
	NodeJSXAttribute          = "jsx_attribute"
	NodeJSXExpression         = "jsx_expression"

	NodeComment = "comment"
)
