package i18n

var messagesEN = map[string]string{
	// ========== Lexer ==========
	ErrUnexpectedChar:    "unexpected character '%s'",
	ErrInvalidVariable:   "invalid variable name '%s'",
	ErrInvalidIdentifier: "invalid identifier '%s'",
	ErrInvalidInteger:    "invalid integer: %s",
	ErrInvalidFloat:      "invalid float number: %s",

	// ========== Parser ==========
	ErrSyntax:              "syntax error at line %d: unexpected %s '%s'",
	ErrSyntaxEOF:           "syntax error: unexpected end of input",
	ErrExpectedToken:       "expected %s",
	ErrExpectedExpression:  "expected expression",
	ErrExpectedStatement:   "expected statement",
	ErrExpectedMember:      "expected method declaration in class body",
	ErrInvalidAssignTarget: "left side of '=' must be a variable, index, property or static member",
	ErrExpressionTooDeep:   "expression nesting exceeds %d levels",
	ErrTooManyErrors:       "too many syntax errors (%d), giving up",

	// ========== Semantic ==========
	ErrClassRedeclared:       "Class '%s' already declared in this scope",
	ErrFunctionRedeclared:    "Function '%s' already declared in this scope",
	ErrVariableRedeclared:    "Variable '%s' already declared in this scope",
	ErrParamDuplicated:       "Parameter '%s' duplicated",
	ErrInvalidAssignment:     "Invalid assignment target. Can only assign to variables, arrays, or object properties.",
	ErrUsedBeforeDeclaration: "Variable '%s' used before declaration",
	ErrAssignTypeMismatch:    "Type mismatch assigning to '%s': %s <- %s",
	ErrVariableNotDeclared:   "Variable '%s' not declared",
	ErrArithmeticOperands:    "Arithmetic operator '%s' applied to non-numeric types: %s, %s",
	ErrLogicalLeftOperand:    "Logical operator '%s' expects boolean left operand, got '%s'",
	ErrLogicalRightOperand:   "Logical operator '%s' expects boolean right operand, got '%s'",
	ErrUnaryOperand:          "Unary operator '%s' requires numeric type, got '%s'",
	ErrUndefinedFunction:     "Call to undefined function '%s'",
	ErrNotAFunction:          "'%s' is not a function (it is a %s)",
	ErrArgumentCount:         "Function '%s' expects %s args, got %d",
	ErrArgumentType:          "Argument %d of '%s' type mismatch: expected %s, got %s",
	ErrNotCallable:           "Invalid call: value of type '%s' is not callable",
	ErrReturnTypeMismatch:    "Return type mismatch in function '%s': expected %s, got %s",
	ErrNotIndexable:          "Cannot index type '%s'. Only arrays and strings are indexable.",
	ErrForeachNotArray:       "Foreach expects an array, got '%s'",

	// ========== Hints ==========
	HintDidYouMean:    "did you mean '%s'?",
	HintDeclareFirst:  "declare '%s' before using it, e.g. %s = null;",
	HintAddSemicolon:  "statements end with ';'",
	HintNewNeedsParen: "object construction needs an argument list: new %s()",

	// ========== Compiler ==========
	MsgLexicalError:  "lexical error at line %d: %s",
	MsgSemanticError: "semantic error at line %d: %s",
	MsgCompileOK:     "compiled %s: no errors",
	MsgCompileFailed: "compiled %s: %d lexical, %d syntax, %d semantic error(s)",

	// ========== Language server ==========
	MsgDocumentTooLarge: "document too large to analyze",
	MsgHoverSymbol:      "(%s) %s: %s",

	// ========== CLI ==========
	MsgReadFailed:    "cannot read %s: %v",
	MsgReportWritten: "report written to %s",
	MsgConfigWritten: "created %s",
	MsgConfigExists:  "%s already exists",
}
