package i18n

// 消息 ID，按阶段分组
const (
	// ========== 词法分析器 ==========
	ErrUnexpectedChar    = "lexer.unexpected_char"
	ErrInvalidVariable   = "lexer.invalid_variable"
	ErrInvalidIdentifier = "lexer.invalid_identifier"
	ErrInvalidInteger    = "lexer.invalid_integer"
	ErrInvalidFloat      = "lexer.invalid_float"

	// ========== 语法分析器 ==========
	ErrSyntax              = "parser.syntax"
	ErrSyntaxEOF           = "parser.syntax_eof"
	ErrExpectedToken       = "parser.expected_token"
	ErrExpectedExpression  = "parser.expected_expression"
	ErrExpectedStatement   = "parser.expected_statement"
	ErrExpectedMember      = "parser.expected_member"
	ErrInvalidAssignTarget = "parser.invalid_assign_target"
	ErrExpressionTooDeep   = "parser.expression_too_deep"
	ErrTooManyErrors       = "parser.too_many_errors"

	// ========== 语义分析器 ==========
	ErrClassRedeclared       = "semantic.class_redeclared"
	ErrFunctionRedeclared    = "semantic.function_redeclared"
	ErrVariableRedeclared    = "semantic.variable_redeclared"
	ErrParamDuplicated       = "semantic.param_duplicated"
	ErrInvalidAssignment     = "semantic.invalid_assignment"
	ErrUsedBeforeDeclaration = "semantic.used_before_declaration"
	ErrAssignTypeMismatch    = "semantic.assign_type_mismatch"
	ErrVariableNotDeclared   = "semantic.variable_not_declared"
	ErrArithmeticOperands    = "semantic.arithmetic_operands"
	ErrLogicalLeftOperand    = "semantic.logical_left_operand"
	ErrLogicalRightOperand   = "semantic.logical_right_operand"
	ErrUnaryOperand          = "semantic.unary_operand"
	ErrUndefinedFunction     = "semantic.undefined_function"
	ErrNotAFunction          = "semantic.not_a_function"
	ErrArgumentCount         = "semantic.argument_count"
	ErrArgumentType          = "semantic.argument_type"
	ErrNotCallable           = "semantic.not_callable"
	ErrReturnTypeMismatch    = "semantic.return_type_mismatch"
	ErrNotIndexable          = "semantic.not_indexable"
	ErrForeachNotArray       = "semantic.foreach_not_array"

	// ========== 提示 ==========
	HintDidYouMean    = "hint.did_you_mean"
	HintDeclareFirst  = "hint.declare_first"
	HintAddSemicolon  = "hint.add_semicolon"
	HintNewNeedsParen = "hint.new_needs_parens"

	// ========== 外观层 ==========
	MsgLexicalError  = "compiler.lexical_error"
	MsgSemanticError = "compiler.semantic_error"
	MsgCompileOK     = "compiler.ok"
	MsgCompileFailed = "compiler.failed"

	// ========== 语言服务器 ==========
	MsgDocumentTooLarge = "lsp.document_too_large"
	MsgHoverSymbol      = "lsp.hover_symbol"

	// ========== 命令行 ==========
	MsgReadFailed    = "cli.read_failed"
	MsgReportWritten = "cli.report_written"
	MsgConfigWritten = "cli.config_written"
	MsgConfigExists  = "cli.config_exists"
)
