package i18n

var messagesZH = map[string]string{
	// ========== 词法分析器 ==========
	ErrUnexpectedChar:    "意外字符 '%s'",
	ErrInvalidVariable:   "无效的变量名 '%s'",
	ErrInvalidIdentifier: "无效的标识符 '%s'",
	ErrInvalidInteger:    "无效的整数: %s",
	ErrInvalidFloat:      "无效的浮点数: %s",

	// ========== 语法分析器 ==========
	ErrSyntax:              "第 %d 行语法错误: 意外的 %s '%s'",
	ErrSyntaxEOF:           "语法错误: 意外的输入结束",
	ErrExpectedToken:       "需要 %s",
	ErrExpectedExpression:  "需要表达式",
	ErrExpectedStatement:   "需要语句",
	ErrExpectedMember:      "类体中需要方法声明",
	ErrInvalidAssignTarget: "'=' 左侧必须是变量、索引、属性或静态成员",
	ErrExpressionTooDeep:   "表达式嵌套超过 %d 层",
	ErrTooManyErrors:       "语法错误过多 (%d)，停止报告",

	// ========== 语义分析器 ==========
	ErrClassRedeclared:       "类 '%s' 已在当前作用域中声明",
	ErrFunctionRedeclared:    "函数 '%s' 已在当前作用域中声明",
	ErrVariableRedeclared:    "变量 '%s' 已在当前作用域中声明",
	ErrParamDuplicated:       "参数 '%s' 重复",
	ErrInvalidAssignment:     "无效的赋值目标，只能给变量、数组元素或对象属性赋值",
	ErrUsedBeforeDeclaration: "变量 '%s' 在声明之前使用",
	ErrAssignTypeMismatch:    "给 '%s' 赋值时类型不匹配: %s <- %s",
	ErrVariableNotDeclared:   "变量 '%s' 未声明",
	ErrArithmeticOperands:    "算术运算符 '%s' 用于非数值类型: %s, %s",
	ErrLogicalLeftOperand:    "逻辑运算符 '%s' 的左操作数需要布尔类型，实际为 '%s'",
	ErrLogicalRightOperand:   "逻辑运算符 '%s' 的右操作数需要布尔类型，实际为 '%s'",
	ErrUnaryOperand:          "一元运算符 '%s' 需要数值类型，实际为 '%s'",
	ErrUndefinedFunction:     "调用未定义的函数 '%s'",
	ErrNotAFunction:          "'%s' 不是函数（它是 %s）",
	ErrArgumentCount:         "函数 '%s' 需要 %s 个参数，实际传入 %d 个",
	ErrArgumentType:          "函数 '%[2]s' 的第 %[1]d 个参数类型不匹配: 需要 %[3]s，实际为 %[4]s",
	ErrNotCallable:           "无效的调用: '%s' 类型的值不可调用",
	ErrReturnTypeMismatch:    "函数 '%s' 返回类型不匹配: 需要 %s，实际为 %s",
	ErrNotIndexable:          "类型 '%s' 不能索引，只有数组和字符串可以索引",
	ErrForeachNotArray:       "foreach 需要数组，实际为 '%s'",

	// ========== 提示 ==========
	HintDidYouMean:    "你是不是想用 '%s'？",
	HintDeclareFirst:  "请先声明 '%s'，例如 %s = null;",
	HintAddSemicolon:  "语句以 ';' 结尾",
	HintNewNeedsParen: "创建对象需要参数列表: new %s()",

	// ========== 外观层 ==========
	MsgLexicalError:  "第 %d 行词法错误: %s",
	MsgSemanticError: "第 %d 行语义错误: %s",
	MsgCompileOK:     "编译 %s: 没有错误",
	MsgCompileFailed: "编译 %s: %d 个词法错误, %d 个语法错误, %d 个语义错误",

	// ========== 语言服务器 ==========
	MsgDocumentTooLarge: "文档过大，不做分析",
	MsgHoverSymbol:      "(%s) %s: %s",

	// ========== 命令行 ==========
	MsgReadFailed:    "无法读取 %s: %v",
	MsgReportWritten: "报告已写入 %s",
	MsgConfigWritten: "已创建 %s",
	MsgConfigExists:  "%s 已存在",
}
