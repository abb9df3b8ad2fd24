// Package errors 提供编译器各阶段共用的错误码、诊断结构与报告工具
package errors

// ============================================================================
// 错误级别
// ============================================================================

// Level 错误级别
type Level int

const (
	LevelError   Level = iota // 错误
	LevelWarning              // 警告
	LevelNote                 // 提示
	LevelHelp                 // 帮助
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelNote:
		return "note"
	case LevelHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ============================================================================
// 编译阶段
// ============================================================================

// Stage 产生诊断的编译阶段
type Stage int

const (
	StageLexical  Stage = iota // 词法分析
	StageSyntax                // 语法分析
	StageSemantic              // 语义分析
)

func (s Stage) String() string {
	switch s {
	case StageLexical:
		return "lexical"
	case StageSyntax:
		return "syntax"
	case StageSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// ============================================================================
// 编译器错误码 (E 开头)
// ============================================================================

const (
	// E0001-E0099: 词法与语法错误
	E0001 = "E0001" // 语法错误（意外的 token）
	E0002 = "E0002" // 意外的字符
	E0003 = "E0003" // 无效的变量名
	E0004 = "E0004" // 无效的标识符（数字开头）
	E0005 = "E0005" // 无效的数字
	E0006 = "E0006" // 期望的 token
	E0007 = "E0007" // 意外的输入结束
	E0008 = "E0008" // 表达式嵌套过深
	E0009 = "E0009" // 无效的赋值左值（语法层面）

	// E0100-E0199: 变量错误
	E0100 = "E0100" // 变量未声明
	E0101 = "E0101" // 变量重复声明
	E0102 = "E0102" // 变量未声明就赋值
	E0103 = "E0103" // 参数重复
	E0104 = "E0104" // 无效的赋值目标

	// E0200-E0299: 类型错误
	E0200 = "E0200" // 赋值类型不匹配
	E0203 = "E0203" // 返回类型不匹配
	E0205 = "E0205" // 运算符操作数类型不兼容
	E0207 = "E0207" // 类型不可索引
	E0208 = "E0208" // foreach 需要数组

	// E0300-E0399: 函数错误
	E0300 = "E0300" // 未定义的函数
	E0301 = "E0301" // 参数数量错误
	E0303 = "E0303" // 参数类型错误
	E0307 = "E0307" // 值不可调用
	E0308 = "E0308" // 调用目标不是函数
	E0309 = "E0309" // 函数重复声明

	// E0400-E0499: 类错误
	E0400 = "E0400" // 类重复声明
)

// ============================================================================
// 错误码信息
// ============================================================================

// ErrorInfo 错误码信息
type ErrorInfo struct {
	Code      string // 错误码
	Level     Level  // 错误级别
	Stage     Stage  // 所属阶段
	MessageID string // i18n 消息 ID
	Category  string // 错误分类
}

// compilerErrors 编译器错误码信息表
var compilerErrors = map[string]ErrorInfo{
	// 词法错误
	E0002: {E0002, LevelError, StageLexical, "lexer.unexpected_char", "lexical"},
	E0003: {E0003, LevelError, StageLexical, "lexer.invalid_variable", "lexical"},
	E0004: {E0004, LevelError, StageLexical, "lexer.invalid_identifier", "lexical"},
	E0005: {E0005, LevelError, StageLexical, "lexer.invalid_integer", "lexical"},

	// 语法错误
	E0001: {E0001, LevelError, StageSyntax, "parser.syntax", "syntax"},
	E0006: {E0006, LevelError, StageSyntax, "parser.expected_token", "syntax"},
	E0007: {E0007, LevelError, StageSyntax, "parser.syntax_eof", "syntax"},
	E0008: {E0008, LevelError, StageSyntax, "parser.expression_too_deep", "syntax"},
	E0009: {E0009, LevelError, StageSyntax, "parser.invalid_assign_target", "syntax"},

	// 变量错误
	E0100: {E0100, LevelError, StageSemantic, "semantic.variable_not_declared", "variable"},
	E0101: {E0101, LevelError, StageSemantic, "semantic.variable_redeclared", "variable"},
	E0102: {E0102, LevelError, StageSemantic, "semantic.used_before_declaration", "variable"},
	E0103: {E0103, LevelError, StageSemantic, "semantic.param_duplicated", "variable"},
	E0104: {E0104, LevelError, StageSemantic, "semantic.invalid_assignment", "variable"},

	// 类型错误
	E0200: {E0200, LevelError, StageSemantic, "semantic.assign_type_mismatch", "type"},
	E0203: {E0203, LevelError, StageSemantic, "semantic.return_type_mismatch", "type"},
	E0205: {E0205, LevelError, StageSemantic, "semantic.arithmetic_operands", "type"},
	E0207: {E0207, LevelError, StageSemantic, "semantic.not_indexable", "type"},
	E0208: {E0208, LevelError, StageSemantic, "semantic.foreach_not_array", "type"},

	// 函数错误
	E0300: {E0300, LevelError, StageSemantic, "semantic.undefined_function", "function"},
	E0301: {E0301, LevelError, StageSemantic, "semantic.argument_count", "function"},
	E0303: {E0303, LevelError, StageSemantic, "semantic.argument_type", "function"},
	E0307: {E0307, LevelError, StageSemantic, "semantic.not_callable", "function"},
	E0308: {E0308, LevelError, StageSemantic, "semantic.not_a_function", "function"},
	E0309: {E0309, LevelError, StageSemantic, "semantic.function_redeclared", "function"},

	// 类错误
	E0400: {E0400, LevelError, StageSemantic, "semantic.class_redeclared", "class"},
}

// GetErrorInfo 获取错误码信息
func GetErrorInfo(code string) (ErrorInfo, bool) {
	info, ok := compilerErrors[code]
	return info, ok
}

// IsCompilerError 检查是否为已知的编译器错误码
func IsCompilerError(code string) bool {
	_, ok := compilerErrors[code]
	return ok
}

// StageOf 返回错误码所属的阶段，未知错误码视为语法错误
func StageOf(code string) Stage {
	if info, ok := compilerErrors[code]; ok {
		return info.Stage
	}
	return StageSyntax
}
