// Package config 读取 phplite.toml 项目配置
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"

	"github.com/tangzhangming/phplite/internal/i18n"
)

// 常量定义
const (
	FileName = "phplite.toml" // 配置文件名

	DefaultMaxErrors    = 50
	DefaultMaxExprDepth = 200
)

// 合法的日志级别
var logLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
	"off":   true,
}

// Config 项目配置
type Config struct {
	Compiler CompilerConfig `toml:"compiler"`
	LSP      LSPConfig      `toml:"lsp"`
}

// CompilerConfig 编译选项
type CompilerConfig struct {
	// Language 诊断消息语言（en / zh）
	Language string `toml:"language"`

	// MaxErrors 单个文件最多报告的语法错误数
	MaxErrors int `toml:"max_errors"`

	// StrictRedeclaration 同一作用域内重复的变量声明语句一律报错
	StrictRedeclaration bool `toml:"strict_redeclaration"`

	// MaxExprDepth 表达式最大嵌套深度
	MaxExprDepth int `toml:"max_expr_depth"`
}

// LSPConfig 语言服务器选项
type LSPConfig struct {
	LogFile  string `toml:"log_file"`  // 为空时不写日志
	LogLevel string `toml:"log_level"` // debug / info / warn / error / off
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Compiler: CompilerConfig{
			Language:     "en",
			MaxErrors:    DefaultMaxErrors,
			MaxExprDepth: DefaultMaxExprDepth,
		},
		LSP: LSPConfig{
			LogLevel: "info",
		},
	}
}

// Load 从文件加载配置，未出现的字段保留默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse 解析 TOML 内容并校验
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置取值，返回合并后的全部问题
func (c *Config) Validate() error {
	var err error
	if _, ok := i18n.ParseLanguage(c.Compiler.Language); !ok {
		err = multierr.Append(err, fmt.Errorf("compiler.language: unsupported language %q", c.Compiler.Language))
	}
	if c.Compiler.MaxErrors <= 0 {
		err = multierr.Append(err, fmt.Errorf("compiler.max_errors: must be positive, got %d", c.Compiler.MaxErrors))
	}
	if c.Compiler.MaxExprDepth <= 0 {
		err = multierr.Append(err, fmt.Errorf("compiler.max_expr_depth: must be positive, got %d", c.Compiler.MaxExprDepth))
	}
	if !logLevels[strings.ToLower(c.LSP.LogLevel)] {
		err = multierr.Append(err, fmt.Errorf("lsp.log_level: unknown level %q", c.LSP.LogLevel))
	}
	return err
}

// Save 保存配置到文件
func (c *Config) Save(path string) error {
	if err := os.WriteFile(path, []byte(c.commented()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// commented 生成带注释的配置文件内容
func (c *Config) commented() string {
	var sb strings.Builder

	sb.WriteString("[compiler]\n")
	sb.WriteString("# 诊断消息语言（en / zh）\n")
	sb.WriteString(fmt.Sprintf("language = %q\n\n", c.Compiler.Language))
	sb.WriteString("# 单个文件最多报告的语法错误数\n")
	sb.WriteString(fmt.Sprintf("max_errors = %d\n\n", c.Compiler.MaxErrors))
	sb.WriteString("# 同一作用域内重复声明变量时报错\n")
	sb.WriteString(fmt.Sprintf("strict_redeclaration = %t\n\n", c.Compiler.StrictRedeclaration))
	sb.WriteString("# 表达式最大嵌套深度\n")
	sb.WriteString(fmt.Sprintf("max_expr_depth = %d\n\n", c.Compiler.MaxExprDepth))

	sb.WriteString("[lsp]\n")
	sb.WriteString("# 语言服务器日志文件，留空则不写日志\n")
	sb.WriteString(fmt.Sprintf("log_file = %q\n", c.LSP.LogFile))
	sb.WriteString(fmt.Sprintf("log_level = %q\n", c.LSP.LogLevel))

	return sb.String()
}

// Find 从指定路径向上查找配置文件
// 返回配置文件的完整路径，如果找不到则返回空字符串
func Find(startPath string) string {
	// 如果是文件，从其所在目录开始
	info, err := os.Stat(startPath)
	if err != nil {
		return ""
	}

	dir := startPath
	if !info.IsDir() {
		dir = filepath.Dir(startPath)
	}

	dir, err = filepath.Abs(dir)
	if err != nil {
		return ""
	}

	// 向上查找
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// 已到达根目录
			return ""
		}
		dir = parent
	}
}

// LoadFor 加载 startPath 所属项目的配置；找不到配置文件时返回默认配置
func LoadFor(startPath string) (*Config, string, error) {
	path := Find(startPath)
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}
