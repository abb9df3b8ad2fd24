package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tangzhangming/phplite/internal/compiler"
	"github.com/tangzhangming/phplite/internal/config"
	"github.com/tangzhangming/phplite/internal/i18n"
	"github.com/tangzhangming/phplite/internal/logging"
)

// app 命令之间共享的状态，由 PersistentPreRunE 填充
type app struct {
	stdin io.Reader

	// 全局参数
	configPath string
	lang       string
	verbose    bool
	noColor    bool

	cfg      *config.Config
	cfgFile  string
	logger   *zap.Logger
	compiler *compiler.Compiler
}

func newRootCmd(stdin io.Reader) *cobra.Command {
	a := &app{stdin: stdin}

	root := &cobra.Command{
		Use:   "phplite",
		Short: "phplite - front end for a reduced PHP dialect",
		Long: `phplite tokenizes, parses and type-checks a reduced PHP dialect.

Commands:
  check   Compile files and report diagnostics
  tokens  Print the token stream of a file
  ast     Print the AST of a file as JSON
  lsp     Run the language server on stdio
  init    Create a phplite.toml in the current directory
`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			start := "."
			if len(args) > 0 {
				start = args[0]
			}
			return a.setup(start, cmd.Name() == "lsp")
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to "+config.FileName+" (default: searched upward from the input)")
	flags.StringVar(&a.lang, "lang", "", "message language: en or zh (default: from config)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log compiler stages to stderr")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newCheckCmd(a),
		newTokensCmd(a),
		newASTCmd(a),
		newLSPCmd(a),
		newInitCmd(a),
	)
	return root
}

// setup 加载配置、设置语言并创建日志器与编译器
func (a *app) setup(start string, server bool) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.Load(a.configPath)
		a.cfgFile = a.configPath
	} else {
		a.cfg, a.cfgFile, err = config.LoadFor(start)
	}
	if err != nil {
		return err
	}

	name := a.cfg.Compiler.Language
	if a.lang != "" {
		name = a.lang
	}
	lang, ok := i18n.ParseLanguage(name)
	if !ok {
		return fmt.Errorf("unsupported language %q", name)
	}
	i18n.SetLanguage(lang)

	// 语言服务器的标准输出是协议通道，日志只写文件
	if server {
		a.logger, err = logging.New(a.cfg.LSP.LogLevel, a.cfg.LSP.LogFile)
		if err != nil {
			return err
		}
	} else {
		a.logger = logging.Console(a.verbose)
	}
	if a.cfgFile != "" {
		a.logger.Debug("config loaded", zap.String("path", a.cfgFile))
	}

	a.compiler = compiler.New(
		compiler.WithConfig(a.cfg),
		compiler.WithLogger(a.logger),
	)
	return nil
}
