package main

import (
	"fmt"
	"io"
	"os"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"

	"github.com/tangzhangming/phplite/internal/compiler"
	"github.com/tangzhangming/phplite/internal/errors"
	"github.com/tangzhangming/phplite/internal/i18n"
)

// stdinName 从标准输入读取时的文件名
const stdinName = "-"

func newCheckCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		report string
	)

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Compile files and report diagnostics",
		Long: `Compile each file and print diagnostics with source context.
Use "-" to read from stdin. Exits with status 1 if any file has errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.check(cmd.OutOrStdout(), cmd.ErrOrStderr(), args, asJSON, report)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print compile results as JSON")
	cmd.Flags().StringVarP(&report, "report", "r", "", "write a JSON report to `file`")
	return cmd
}

func (a *app) check(out, errOut io.Writer, files []string, asJSON bool, report string) error {
	formatter := errors.NewFormatter()
	if a.noColor {
		formatter.Colors = false
		formatter.Highlight = false
	}

	var (
		failed  bool
		results []json.RawMessage
	)
	for _, file := range files {
		source, err := a.readSource(file)
		if err != nil {
			return err
		}

		res := a.compiler.Compile(source, file)
		if !res.OK {
			failed = true
		}

		if asJSON || report != "" {
			data, err := res.JSON()
			if err != nil {
				return err
			}
			results = append(results, data)
		}
		if asJSON {
			continue
		}

		reporter := errors.NewReporter(out)
		reporter.SetFormatter(formatter)
		reporter.SetSource(file, source)
		reporter.ReportAll(res.CompileErrors())
		fmt.Fprintln(out, res.Summary())
	}

	if asJSON || report != "" {
		data, err := encodeResults(results)
		if err != nil {
			return err
		}
		if asJSON {
			fmt.Fprintln(out, string(data))
		}
		if report != "" {
			if err := os.WriteFile(report, append(data, '\n'), 0644); err != nil {
				return err
			}
			fmt.Fprintln(errOut, i18n.T(i18n.MsgReportWritten, report))
		}
	}

	if failed {
		return errFailed
	}
	return nil
}

// encodeResults 单个文件输出对象，多个文件输出数组
func encodeResults(results []json.RawMessage) ([]byte, error) {
	if len(results) == 1 {
		return results[0], nil
	}
	return json.MarshalIndent(results, "", "  ")
}

// readSource 读取源文件，"-" 表示标准输入
func (a *app) readSource(file string) (string, error) {
	var (
		data []byte
		err  error
	)
	if file == stdinName {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("%s", i18n.T(i18n.MsgReadFailed, file, err))
	}
	return string(data), nil
}

// compileOne 读取并编译单个文件
func (a *app) compileOne(file string) (*compiler.Result, error) {
	source, err := a.readSource(file)
	if err != nil {
		return nil, err
	}
	return a.compiler.Compile(source, file), nil
}
