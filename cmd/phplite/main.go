// phplite 命令行：检查、导出 token/AST 以及启动语言服务器
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Version 版本号
const Version = "0.1.0"

// errFailed 编译未通过；诊断已输出，只需设置退出码
var errFailed = errors.New("compilation failed")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run 执行命令并返回退出码
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(stderr, "error:", err)
		}
		return 1
	}
	return 0
}
