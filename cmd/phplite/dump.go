package main

import (
	"fmt"
	"io"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"

	"github.com/tangzhangming/phplite/internal/compiler"
)

// ============================================================================
// tokens
// ============================================================================

func newTokensCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := a.readSource(args[0])
			if err != nil {
				return err
			}
			tokens := a.compiler.Tokenize(source)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, tokens)
			}
			_, err = io.WriteString(out, compiler.FormatTokens(tokens))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print tokens as JSON")
	return cmd
}

// ============================================================================
// ast
// ============================================================================

func newASTCmd(a *app) *cobra.Command {
	var symbols bool

	cmd := &cobra.Command{
		Use:   "ast <file>",
		Short: "Print the AST of a file as JSON",
		Long: `Print the AST of a file as JSON. Syntax errors are written to stderr
and no tree is printed. With --symbols the scope snapshot is printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.compileOne(args[0])
			if err != nil {
				return err
			}
			if res.AST == nil {
				fmt.Fprint(cmd.ErrOrStderr(), compiler.FormatMessages(res))
				return errFailed
			}

			out := cmd.OutOrStdout()
			if symbols {
				return writeJSON(out, res.SymbolTable)
			}
			_, err = fmt.Fprintln(out, res.ASTJSON)
			return err
		},
	}
	cmd.Flags().BoolVar(&symbols, "symbols", false, "print the symbol table snapshot")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
