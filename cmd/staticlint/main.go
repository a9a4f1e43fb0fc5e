/*
Package main runs a multichecker over the codebase.

It bundles:

 1. The standard vet-style analyzers from golang.org/x/tools/go/analysis/passes.
 2. The SA analyzers from staticcheck (likely bugs).
 3. ST1005 from stylecheck (error message casing).
 4. A custom analyzer, osexitlint, that forbids calling os.Exit inside
    the main function of package main.

Usage:

	go run ./cmd/staticlint ./...
*/
package main

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"

	"golang.org/x/tools/go/analysis/passes/appends"
	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/atomic"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/composite"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/defers"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/ifaceassert"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilfunc"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shift"
	"golang.org/x/tools/go/analysis/passes/stdmethods"
	"golang.org/x/tools/go/analysis/passes/stringintconv"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/testinggoroutine"
	"golang.org/x/tools/go/analysis/passes/tests"
	"golang.org/x/tools/go/analysis/passes/timeformat"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"golang.org/x/tools/go/analysis/passes/waitgroup"
)

func main() {
	used := map[string]bool{}
	var analyzers []*analysis.Analyzer

	add := func(a *analysis.Analyzer) {
		if !used[a.Name] {
			analyzers = append(analyzers, a)
			used[a.Name] = true
		}
	}

	for _, a := range []*analysis.Analyzer{
		appends.Analyzer,
		assign.Analyzer,
		atomic.Analyzer,
		bools.Analyzer,
		composite.Analyzer,
		copylock.Analyzer,
		defers.Analyzer,
		errorsas.Analyzer,
		httpresponse.Analyzer,
		ifaceassert.Analyzer,
		inspect.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		nilfunc.Analyzer,
		printf.Analyzer,
		shift.Analyzer,
		stdmethods.Analyzer,
		stringintconv.Analyzer,
		structtag.Analyzer,
		testinggoroutine.Analyzer,
		tests.Analyzer,
		timeformat.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,
		unusedresult.Analyzer,
		waitgroup.Analyzer,
	} {
		add(a)
	}

	// SA group: probable bugs
	for _, a := range staticcheck.Analyzers {
		if strings.HasPrefix(a.Analyzer.Name, "SA") {
			add(a.Analyzer)
		}
	}

	// ST1005: error strings should not be capitalized
	for _, a := range stylecheck.Analyzers {
		if a.Analyzer.Name == "ST1005" {
			add(a.Analyzer)
		}
	}

	add(Analyzer)

	multichecker.Main(analyzers...)
}

// render returns the formatted string representation of an AST node.
func render(fset *token.FileSet, x interface{}) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, x); err != nil {
		panic(err)
	}
	return buf.String()
}

// Analyzer forbids calling os.Exit inside func main of package main.
var Analyzer = &analysis.Analyzer{
	Name:     "osexitlint",
	Doc:      "reports os.Exit calls in the main function",
	Run:      run,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.FuncDecl)(nil),
	}

	inspect.Preorder(nodeFilter, func(n ast.Node) {
		fn, ok := n.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			return
		}
		if fn.Name.Name != "main" || pass.Pkg.Name() != "main" {
			return
		}

		ast.Inspect(fn.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}

			ident, ok := sel.X.(*ast.Ident)
			if !ok {
				return true
			}

			obj := pass.TypesInfo.Uses[ident]
			if obj == nil {
				return true
			}

			// skip compiler-generated files
			filename := pass.Fset.File(call.Pos()).Name()
			if strings.Contains(filename, "go-build") {
				return true
			}

			if sel.Sel.Name == "Exit" {
				if pkgObj, ok := obj.(*types.PkgName); ok && pkgObj.Imported().Path() == "os" {
					pass.Reportf(call.Pos(), "os.Exit call is forbidden in main function: %s", render(pass.Fset, call))
				}
			}

			return true
		})
	})

	return nil, nil
}
