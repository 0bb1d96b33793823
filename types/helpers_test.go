package types_test

import (
	"testing"

	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireInternal(t *testing.T, invariant string, f func()) {
	t.Helper()
	err := diag.Catch(f)
	require.Error(t, err)
	ie, ok := diag.AsInternal(err)
	require.True(t, ok, "%v", err)
	assert.Equal(t, invariant, ie.Invariant)
}

func named[T types.Type](name string, t T) T {
	t.AddSymbol(ast.NewSymbol(ast.TypeSym, name, t))
	return t
}

func declare(blk *ast.Block, t types.Type) {
	blk.Append(ast.NewTypeDecl(t.Symbol()))
}

func field(name string, t types.Type) *ast.VarDecl {
	return ast.NewVarDecl(ast.NewSymbol(ast.VarSym, name, t), nil)
}

func fieldInit(name string, t types.Type, init ast.Expr) *ast.VarDecl {
	return ast.NewVarDecl(ast.NewSymbol(ast.VarSym, name, t), init)
}

func decls(ds ...ast.Decl) []ast.Decl { return ds }

func exprStrings(stmts []ast.Stmt) []string {
	var ss []string
	for _, s := range stmts {
		ss = append(ss, ast.ExprString(s.(*ast.ExprStmt).X))
	}
	return ss
}
