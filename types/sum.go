package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/source"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// FindOrMakeSum returns the sum of ts. Member order and duplicates do not
// matter: the same set of types always yields the same *Sum.
func (c *Context) FindOrMakeSum(ts []Type) *Sum {
	byID := lo.SliceToMap(ts, func(t Type) (uint64, Type) { return t.ID(), t })
	if len(byID) < 2 {
		diag.Fatalf(source.Span{}, diag.SumArity, "sum of %d distinct types", len(byID))
	}
	ids := lo.Keys(byID)
	slices.Sort(ids)

	key := strings.Join(lo.Map(ids, func(id uint64, _ int) string {
		return strconv.FormatUint(id, 10)
	}), ",")
	if s, ok := c.sums[key]; ok {
		return s
	}

	s := &Sum{Common: newCommon()}
	for i := 0; i < len(ids); i++ {
		s.Components = append(s.Components, byID[ids[i]])
	}
	sym := ast.NewSymbol(ast.TypeSym, fmt.Sprintf("_sum_type%d", c.sumUID), s)
	c.sumUID++
	s.AddSymbol(sym)
	c.sums[key] = s
	c.Log.Debug("new sum type", zap.String("type", sym.Name), zap.Int("count", len(ids)))
	return s
}
