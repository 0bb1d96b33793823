package types

import (
	"github.com/smasher164/ctype/ast"
)

// NewDomain creates a domain of numDims dimensions along with its index type.
func (c *Context) NewDomain(numDims int) *Domain {
	d := &Domain{Common: newCommon(), NumDims: numDims}
	if numDims > 0 {
		d.Index = NewIndex(c.indexElem(numDims))
		d.Index.Domain = d
	}
	return d
}

// NewDomainOf creates a domain from an extent expression: an integer literal
// gives the number of dimensions, any other expression is a parent domain
// whose rank is inherited.
func (c *Context) NewDomainOf(e ast.Expr) *Domain {
	if lit, ok := e.(*ast.IntLit); ok {
		return c.NewDomain(int(lit.Value))
	}
	rank := 1
	if t := ast.TypeOf(e); t != nil && t.Rank() > 0 {
		rank = t.Rank()
	}
	d := c.NewDomain(rank)
	d.Parent = e
	return d
}

// indexElem is the type of one index of an n-dimensional domain.
func (c *Context) indexElem(n int) Type {
	if n == 1 {
		return c.Integer
	}
	rest := make([]Type, n-1)
	for i := range rest {
		rest[i] = c.Integer
	}
	return NewTuple(c.Integer, rest...)
}
