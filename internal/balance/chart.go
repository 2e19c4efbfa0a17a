package balance

import (
	"fmt"
	"iter"

	"github.com/cleared-dev/finsim/internal/accounts"
	"github.com/cleared-dev/finsim/internal/hierarchy"
)

// Chart is a balance tree isomorphic to an account chart.
type Chart struct {
	accounts *accounts.Chart
	tree     *hierarchy.Hierarchy[string, *AccountBalance]
}

// Mirror builds a zeroed balance chart with the shape of chart.
func Mirror(chart *accounts.Chart) *Chart {
	c := &Chart{accounts: chart, tree: hierarchy.New[string, *AccountBalance]()}
	for _, root := range chart.Roots() {
		c.mirror(root, nil)
	}
	return c
}

func (c *Chart) mirror(src *accounts.Node, parent *AccountBalance) {
	b := newAccountBalance(src.Value)
	if parent != nil {
		// The source tree has unique keys and a single parent per node.
		if err := parent.node.AddChild(b.node); err != nil {
			panic(err)
		}
	}
	if err := c.tree.Add(b.node); err != nil {
		panic(err)
	}
	for _, child := range src.Children() {
		c.mirror(child, b)
	}
}

// Name returns the name of the account chart.
func (c *Chart) Name() string { return c.accounts.Name() }

// Accounts returns the mirrored account chart.
func (c *Chart) Accounts() *accounts.Chart { return c.accounts }

// Len returns the number of accounts.
func (c *Chart) Len() int { return c.tree.Len() }

// Get returns the balance of an account, failing with
// accounts.ErrAccountNotFound.
func (c *Chart) Get(number string) (*AccountBalance, error) {
	n, ok := c.tree.Lookup(number)
	if !ok {
		return nil, fmt.Errorf("%w: %s", accounts.ErrAccountNotFound, number)
	}
	return n.Value, nil
}

// Lookup returns the balance of an account and whether it exists.
func (c *Chart) Lookup(number string) (*AccountBalance, bool) {
	n, ok := c.tree.Lookup(number)
	if !ok {
		return nil, false
	}
	return n.Value, true
}

// Roots returns the top-level balances.
func (c *Chart) Roots() []*AccountBalance {
	roots := c.tree.Roots()
	res := make([]*AccountBalance, len(roots))
	for i, r := range roots {
		res[i] = r.Value
	}
	return res
}

// All walks the balances depth-first.
func (c *Chart) All() iter.Seq[*AccountBalance] {
	return func(yield func(*AccountBalance) bool) {
		for n := range c.tree.All() {
			if !yield(n.Value) {
				return
			}
		}
	}
}

// Reset zeroes every balance.
func (c *Chart) Reset() {
	for b := range c.All() {
		b.reset()
	}
}

// Refresh recomputes every cache bottom-up.
func (c *Chart) Refresh() {
	for _, root := range c.tree.Roots() {
		for n := range root.Postorder() {
			n.Value.InnerBalance()
			n.Value.compute()
		}
	}
}
