package accounts

import (
	"errors"
	"fmt"
	"iter"

	"github.com/cleared-dev/finsim/internal/hierarchy"
	"github.com/cleared-dev/finsim/internal/model"
)

// ErrAccountNotFound is returned for an unknown account number.
var ErrAccountNotFound = errors.New("account not found")

// Node is an account positioned in the chart tree.
type Node = hierarchy.Node[string, *model.Account]

// Chart is the immutable hierarchical catalog of accounts.
type Chart struct {
	name string
	tree *hierarchy.Hierarchy[string, *model.Account]
}

// NewChart creates an empty chart.
func NewChart(name string) *Chart {
	return &Chart{name: name, tree: hierarchy.New[string, *model.Account]()}
}

// Name returns the chart name.
func (c *Chart) Name() string { return c.name }

// Len returns the number of accounts.
func (c *Chart) Len() int { return c.tree.Len() }

// Add registers an account under the account numbered parent ("" for a root).
func (c *Chart) Add(account *model.Account, parent string) error {
	if _, ok := c.tree.Lookup(account.Number); ok {
		return fmt.Errorf("adding account %s: %w", account.Number, hierarchy.ErrDuplicateKey)
	}
	node := hierarchy.NewNode(account.Number, account)
	if parent != "" {
		p, ok := c.tree.Lookup(parent)
		if !ok {
			return fmt.Errorf("parent of %s: %w: %s", account.Number, ErrAccountNotFound, parent)
		}
		if err := p.AddChild(node); err != nil {
			return err
		}
	}
	return c.tree.Add(node)
}

// Get returns the account numbered number.
func (c *Chart) Get(number string) (*model.Account, error) {
	n, err := c.tree.Get(number)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, number)
	}
	return n.Value, nil
}

// Lookup returns the account numbered number and whether it exists.
func (c *Chart) Lookup(number string) (*model.Account, bool) {
	n, ok := c.tree.Lookup(number)
	if !ok {
		return nil, false
	}
	return n.Value, true
}

// Exists reports whether an account number exists.
func (c *Chart) Exists(number string) bool {
	_, ok := c.tree.Lookup(number)
	return ok
}

// Node returns the tree node of an account.
func (c *Chart) Node(number string) (*Node, bool) {
	return c.tree.Lookup(number)
}

// ParentNumber returns the number of the parent account, or "" for a root.
func (c *Chart) ParentNumber(number string) string {
	n, ok := c.tree.Lookup(number)
	if !ok || n.Parent() == nil {
		return ""
	}
	return n.Parent().Key()
}

// Roots returns the top-level accounts' nodes.
func (c *Chart) Roots() []*Node { return c.tree.Roots() }

// Nodes walks the chart depth-first.
func (c *Chart) Nodes() iter.Seq[*Node] { return c.tree.All() }

// All walks the accounts depth-first.
func (c *Chart) All() iter.Seq[*model.Account] {
	return func(yield func(*model.Account) bool) {
		for n := range c.tree.All() {
			if !yield(n.Value) {
				return
			}
		}
	}
}

// Sort orders roots and siblings by account number, recursively.
func (c *Chart) Sort() { c.tree.Sort() }

// Entry is an account with the number of its parent, as found in flat chart files.
type Entry struct {
	Account model.Account
	Parent  string
}

// FromList builds a sorted chart from parent-linked entries given in any order.
func FromList(name string, entries []Entry) (*Chart, error) {
	byNumber := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if _, dup := byNumber[e.Account.Number]; dup {
			return nil, fmt.Errorf("adding account %s: %w", e.Account.Number, hierarchy.ErrDuplicateKey)
		}
		byNumber[e.Account.Number] = e
	}

	chart := NewChart(name)
	visiting := make(map[string]bool)
	var add func(e Entry) error
	add = func(e Entry) error {
		if chart.Exists(e.Account.Number) {
			return nil
		}
		if visiting[e.Account.Number] {
			return fmt.Errorf("account %s is its own ancestor", e.Account.Number)
		}
		visiting[e.Account.Number] = true
		if e.Parent != "" {
			p, ok := byNumber[e.Parent]
			if !ok {
				return fmt.Errorf("parent of %s: %w: %s", e.Account.Number, ErrAccountNotFound, e.Parent)
			}
			if err := add(p); err != nil {
				return err
			}
		}
		acct := e.Account
		if acct.Devise == "" {
			acct.Devise = model.DefaultDevise
		}
		return chart.Add(&acct, e.Parent)
	}
	for _, e := range entries {
		if err := add(e); err != nil {
			return nil, err
		}
	}
	chart.Sort()
	return chart, nil
}
