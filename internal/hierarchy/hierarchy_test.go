package hierarchy

import (
	"iter"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys[V any](seq iter.Seq[*Node[string, V]]) []string {
	var res []string
	for n := range seq {
		res = append(res, n.Key())
	}
	return res
}

func buildTree(t *testing.T) (*Hierarchy[string, int], map[string]*Node[string, int]) {
	t.Helper()
	h := New[string, int]()
	nodes := map[string]*Node[string, int]{}
	for i, k := range []string{"7", "70", "706", "701", "6", "60"} {
		nodes[k] = NewNode(k, i)
	}
	require.NoError(t, nodes["7"].AddChild(nodes["70"]))
	require.NoError(t, nodes["70"].AddChild(nodes["706"]))
	require.NoError(t, nodes["70"].AddChild(nodes["701"]))
	require.NoError(t, nodes["6"].AddChild(nodes["60"]))
	require.NoError(t, h.AddRecursive(nodes["7"]))
	require.NoError(t, h.AddRecursive(nodes["6"]))
	return h, nodes
}

func TestDepthFirst(t *testing.T) {
	h, nodes := buildTree(t)

	got := keys(nodes["7"].DepthFirst())
	if diff := cmp.Diff([]string{"7", "70", "706", "701"}, got); diff != "" {
		t.Errorf("pre-order mismatch (-want +got):\n%s", diff)
	}

	got = keys(h.All())
	if diff := cmp.Diff([]string{"7", "70", "706", "701", "6", "60"}, got); diff != "" {
		t.Errorf("All mismatch (-want +got):\n%s", diff)
	}

	// The sequence is restartable.
	assert.Equal(t, got, keys(h.All()))
}

func TestPostorder(t *testing.T) {
	_, nodes := buildTree(t)
	got := keys(nodes["7"].Postorder())
	if diff := cmp.Diff([]string{"706", "701", "70", "7"}, got); diff != "" {
		t.Errorf("postorder mismatch (-want +got):\n%s", diff)
	}
}

func TestEarlyBreak(t *testing.T) {
	h, _ := buildTree(t)
	var visited []string
	for n := range h.All() {
		visited = append(visited, n.Key())
		if n.Key() == "706" {
			break
		}
	}
	assert.Equal(t, []string{"7", "70", "706"}, visited)
}

func TestSortChildren_NotRecursive(t *testing.T) {
	root := NewNode("6", 0)
	b := NewNode("62", 0)
	a := NewNode("61", 0)
	b2 := NewNode("622", 0)
	b1 := NewNode("621", 0)
	require.NoError(t, root.AddChild(b))
	require.NoError(t, root.AddChild(a))
	require.NoError(t, b.AddChild(b2))
	require.NoError(t, b.AddChild(b1))

	root.SortChildren()
	assert.Equal(t, []string{"6", "61", "62", "622", "621"}, keys(root.DepthFirst()))

	root.SortRecursive()
	assert.Equal(t, []string{"6", "61", "62", "621", "622"}, keys(root.DepthFirst()))
}

func TestAddChild_Duplicate(t *testing.T) {
	parent := NewNode("4", 0)
	child := NewNode("44", 0)
	require.NoError(t, parent.AddChild(child))

	err := parent.AddChild(child)
	require.ErrorIs(t, err, ErrDuplicateSibling)
	assert.Len(t, parent.Children(), 1)

	other := NewNode("5", 0)
	err = other.AddChild(child)
	require.ErrorIs(t, err, ErrAlreadyAttached)
	assert.Same(t, parent, child.Parent())
	assert.Empty(t, other.Children())
}

func TestAddChild_Cycle(t *testing.T) {
	a := NewNode("4", 0)
	b := NewNode("41", 0)
	c := NewNode("411", 0)
	require.NoError(t, a.AddChild(b))
	require.NoError(t, b.AddChild(c))

	require.ErrorIs(t, c.AddChild(a), ErrCycle)
	require.ErrorIs(t, a.AddChild(a), ErrCycle)
	assert.True(t, a.IsRoot())
	assert.True(t, c.IsLeaf())

	var keys []string
	for n := range a.DepthFirst() {
		keys = append(keys, n.Key())
	}
	assert.Equal(t, []string{"4", "41", "411"}, keys)
	assert.Equal(t, 2, c.Level())
}

func TestParentConsistency(t *testing.T) {
	h, _ := buildTree(t)
	for n := range h.All() {
		for _, c := range n.Children() {
			assert.Same(t, n, c.Parent())
		}
		if p := n.Parent(); p != nil {
			assert.Contains(t, p.Children(), n)
		}
	}
}

func TestLevel(t *testing.T) {
	_, nodes := buildTree(t)
	assert.Equal(t, 0, nodes["7"].Level())
	assert.Equal(t, 2, nodes["706"].Level())
	assert.True(t, nodes["706"].IsLeaf())
	assert.True(t, nodes["7"].IsRoot())
}

func TestHierarchyGet(t *testing.T) {
	h, nodes := buildTree(t)

	got, err := h.Get("706")
	require.NoError(t, err)
	assert.Same(t, nodes["706"], got)
	assert.Equal(t, 6, h.Len())

	_, err = h.Get("999")
	require.ErrorIs(t, err, ErrNodeNotFound)
	var nf *NodeNotFoundError[string]
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "999", nf.Key)

	_, ok := h.Lookup("999")
	assert.False(t, ok)
}

func TestHierarchyDuplicateKey(t *testing.T) {
	h := New[string, int]()
	require.NoError(t, h.Add(NewNode("512", 1)))
	err := h.Add(NewNode("512", 2))
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestHierarchySort(t *testing.T) {
	h := New[string, int]()
	for _, k := range []string{"7", "2", "5"} {
		require.NoError(t, h.Add(NewNode(k, 0)))
	}
	h.Sort()
	assert.Equal(t, []string{"2", "5", "7"}, keys(h.All()))
}
