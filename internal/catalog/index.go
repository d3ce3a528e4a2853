package catalog

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// nilNode marks an absent child or an empty tree.
const nilNode = -1

type node struct {
	book  *Book
	left  int
	right int
}

// TitleIndex is an unbalanced binary search tree of books ordered by title.
//
// Nodes live in an arena slice and refer to each other by position; slots
// freed by deletion are reused by later inserts. The left subtree of a node
// holds strictly smaller titles and the right subtree greater or equal ones,
// so books sharing a title always sit in each other's right subtree.
//
// The tree is never rebalanced. Inserting titles in sorted order degrades it
// to a linked list and every operation to O(n).
//
// When several books share a title, [TitleIndex.Search] returns whichever one
// is closest to the root, which depends on insertion and deletion history.
// Use [TitleIndex.SearchAll] to see all of them.
type TitleIndex struct {
	nodes []node
	free  []int
	root  int
	size  int
}

// NewTitleIndex returns an empty index.
func NewTitleIndex() *TitleIndex {
	return &TitleIndex{root: nilNode}
}

// Len returns the number of books in the index.
func (t *TitleIndex) Len() int {
	return t.size
}

// Insert adds b below the last node on its descent path. Equal titles
// descend to the right.
func (t *TitleIndex) Insert(b *Book) {
	// Allocate before taking pointers into the arena; alloc may grow it.
	idx := t.alloc(b)

	link := &t.root
	for *link != nilNode {
		n := &t.nodes[*link]
		if b.Title < n.book.Title {
			link = &n.left
		} else {
			link = &n.right
		}
	}

	*link = idx
	t.size++
}

// Delete removes the first node on the descent path whose title equals
// title. Returns false, changing nothing, if there is none.
func (t *TitleIndex) Delete(title string) bool {
	link := t.find(title, nil)
	if link == nil {
		return false
	}

	t.unlink(link)

	return true
}

// DeleteBook removes the node holding exactly b. Unlike [TitleIndex.Delete]
// it never removes a different book that happens to share b's title.
func (t *TitleIndex) DeleteBook(b *Book) bool {
	link := t.find(b.Title, b)
	if link == nil {
		return false
	}

	t.unlink(link)

	return true
}

// Search returns the first book on the descent path with exactly this title.
func (t *TitleIndex) Search(title string) (*Book, error) {
	idx := t.root
	for idx != nilNode {
		n := &t.nodes[idx]

		switch c := strings.Compare(title, n.book.Title); {
		case c < 0:
			idx = n.left
		case c > 0:
			idx = n.right
		default:
			return n.book, nil
		}
	}

	return nil, fmt.Errorf("%w: title %q", ErrNotFound, title)
}

// SearchAll returns every book with exactly this title in traversal order.
// Returns nil if there is none.
func (t *TitleIndex) SearchAll(title string) []*Book {
	var out []*Book

	idx := t.root
	for idx != nilNode {
		n := &t.nodes[idx]

		switch c := strings.Compare(title, n.book.Title); {
		case c < 0:
			idx = n.left
		case c > 0:
			idx = n.right
		default:
			// Every other match lives in this node's right subtree.
			out = append(out, n.book)
			for b := range t.walk(n.right) {
				if b.Title != title {
					break
				}

				out = append(out, b)
			}

			return out
		}
	}

	return nil
}

// All yields the books in ascending title order. Each call starts a fresh
// traversal. The index must not be modified while a traversal is running.
func (t *TitleIndex) All() iter.Seq[*Book] {
	return t.walk(t.root)
}

// Clone returns an independent copy of the index with the same shape. The
// copy shares the books.
func (t *TitleIndex) Clone() *TitleIndex {
	return &TitleIndex{
		nodes: slices.Clone(t.nodes),
		free:  slices.Clone(t.free),
		root:  t.root,
		size:  t.size,
	}
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (t *TitleIndex) Height() int {
	if t.root == nilNode {
		return 0
	}

	type frame struct{ idx, depth int }

	height := 0
	stack := []frame{{t.root, 1}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		height = max(height, f.depth)

		n := &t.nodes[f.idx]
		if n.left != nilNode {
			stack = append(stack, frame{n.left, f.depth + 1})
		}

		if n.right != nilNode {
			stack = append(stack, frame{n.right, f.depth + 1})
		}
	}

	return height
}

// walk yields the subtree rooted at idx in order, using an explicit stack so
// a degenerate tree cannot exhaust the goroutine stack.
func (t *TitleIndex) walk(idx int) iter.Seq[*Book] {
	return func(yield func(*Book) bool) {
		var stack []int

		cur := idx
		for cur != nilNode || len(stack) > 0 {
			for cur != nilNode {
				stack = append(stack, cur)
				cur = t.nodes[cur].left
			}

			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !yield(t.nodes[cur].book) {
				return
			}

			cur = t.nodes[cur].right
		}
	}
}

// find returns the link (the root slot or a parent's child slot) pointing at
// the first node on the descent path matching title. If b is non-nil the
// node must also hold b; equal titles holding another book continue right.
func (t *TitleIndex) find(title string, b *Book) *int {
	link := &t.root
	for *link != nilNode {
		n := &t.nodes[*link]

		switch c := strings.Compare(title, n.book.Title); {
		case c < 0:
			link = &n.left
		case c > 0:
			link = &n.right
		case b == nil || n.book == b:
			return link
		default:
			link = &n.right
		}
	}

	return nil
}

// unlink removes the node *link points at. Nodes with at most one child are
// spliced out. A node with two children takes over the book of its in-order
// successor (the minimum of its right subtree) and the successor node, which
// has no left child, is spliced out instead.
func (t *TitleIndex) unlink(link *int) {
	idx := *link
	n := &t.nodes[idx]

	switch {
	case n.left == nilNode:
		*link = n.right
	case n.right == nilNode:
		*link = n.left
	default:
		succLink := &n.right
		for t.nodes[*succLink].left != nilNode {
			succLink = &t.nodes[*succLink].left
		}

		succ := *succLink
		n.book = t.nodes[succ].book
		*succLink = t.nodes[succ].right
		idx = succ
	}

	t.release(idx)
	t.size--
}

func (t *TitleIndex) alloc(b *Book) int {
	n := node{book: b, left: nilNode, right: nilNode}

	if k := len(t.free); k > 0 {
		idx := t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[idx] = n

		return idx
	}

	t.nodes = append(t.nodes, n)

	return len(t.nodes) - 1
}

func (t *TitleIndex) release(idx int) {
	t.nodes[idx] = node{left: nilNode, right: nilNode}
	t.free = append(t.free, idx)
}
