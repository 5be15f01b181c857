// Package recommend suggests books from co-borrowing patterns.
//
// Two books are linked when one member has borrowed both; the link weight
// counts how many members have. A member is recommended the available books
// most strongly linked to the books they have borrowed.
package recommend

import (
	"cmp"
	"maps"
	"slices"

	"github.com/mrlokans/librarian/internal/entities"
)

// CoBorrowGraph is an undirected weighted graph over ISBNs.
type CoBorrowGraph struct {
	edges map[string]map[string]int
}

// BuildCoBorrowGraph links every pair of books borrowed by the same member
// among loans. Borrowing a book twice counts once.
func BuildCoBorrowGraph(loans []entities.Loan) *CoBorrowGraph {
	held := make(map[string][]string)
	for _, l := range loans {
		held[l.MemberEmail] = append(held[l.MemberEmail], l.ISBN)
	}

	g := &CoBorrowGraph{edges: make(map[string]map[string]int)}
	for _, isbns := range held {
		slices.Sort(isbns)
		isbns = slices.Compact(isbns)
		for i, a := range isbns {
			for _, b := range isbns[i+1:] {
				g.link(a, b)
			}
		}
	}
	return g
}

func (g *CoBorrowGraph) link(a, b string) {
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		if g.edges[pair[0]] == nil {
			g.edges[pair[0]] = make(map[string]int)
		}
		g.edges[pair[0]][pair[1]]++
	}
}

// Weight returns the number of members holding both books.
func (g *CoBorrowGraph) Weight(a, b string) int {
	return g.edges[a][b]
}

// Neighbors lists the books linked to isbn, sorted.
func (g *CoBorrowGraph) Neighbors(isbn string) []string {
	return slices.Sorted(maps.Keys(g.edges[isbn]))
}

// Edge is one undirected link, reported with A < B.
type Edge struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Weight int    `json:"weight"`
}

// Edges lists every link once, heaviest first.
func (g *CoBorrowGraph) Edges() []Edge {
	var out []Edge
	for a, links := range g.edges {
		for b, w := range links {
			if a < b {
				out = append(out, Edge{A: a, B: b, Weight: w})
			}
		}
	}
	slices.SortFunc(out, func(x, y Edge) int {
		if c := cmp.Compare(y.Weight, x.Weight); c != 0 {
			return c
		}
		if c := cmp.Compare(x.A, y.A); c != 0 {
			return c
		}
		return cmp.Compare(x.B, y.B)
	})
	return out
}
