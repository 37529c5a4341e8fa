package world

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"
	"github.com/awalterschulze/gographviz/ast"
)

// ErrMalformedGraph is returned when an entities graph does not have the
// expected locations and paths sections.
var ErrMalformedGraph = errors.New("malformed entities graph")

// LoadDOT parses and validates a world from graph-language bytes.
//
// The graph holds two subgraphs. The first lists locations, each a subgraph
// whose first node is the location itself and whose child subgraphs named
// characters, artefacts and furniture list its entities. The second holds the
// directed edges between locations. The first location declared is the start.
//
// Precondition: data must be a parseable digraph.
// Postcondition: Returns a validated World or a non-nil error.
func LoadDOT(data []byte) (*World, error) {
	g, err := gographviz.ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing entities graph: %w", err)
	}

	sections := subgraphs(g.StmtList)
	if len(sections) < 2 {
		return nil, fmt.Errorf("%w: want locations and paths sections, got %d", ErrMalformedGraph, len(sections))
	}

	var locations []*Location
	for _, cluster := range subgraphs(sections[0].StmtList) {
		loc, err := parseLocation(cluster)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	if len(locations) == 0 {
		return nil, ErrNoLocations
	}

	paths, err := parsePaths(sections[1].StmtList)
	if err != nil {
		return nil, err
	}

	w, err := New(locations, paths)
	if err != nil {
		return nil, fmt.Errorf("validating world: %w", err)
	}
	return w, nil
}

func parseLocation(cluster *ast.SubGraph) (*Location, error) {
	var loc *Location
	for _, stmt := range cluster.StmtList {
		switch s := stmt.(type) {
		case *ast.NodeStmt:
			if loc == nil {
				loc = NewLocation(nodeName(s), attr(s.Attrs, "description"))
			}
		case *ast.SubGraph:
			if loc == nil {
				return nil, fmt.Errorf("%w: %s declares entities before its location node", ErrMalformedGraph, cluster.ID)
			}
			kind, ok := ParseKind(unquote(s.ID.String()))
			if !ok {
				return nil, fmt.Errorf("%w: unknown entity group %q in %s", ErrMalformedGraph, s.ID, loc.Name)
			}
			for _, inner := range s.StmtList {
				n, ok := inner.(*ast.NodeStmt)
				if !ok {
					continue
				}
				loc.Add(Entity{Name: nodeName(n), Description: attr(n.Attrs, "description"), Kind: kind})
			}
		}
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: %s has no location node", ErrMalformedGraph, cluster.ID)
	}
	return loc, nil
}

func parsePaths(stmts ast.StmtList) ([][2]string, error) {
	var paths [][2]string
	for _, stmt := range stmts {
		e, ok := stmt.(*ast.EdgeStmt)
		if !ok {
			continue
		}
		from, ok := e.Source.(*ast.NodeID)
		if !ok {
			return nil, fmt.Errorf("%w: path source is not a node", ErrMalformedGraph)
		}
		src := unquote(from.ID.String())
		for _, rh := range e.EdgeRHS {
			to, ok := rh.Destination.(*ast.NodeID)
			if !ok {
				return nil, fmt.Errorf("%w: path from %s has a non-node destination", ErrMalformedGraph, src)
			}
			dst := unquote(to.ID.String())
			paths = append(paths, [2]string{src, dst})
			src = dst
		}
	}
	return paths, nil
}

func subgraphs(stmts ast.StmtList) []*ast.SubGraph {
	var out []*ast.SubGraph
	for _, stmt := range stmts {
		if sg, ok := stmt.(*ast.SubGraph); ok {
			out = append(out, sg)
		}
	}
	return out
}

func nodeName(n *ast.NodeStmt) string {
	return unquote(n.NodeID.ID.String())
}

func attr(attrs ast.AttrList, name string) string {
	return unquote(attrs.GetMap()[name])
}

// unquote strips the quotes graph-language IDs keep after parsing.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if u, err := strconv.Unquote(s); err == nil {
		return strings.TrimSpace(u)
	}
	return strings.Trim(s, `"`)
}
