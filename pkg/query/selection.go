package query

import (
	"github.com/orneryd/graphrecords/pkg/qerr"
	"github.com/orneryd/graphrecords/pkg/store"
	"github.com/orneryd/graphrecords/pkg/value"
)

// Row is one result row of a Selection: the column name the builder
// attached each returned operand under, mapped to its evaluated shape
// (spec §4.5's Return projection — a scalar, a value list, an index list,
// or an attribute-key list, one per returned operand).
type Row map[string]any

// Selection is the entry point a caller builds an operand tree from and
// evaluates it against a store (spec §2, §4.5: "projection is the final
// stage, dispatched by each returned operand's own shape").
type Selection struct {
	nodeCols []namedOperand
	edgeCols []namedEdgeOperand
}

type namedOperand struct {
	name string
	op   *NodeOperand
	ret  func(ctx *EvalContext, n *NodeOperand) (any, error)
}

type namedEdgeOperand struct {
	name string
	op   *EdgeOperand
	ret  func(ctx *EvalContext, e *EdgeOperand) (any, error)
}

// NewSelection starts an empty query.
func NewSelection() *Selection { return &Selection{} }

// ReturnNodeIndices adds a named column returning the surviving node
// indices of n.
func (s *Selection) ReturnNodeIndices(name string, n *NodeOperand) *Selection {
	s.nodeCols = append(s.nodeCols, namedOperand{name: name, op: n, ret: func(ctx *EvalContext, n *NodeOperand) (any, error) {
		return n.Evaluate(ctx)
	}})
	return s
}

// ReturnNodeAttribute adds a named column returning the values of key
// across the surviving nodes of n.
func (s *Selection) ReturnNodeAttribute(name string, n *NodeOperand, key value.AttributeKey) *Selection {
	s.nodeCols = append(s.nodeCols, namedOperand{name: name, op: n, ret: func(ctx *EvalContext, n *NodeOperand) (any, error) {
		return n.Attribute(key).Evaluate(ctx)
	}})
	return s
}

// ReturnEdgeIndices adds a named column returning the surviving edge
// indices of e.
func (s *Selection) ReturnEdgeIndices(name string, e *EdgeOperand) *Selection {
	s.edgeCols = append(s.edgeCols, namedEdgeOperand{name: name, op: e, ret: func(ctx *EvalContext, e *EdgeOperand) (any, error) {
		return e.Evaluate(ctx)
	}})
	return s
}

// ReturnEdgeAttribute adds a named column returning the values of key
// across the surviving edges of e.
func (s *Selection) ReturnEdgeAttribute(name string, e *EdgeOperand, key value.AttributeKey) *Selection {
	s.edgeCols = append(s.edgeCols, namedEdgeOperand{name: name, op: e, ret: func(ctx *EvalContext, e *EdgeOperand) (any, error) {
		return e.Attribute(key).Evaluate(ctx)
	}})
	return s
}

// ReturnNodeGroupedAttribute adds a named column returning n's grouped
// aggregate result: one (GroupKey, values) pair per partition of groupKey,
// apply run independently against each partition (spec §4.3.2/§4.5's
// grouped return — e.g. "group_by(age).max(w)" exposing "key 10 -> 1, key
// 20 -> 2" rather than a flattened node list).
func (s *Selection) ReturnNodeGroupedAttribute(name string, n *NodeOperand, groupKey value.AttributeKey, apply func(*NodeOperand) *ValueOperand[store.NodeIndex]) *Selection {
	s.nodeCols = append(s.nodeCols, namedOperand{name: name, op: n, ret: func(ctx *EvalContext, n *NodeOperand) (any, error) {
		return n.GroupByAttributeAggregate(ctx, groupKey, apply)
	}})
	return s
}

// ReturnEdgeGroupedAttribute is ReturnNodeGroupedAttribute for edges.
func (s *Selection) ReturnEdgeGroupedAttribute(name string, e *EdgeOperand, groupKey value.AttributeKey, apply func(*EdgeOperand) *ValueOperand[store.EdgeIndex]) *Selection {
	s.edgeCols = append(s.edgeCols, namedEdgeOperand{name: name, op: e, ret: func(ctx *EvalContext, e *EdgeOperand) (any, error) {
		return e.GroupByAttributeAggregate(ctx, groupKey, apply)
	}})
	return s
}

// ReturnNodeCount adds a named scalar column returning the cardinality of
// n's surviving nodes.
func (s *Selection) ReturnNodeCount(name string, n *NodeOperand) *Selection {
	s.nodeCols = append(s.nodeCols, namedOperand{name: name, op: n, ret: func(ctx *EvalContext, n *NodeOperand) (any, error) {
		return n.Count(ctx)
	}})
	return s
}

// Evaluate runs every returned column against st and assembles a single
// Row. Columns are independent: an error from one does not short-circuit
// evaluation order guarantees for the others beyond normal Go evaluation,
// but does abort the whole Selection (spec §4.5 has no partial-failure
// mode).
func (s *Selection) Evaluate(st store.Store) (Row, error) {
	if len(s.nodeCols) == 0 && len(s.edgeCols) == 0 {
		return nil, qerr.Query("selection has no returned columns")
	}
	ctx := NewContext(st)
	row := make(Row, len(s.nodeCols)+len(s.edgeCols))
	for _, c := range s.nodeCols {
		v, err := c.ret(ctx, c.op)
		if err != nil {
			return nil, qerr.Wrap(err, "evaluating column %q", c.name)
		}
		row[c.name] = v
	}
	for _, c := range s.edgeCols {
		v, err := c.ret(ctx, c.op)
		if err != nil {
			return nil, qerr.Wrap(err, "evaluating column %q", c.name)
		}
		row[c.name] = v
	}
	return row, nil
}
