package host

import (
	"context"
	"fmt"
	"strings"

	"github.com/jcorbin/intcode"
)

// Graph is a directed graph of sessions: every output value of a node is
// appended to the inbox of each of its successors. Run schedules nodes from
// a ready queue until every node halts, or none can make progress.
type Graph struct {
	logging
	nodes []*Node
	ready []*Node
}

// Node is one session within a Graph.
type Node struct {
	Name    string
	Session *intcode.Session

	// Last is the most recent value output by the node, valid when HasLast.
	Last    int64
	HasLast bool

	inbox  []int64
	succs  []*Node
	queued bool
}

// DeadlockError is returned by Graph.Run when every unhalted node is
// waiting on an empty inbox.
type DeadlockError struct {
	Blocked []string
}

func (err DeadlockError) Error() string {
	return fmt.Sprintf("deadlock: %v waiting for input", strings.Join(err.Blocked, ", "))
}

// NewGraph creates an empty graph; only WithLogf applies.
func NewGraph(opts ...Option) *Graph {
	conf := newConfig(opts)
	return &Graph{logging: conf.logging}
}

// Nodes returns the graph's nodes in the order they were added.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Add adds a session as a new node, initially ready to run.
func (g *Graph) Add(name string, s *intcode.Session) *Node {
	node := &Node{Name: name, Session: s}
	g.nodes = append(g.nodes, node)
	g.schedule(node)
	return node
}

// Connect routes every future output of from into the inbox of to.
func (g *Graph) Connect(from, to *Node) {
	from.succs = append(from.succs, to)
}

// Send appends values to a node's inbox, scheduling it to run.
func (g *Graph) Send(to *Node, values ...int64) {
	to.inbox = append(to.inbox, values...)
	g.schedule(to)
}

func (g *Graph) schedule(node *Node) {
	if !node.queued && !node.Session.Halted() {
		node.queued = true
		g.ready = append(g.ready, node)
	}
}

// Run drives nodes until all have halted. A node runs until it halts or
// needs input that its inbox cannot provide; outputs are delivered as they
// happen, so a successor sees values in the order they were produced.
func (g *Graph) Run(ctx context.Context) error {
	for len(g.ready) > 0 {
		node := g.ready[0]
		g.ready = g.ready[1:]
		node.queued = false
		if err := g.runNode(ctx, node); err != nil {
			return fmt.Errorf("%v: %w", node.Name, err)
		}
	}

	var blocked []string
	for _, node := range g.nodes {
		if !node.Session.Halted() {
			blocked = append(blocked, node.Name)
		}
	}
	if len(blocked) > 0 {
		return DeadlockError{blocked}
	}
	return nil
}

func (g *Graph) runNode(ctx context.Context, node *Node) error {
	for {
		if node.Session.AwaitingInput() {
			if len(node.inbox) == 0 {
				g.logf("%v: blocked on input", node.Name)
				return nil
			}
			value := node.inbox[0]
			node.inbox = node.inbox[1:]
			if err := node.Session.SupplyInput(value); err != nil {
				return err
			}
		}

		res, err := node.Session.Drive(ctx)
		if err != nil {
			return err
		}
		switch res.Signal {
		case intcode.Output:
			node.Last, node.HasLast = res.Value, true
			for _, succ := range node.succs {
				g.logf("%v -> %v: %v", node.Name, succ.Name, res.Value)
				g.Send(succ, res.Value)
			}
		case intcode.Halted:
			g.logf("%v: halted", node.Name)
			return nil
		}
	}
}
