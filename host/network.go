package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/jcorbin/intcode"
)

// Packet is a message between network nodes; each node outputs packets as
// three values: destination address, X, then Y.
type Packet struct {
	Dest int64
	X, Y int64
}

func (p Packet) String() string { return fmt.Sprintf("%v:(%v, %v)", p.Dest, p.X, p.Y) }

// NoInput is supplied to a node that asks for input while its inbox is empty.
const NoInput = -1

// IdlePolicy decides what happens to packets addressed outside of the
// network, and what to do when the network goes idle.
type IdlePolicy interface {
	// Receive handles a packet whose destination is not a node address.
	Receive(net *Network, p Packet) (stop bool, err error)

	// Idle is called once every node has waited on an empty inbox for at
	// least two turns without sending anything.
	Idle(net *Network) (stop bool, err error)
}

// Network runs a set of sessions that exchange packets. Nodes take turns in
// address order: each turn, a node runs until it needs input and is then
// given exactly one value, the head of its inbox or NoInput.
type Network struct {
	logging
	Policy IdlePolicy
	nodes  []*netNode
	rounds int
}

type netNode struct {
	addr  int64
	s     *intcode.Session
	inbox []int64
	out   []int64
	idle  int
}

// IdleTurns is how many consecutive empty turns make a node idle.
const IdleTurns = 2

var errNetworkStalled = errors.New("network idle with no policy")

// NewNetwork boots size nodes running prog; node n is given its address n as
// its first input.
func NewNetwork(prog intcode.Program, size int, policy IdlePolicy, opts ...Option) (*Network, error) {
	conf := newConfig(opts)
	net := &Network{logging: conf.logging, Policy: policy}
	for i := 0; i < size; i++ {
		addr := int64(i)
		name := fmt.Sprintf("node%v", addr)
		s, err := conf.load(prog, name, intcode.WithInput(addr))
		if err != nil {
			return nil, fmt.Errorf("%v: %w", name, err)
		}
		net.nodes = append(net.nodes, &netNode{addr: addr, s: s})
	}
	return net, nil
}

// Size returns the number of nodes.
func (net *Network) Size() int { return len(net.nodes) }

// Rounds returns the number of completed rounds of turns.
func (net *Network) Rounds() int { return net.rounds }

// Send delivers a packet to the inbox of node p.Dest.
func (net *Network) Send(p Packet) error {
	if p.Dest < 0 || p.Dest >= int64(len(net.nodes)) {
		return fmt.Errorf("no node at address %v for packet %v", p.Dest, p)
	}
	node := net.nodes[p.Dest]
	node.inbox = append(node.inbox, p.X, p.Y)
	node.idle = 0
	net.logf("deliver %v", p)
	return nil
}

// Run takes turns until the policy stops the network, or every node halts.
func (net *Network) Run(ctx context.Context) error {
	for {
		for _, node := range net.nodes {
			if node.s.Halted() {
				continue
			}
			stop, err := net.turn(ctx, node)
			if err != nil {
				return fmt.Errorf("%v: %w", node.s.Name(), err)
			}
			if stop {
				return nil
			}
		}
		net.rounds++
		if net.halted() {
			return nil
		}
		if !net.idle() {
			continue
		}
		net.logf("idle after %v rounds", net.rounds)
		if net.Policy == nil {
			return errNetworkStalled
		}
		if stop, err := net.Policy.Idle(net); err != nil || stop {
			return err
		}
	}
}

func (net *Network) halted() bool {
	for _, node := range net.nodes {
		if !node.s.Halted() {
			return false
		}
	}
	return true
}

func (net *Network) idle() bool {
	for _, node := range net.nodes {
		if !node.s.Halted() && (node.idle < IdleTurns || len(node.inbox) > 0) {
			return false
		}
	}
	return true
}

func (net *Network) turn(ctx context.Context, node *netNode) (stop bool, err error) {
	sent := false
	for {
		res, err := node.s.Drive(ctx)
		if err != nil {
			return false, err
		}
		switch res.Signal {
		case intcode.Output:
			sent = true
			if node.out = append(node.out, res.Value); len(node.out) == 3 {
				p := Packet{node.out[0], node.out[1], node.out[2]}
				node.out = node.out[:0]
				if stop, err := net.route(node, p); err != nil || stop {
					return stop, err
				}
			}

		case intcode.NeedsInput:
			value := int64(NoInput)
			if len(node.inbox) > 0 {
				value = node.inbox[0]
				node.inbox = node.inbox[1:]
				node.idle = 0
			} else if sent {
				node.idle = 0
			} else {
				node.idle++
			}
			return false, node.s.SupplyInput(value)

		case intcode.Halted:
			return false, nil
		}
	}
}

func (net *Network) route(from *netNode, p Packet) (stop bool, err error) {
	if p.Dest >= 0 && p.Dest < int64(len(net.nodes)) {
		return false, net.Send(p)
	}
	net.logf("node%v sent %v outside the network", from.addr, p)
	if net.Policy == nil {
		return false, fmt.Errorf("unroutable packet %v", p)
	}
	return net.Policy.Receive(net, p)
}

// NATAddress is the address monitored by NAT.
const NATAddress = 255

// NAT is an IdlePolicy that retains the last packet sent to NATAddress, and
// resends it to node 0 whenever the network goes idle. It stops the network
// once it would deliver the same Y value twice in a row.
type NAT struct {
	// First is the first packet received, valid once Received > 0.
	First    Packet
	Last     Packet
	Received int

	// Delivered holds every Y value sent to node 0 so far.
	Delivered []int64

	// Repeated is the Y value that stopped the network.
	Repeated int64
}

// Receive records packets sent to NATAddress.
func (nat *NAT) Receive(net *Network, p Packet) (bool, error) {
	if p.Dest != NATAddress {
		return false, fmt.Errorf("unroutable packet %v", p)
	}
	if nat.Received == 0 {
		nat.First = p
	}
	nat.Last = p
	nat.Received++
	return false, nil
}

// Idle wakes the network by resending the last packet received to node 0.
func (nat *NAT) Idle(net *Network) (bool, error) {
	if nat.Received == 0 {
		return false, errors.New("network idle before any packet reached the NAT")
	}
	if n := len(nat.Delivered); n > 0 && nat.Delivered[n-1] == nat.Last.Y {
		nat.Repeated = nat.Last.Y
		return true, nil
	}
	nat.Delivered = append(nat.Delivered, nat.Last.Y)
	return false, net.Send(Packet{Dest: 0, X: nat.Last.X, Y: nat.Last.Y})
}

// Monitor is an IdlePolicy that stops at the first packet sent outside the
// network; going idle before then is an error.
type Monitor struct {
	Packet   Packet
	Received bool
}

// Receive records p and stops the network.
func (mon *Monitor) Receive(net *Network, p Packet) (bool, error) {
	mon.Packet, mon.Received = p, true
	return true, nil
}

// Idle fails since nothing will ever be sent.
func (mon *Monitor) Idle(net *Network) (bool, error) {
	return false, errors.New("network idle before any packet left it")
}
