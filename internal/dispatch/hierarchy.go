package dispatch

import (
	"encoding/json"
	"fmt"

	"github.com/nerrad567/gray-logic-energy/internal/model"
)

// Hierarchy node types published by openWB.
const (
	NodeCounter           = "counter"
	NodeChargePoint       = "cp"
	NodeBattery           = "bat"
	NodeInverter          = "inverter"
	NodeInverterSecondary = "inverter_secondary"
)

// maxHierarchyDepth bounds the tree walk. Real installations nest a few
// levels (grid meter → sub-meter → charge point).
const maxHierarchyDepth = 64

// Node is one device in an openWB hierarchy snapshot.
type Node struct {
	ID       int    `json:"id"`
	Type     string `json:"type"`
	Children []Node `json:"children"`
}

// SyncResult describes what a snapshot changed.
type SyncResult struct {
	// Applied is false for an empty snapshot, which leaves the store untouched.
	Applied bool

	// GridMeterID is valid when GridMeterSet is true.
	GridMeterID  int
	GridMeterSet bool

	Counters     int
	ChargePoints int
	Batteries    int

	// UnknownTypes lists node types that were skipped, in walk order.
	UnknownTypes []string
}

// Synchronizer rebuilds the device topology from hierarchy snapshots.
type Synchronizer struct {
	store *model.Store
}

// NewSynchronizer creates a synchronizer writing into store.
func NewSynchronizer(store *model.Store) *Synchronizer {
	return &Synchronizer{store: store}
}

// Apply parses an openWB/counter/get/hierarchy payload and applies it.
//
// An empty array is a no-op. Otherwise charge points and batteries are
// discarded, the last top-level counter becomes the grid meter, and only the
// first root is walked depth-first pre-order to (re)create entities.
// Counters are ensured, never removed.
//
// A payload that fails to decode or is too deep returns an error and leaves
// the store untouched.
func (s *Synchronizer) Apply(payload []byte) (SyncResult, error) {
	var roots []Node
	if err := json.Unmarshal(payload, &roots); err != nil {
		return SyncResult{}, fmt.Errorf("%w: hierarchy: %w", ErrInvalidPayload, err)
	}
	if len(roots) == 0 {
		return SyncResult{}, nil
	}
	if depth(roots[0]) > maxHierarchyDepth {
		return SyncResult{}, fmt.Errorf("%w: more than %d levels", ErrHierarchyTooDeep, maxHierarchyDepth)
	}

	result := SyncResult{Applied: true}

	s.store.ResetChargePoints()
	s.store.ResetBatteries()

	for _, root := range roots {
		if root.Type == NodeCounter {
			result.GridMeterID = root.ID
			result.GridMeterSet = true
		}
	}
	if result.GridMeterSet {
		s.store.SetGridMeterID(result.GridMeterID)
	}

	s.walk(roots[0], &result)
	return result, nil
}

// walk visits the tree pre-order, children in array order.
func (s *Synchronizer) walk(root Node, result *SyncResult) {
	stack := []*Node{&root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch node.Type {
		case NodeCounter:
			s.store.EnsureCounter(node.ID)
			result.Counters++
		case NodeChargePoint:
			s.store.EnsureChargePoint(node.ID)
			result.ChargePoints++
		case NodeBattery:
			s.store.EnsureBattery(node.ID)
			result.Batteries++
		case NodeInverter, NodeInverterSecondary:
			// PV systems are created from component config and PV traffic.
		default:
			result.UnknownTypes = append(result.UnknownTypes, node.Type)
		}

		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, &node.Children[i])
		}
	}
}

// depth returns the number of levels below and including n. It stops
// counting once the limit is exceeded.
func depth(n Node) int {
	type frame struct {
		node  *Node
		level int
	}
	deepest := 0
	stack := []frame{{&n, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.level > deepest {
			deepest = f.level
			if deepest > maxHierarchyDepth {
				return deepest
			}
		}
		for i := range f.node.Children {
			stack = append(stack, frame{&f.node.Children[i], f.level + 1})
		}
	}
	return deepest
}
