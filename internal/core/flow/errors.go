// Package flow defines domain-specific errors
package flow

import "errors"

var (
	// Flow errors
	ErrInvalidFlowID      = errors.New("invalid flow ID")
	ErrFlowNotFound       = errors.New("flow not found")
	ErrMissingStartNode   = errors.New("flow has no start node")
	ErrDuplicateStartNode = errors.New("flow has more than one start node")

	// Node errors
	ErrNilNode          = errors.New("node cannot be nil")
	ErrInvalidNodeID    = errors.New("invalid node ID")
	ErrUnknownNodeType  = errors.New("unknown node type")
	ErrNilNodeData      = errors.New("node data cannot be nil")
	ErrNodeDataMismatch = errors.New("node data does not match node type")
	ErrNodeNotFound     = errors.New("node not found")
	ErrDuplicateNode    = errors.New("duplicate node ID")

	// Edge errors
	ErrNilEdge             = errors.New("edge cannot be nil")
	ErrInvalidSource       = errors.New("invalid source node")
	ErrInvalidTarget       = errors.New("invalid target node")
	ErrInvalidSourceHandle = errors.New("invalid source handle")
	ErrSourceNodeNotFound  = errors.New("source node not found")
	ErrTargetNodeNotFound  = errors.New("target node not found")
	ErrDuplicateEdge       = errors.New("duplicate edge")
)
