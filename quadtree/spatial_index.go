package quadtree

import "github.com/aukilabs/quadmap/geometry"

type DebugInfo struct {
	Region     geometry.Region `json:"region"`
	Capacity   int             `json:"capacity"`
	PointCount int             `json:"point_count"`
	NodeCount  int             `json:"node_count"`
	LeafCount  int             `json:"leaf_count"`
	MaxDepth   int             `json:"max_depth"`
}

type SpatialIndex interface {
	InsertPoint(p geometry.Point)
	RemovePoint(p geometry.Point)
	QueryRegion(r geometry.Region) []geometry.Point
	Size() int

	// debug stuff:
	DebugInfo() DebugInfo
}
