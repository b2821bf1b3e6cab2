package models

import (
	"sync"
	"time"

	"github.com/aukilabs/quadmap/geometry"
	"github.com/aukilabs/quadmap/quadtree"
	"github.com/google/uuid"
)

// PointMap is a point set indexed by a quadtree and shared between the
// clients that read it. It dispatches frames to registered handlers at a
// fixed rate.
type PointMap struct {
	ID string

	treeMutex sync.RWMutex
	tree      *quadtree.Quadtree

	startFrameOnce  sync.Once
	closeFrameChan  chan struct{}
	frameTicker     *time.Ticker
	frameHandlerIDs SequentialIDGenerator
	frameHandlers   map[uint32]func()
	frameMutex      sync.RWMutex

	closeOnce sync.Once
}

// NewPointMap creates an empty point map over region. Capacity is the leaf
// capacity of the underlying quadtree.
func NewPointMap(region geometry.Region, capacity int, frameDuration time.Duration) *PointMap {
	return &PointMap{
		ID:             uuid.New().String(),
		tree:           quadtree.FromRegion(region, capacity),
		closeFrameChan: make(chan struct{}, 1),
		frameTicker:    time.NewTicker(frameDuration),
		frameHandlers:  make(map[uint32]func()),
	}
}

func (m *PointMap) Close() {
	m.closeOnce.Do(func() {
		m.frameTicker.Stop()
		m.closeFrameChan <- struct{}{}
		instrumentDeleteMap(m.ID)
	})
}

func (m *PointMap) Region() geometry.Region {
	m.treeMutex.RLock()
	defer m.treeMutex.RUnlock()

	return m.tree.Region()
}

// Insert adds points to the map. Points outside the map region are ignored.
func (m *PointMap) Insert(points ...geometry.Point) {
	m.treeMutex.Lock()
	defer m.treeMutex.Unlock()

	for _, p := range points {
		m.tree.InsertPoint(p)
	}
	instrumentPointCount(m.ID, m.tree.Size())
}

func (m *PointMap) Remove(points ...geometry.Point) {
	m.treeMutex.Lock()
	defer m.treeMutex.Unlock()

	for _, p := range points {
		m.tree.RemovePoint(p)
	}
	instrumentPointCount(m.ID, m.tree.Size())
}

func (m *PointMap) Query(r geometry.Region) []geometry.Point {
	m.treeMutex.RLock()
	defer m.treeMutex.RUnlock()

	return m.tree.QueryRegion(r)
}

func (m *PointMap) Len() int {
	m.treeMutex.RLock()
	defer m.treeMutex.RUnlock()

	return m.tree.Size()
}

func (m *PointMap) Clear() {
	m.treeMutex.Lock()
	defer m.treeMutex.Unlock()

	m.tree.Clear()
	instrumentPointCount(m.ID, 0)
}

// Balance collapses the sparse parts of the underlying quadtree.
func (m *PointMap) Balance() {
	m.treeMutex.Lock()
	defer m.treeMutex.Unlock()

	m.tree.Balance()
}

// Snapshot returns a copy of the underlying quadtree that can be encoded
// without holding the map.
func (m *PointMap) Snapshot() *quadtree.Quadtree {
	m.treeMutex.RLock()
	defer m.treeMutex.RUnlock()

	return m.tree.Clone()
}

func (m *PointMap) DebugInfo() quadtree.DebugInfo {
	m.treeMutex.RLock()
	defer m.treeMutex.RUnlock()

	return m.tree.DebugInfo()
}

// HandleFrame registers h to be called on every frame. Handlers must not
// call the returned cancel function themselves.
func (m *PointMap) HandleFrame(h func()) (cancel func()) {
	m.frameMutex.Lock()
	defer m.frameMutex.Unlock()

	id := m.frameHandlerIDs.New()
	m.frameHandlers[id] = h
	instrumentFrameHandlers(m.ID, len(m.frameHandlers))

	return func() {
		m.frameMutex.Lock()
		defer m.frameMutex.Unlock()

		if _, ok := m.frameHandlers[id]; !ok {
			return
		}
		delete(m.frameHandlers, id)
		m.frameHandlerIDs.Reuse(id)
		instrumentFrameHandlers(m.ID, len(m.frameHandlers))
	}
}

// StartDispatchFrames calls the frame handlers on each tick until the map is
// closed. It blocks.
func (m *PointMap) StartDispatchFrames() {
	m.startFrameOnce.Do(func() {
		for {
			select {
			case <-m.closeFrameChan:
				return

			case <-m.frameTicker.C:
				m.frameMutex.RLock()
				for _, h := range m.frameHandlers {
					h()
				}
				m.frameMutex.RUnlock()
			}
		}
	})
}
