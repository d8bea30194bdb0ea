package world

// EdgeKey identifies an undirected edge between two hexes. Build one with
// NewEdgeKey so (a, b) and (b, a) map to the same key.
type EdgeKey struct {
	A, B HexID
}

// NewEdgeKey normalizes the endpoint order.
func NewEdgeKey(a, b HexID) EdgeKey {
	if b < a {
		a, b = b, a
	}
	return EdgeKey{A: a, B: b}
}

// Road connects two adjacent hexes with a speed modifier relative to the
// standard road rate (1.0 = full road speed).
type Road struct {
	From     HexID   `json:"from"`
	To       HexID   `json:"to"`
	Modifier float64 `json:"modifier"`
}

// CrossingType classifies a river crossing.
type CrossingType string

const (
	CrossingBridge CrossingType = "bridge"
	CrossingFord   CrossingType = "ford"
)

// RiverCrossing marks a bridge or ford on the edge between two hexes. Legs
// flagged has_river_ford must match one of these or the route is invalid.
type RiverCrossing struct {
	From HexID        `json:"from"`
	To   HexID        `json:"to"`
	Type CrossingType `json:"type"`
}

// Map is the immutable-per-tick campaign topology. The engine only reads it;
// construction happens at load or scenario-generation time.
type Map struct {
	Hexes     map[HexID]*Hex
	Roads     map[EdgeKey]Road
	Crossings map[EdgeKey]RiverCrossing

	byCoord map[HexCoord]HexID
}

// NewMap builds an indexed map from its parts.
func NewMap(hexes []*Hex, roads []Road, crossings []RiverCrossing) *Map {
	m := &Map{
		Hexes:     make(map[HexID]*Hex, len(hexes)),
		Roads:     make(map[EdgeKey]Road, len(roads)),
		Crossings: make(map[EdgeKey]RiverCrossing, len(crossings)),
		byCoord:   make(map[HexCoord]HexID, len(hexes)),
	}
	for _, h := range hexes {
		m.Hexes[h.ID] = h
		m.byCoord[h.Coord] = h.ID
	}
	for _, r := range roads {
		m.Roads[NewEdgeKey(r.From, r.To)] = r
	}
	for _, c := range crossings {
		m.Crossings[NewEdgeKey(c.From, c.To)] = c
	}
	return m
}

// Hex returns the tile for id, or nil.
func (m *Map) Hex(id HexID) *Hex {
	return m.Hexes[id]
}

// HexAt returns the tile at a coordinate, or nil.
func (m *Map) HexAt(c HexCoord) *Hex {
	id, ok := m.byCoord[c]
	if !ok {
		return nil
	}
	return m.Hexes[id]
}

// HexDistance returns the straight-line hex distance between two tiles, or
// -1 when either id is unknown.
func (m *Map) HexDistance(a, b HexID) int {
	ha, hb := m.Hexes[a], m.Hexes[b]
	if ha == nil || hb == nil {
		return -1
	}
	return Distance(ha.Coord, hb.Coord)
}

// RoadBetween returns the road on the edge (a, b), if any.
func (m *Map) RoadBetween(a, b HexID) (Road, bool) {
	r, ok := m.Roads[NewEdgeKey(a, b)]
	return r, ok
}

// CrossingBetween returns the river crossing on the edge (a, b), if any.
func (m *Map) CrossingBetween(a, b HexID) (RiverCrossing, bool) {
	c, ok := m.Crossings[NewEdgeKey(a, b)]
	return c, ok
}

// Neighbors returns the ids of the existing tiles adjacent to id.
func (m *Map) Neighbors(id HexID) []HexID {
	h := m.Hexes[id]
	if h == nil {
		return nil
	}
	out := make([]HexID, 0, 6)
	for _, c := range h.Coord.Neighbors() {
		if nid, ok := m.byCoord[c]; ok {
			out = append(out, nid)
		}
	}
	return out
}

// HexesInRange returns the ids of existing tiles within radius of center,
// center included.
func (m *Map) HexesInRange(center HexID, radius int) []HexID {
	h := m.Hexes[center]
	if h == nil {
		return nil
	}
	out := make([]HexID, 0, 1+3*radius*(radius+1))
	for _, c := range CoordsInRange(h.Coord, radius) {
		if id, ok := m.byCoord[c]; ok {
			out = append(out, id)
		}
	}
	return out
}

// ShortestPathLen returns the length in hexes of the shortest path between
// two tiles walking the hex adjacency graph, or -1 when unreachable. Couriers
// use this rather than straight-line distance so map gaps lengthen routes.
func (m *Map) ShortestPathLen(from, to HexID) int {
	if m.Hexes[from] == nil || m.Hexes[to] == nil {
		return -1
	}
	if from == to {
		return 0
	}
	visited := map[HexID]bool{from: true}
	frontier := []HexID{from}
	depth := 0
	for len(frontier) > 0 {
		depth++
		var next []HexID
		for _, id := range frontier {
			for _, n := range m.Neighbors(id) {
				if visited[n] {
					continue
				}
				if n == to {
					return depth
				}
				visited[n] = true
				next = append(next, n)
			}
		}
		frontier = next
	}
	return -1
}

// ValidateSeaRoute checks that every hex of a naval route exists and is
// navigable, and that consecutive waypoints are mutually reachable over
// water. Returns the total route length in hexes.
func (m *Map) ValidateSeaRoute(start HexID, route []HexID) (int, bool) {
	current := m.Hexes[start]
	if current == nil || !current.Terrain.Navigable() {
		return 0, false
	}
	total := 0
	prev := start
	for _, id := range route {
		h := m.Hexes[id]
		if h == nil || !h.Terrain.Navigable() {
			return 0, false
		}
		leg := m.seaPathLen(prev, id)
		if leg < 0 {
			return 0, false
		}
		total += leg
		prev = id
	}
	return total, true
}

// seaPathLen is ShortestPathLen restricted to navigable tiles.
func (m *Map) seaPathLen(from, to HexID) int {
	if from == to {
		return 0
	}
	visited := map[HexID]bool{from: true}
	frontier := []HexID{from}
	depth := 0
	for len(frontier) > 0 {
		depth++
		var next []HexID
		for _, id := range frontier {
			for _, n := range m.Neighbors(id) {
				if visited[n] || !m.Hexes[n].Terrain.Navigable() {
					continue
				}
				if n == to {
					return depth
				}
				visited[n] = true
				next = append(next, n)
			}
		}
		frontier = next
	}
	return -1
}
