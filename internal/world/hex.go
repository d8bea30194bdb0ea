// Package world provides the hex map graph: tiles, roads, river crossings,
// and the spatial queries the rules engine runs against them.
// Uses axial coordinates (q, r) for the hex grid; one hex spans six miles.
package world

// HexMiles is the width of one hex in miles.
const HexMiles = 6

// HexID identifies a tile within a campaign map.
type HexID int64

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Terrain types for hex tiles.
type Terrain uint8

const (
	TerrainFlatland Terrain = iota // Open country, best settlement yields
	TerrainHills
	TerrainForest
	TerrainMountain
	TerrainCoast // Land tile adjacent to sea, navigable by ship
	TerrainWater // Open sea or major river, impassable except by ship
)

var terrainNames = [...]string{"flatland", "hills", "forest", "mountain", "coast", "water"}

// Name returns the lowercase terrain name.
func (t Terrain) Name() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return "unknown"
}

// Navigable reports whether ships can enter this terrain.
func (t Terrain) Navigable() bool {
	return t == TerrainWater || t == TerrainCoast
}

// Hex is a single tile of static campaign topology. Mutable per-campaign
// state (torching, forage counters, control) lives on campaign.HexState.
type Hex struct {
	ID          HexID    `json:"id"`
	Coord       HexCoord `json:"coord"`
	Terrain     Terrain  `json:"terrain"`
	Settlement  int      `json:"settlement"`   // population proxy; drives forage yield and recruitment
	GoodCountry bool     `json:"good_country"` // horse country: contributes cavalry and wagons when mustering
	HasRoad     bool     `json:"has_road"`
}

// hexNeighborDirections defines the six neighbor offsets in axial coordinates.
var hexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range hexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	max := dq
	if dr > max {
		max = dr
	}
	if ds > max {
		max = ds
	}
	return max
}

// CoordsInRange returns every coordinate within radius of center, center
// included. Used for forage radii and torch spread.
func CoordsInRange(center HexCoord, radius int) []HexCoord {
	if radius < 0 {
		return nil
	}
	coords := make([]HexCoord, 0, 1+3*radius*(radius+1))
	for q := -radius; q <= radius; q++ {
		lo := maxInt(-radius, -q-radius)
		hi := minInt(radius, -q+radius)
		for r := lo; r <= hi; r++ {
			coords = append(coords, HexCoord{Q: center.Q + q, R: center.R + r})
		}
	}
	return coords
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
