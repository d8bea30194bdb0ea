// Map generation using layered simplex noise. Produces the static campaign
// topology: terrain, settlement density, roads between settled hexes, and
// fords where roads meet water.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds map generation parameters.
type GenConfig struct {
	Radius      int     // Hex grid radius (~10 for ~330 hexes)
	Seed        int64   // Random seed (0 = random)
	SeaLevel    float64 // Elevation threshold for open water (0.0–1.0)
	MountainLvl float64 // Elevation threshold for mountains (0.0–1.0)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:      10,
		Seed:        0,
		SeaLevel:    0.25,
		MountainLvl: 0.72,
	}
}

// SmallTestConfig returns a tiny map for rapid iteration and tests.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:      5,
		Seed:        42,
		SeaLevel:    0.20,
		MountainLvl: 0.80,
	}
}

// Generate creates a complete campaign map. The same config always yields
// the same map.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// Independent noise layers for elevation and fertility.
	elevNoise := opensimplex.NewNormalized(seed)
	fertNoise := opensimplex.NewNormalized(seed + 1)

	var hexes []*Hex
	nextID := HexID(1)

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			s := -q - r
			// Cube coordinate constraint: max(|q|,|r|,|s|) <= radius
			maxCoord := abs(q)
			if abs(r) > maxCoord {
				maxCoord = abs(r)
			}
			if abs(s) > maxCoord {
				maxCoord = abs(s)
			}
			if maxCoord > cfg.Radius {
				continue
			}

			coord := HexCoord{Q: q, R: r}

			// Hex axial → cartesian for noise sampling.
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0

			elev := octaveNoise(elevNoise, x, y, 4, 0.08, 0.5)
			fert := octaveNoise(fertNoise, x, y, 3, 0.06, 0.5)

			// Continental shaping: lower elevation near the rim for a sea border.
			distFromCenter := math.Sqrt(x*x+y*y) / float64(cfg.Radius)
			edgeFalloff := 1.0 - math.Pow(distFromCenter, 3.5)
			if edgeFalloff < 0 {
				edgeFalloff = 0
			}
			elev *= edgeFalloff

			terrain := deriveTerrain(elev, fert, cfg)

			hexes = append(hexes, &Hex{
				ID:          nextID,
				Coord:       coord,
				Terrain:     terrain,
				Settlement:  settlementFor(terrain, fert),
				GoodCountry: terrain == TerrainFlatland && fert > 0.6,
			})
			nextID++
		}
	}

	m := NewMap(hexes, nil, nil)
	markCoastalHexes(m)
	placeRoads(m, seed)
	return m
}

// deriveTerrain determines terrain type from environmental parameters.
func deriveTerrain(elev, fert float64, cfg GenConfig) Terrain {
	switch {
	case elev < cfg.SeaLevel:
		return TerrainWater
	case elev > cfg.MountainLvl:
		return TerrainMountain
	case fert > 0.55 && elev > 0.5:
		return TerrainForest
	case elev > 0.55:
		return TerrainHills
	default:
		return TerrainFlatland
	}
}

// settlementFor assigns a population proxy used for forage yield and
// recruitment. Flatland carries the bulk of the settled population.
func settlementFor(terrain Terrain, fert float64) int {
	switch terrain {
	case TerrainFlatland:
		return int(200 + fert*800)
	case TerrainHills:
		return int(fert * 300)
	case TerrainForest:
		return int(fert * 150)
	case TerrainCoast:
		return int(100 + fert*300)
	default:
		return 0
	}
}

// markCoastalHexes converts land hexes adjacent to open water into coast.
func markCoastalHexes(m *Map) {
	var toMark []HexID
	for id, hex := range m.Hexes {
		if hex.Terrain == TerrainWater || hex.Terrain == TerrainMountain {
			continue
		}
		for _, nid := range m.Neighbors(id) {
			if m.Hexes[nid].Terrain == TerrainWater {
				toMark = append(toMark, id)
				break
			}
		}
	}
	for _, id := range toMark {
		m.Hexes[id].Terrain = TerrainCoast
	}
}

// placeRoads connects the most settled hexes with roads, stepping greedily
// toward each destination. Road edges crossing water become fords.
func placeRoads(m *Map, seed int64) {
	rng := rand.New(rand.NewSource(seed + 100))

	// Candidate endpoints: well-settled tiles.
	var towns []HexID
	for id, hex := range m.Hexes {
		if hex.Settlement >= 600 {
			towns = append(towns, id)
		}
	}
	if len(towns) < 2 {
		return
	}
	rng.Shuffle(len(towns), func(i, j int) { towns[i], towns[j] = towns[j], towns[i] })

	for i := 0; i+1 < len(towns); i++ {
		traceRoad(m, towns[i], towns[i+1])
	}
}

// traceRoad walks from a to b choosing the neighbor closest to the target,
// laying road edges as it goes.
func traceRoad(m *Map, a, b HexID) {
	current := a
	target := m.Hexes[b].Coord
	for steps := 0; steps < 100 && current != b; steps++ {
		var best HexID
		bestDist := math.MaxInt32
		for _, nid := range m.Neighbors(current) {
			d := Distance(m.Hexes[nid].Coord, target)
			if d < bestDist {
				bestDist = d
				best = nid
			}
		}
		if bestDist == math.MaxInt32 {
			return
		}
		key := NewEdgeKey(current, best)
		if m.Hexes[best].Terrain == TerrainWater {
			m.Crossings[key] = RiverCrossing{From: current, To: best, Type: CrossingFord}
		} else {
			m.Roads[key] = Road{From: current, To: best, Modifier: 1.0}
			m.Hexes[current].HasRoad = true
			m.Hexes[best].HasRoad = true
		}
		current = best
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, hex := range m.Hexes {
		counts[hex.Terrain]++
	}
	return counts
}
