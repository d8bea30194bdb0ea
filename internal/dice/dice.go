// Package dice provides seeded deterministic randomness for campaign
// resolution. Every roll is derived from a seed string built out of game
// state, so replaying a tick from the same snapshot reproduces every
// stochastic outcome exactly.
package dice

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
)

// Seed builds the canonical seed string for one stochastic event. The same
// (campaign, day, part, context) always yields the same seed.
func Seed(campaignID int64, day int, part string, context string) string {
	return fmt.Sprintf("%d:%d:%s:%s", campaignID, day, part, context)
}

func seedToInt(seed string) int64 {
	digest := sha256.Sum256([]byte(seed))
	return int64(binary.BigEndian.Uint64(digest[:8]))
}

var notationRe = regexp.MustCompile(`^(\d+)d(\d+)$`)

// Parse splits dice notation like "2d6" into count and sides.
func Parse(notation string) (count, sides int, err error) {
	m := notationRe.FindStringSubmatch(notation)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid dice notation %q", notation)
	}
	count, _ = strconv.Atoi(m[1])
	sides, _ = strconv.Atoi(m[2])
	if count <= 0 || sides <= 0 {
		return 0, 0, fmt.Errorf("invalid dice notation %q", notation)
	}
	return count, sides, nil
}

// Roll is the result of one dice draw.
type Roll struct {
	Notation string `json:"notation"`
	Rolls    []int  `json:"rolls"`
	Total    int    `json:"total"`
	Seed     string `json:"seed"`
	Fixed    bool   `json:"fixed,omitempty"`
}

// Source draws dice. Implementations must be deterministic in the seed: the
// same seed and notation always produce the same roll.
type Source interface {
	// Roll draws dice for the seed. When fixed is non-nil the draw is
	// skipped and the supplied total is used instead, flagged as fixed.
	Roll(seed, notation string, fixed *int) (Roll, error)
}

// Seeded is the standard deterministic source. It is stateless; each call
// derives a fresh generator from the seed.
type Seeded struct{}

// NewSource returns the default seeded source.
func NewSource() Source { return Seeded{} }

func (Seeded) Roll(seed, notation string, fixed *int) (Roll, error) {
	count, sides, err := Parse(notation)
	if err != nil {
		return Roll{}, err
	}
	if fixed != nil {
		return Roll{Notation: notation, Rolls: []int{*fixed}, Total: *fixed, Seed: seed, Fixed: true}, nil
	}
	rng := rand.New(rand.NewSource(seedToInt(seed)))
	rolls := make([]int, count)
	total := 0
	for i := range rolls {
		rolls[i] = rng.Intn(sides) + 1
		total += rolls[i]
	}
	return Roll{Notation: notation, Rolls: rolls, Total: total, Seed: seed}, nil
}

// Scripted replays a fixed sequence of totals, for tests that need to force
// outcomes without threading fixed rolls through every call site.
type Scripted struct {
	Totals []int
	next   int
}

func (s *Scripted) Roll(seed, notation string, fixed *int) (Roll, error) {
	if _, _, err := Parse(notation); err != nil {
		return Roll{}, err
	}
	if fixed != nil {
		return Roll{Notation: notation, Rolls: []int{*fixed}, Total: *fixed, Seed: seed, Fixed: true}, nil
	}
	if s.next >= len(s.Totals) {
		return Roll{}, fmt.Errorf("scripted source exhausted after %d rolls", len(s.Totals))
	}
	total := s.Totals[s.next]
	s.next++
	return Roll{Notation: notation, Rolls: []int{total}, Total: total, Seed: seed}, nil
}

// Check is the result of a probability check resolved through dice.
type Check struct {
	Roll
	Target      int     `json:"target"`
	Probability float64 `json:"probability"`
	Success     bool    `json:"success"`
}

// CheckSuccess rolls the notation and succeeds when the total meets the
// minimal target whose meet-or-beat chance is at least probability. Dice are
// used instead of a uniform draw so outcomes stay in table-legible terms.
func CheckSuccess(src Source, seed string, probability float64, notation string, fixed *int) (Check, error) {
	if probability < 0 || probability > 1 {
		return Check{}, fmt.Errorf("probability %v out of range", probability)
	}
	count, sides, err := Parse(notation)
	if err != nil {
		return Check{}, err
	}
	target := thresholdFor(probability, count, sides)
	roll, err := src.Roll(seed, notation, fixed)
	if err != nil {
		return Check{}, err
	}
	return Check{
		Roll:        roll,
		Target:      target,
		Probability: probability,
		Success:     roll.Total >= target,
	}, nil
}

// thresholdFor finds the minimal target T with P(NdM >= T) >= probability.
func thresholdFor(probability float64, count, sides int) int {
	minRoll := count
	maxRoll := count * sides
	if probability <= 0 {
		return maxRoll + 1
	}
	if probability >= 1 {
		return minRoll
	}

	pmf := map[int]int{0: 1}
	for i := 0; i < count; i++ {
		next := make(map[int]int)
		for total, n := range pmf {
			for face := 1; face <= sides; face++ {
				next[total+face] += n
			}
		}
		pmf = next
	}
	outcomes := 1
	for i := 0; i < count; i++ {
		outcomes *= sides
	}

	cumulative := 0.0
	for target := maxRoll; target >= minRoll; target-- {
		cumulative += float64(pmf[target]) / float64(outcomes)
		if cumulative >= probability {
			return target
		}
	}
	return maxRoll + 1
}
