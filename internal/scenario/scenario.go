// Package scenario builds ready-to-run campaigns: a generated map, two
// factions with commanders and armies, strongholds, and a small fleet. The
// same seed always yields the same starting state.
package scenario

import (
	"fmt"
	"sort"

	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/rules"
	"github.com/sims1253/kataphraktus/internal/world"
)

// Unit type catalog ids, stable across scenarios.
const (
	UnitLevyInfantry  campaign.UnitTypeID = 1
	UnitHeavyInfantry campaign.UnitTypeID = 2
	UnitLightCavalry  campaign.UnitTypeID = 3
	UnitSkirmishers   campaign.UnitTypeID = 4
	UnitFreeCompany   campaign.UnitTypeID = 5
)

// ShipCoaster is the default hull class.
const ShipCoaster campaign.ShipTypeID = 1

// Config selects what the scenario contains.
type Config struct {
	Seed       int64
	Name       string
	MapConfig  world.GenConfig
	ArmySize   int // soldiers per starting army
	FleetSize  int // ships per faction with coastal access
}

// Default returns the standard two-faction scenario.
func Default(seed int64) Config {
	mapCfg := world.DefaultGenConfig()
	mapCfg.Seed = seed
	return Config{
		Seed:      seed,
		Name:      fmt.Sprintf("campaign-%d", seed),
		MapConfig: mapCfg,
		ArmySize:  4000,
		FleetSize: 1,
	}
}

// Small returns a compact scenario for tests.
func Small(seed int64) Config {
	cfg := Default(seed)
	cfg.MapConfig = world.SmallTestConfig()
	cfg.MapConfig.Seed = seed
	cfg.ArmySize = 1000
	cfg.FleetSize = 0
	return cfg
}

// Build assembles the campaign.
func Build(cfg Config, ruleset *rules.Config) *campaign.Campaign {
	if ruleset == nil {
		ruleset = rules.Default()
	}
	m := world.Generate(cfg.MapConfig)
	c := campaign.New(campaign.CampaignID(cfg.Seed), cfg.Name, m, ruleset.Supply.ForagingLimitPerSeason)

	addUnitTypes(c)
	addShipTypes(c)

	red := c.NextFaction()
	c.Factions[red] = &campaign.Faction{ID: red, Name: "Red Banner", Color: "red"}
	blue := c.NextFaction()
	c.Factions[blue] = &campaign.Faction{ID: blue, Name: "Blue Banner", Color: "blue"}

	settled := settledHexes(m)
	if len(settled) < 2 {
		return c
	}
	// Opposite ends of the settled list keep the factions apart.
	redHome := settled[0]
	blueHome := settled[len(settled)-1]

	claimTerritory(c, m, red, redHome)
	claimTerritory(c, m, blue, blueHome)

	addStronghold(c, ruleset, red, "Rubrum", redHome, campaign.StrongholdCity)
	addStronghold(c, ruleset, blue, "Caeruleum", blueHome, campaign.StrongholdCity)

	addCommanderWithArmy(c, ruleset, red, "Marshal Aldric", redHome, cfg.ArmySize, []string{campaign.TraitLogistician})
	addCommanderWithArmy(c, ruleset, blue, "Strategos Irene", blueHome, cfg.ArmySize, []string{campaign.TraitRanger})

	if cfg.FleetSize > 0 {
		addFleets(c, m, cfg.FleetSize)
	}
	return c
}

func addUnitTypes(c *campaign.Campaign) {
	types := []*campaign.UnitType{
		{ID: UnitLevyInfantry, Name: "levy infantry", Category: "infantry", BattleMultiplier: 1.0, CanTravelOffroad: true},
		{ID: UnitHeavyInfantry, Name: "heavy infantry", Category: "infantry", BattleMultiplier: 1.5, CanTravelOffroad: true},
		{ID: UnitLightCavalry, Name: "light cavalry", Category: "cavalry", BattleMultiplier: 1.5, CanTravelOffroad: true},
		{ID: UnitSkirmishers, Name: "skirmishers", Category: "infantry", BattleMultiplier: 1.0, CanTravelOffroad: true, Skirmisher: true},
		{ID: UnitFreeCompany, Name: "free company", Category: "infantry", BattleMultiplier: 1.5, CanTravelOffroad: true, Mercenary: true},
	}
	for _, ut := range types {
		c.UnitTypes[ut.ID] = ut
	}
}

func addShipTypes(c *campaign.Campaign) {
	c.ShipTypes[ShipCoaster] = &campaign.ShipType{
		ID: ShipCoaster, Name: "coaster", CapacitySoldiers: 2000, CapacityCavalry: 200,
		CapacitySupplies: 20000, DailyCostLoot: 10, CanSea: true, CanRiver: false,
	}
}

// settledHexes lists hexes with settlement, sorted by id for determinism.
func settledHexes(m *world.Map) []world.HexID {
	var out []world.HexID
	for id, hx := range m.Hexes {
		if hx.Settlement > 0 {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// claimTerritory hands a faction its home hex and everything nearby.
func claimTerritory(c *campaign.Campaign, m *world.Map, faction campaign.FactionID, home world.HexID) {
	for _, id := range m.HexesInRange(home, 4) {
		st := c.State(id)
		if st.ControllingFaction == 0 {
			st.ControllingFaction = faction
		}
	}
}

func addStronghold(c *campaign.Campaign, ruleset *rules.Config, faction campaign.FactionID, name string, hex world.HexID, kind campaign.StrongholdKind) *campaign.Stronghold {
	id := campaign.StrongholdID(len(c.Strongholds) + 1)
	threshold := ruleset.StrongholdThreshold(string(kind))
	sh := &campaign.Stronghold{
		ID: id, Name: name, Hex: hex, Kind: kind,
		ControllingFaction: faction,
		DefensiveBonus:     1,
		Threshold:          threshold,
		CurrentThreshold:   threshold,
		SuppliesHeld:       50000,
		LootHeld:           5000,
	}
	c.Strongholds[id] = sh
	return sh
}

func addCommanderWithArmy(c *campaign.Campaign, ruleset *rules.Config, faction campaign.FactionID, name string, hex world.HexID, soldiers int, traits []string) *campaign.Army {
	cid := c.NextCommander()
	c.Commanders[cid] = &campaign.Commander{
		ID: cid, Name: name, Faction: faction, Hex: hex,
		Status: campaign.CommanderActive, Traits: traits,
	}

	aid := c.NextArmy()
	infantry := soldiers * 3 / 4
	cavalry := soldiers - infantry
	army := &campaign.Army{
		ID: aid, Commander: cid, Hex: hex, Status: campaign.ArmyIdle,
		Detachments: []*campaign.Detachment{
			{ID: c.NextDetachment(), UnitType: UnitHeavyInfantry, Soldiers: infantry, Wagons: soldiers / 200},
			{ID: c.NextDetachment(), UnitType: UnitLightCavalry, Soldiers: cavalry},
		},
		MoraleCurrent: ruleset.Morale.DefaultResting,
		MoraleResting: ruleset.Morale.DefaultResting,
		MoraleMax:     ruleset.Morale.DefaultMax,
		LootCarried:   1000,
		HarriedOnDay:  -1,
		LastBattleDay: -1,
	}
	c.Armies[aid] = army

	// Derived logistics fields, computed the way the engine recomputes them.
	sup := ruleset.Supply
	army.Noncombatants = int(float64(soldiers) * sup.BaseNoncombatantRatio)
	army.SuppliesCapacity = (infantry+army.Noncombatants)*sup.InfantryCapacity +
		cavalry*sup.CavalryCapacity + (soldiers/200)*sup.WagonCapacity
	army.DailyConsumption = (infantry+army.Noncombatants)*sup.InfantryConsumption +
		cavalry*sup.CavalryConsumption + (soldiers/200)*sup.WagonConsumption
	army.SuppliesCurrent = army.DailyConsumption * ruleset.Recruitment.InitialSupplyDays
	if army.SuppliesCurrent > army.SuppliesCapacity {
		army.SuppliesCurrent = army.SuppliesCapacity
	}
	return army
}

// addFleets docks one coaster per faction at its nearest coastal hex.
func addFleets(c *campaign.Campaign, m *world.Map, perFaction int) {
	coastal := make([]world.HexID, 0)
	for id, hx := range m.Hexes {
		if hx.Terrain == world.TerrainCoast {
			coastal = append(coastal, id)
		}
	}
	if len(coastal) == 0 {
		return
	}
	sort.Slice(coastal, func(i, j int) bool { return coastal[i] < coastal[j] })

	factions := make([]campaign.FactionID, 0, len(c.Factions))
	for id := range c.Factions {
		factions = append(factions, id)
	}
	sort.Slice(factions, func(i, j int) bool { return factions[i] < factions[j] })

	for i, faction := range factions {
		for n := 0; n < perFaction; n++ {
			id := c.NextShip()
			c.Ships[id] = &campaign.Ship{
				ID: id, Type: ShipCoaster, ControllingFaction: faction,
				Hex: coastal[(i+n)%len(coastal)], Status: campaign.ShipDocked,
			}
		}
	}
}
