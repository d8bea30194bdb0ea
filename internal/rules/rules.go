// Package rules holds the numeric constants of the campaign ruleset.
// Every subsystem reads its tuning values from here so that a campaign can
// swap in a custom ruleset without touching engine code.
package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Supply covers carrying capacity, consumption, and forage/torch behaviour.
type Supply struct {
	InfantryCapacity          int     `yaml:"infantry_capacity"`
	CavalryCapacity           int     `yaml:"cavalry_capacity"`
	WagonCapacity             int     `yaml:"wagon_capacity"`
	InfantryConsumption       int     `yaml:"infantry_consumption"`
	CavalryConsumption        int     `yaml:"cavalry_consumption"`
	WagonConsumption          int     `yaml:"wagon_consumption"`
	BaseNoncombatantRatio     float64 `yaml:"base_noncombatant_ratio"`
	SpartanRatio              float64 `yaml:"spartan_ratio"`
	ForagingMultiplier        int     `yaml:"foraging_multiplier"`
	ForagingLimitPerSeason    int     `yaml:"foraging_limit_per_season"`
	TorchRevoltChance         int     `yaml:"torch_revolt_chance"`          // out of 6
	ForageRevoltChanceRepeat  int     `yaml:"forage_revolt_chance_repeat"`  // out of 6
	RevoltHostileModifier     int     `yaml:"revolt_hostile_modifier"`      // +N when in hostile territory
	RevoltCooldownDays        int     `yaml:"revolt_cooldown_days"`
	TorchedYieldRecoveryDays  int     `yaml:"torched_yield_recovery_days"`
}

// Morale covers the 2d6 morale economy.
type Morale struct {
	DefaultResting              int `yaml:"default_resting"`
	DefaultMax                  int `yaml:"default_max"`
	Floor                       int `yaml:"floor"`
	ForcedMarchLossPerWeek      int `yaml:"forced_march_loss_per_week"`
	StarvationLossPerDay        int `yaml:"starvation_loss_per_day"`
	StarvationDissolutionDays   int `yaml:"starvation_dissolution_days"`
}

// Movement covers march rates in miles per day and night misdirection.
type Movement struct {
	RoadStandardMilesPerDay   int     `yaml:"road_standard_miles_per_day"`
	RoadForcedMilesPerDay     int     `yaml:"road_forced_miles_per_day"`
	OffroadStandardMilesPerDay int    `yaml:"offroad_standard_miles_per_day"`
	OffroadForcedMilesPerDay  int     `yaml:"offroad_forced_miles_per_day"`
	NightMilesPerDay          int     `yaml:"night_miles_per_day"`
	NightForcedMilesPerDay    int     `yaml:"night_forced_miles_per_day"`
	CavalryForcedMultiplier   int     `yaml:"cavalry_forced_multiplier"`
	ColumnLengthThreshold     float64 `yaml:"column_length_threshold"` // miles
	ColumnCappedStandardSpeed int     `yaml:"column_capped_standard_speed"`
	ColumnCappedForcedSpeed   int     `yaml:"column_capped_forced_speed"`
	NightWrongForkChance      int     `yaml:"night_wrong_fork_chance"`   // out of 6
	OffroadWrongForkChance    int     `yaml:"offroad_wrong_fork_chance"` // out of 6
	SupplyCostPerHex          int     `yaml:"supply_cost_per_hex"`       // per 1000 column heads
}

// Visibility covers scouting and forage radii.
type Visibility struct {
	BaseRadius             int `yaml:"base_radius"`
	CavalryBonus           int `yaml:"cavalry_bonus"`
	OutriderBonus          int `yaml:"outrider_bonus"`
	BadWeatherPenalty      int `yaml:"bad_weather_penalty"`
	VeryBadWeatherPenalty  int `yaml:"very_bad_weather_penalty"`
}

// Battle covers field battle and assault resolution.
type Battle struct {
	RoutThreshold              int     `yaml:"rout_threshold"`
	RetreatHexesMin            int     `yaml:"retreat_hexes_min"`
	RetreatHexesMax            int     `yaml:"retreat_hexes_max"`
	RetreatSupplyLossDie       int     `yaml:"retreat_supply_loss_die"`
	RetreatSupplyLossMultiplier int    `yaml:"retreat_supply_loss_multiplier"` // percent per pip
	CaptureChanceMinor         int     `yaml:"capture_chance_minor"` // out of 6, diff 4-5
	CaptureChanceMajor         int     `yaml:"capture_chance_major"` // out of 6, diff 6+
	NumericBonusRatio          float64 `yaml:"numeric_bonus_ratio"`
	AssaultAttackerPenalty     int     `yaml:"assault_attacker_penalty"`
	AssaultLossFraction        float64 `yaml:"assault_loss_fraction"`
	CommanderEscapeThreshold   int     `yaml:"commander_escape_threshold"` // 1d6 <= escapes
}

// Siege covers siege initiation and weekly progression.
type Siege struct {
	TownThreshold                  int `yaml:"town_threshold"`
	CityThreshold                  int `yaml:"city_threshold"`
	FortressThreshold              int `yaml:"fortress_threshold"`
	WeeklyModifier                 int `yaml:"weekly_modifier"`
	DiseaseModifier                int `yaml:"disease_modifier"`
	ResupplyModifier               int `yaml:"resupply_modifier"`
	AttackedModifier               int `yaml:"attacked_modifier"`
	EngineReductionPerDetachment   int `yaml:"engine_reduction_per_detachment"`
	AdvanceIntervalDays            int `yaml:"advance_interval_days"`
}

// Naval covers fleet speeds and embarkation timing.
type Naval struct {
	FriendlyMilesPerDay int     `yaml:"friendly_miles_per_day"`
	HostileMilesPerDay  int     `yaml:"hostile_miles_per_day"`
	RiverineMilesPerDay int     `yaml:"riverine_miles_per_day"`
	EmbarkDays          float64 `yaml:"embark_days"`
	DisembarkDays       float64 `yaml:"disembark_days"`
}

// Messaging covers courier speeds and interception odds per territory type.
type Messaging struct {
	FriendlyMilesPerDay        int `yaml:"friendly_miles_per_day"`
	NeutralMilesPerDay         int `yaml:"neutral_miles_per_day"`
	HostileMilesPerDay         int `yaml:"hostile_miles_per_day"`
	FriendlySuccessNumerator   int `yaml:"friendly_success_numerator"`
	FriendlySuccessDenominator int `yaml:"friendly_success_denominator"`
	NeutralSuccessNumerator    int `yaml:"neutral_success_numerator"`
	NeutralSuccessDenominator  int `yaml:"neutral_success_denominator"`
	HostileSuccessNumerator    int `yaml:"hostile_success_numerator"`
	HostileSuccessDenominator  int `yaml:"hostile_success_denominator"`
}

// Mercenaries covers contract upkeep and desertion.
type Mercenaries struct {
	InfantryUpkeepPerDay        int `yaml:"infantry_upkeep_per_day"`
	CavalryUpkeepPerDay         int `yaml:"cavalry_upkeep_per_day"`
	GraceDaysWithoutPay         int `yaml:"grace_days_without_pay"`
	MoralePenaltyUnpaid         int `yaml:"morale_penalty_unpaid"`
	DesertionChanceNumerator    int `yaml:"desertion_chance_numerator"`
	DesertionChanceDenominator  int `yaml:"desertion_chance_denominator"`
}

// Operations covers covert mission difficulty.
type Operations struct {
	BaseSuccessTarget        int `yaml:"base_success_target"` // 2d6 >= target
	SimpleModifier           int `yaml:"simple_modifier"`
	ComplexModifier          int `yaml:"complex_modifier"`
	HostileTerritoryModifier int `yaml:"hostile_territory_modifier"`
	DefaultLootCost          int `yaml:"default_loot_cost"`
	MultiTickComplexDays     int `yaml:"multi_tick_complex_days"`
}

// Recruitment covers muster timing and revolt risk.
type Recruitment struct {
	MusterDurationDays     int `yaml:"muster_duration_days"`
	CooldownDays           int `yaml:"cooldown_days"`
	RevoltChance           int `yaml:"revolt_chance"` // out of 6
	RecentlyConqueredDays  int `yaml:"recently_conquered_days"`
	RevoltInfantryDieSize  int `yaml:"revolt_infantry_die_size"`
	RevoltInfantryMultiplier int `yaml:"revolt_infantry_multiplier"`
	InitialSupplyDays      int `yaml:"initial_supply_days"`
}

// Harrying covers detachment raids against enemy columns.
type Harrying struct {
	BaseSuccessThreshold int     `yaml:"base_success_threshold"` // 1d6 <= threshold+modifiers
	KillFraction         float64 `yaml:"kill_fraction"`
	FailureLossFraction  float64 `yaml:"failure_loss_fraction"`
}

// Config is the top-level ruleset consumed by every resolver.
type Config struct {
	Supply      Supply      `yaml:"supply"`
	Morale      Morale      `yaml:"morale"`
	Movement    Movement    `yaml:"movement"`
	Visibility  Visibility  `yaml:"visibility"`
	Battle      Battle      `yaml:"battle"`
	Siege       Siege       `yaml:"siege"`
	Naval       Naval       `yaml:"naval"`
	Messaging   Messaging   `yaml:"messaging"`
	Mercenaries Mercenaries `yaml:"mercenaries"`
	Operations  Operations  `yaml:"operations"`
	Recruitment Recruitment `yaml:"recruitment"`
	Harrying    Harrying    `yaml:"harrying"`
}

// Default returns the stock ruleset.
func Default() *Config {
	return &Config{
		Supply: Supply{
			InfantryCapacity:         15,
			CavalryCapacity:          75,
			WagonCapacity:            1000,
			InfantryConsumption:      1,
			CavalryConsumption:       10,
			WagonConsumption:         10,
			BaseNoncombatantRatio:    0.25,
			SpartanRatio:             0.125,
			ForagingMultiplier:       500,
			ForagingLimitPerSeason:   5,
			TorchRevoltChance:        1,
			ForageRevoltChanceRepeat: 2,
			RevoltHostileModifier:    1,
			RevoltCooldownDays:       365,
			TorchedYieldRecoveryDays: 90,
		},
		Morale: Morale{
			DefaultResting:            9,
			DefaultMax:                12,
			Floor:                     2,
			ForcedMarchLossPerWeek:    1,
			StarvationLossPerDay:      1,
			StarvationDissolutionDays: 14,
		},
		Movement: Movement{
			RoadStandardMilesPerDay:    12,
			RoadForcedMilesPerDay:      18,
			OffroadStandardMilesPerDay: 6,
			OffroadForcedMilesPerDay:   9,
			NightMilesPerDay:           6,
			NightForcedMilesPerDay:     12,
			CavalryForcedMultiplier:    2,
			ColumnLengthThreshold:      6.0,
			ColumnCappedStandardSpeed:  6,
			ColumnCappedForcedSpeed:    12,
			NightWrongForkChance:       2,
			OffroadWrongForkChance:     1,
			SupplyCostPerHex:           1,
		},
		Visibility: Visibility{
			BaseRadius:            1,
			CavalryBonus:          1,
			OutriderBonus:         1,
			BadWeatherPenalty:     1,
			VeryBadWeatherPenalty: 2,
		},
		Battle: Battle{
			RoutThreshold:               2,
			RetreatHexesMin:             1,
			RetreatHexesMax:             6,
			RetreatSupplyLossDie:        6,
			RetreatSupplyLossMultiplier: 10,
			CaptureChanceMinor:          1,
			CaptureChanceMajor:          2,
			NumericBonusRatio:           0.1,
			AssaultAttackerPenalty:      1,
			AssaultLossFraction:         0.10,
			CommanderEscapeThreshold:    3,
		},
		Siege: Siege{
			TownThreshold:                10,
			CityThreshold:                15,
			FortressThreshold:            20,
			WeeklyModifier:               -1,
			DiseaseModifier:              -1,
			ResupplyModifier:             2,
			AttackedModifier:             1,
			EngineReductionPerDetachment: 1,
			AdvanceIntervalDays:          7,
		},
		Naval: Naval{
			FriendlyMilesPerDay: 48,
			HostileMilesPerDay:  36,
			RiverineMilesPerDay: 36,
			EmbarkDays:          1,
			DisembarkDays:       1,
		},
		Messaging: Messaging{
			FriendlyMilesPerDay:        48,
			NeutralMilesPerDay:         42,
			HostileMilesPerDay:         36,
			FriendlySuccessNumerator:   19,
			FriendlySuccessDenominator: 20,
			NeutralSuccessNumerator:    11,
			NeutralSuccessDenominator:  12,
			HostileSuccessNumerator:    5,
			HostileSuccessDenominator:  6,
		},
		Mercenaries: Mercenaries{
			InfantryUpkeepPerDay:       1,
			CavalryUpkeepPerDay:        3,
			GraceDaysWithoutPay:        3,
			MoralePenaltyUnpaid:        1,
			DesertionChanceNumerator:   1,
			DesertionChanceDenominator: 6,
		},
		Operations: Operations{
			BaseSuccessTarget:        7,
			SimpleModifier:           2,
			ComplexModifier:          -2,
			HostileTerritoryModifier: -1,
			DefaultLootCost:          100,
			MultiTickComplexDays:     3,
		},
		Recruitment: Recruitment{
			MusterDurationDays:       30,
			CooldownDays:             365,
			RevoltChance:             1,
			RecentlyConqueredDays:    90,
			RevoltInfantryDieSize:    20,
			RevoltInfantryMultiplier: 500,
			InitialSupplyDays:        14,
		},
		Harrying: Harrying{
			BaseSuccessThreshold: 2,
			KillFraction:         0.20,
			FailureLossFraction:  0.20,
		},
	}
}

// Load reads a YAML ruleset file layered over the defaults, so a file only
// needs to spell out the values it changes.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruleset: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse ruleset: %w", err)
	}
	return cfg, nil
}

// StrongholdThreshold returns the starting siege threshold for a stronghold
// class name (town, city, fortress).
func (c *Config) StrongholdThreshold(kind string) int {
	switch kind {
	case "city":
		return c.Siege.CityThreshold
	case "fortress":
		return c.Siege.FortressThreshold
	default:
		return c.Siege.TownThreshold
	}
}
