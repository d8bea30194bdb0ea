// Command kataphract runs a campaign: generate a world, load or create state,
// tick days forward, and serve the player API.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sims1253/kataphraktus/internal/api"
	"github.com/sims1253/kataphraktus/internal/campaign"
	"github.com/sims1253/kataphraktus/internal/engine"
	"github.com/sims1253/kataphraktus/internal/persistence"
	"github.com/sims1253/kataphraktus/internal/rules"
	"github.com/sims1253/kataphraktus/internal/scenario"
	"github.com/sims1253/kataphraktus/internal/world"
)

type config struct {
	DBPath   string `env:"KATAPHRACT_DB" envDefault:"kataphract.db"`
	Rules    string `env:"KATAPHRACT_RULES"`
	Seed     int64  `env:"KATAPHRACT_SEED" envDefault:"1453"`
	Port     int    `env:"KATAPHRACT_PORT" envDefault:"8080"`
	AdminKey string `env:"KATAPHRACT_ADMIN_KEY"`
	LogLevel string `env:"KATAPHRACT_LOG_LEVEL" envDefault:"info"`
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var cfg config
	root := &cobra.Command{
		Use:           "kataphract",
		Short:         "Operational wargame campaign engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Parse(&cfg); err != nil {
				return fmt.Errorf("parse environment: %w", err)
			}
			setupLogging(cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "campaign database path (env KATAPHRACT_DB)")
	root.PersistentFlags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "world seed (env KATAPHRACT_SEED)")
	root.PersistentFlags().StringVar(&cfg.Rules, "rules", cfg.Rules, "rules YAML file, empty for defaults")

	root.AddCommand(serveCmd(&cfg), advanceCmd(&cfg), statusCmd(&cfg), mapCmd(&cfg))
	return root
}

func setupLogging(level string) {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func loadRules(path string) (*rules.Config, error) {
	if path == "" {
		return rules.Default(), nil
	}
	return rules.Load(path)
}

// openCampaign loads the latest snapshot, or builds the scenario fresh when
// the database has no state yet.
func openCampaign(cfg *config) (*campaign.Campaign, *persistence.DB, *rules.Config, error) {
	ruleset, err := loadRules(cfg.Rules)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load rules: %w", err)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}

	id := campaign.CampaignID(cfg.Seed)
	scn := scenario.Default(cfg.Seed)
	c, err := db.LoadSnapshot(id, -1)
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("load snapshot: %w", err)
	}
	if c == nil {
		slog.Info("no saved state, building scenario", "seed", cfg.Seed)
		c = scenario.Build(scn, ruleset)
		if err := db.SaveSnapshot(c); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("save initial snapshot: %w", err)
		}
	} else {
		// The map is derived from the seed, not stored in the snapshot.
		c.Map = world.Generate(scn.MapConfig)
		slog.Info("restored campaign", "day", c.CurrentDay, "part", c.Part)
	}
	return c, db, ruleset, nil
}

func buildEngine(c *campaign.Campaign, db *persistence.DB, ruleset *rules.Config) *engine.Engine {
	var eng *engine.Engine
	eng = engine.New(ruleset,
		engine.WithLogger(slog.Default()),
		engine.WithCommit(func(cc *campaign.Campaign) error {
			if err := db.SaveSnapshot(cc); err != nil {
				return err
			}
			return db.AppendAudit(cc.ID, eng.AuditLog(0))
		}))
	return eng
}

func serveCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the campaign HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, db, ruleset, err := openCampaign(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			eng := buildEngine(c, db, ruleset)
			srv := &api.Server{Campaign: c, Eng: eng, DB: db, Port: cfg.Port, AdminKey: cfg.AdminKey}
			srv.Start()
			slog.Info("serving", "port", cfg.Port, "campaign", c.Name, "day", c.CurrentDay)

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig

			slog.Info("shutting down, saving state")
			if err := db.SaveSnapshot(c); err != nil {
				return fmt.Errorf("final save: %w", err)
			}
			return db.AppendAudit(c.ID, eng.AuditLog(0))
		},
	}
	cmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "HTTP port (env KATAPHRACT_PORT)")
	return cmd
}

func advanceCmd(cfg *config) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Advance the campaign headlessly",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, db, ruleset, err := openCampaign(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			eng := buildEngine(c, db, ruleset)
			snap, err := eng.Advance(c, days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "advanced to day %d (%s)\n", snap.Day, snap.Part)
			printSummary(cmd, c)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 1, "number of days to advance")
	return cmd
}

func statusCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the current campaign state",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, db, _, err := openCampaign(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "%s: day %d, %s, %s, %s\n",
				c.Name, c.CurrentDay, c.Part, c.Season, c.Status)
			printSummary(cmd, c)
			return nil
		},
	}
}

func mapCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "mapgen",
		Short: "Generate the world map and print terrain statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := world.DefaultGenConfig()
			gen.Seed = cfg.Seed
			m := world.Generate(gen)

			counts := map[world.Terrain]int{}
			settlements := 0
			for _, hx := range m.Hexes {
				counts[hx.Terrain]++
				if hx.Settlement > 0 {
					settlements++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seed %d: %s hexes, %d settlements\n",
				gen.Seed, humanize.Comma(int64(len(m.Hexes))), settlements)
			terrains := make([]world.Terrain, 0, len(counts))
			for t := range counts {
				terrains = append(terrains, t)
			}
			sort.Slice(terrains, func(i, j int) bool { return terrains[i] < terrains[j] })
			for _, t := range terrains {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %s\n", t.Name(), humanize.Comma(int64(counts[t])))
			}
			return nil
		},
	}
}

func printSummary(cmd *cobra.Command, c *campaign.Campaign) {
	armyIDs := make([]campaign.ArmyID, 0, len(c.Armies))
	for id := range c.Armies {
		armyIDs = append(armyIDs, id)
	}
	sort.Slice(armyIDs, func(i, j int) bool { return armyIDs[i] < armyIDs[j] })
	for _, id := range armyIDs {
		a := c.Armies[id]
		cdr := c.Commanders[a.Commander]
		name := "leaderless"
		if cdr != nil {
			name = cdr.Name
		}
		days := 0
		if a.DailyConsumption > 0 {
			days = a.SuppliesCurrent / a.DailyConsumption
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  army %d (%s): %s soldiers at hex %d, morale %d/%d, %s supplies (%d days)\n",
			id, name, humanize.Comma(int64(a.TotalSoldiers())), a.Hex,
			a.MoraleCurrent, a.MoraleMax,
			humanize.Comma(int64(a.SuppliesCurrent)), days)
	}
}
