package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/andresuchdata/supplychain-engine/internal/app"
	"github.com/andresuchdata/supplychain-engine/internal/config"
	"github.com/andresuchdata/supplychain-engine/internal/domain"
	"github.com/andresuchdata/supplychain-engine/internal/repository/postgres"
	"github.com/andresuchdata/supplychain-engine/internal/service"
	"github.com/andresuchdata/supplychain-engine/pkg/logger"
	"github.com/urfave/cli/v2"
)

type appKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Postgres connection string; the in-memory store is used when empty",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func newPrincipalFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "principal",
		Usage:   "Caller identity for owner-only operations (defaults to the first configured owner)",
		EnvVars: []string{"ENGINE_PRINCIPAL"},
	}
}

// loadConfig applies the --db-url override on top of the environment
func loadConfig(c *cli.Context) (*config.Config, error) {
	loaded, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg := *loaded
	if url := c.String("db-url"); url != "" {
		cfg.Database.URL = url
		cfg.Database.Driver = "pgx"
		cfg.Store.Driver = "postgres"
	}
	return &cfg, nil
}

func initApp(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.Server.LogLevel)

	a, err := app.New(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize registry: %w", err)
	}
	if cfg.Store.Driver != "postgres" {
		logger.Log.Warn().Str("command", c.Command.Name).Msg("using an empty in-memory registry; pass --db-url to read persisted data")
	}

	c.Context = context.WithValue(c.Context, appKey{}, a)
	return nil
}

// initPersistentApp is initApp for commands whose effects must outlive the
// process, which the in-memory store cannot provide.
func initPersistentApp(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := checkPersistentStore(cfg, c.Command.Name); err != nil {
		return err
	}
	return initApp(c)
}

func checkPersistentStore(cfg *config.Config, command string) error {
	if cfg.Store.Driver == "postgres" {
		return nil
	}
	return fmt.Errorf("%s needs --db-url or STORE_DRIVER=postgres: the %q store is discarded when the command exits", command, cfg.Store.Driver)
}

func closeApp(c *cli.Context) error {
	if a, ok := c.Context.Value(appKey{}).(*app.App); ok && a != nil {
		return a.Close()
	}
	return nil
}

func appFrom(c *cli.Context) *app.App {
	return c.Context.Value(appKey{}).(*app.App)
}

func principal(c *cli.Context) string {
	if p := strings.TrimSpace(c.String("principal")); p != "" {
		return p
	}
	if cfg, err := config.Load(); err == nil && len(cfg.Engine.Owners) > 0 {
		return cfg.Engine.Owners[0]
	}
	return ""
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	cliApp := &cli.App{
		Name:  "engine",
		Usage: "Administer the supply-chain registry",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply the registry schema to Postgres",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runMigrate,
			},
			{
				Name:  "seed",
				Usage: "Register suppliers and products from CSV files",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newPrincipalFlag(),
					&cli.StringFlag{
						Name:    "suppliers",
						Usage:   "CSV with name,reliability,quality,cost_efficiency,delivery_performance",
						Value:   "./data/seeds/suppliers.csv",
						EnvVars: []string{"SEED_SUPPLIERS_CSV"},
					},
					&cli.StringFlag{
						Name:    "products",
						Usage:   "CSV with name,category,initial_inventory,unit_cost,supplier_id",
						Value:   "./data/seeds/products.csv",
						EnvVars: []string{"SEED_PRODUCTS_CSV"},
					},
				},
				Before: initPersistentApp,
				After:  closeApp,
				Action: runSeed,
			},
			{
				Name:  "cycle",
				Usage: "Run one optimization cycle and print the report",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newPrincipalFlag(),
					&cli.StringFlag{Name: "scope", Usage: "Scope label", Value: "manual"},
					&cli.BoolFlag{Name: "demand", Usage: "Enable demand analytics", Value: true},
					&cli.BoolFlag{Name: "reorder", Usage: "Enable inventory auto-reorder", Value: true},
					&cli.BoolFlag{Name: "suppliers", Usage: "Enable supplier optimization", Value: true},
					&cli.BoolFlag{Name: "risk", Usage: "Enable risk mitigation", Value: true},
				},
				Before: initPersistentApp,
				After:  closeApp,
				Action: runCycle,
			},
			{
				Name:   "stats",
				Usage:  "Print the registry counters",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initApp,
				After:  closeApp,
				Action: runStats,
			},
			{
				Name:  "reports",
				Usage: "Inspect cached and archived optimization reports",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List archived reports",
						Before: initApp,
						After:  closeApp,
						Action: runReportsList,
					},
					{
						Name:   "flush-cache",
						Usage:  "Remove every cached report",
						Before: initApp,
						After:  closeApp,
						Action: runFlushCache,
					},
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("engine command failed")
	}
}

func runMigrate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Store.Driver != "postgres" {
		return fmt.Errorf("migrate needs --db-url or STORE_DRIVER=postgres")
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(c.Context); err != nil {
		return err
	}
	logger.Log.Info().Msg("schema applied")
	return nil
}

func runCycle(c *cli.Context) error {
	report, err := appFrom(c).Registry.RunOptimizationCycle(c.Context, principal(c), service.RunCycleInput{
		Scope: c.String("scope"),
		Toggles: domain.CycleToggles{
			DemandAnalytics:      c.Bool("demand"),
			AutoReorder:          c.Bool("reorder"),
			SupplierOptimization: c.Bool("suppliers"),
			RiskMitigation:       c.Bool("risk"),
		},
	})
	if err != nil {
		return err
	}
	return printJSON(report)
}

func runStats(c *cli.Context) error {
	stats, err := appFrom(c).Registry.Stats(c.Context)
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func runReportsList(c *cli.Context) error {
	objects, err := appFrom(c).Archive.List(c.Context)
	if err != nil {
		return err
	}
	for _, obj := range objects {
		fmt.Printf("%s\t%d\n", obj.Key, obj.Size)
	}
	return nil
}

func runFlushCache(c *cli.Context) error {
	cycles, err := appFrom(c).Cache.Flush(c.Context)
	if err != nil {
		return err
	}
	logger.Log.Info().Int("cycle_reports", cycles).Msg("report cache flushed")
	return nil
}
