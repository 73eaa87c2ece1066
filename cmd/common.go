package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"initiative/pkg/config"
	"initiative/pkg/encounter"
	"initiative/pkg/store"
	"initiative/pkg/usecase"
)

// loadConfig merges the config file, environment and command-line flags.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, err
	}

	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if ordering != "" {
		cfg.Ordering = ordering
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	color.Enable = !noColor

	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, err := cfg.Level()
	if err != nil {
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openService opens the store and journal under the configured data
// directory. The returned close function must be called when done.
func openService() (*usecase.Service, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	nameOrdering, err := cfg.NameOrdering()
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create data directory: %w", err)
	}

	logger := newLogger(cfg)

	s, err := store.Open(store.Options{Dir: cfg.StorePath(), Logger: logger})
	if err != nil {
		return nil, nil, err
	}

	service, err := usecase.New(usecase.Options{
		Store:       s,
		JournalPath: cfg.JournalPath(),
		Ordering:    nameOrdering,
		Logger:      logger,
	})
	if err != nil {
		_ = s.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := service.Close(); err != nil {
			logger.Warn("closing journal failed", "error", err)
		}
		if err := s.Close(); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}

	return service, closeFn, nil
}

// withService runs fn against an open service and closes it afterwards.
func withService(fn func(*usecase.Service) error) error {
	service, closeFn, err := openService()
	if err != nil {
		return err
	}
	defer closeFn()

	return fn(service)
}

func printCommandHeader(command, combatID string) {
	fmt.Printf("Command: %s\n", command)
	fmt.Printf("Combat:  %s\n", combatID)
}

func printSummary(lines ...string) {
	fmt.Println("=== Summary ===")
	for _, line := range lines {
		fmt.Println(line)
	}
}

func printJoined(joined []usecase.JoinedCombatant) {
	for _, j := range joined {
		if !j.Renamed() {
			fmt.Printf("JOIN: %s\n", j.Name)
			continue
		}
		fmt.Printf("JOIN: %s\n", color.Yellow.Sprint(j.Name))
		if verbose {
			fmt.Printf("  ASKED: %s\n", j.Requested)
			fmt.Printf("     ID: %s\n", j.ID)
		}
	}
}

func printJoinSummary(execution usecase.JoinExecution) {
	fmt.Println()
	printSummary(
		fmt.Sprintf("Joined:   %d", len(execution.Joined)),
		fmt.Sprintf("Renamed:  %d", execution.RenamedCount()),
		fmt.Sprintf("Duration: %v", execution.Duration.Round(time.Millisecond)),
	)
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func printCombats(combats []*encounter.Combat) {
	table := newTable("ID", "Name", "Round", "Combatants", "Created")
	for _, c := range combats {
		table.Append([]string{
			c.ID,
			c.Name,
			strconv.Itoa(c.Round),
			strconv.Itoa(len(c.Combatants)),
			c.CreatedAt.Local().Format(time.DateTime),
		})
	}
	table.Render()
}

func printTurnOrder(c *encounter.Combat) {
	table := newTable("#", "Name", "Initiative", "HP", "ID")
	for i, combatant := range c.Order() {
		table.Append([]string{
			strconv.Itoa(i + 1),
			combatant.Name,
			strconv.Itoa(combatant.Initiative),
			strconv.Itoa(combatant.HitPoints),
			combatant.ID,
		})
	}
	table.Render()
}

// describeError adds a hint for errors users commonly hit.
func describeError(err error) error {
	if errors.Is(err, store.ErrCombatNotFound) {
		return fmt.Errorf("%w (run 'initiative combat list' to see combat IDs)", err)
	}
	return err
}
