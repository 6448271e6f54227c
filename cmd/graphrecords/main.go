// Command graphrecords is the CLI entry point for the graphrecords
// property-graph store: initializing a data directory, loading/exporting
// snapshots, and printing a store overview.
//
// Adapted from the teacher's cmd/nornicdb/main.go cobra command layout
// (version/init/import subcommands with --data-dir flags), narrowed to
// graphrecords' own surface — there is no Bolt/HTTP server and no textual
// query language (spec §4 exposes only the Go operand-builder API), so
// "serve"/"shell" have no graphrecords analogue.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/orneryd/graphrecords/pkg/config"
	"github.com/orneryd/graphrecords/pkg/glog"
	"github.com/orneryd/graphrecords/pkg/ioxport"
	"github.com/orneryd/graphrecords/pkg/overview"
	"github.com/orneryd/graphrecords/pkg/schema"
	"github.com/orneryd/graphrecords/pkg/store"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "graphrecords",
		Short: "graphrecords - an in-memory/persistent property-graph store with a composable query algebra",
	}

	rootCmd.AddCommand(versionCmd(), initCmd(), loadCmd(), exportCmd(), overviewCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("graphrecords v%s\n", version)
		},
	}
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new data directory with a default config file",
		RunE:  runInit,
	}
	cmd.Flags().String("data-dir", "./data/graphrecords", "Data directory")
	cmd.Flags().String("engine", "badger", "Storage engine: memory or badger")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	engine, _ := cmd.Flags().GetString("engine")

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	cfg := config.DefaultConfig()
	cfg.Engine = config.Engine(engine)
	cfg.DataDir = dataDir
	if err := cfg.Validate(); err != nil {
		return err
	}

	configPath := filepath.Join(dataDir, "graphrecords.yaml")
	content := fmt.Sprintf("engine: %s\ndata_dir: %s\nsync_writes: false\nlog_level: info\n", cfg.Engine, cfg.DataDir)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Initialized graphrecords data directory at %s\n", dataDir)
	fmt.Printf("Config written to %s\n", configPath)
	return nil
}

func loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load [file]",
		Short: "Load a JSON or CSV snapshot into the store",
		Args:  cobra.ExactArgs(1),
		RunE:  runLoad,
	}
	cmd.Flags().String("data-dir", "./data/graphrecords", "Data directory")
	cmd.Flags().String("format", "json", "Snapshot format: json or csv")
	cmd.Flags().String("group", "imported", "Group to tag imported nodes with (csv format only)")
	return cmd
}

func runLoad(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	dataDir, _ := cmd.Flags().GetString("data-dir")
	format, _ := cmd.Flags().GetString("format")
	group, _ := cmd.Flags().GetString("group")

	log := glog.Default.With("load")
	db, err := store.NewBadger(dataDir)
	if err != nil {
		return fmt.Errorf("opening store at %q: %w", dataDir, err)
	}
	defer db.Close()

	var result *ioxport.ImportResult
	switch format {
	case "json":
		result, err = ioxport.ImportJSONFile(filePath, db)
	case "csv":
		result, err = ioxport.ImportNodesCSVFile(filePath, store.Group(group), db)
	default:
		return fmt.Errorf("unsupported format %q (want json or csv)", format)
	}
	if err != nil {
		return err
	}

	log.Info("snapshot loaded", glog.F("nodes", result.NodesCreated), glog.F("edges", result.EdgesCreated), glog.F("errors", len(result.Errors)))
	for _, e := range result.Errors {
		log.Warn("import error", glog.F("error", e.Error()))
	}
	return nil
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export the store to a JSON or CSV snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	cmd.Flags().String("data-dir", "./data/graphrecords", "Data directory")
	cmd.Flags().String("format", "json", "Snapshot format: json or csv")
	cmd.Flags().String("group", "", "Group to export (csv format only; required for csv)")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	dataDir, _ := cmd.Flags().GetString("data-dir")
	format, _ := cmd.Flags().GetString("format")
	group, _ := cmd.Flags().GetString("group")

	db, err := store.NewBadger(dataDir)
	if err != nil {
		return fmt.Errorf("opening store at %q: %w", dataDir, err)
	}
	defer db.Close()

	switch format {
	case "json":
		err = ioxport.ExportJSONFile(db, filePath)
	case "csv":
		if group == "" {
			return fmt.Errorf("--group is required for csv export")
		}
		err = ioxport.ExportNodesCSVFile(db, store.Group(group), filePath)
	default:
		return fmt.Errorf("unsupported format %q (want json or csv)", format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported store to %s\n", filePath)
	return nil
}

func overviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Print a summary of the store's cardinality and inferred schema",
		RunE:  runOverview,
	}
	cmd.Flags().String("data-dir", "./data/graphrecords", "Data directory")
	return cmd
}

func runOverview(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")

	db, err := store.NewBadger(dataDir)
	if err != nil {
		return fmt.Errorf("opening store at %q: %w", dataDir, err)
	}
	defer db.Close()

	mgr := schema.New()
	for ni := range db.NodeIndices() {
		attrs, err := db.NodeAttributes(ni)
		if err != nil {
			return err
		}
		var groups []store.Group
		for g := range db.GroupsOfNode(ni) {
			groups = append(groups, g)
		}
		mgr.ObserveNode(groups, attrs)
	}

	fmt.Print(overview.DescribeStore(db, mgr))
	return nil
}
