// novaheap is the command-line front end of the heap storage engine.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tuannm99/novaheap/internal"
	"github.com/tuannm99/novaheap/internal/engine"
	"github.com/tuannm99/novaheap/internal/logger"
)

var (
	version   = "0.1.0"
	buildDate = "dev"
)

// app carries what every command shares: flags, config, logger and the
// lazily opened database.
type app struct {
	cfgFile string
	dataDir string

	cfg *internal.Config
	log *logger.Logger
	db  *engine.Database
}

func main() {
	a := &app{}
	err := newRootCmd(a).Execute()
	if err != nil && a.log != nil {
		a.log.Error("command failed", "error", err)
	}
	err = errors.Join(err, a.close())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "novaheap",
		Short: "novaheap - a page-oriented heap storage engine",
		Long: `novaheap stores fixed-width tuples on 4KB heap pages, caches them in a
bounded buffer pool and runs pull-based operators over them.

Create a database and a table:
  novaheap init ./data
  novaheap create-table users id:int name:string(32)

Load and query:
  novaheap load users users.csv
  novaheap scan users --where "id > 10"`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file path")
	root.PersistentFlags().StringVarP(&a.dataDir, "data-dir", "d", "", "data directory (overrides the config file)")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newShellCmd(a),
	)
	root.AddCommand(dataCommands(a)...)
	return root
}

// dataCommands are the commands that work against an open database; the
// shell runs the same set.
func dataCommands(a *app) []*cobra.Command {
	return []*cobra.Command{
		newCreateTableCmd(a),
		newTablesCmd(a),
		newLoadCmd(a),
		newScanCmd(a),
		newCountCmd(a),
		newAggregateCmd(a),
		newDeleteCmd(a),
		newInspectCmd(a),
	}
}

func (a *app) config() (*internal.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := internal.LoadConfig(a.cfgFile)
	if err != nil {
		return nil, err
	}
	if a.dataDir != "" {
		cfg.Storage.DataDir = a.dataDir
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	a.log = log
	return cfg, nil
}

func (a *app) database() (*engine.Database, error) {
	if a.db != nil {
		return a.db, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	db, err := engine.OpenConfig(cfg, a.log)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) close() error {
	var err error
	if a.db != nil {
		err = a.db.Close()
		a.db = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "novaheap %s (built %s)\n", version, buildDate)
		},
	}
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a data directory and write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				a.dataDir = args[0]
			}
			db, err := a.database()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Initialized novaheap data directory: %s\n", db.DataDir())

			cfgPath := a.cfgFile
			if cfgPath == "" {
				cfgPath = "novaheap.yaml"
			}
			if err := internal.WriteDefaultConfig(cfgPath, db.DataDir()); err != nil {
				return err
			}
			fmt.Fprintf(out, "Config file: %s\n", cfgPath)
			return nil
		},
	}
}
