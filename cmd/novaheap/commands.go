package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tuannm99/novaheap/internal/alias/util"
	"github.com/tuannm99/novaheap/internal/engine"
	"github.com/tuannm99/novaheap/internal/executor"
	"github.com/tuannm99/novaheap/internal/heap"
	"github.com/tuannm99/novaheap/internal/record"
	"github.com/tuannm99/novaheap/internal/storage/common"
	"github.com/tuannm99/novaheap/internal/transaction"
)

func newCreateTableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "create-table <name> <column:type>...",
		Short:   "Create a table; types are int, string or string(n)",
		Example: "  novaheap create-table users id:int name:string(32)",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := parseColumns(args[1:])
			if err != nil {
				return err
			}
			db, err := a.database()
			if err != nil {
				return err
			}
			id, err := db.CreateTable(args[0], schema)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "CREATE TABLE %s (%s) id=%d\n", args[0], schema, id)
			return nil
		},
	}
}

func newTablesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}
			res := &executor.Result{Columns: []string{"name", "id", "pages", "schema"}}
			for _, id := range db.Catalog().TableIDs() {
				name, err := db.TableName(id)
				if err != nil {
					return err
				}
				hf, err := db.DatabaseFile(id)
				if err != nil {
					return err
				}
				n, err := hf.NumPages()
				if err != nil {
					return err
				}
				res.Rows = append(res.Rows, []record.Value{
					record.String(name),
					record.Int(int32(id)),
					record.Int(int32(n)),
					record.String(hf.Schema().String()),
				})
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newLoadCmd(a *app) *cobra.Command {
	var header bool
	cmd := &cobra.Command{
		Use:   "load <table> <file.csv>",
		Short: "Insert every CSV row into a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			db, id, err := a.table(args[0])
			if err != nil {
				return err
			}
			hf, err := db.DatabaseFile(id)
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer util.CloseFile(f, &err)

			rows, err := readCSV(f, hf.Schema(), header)
			if err != nil {
				return fmt.Errorf("%s: %w", args[1], err)
			}

			var affected int64
			err = db.Run(func(tx transaction.ID) error {
				ins, err := executor.NewInsert(tx, db, executor.NewTupleIterator(hf.Schema(), rows), id)
				if err != nil {
					return err
				}
				res, err := executor.Collect(ins)
				if err != nil {
					return err
				}
				affected = res.AffectedRows
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "INSERT %d\n", affected)
			return nil
		},
	}
	cmd.Flags().BoolVar(&header, "header", false, "skip the first CSV line")
	return cmd
}

// queryFlags are shared by the read commands.
type queryFlags struct {
	alias string
	where string
}

func (q *queryFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.alias, "alias", "", "table alias used to qualify column names")
	cmd.Flags().StringVarP(&q.where, "where", "w", "", `row filter "<column> <op> <value>", op is one of = <> < <= > >= LIKE`)
}

// source builds SeqScan, wrapped in a Filter when a where clause is set.
func (q *queryFlags) source(tx transaction.ID, db *engine.Database, id common.TableID) (executor.Operator, error) {
	scan, err := executor.NewSeqScan(tx, db, id, q.alias)
	if err != nil {
		return nil, err
	}
	if q.where == "" {
		return scan, nil
	}
	pred, err := parseWhere(scan.Schema(), q.where)
	if err != nil {
		return nil, err
	}
	return executor.NewFilter(pred, scan)
}

func newScanCmd(a *app) *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   "scan <table>",
		Short: "Print the rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, id, err := a.table(args[0])
			if err != nil {
				return err
			}
			return a.query(cmd, db, func(tx transaction.ID) (executor.Operator, error) {
				return q.source(tx, db, id)
			})
		},
	}
	q.bind(cmd)
	return cmd
}

func newCountCmd(a *app) *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   "count <table>",
		Short: "Count the rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, id, err := a.table(args[0])
			if err != nil {
				return err
			}
			return a.query(cmd, db, func(tx transaction.ID) (executor.Operator, error) {
				src, err := q.source(tx, db, id)
				if err != nil {
					return nil, err
				}
				return executor.NewAggregate(src, 0, executor.NoGrouping, executor.Count)
			})
		},
	}
	q.bind(cmd)
	return cmd
}

func newAggregateCmd(a *app) *cobra.Command {
	var (
		q       queryFlags
		groupBy string
	)
	cmd := &cobra.Command{
		Use:     "aggregate <table> <min|max|sum|avg|count> <column>",
		Short:   "Aggregate one column, optionally grouped by another",
		Example: "  novaheap aggregate orders sum amount --group-by customer",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := executor.ParseAggregateOp(args[1])
			if err != nil {
				return err
			}
			db, id, err := a.table(args[0])
			if err != nil {
				return err
			}
			return a.query(cmd, db, func(tx transaction.ID) (executor.Operator, error) {
				src, err := q.source(tx, db, id)
				if err != nil {
					return nil, err
				}
				aggField, err := src.Schema().IndexOf(args[2])
				if err != nil {
					return nil, err
				}
				groupField := executor.NoGrouping
				if groupBy != "" {
					if groupField, err = src.Schema().IndexOf(groupBy); err != nil {
						return nil, err
					}
				}
				return executor.NewAggregate(src, aggField, groupField, op)
			})
		},
	}
	q.bind(cmd)
	cmd.Flags().StringVarP(&groupBy, "group-by", "g", "", "column to group by")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var (
		q   queryFlags
		all bool
	)
	cmd := &cobra.Command{
		Use:   "delete <table>",
		Short: "Delete the rows matching --where (or every row with --all)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if q.where == "" && !all {
				return errors.New("delete needs --where or --all")
			}
			db, id, err := a.table(args[0])
			if err != nil {
				return err
			}
			var affected int64
			err = db.Run(func(tx transaction.ID) error {
				src, err := q.source(tx, db, id)
				if err != nil {
					return err
				}
				del, err := executor.NewDelete(tx, db, src)
				if err != nil {
					return err
				}
				res, err := executor.Collect(del)
				if err != nil {
					return err
				}
				affected = res.AffectedRows
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "DELETE %d\n", affected)
			return nil
		},
	}
	q.bind(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "delete every row")
	return cmd
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <table> [page]",
		Short: "Show page usage of a table, or dump one page",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, id, err := a.table(args[0])
			if err != nil {
				return err
			}
			hf, err := db.DatabaseFile(id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 2 {
				pageNo, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("page number: %w", err)
				}
				p, err := db.GetPage(transaction.None, common.PageID{Table: id, PageNo: pageNo}, transaction.ReadOnly)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(out, p.DebugString())
				return err
			}

			n, err := hf.NumPages()
			if err != nil {
				return err
			}
			width := hf.Schema().Size()
			fmt.Fprintf(out, "table %s id=%d file=%s\n", args[0], id, hf.Path())
			fmt.Fprintf(out, "schema: %s (tuple %d bytes, %d slots/page)\n", hf.Schema(), width, heap.NumSlotsFor(width))

			res := &executor.Result{Columns: []string{"page", "used", "free", "dirty"}}
			for i := 0; i < n; i++ {
				p, err := db.GetPage(transaction.None, common.PageID{Table: id, PageNo: i}, transaction.ReadOnly)
				if err != nil {
					return err
				}
				_, dirty := p.IsDirty()
				res.Rows = append(res.Rows, []record.Value{
					record.Int(int32(i)),
					record.Int(int32(p.NumSlots() - p.NumEmptySlots())),
					record.Int(int32(p.NumEmptySlots())),
					record.String(strconv.FormatBool(dirty)),
				})
			}
			printResult(out, res)
			return nil
		},
	}
}

// table opens the database and resolves a table name.
func (a *app) table(name string) (*engine.Database, common.TableID, error) {
	db, err := a.database()
	if err != nil {
		return nil, 0, err
	}
	id, err := db.TableID(name)
	if err != nil {
		return nil, 0, err
	}
	return db, id, nil
}

// query runs a read-only operator tree in its own transaction and prints it.
func (a *app) query(cmd *cobra.Command, db *engine.Database, build func(tx transaction.ID) (executor.Operator, error)) error {
	var res *executor.Result
	err := db.Run(func(tx transaction.ID) error {
		op, err := build(tx)
		if err != nil {
			return err
		}
		res, err = executor.Collect(op)
		return err
	})
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), res)
	return nil
}
