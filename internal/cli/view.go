package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tablecore/internal/compiler"
	"github.com/roach88/tablecore/internal/harness"
	"github.com/roach88/tablecore/internal/query"
	"github.com/roach88/tablecore/internal/records"
	"github.com/roach88/tablecore/internal/store"
	"github.com/roach88/tablecore/internal/table"
)

// ViewOptions holds flags for the view command.
type ViewOptions struct {
	*RootOptions
	Data      string
	Table     string
	Filter    string
	Global    string
	OrderBy   string
	GroupBy   []string
	ExpandAll bool
	Page      int
	PageSize  int
	Database  string
	Save      bool
	Snapshot  string
}

// ViewResult is the page the view command shows.
type ViewResult struct {
	Table     string            `json:"table"`
	Columns   []string          `json:"columns"`
	RowCount  int               `json:"rowCount"`
	PageIndex int               `json:"pageIndex"`
	PageCount int               `json:"pageCount"`
	Rows      []harness.PageRow `json:"rows"`
	State     table.State       `json:"state"`
	Saved     *SavedSnapshot    `json:"saved,omitempty"`
}

// SavedSnapshot reports the snapshot written by --save.
type SavedSnapshot struct {
	ID       string `json:"id"`
	Seq      int64  `json:"seq"`
	Inserted bool   `json:"inserted"`
}

// NewViewCommand creates the view command.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ViewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "view <definition>",
		Short: "Show one page of a table",
		Long: `Build a table from a CUE definition and a record file and print one page.

The definition may be a .cue file or a directory of CUE files.
Filters use AIP-160 syntax and orderings AIP-132 syntax over column ids.

Examples:
  tablecore view people.cue --data people.json
  tablecore view people.cue --data people.json --filter 'age >= 30' --order-by 'age desc'
  tablecore view people.cue --data people.yaml --group-by dept --expand-all
  tablecore view people.cue --data people.json --page 2 --page-size 25 --db ./tables.db --save`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Data, "data", "", "record file (.json, .yaml, .yml, .toml) (required)")
	cmd.Flags().StringVar(&opts.Table, "table", "", "table name when the definition holds several")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "AIP-160 filter, e.g. 'age >= 30 AND status = \"active\"'")
	cmd.Flags().StringVar(&opts.Global, "global", "", "global search text")
	cmd.Flags().StringVar(&opts.OrderBy, "order-by", "", "AIP-132 ordering, e.g. 'lastName, age desc'")
	cmd.Flags().StringSliceVar(&opts.GroupBy, "group-by", nil, "columns to group by, outermost first")
	cmd.Flags().BoolVar(&opts.ExpandAll, "expand-all", false, "expand every row with sub-rows")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", table.DefaultPageSize, "rows per page (default from TABLECORE_PAGE_SIZE)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "snapshot database (default from TABLECORE_DB)")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "save the resulting state as a snapshot")
	cmd.Flags().StringVar(&opts.Snapshot, "snapshot", "", "start from the state saved in this snapshot")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runView(opts *ViewOptions, defPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	if opts.Page < 1 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "--page must be at least 1", nil)
	}
	pageSize := opts.pageSize(opts.PageSize, cmd.Flags().Changed("page-size"))
	if pageSize < 1 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "--page-size must be at least 1", nil)
	}
	dbPath := opts.database(opts.Database)
	if (opts.Save || opts.Snapshot != "") && dbPath == "" {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "--save and --snapshot need --db or TABLECORE_DB", nil)
	}

	spec, tbl, err := LoadTable(defPath, opts.Table, opts.Data, opts.RootOptions)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), "failed to load table", err)
	}
	formatter.VerboseLog("Loaded table %s with %d records", spec.Name, len(tbl.Options().Data))

	var st *store.Store
	if dbPath != "" && (opts.Save || opts.Snapshot != "") {
		st, err = store.Open(dbPath)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				opts.logger().Error("error closing database", "error", closeErr)
			}
		}()
	}

	restored := false
	if opts.Snapshot != "" {
		snap, err := st.ReadSnapshot(ctx, opts.Snapshot)
		if err != nil {
			return formatter.Fail(ExitCommandError, snapshotErrorCode(err), "failed to read snapshot", err)
		}
		if snap.TableName != spec.Name {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase,
				fmt.Sprintf("snapshot %s belongs to table %q, not %q", snap.ID, snap.TableName, spec.Name), nil)
		}
		if err := query.RestoreState(tbl, snap.State); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeBuildFailed, "failed to restore snapshot", err)
		}
		restored = true
	}

	if err := applyViewFlags(opts, cmd, tbl, pageSize, restored); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeQueryInvalid, "invalid query", err)
	}

	result := buildViewResult(spec, tbl)

	if opts.Save {
		snap, inserted, err := st.SaveSnapshot(ctx, spec.Name, result.State)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, "failed to save snapshot", err)
		}
		result.Saved = &SavedSnapshot{ID: snap.ID, Seq: snap.Seq, Inserted: inserted}
		opts.logger().Debug("snapshot saved", "id", snap.ID, "table", spec.Name, "inserted", inserted)
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	return outputViewText(formatter, result)
}

// applyViewFlags writes the query flags into the table state. A restored
// page index, page size or expansion is kept unless its flag is given.
//
// The row model is read once the upstream state is in place, so the resets
// those changes queue run before the expansion and page are set.
func applyViewFlags(opts *ViewOptions, cmd *cobra.Command, tbl *table.Table[records.Record], pageSize int, restored bool) error {
	expanded := tbl.GetState().Expanded
	p := tbl.GetState().Pagination

	if err := query.Apply(tbl, opts.Filter, opts.OrderBy); err != nil {
		return err
	}
	if opts.Global != "" {
		tbl.SetGlobalFilter(table.Replace[any](opts.Global))
	}
	if len(opts.GroupBy) > 0 {
		for _, id := range opts.GroupBy {
			if _, ok := tbl.GetColumn(id); !ok {
				return fmt.Errorf("--group-by: unknown column %q", id)
			}
		}
		tbl.SetGrouping(table.Replace(table.GroupingState(opts.GroupBy)))
	}
	tbl.GetRowModel()

	if opts.ExpandAll {
		expanded = table.ExpandAll()
	}
	tbl.SetExpanded(table.Replace(expanded))

	flags := cmd.Flags()
	if !restored || flags.Changed("page") {
		p.PageIndex = opts.Page - 1
	}
	if !restored || flags.Changed("page-size") {
		p.PageSize = pageSize
	}
	tbl.SetPagination(table.Replace(p))
	return nil
}

func buildViewResult(spec *compiler.TableSpec, tbl *table.Table[records.Record]) ViewResult {
	var columns []string
	for _, c := range tbl.GetAllLeafColumns() {
		if c.HasAccessor() {
			columns = append(columns, c.ID)
		}
	}
	rows := harness.PageRows(tbl)
	return ViewResult{
		Table:     spec.Name,
		Columns:   columns,
		RowCount:  tbl.GetRowCount(),
		PageIndex: tbl.GetState().Pagination.PageIndex,
		PageCount: tbl.GetPageCount(),
		Rows:      rows,
		State:     tbl.GetState(),
	}
}

func outputViewText(f *OutputFormatter, result ViewResult) error {
	header := append([]string{"ID"}, result.Columns...)
	lines := make([][]string, len(result.Rows))
	for i, r := range result.Rows {
		line := make([]string, 0, len(header))
		line = append(line, strings.Repeat("  ", r.Depth)+r.ID)
		for _, c := range result.Columns {
			line = append(line, formatCell(r, c))
		}
		lines[i] = line
	}
	if err := f.Table(header, lines); err != nil {
		return err
	}

	page := result.PageIndex + 1
	if result.PageCount == 0 {
		page = 0
	}
	fmt.Fprintf(f.Writer, "\nPage %d of %d (%d rows)\n", page, result.PageCount, result.RowCount)
	if s := result.Saved; s != nil {
		if s.Inserted {
			fmt.Fprintf(f.Writer, "Saved snapshot %s (seq %d)\n", s.ID, s.Seq)
		} else {
			fmt.Fprintf(f.Writer, "State unchanged since snapshot %s (seq %d)\n", s.ID, s.Seq)
		}
	}
	return nil
}

// formatCell renders one value. Group rows show their leaf count next to
// the grouping value.
func formatCell(r harness.PageRow, column string) string {
	if r.GroupingColumnID == column {
		return fmt.Sprintf("%v (%d)", r.GroupingValue, r.LeafCount)
	}
	v := r.Values[column]
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func snapshotErrorCode(err error) string {
	if errors.Is(err, store.ErrNotFound) {
		return ErrCodeNotFound
	}
	return ErrCodeDatabase
}
