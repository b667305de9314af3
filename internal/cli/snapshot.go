package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tablecore/internal/canon"
	"github.com/roach88/tablecore/internal/store"
)

// SnapshotOptions holds flags for the snapshot commands.
type SnapshotOptions struct {
	*RootOptions
	Database string
	Table    string
}

// SnapshotList is the payload of snapshot list.
type SnapshotList struct {
	Snapshots []store.Snapshot `json:"snapshots"`
	Total     int              `json:"total"`
}

// NewSnapshotCommand creates the snapshot command group.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SnapshotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect saved table states",
		Long: `Inspect table states saved with 'tablecore view --save'.

Examples:
  tablecore snapshot list --db ./tables.db
  tablecore snapshot list --db ./tables.db --table people
  tablecore snapshot show --db ./tables.db 01890a5d-ac96-774b-bcce-b302099a8057
  tablecore snapshot latest --db ./tables.db --table people --format json`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "snapshot database (default from TABLECORE_DB)")

	list := &cobra.Command{
		Use:           "list",
		Short:         "List snapshots in save order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotList(opts, cmd)
		},
	}
	list.Flags().StringVar(&opts.Table, "table", "", "only list snapshots of this table")

	show := &cobra.Command{
		Use:           "show <id>",
		Short:         "Show one snapshot",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotShow(opts, cmd, func(ctx context.Context, st *store.Store) (store.Snapshot, error) {
				return st.ReadSnapshot(ctx, args[0])
			})
		},
	}

	latest := &cobra.Command{
		Use:           "latest",
		Short:         "Show the most recent snapshot of a table",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotShow(opts, cmd, func(ctx context.Context, st *store.Store) (store.Snapshot, error) {
				return st.LatestSnapshot(ctx, opts.Table)
			})
		},
	}
	latest.Flags().StringVar(&opts.Table, "table", "", "table name (required)")
	_ = latest.MarkFlagRequired("table")

	cmd.AddCommand(list, show, latest)
	return cmd
}

// openSnapshotStore opens the configured database. A missing database file
// is not created.
func openSnapshotStore(opts *SnapshotOptions, f *OutputFormatter) (*store.Store, error) {
	path := opts.database(opts.Database)
	if path == "" {
		return nil, f.Fail(ExitCommandError, ErrCodeDatabase, "no database: pass --db or set TABLECORE_DB", nil)
	}
	if !fileExists(path) {
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", path), nil)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	return st, nil
}

func runSnapshotList(opts *SnapshotOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	st, err := openSnapshotStore(opts, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	snaps, err := st.ListSnapshots(commandContext(cmd), opts.Table)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to list snapshots", err)
	}

	if formatter.IsJSON() {
		return formatter.Success(SnapshotList{Snapshots: snaps, Total: len(snaps)})
	}
	if len(snaps) == 0 {
		fmt.Fprintln(formatter.Writer, "No snapshots found.")
		return nil
	}
	rows := make([][]string, len(snaps))
	for i, s := range snaps {
		rows[i] = []string{
			s.ID,
			s.TableName,
			strconv.FormatInt(s.Seq, 10),
			s.CreatedAt.Format(time.RFC3339),
			shortFingerprint(s.Fingerprint),
		}
	}
	return formatter.Table([]string{"ID", "TABLE", "SEQ", "CREATED", "FINGERPRINT"}, rows)
}

func runSnapshotShow(opts *SnapshotOptions, cmd *cobra.Command, get func(context.Context, *store.Store) (store.Snapshot, error)) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	st, err := openSnapshotStore(opts, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := get(commandContext(cmd), st)
	if err != nil {
		return formatter.Fail(ExitCommandError, snapshotErrorCode(err), "failed to read snapshot", err)
	}

	if formatter.IsJSON() {
		return formatter.Success(snap)
	}
	state, err := canon.Marshal(snap.State)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, "failed to encode state", err)
	}
	w := formatter.Writer
	fmt.Fprintf(w, "Snapshot %s\n", snap.ID)
	fmt.Fprintf(w, "  table:       %s\n", snap.TableName)
	fmt.Fprintf(w, "  seq:         %d\n", snap.Seq)
	fmt.Fprintf(w, "  created:     %s\n", snap.CreatedAt.Format(time.RFC3339Nano))
	fmt.Fprintf(w, "  fingerprint: %s\n", snap.Fingerprint)
	fmt.Fprintf(w, "  state:       %s\n", state)
	return nil
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
