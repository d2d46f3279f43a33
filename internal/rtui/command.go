package rtui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tOgg1/rtopics/internal/chat"
	"github.com/tOgg1/rtopics/internal/config"
	"github.com/tOgg1/rtopics/internal/feed"
	"github.com/tOgg1/rtopics/internal/localstore"
	"github.com/tOgg1/rtopics/internal/logging"
	"github.com/tOgg1/rtopics/internal/recent"
)

// isInteractive is swapped in tests.
var isInteractive = hasTTY

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// flagKeys binds persistent flags to config keys.
var flagKeys = map[string]string{
	"feed":          "feed.path",
	"poll-interval": "feed.poll_interval",
	"force-poll":    "feed.force_poll",
	"storage":       "storage.backend",
	"storage-path":  "storage.path",
	"user-id":       "user.id",
	"theme":         "tui.theme",
	"log-level":     "logging.level",
	"log-file":      "logging.file",
	"data-dir":      "global.data_dir",
}

type app struct {
	configFile string
	loader     *config.Loader
	cfg        *config.Config
	logFile    *os.File
	log        zerolog.Logger
}

func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	a := &app{loader: config.NewLoader()}
	cmd := &cobra.Command{
		Use:           "rtopics",
		Short:         "Recent topics for group chat",
		Long:          "Terminal client showing the recent topics of a group chat feed.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/rtopics/config.yaml)")
	flags.String("feed", "", "NDJSON event feed to follow")
	flags.Duration("poll-interval", feed.DefaultPollInterval, "feed re-read interval when no change notification arrives")
	flags.Bool("force-poll", false, "poll the feed instead of watching it")
	flags.String("storage", localstore.BackendFile, "client storage backend: file|sqlite|memory")
	flags.String("storage-path", "", "client storage path")
	flags.Int64("user-id", 0, "viewing user id")
	flags.String("theme", "default", "theme: default|high-contrast")
	flags.String("log-level", "info", "log level")
	flags.String("log-file", "", "log file (default: <data_dir>/rtopics.log)")
	flags.String("data-dir", "", "data directory")

	cmd.AddCommand(newListCmd(a), newFiltersCmd(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.configFile != "" {
		a.loader.SetConfigFile(a.configFile)
	}
	flags := cmd.Root().PersistentFlags()
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil && f.Changed {
			a.loader.Set(key, f.Value.String())
		}
	}
	cfg, err := a.loader.Load()
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	a.cfg = cfg

	logFile, err := logging.OpenFile(cfg.LogPath())
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	a.logFile = logFile
	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       logFile,
		EnableCaller: cfg.Logging.EnableCaller,
	})
	session := logging.NewSession()
	a.log = logging.Component("cli")
	a.log.Info().
		Str("command", cmd.Name()).
		Str("session", session).
		Str("config", a.loader.ConfigFileUsed()).
		Msg("start")
	return nil
}

func (a *app) teardown() error {
	if a.logFile == nil {
		return nil
	}
	err := a.logFile.Close()
	a.logFile = nil
	return err
}

func (a *app) openStorage() (localstore.Store, error) {
	store, err := localstore.Open(localstore.Config{
		Backend: a.cfg.Storage.Backend,
		Path:    a.cfg.StoragePath(),
	})
	if err != nil {
		return nil, fmt.Errorf("open client storage: %w", err)
	}
	return store, nil
}

func (a *app) runTUI() error {
	if !isInteractive() {
		return errors.New("rtopics needs an interactive terminal; use `rtopics list` for plain output")
	}
	store, err := a.openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	var follower *feed.Follower
	if path := strings.TrimSpace(a.cfg.Feed.Path); path != "" {
		follower, err = feed.NewFollower(path,
			feed.WithPollInterval(a.cfg.Feed.PollInterval),
			feed.WithForcePoll(a.cfg.Feed.ForcePoll),
			feed.WithLogger(logging.Component("feed")),
		)
		if err != nil {
			return err
		}
	}

	log := logging.Component("rtui")
	return Run(Config{
		Theme:           a.cfg.TUI.Theme,
		RefreshInterval: a.cfg.TUI.RefreshInterval,
		SelfID:          chat.UserID(a.cfg.User.ID),
		Storage:         store,
		Follower:        follower,
		Context:         config.NewContextStore(a.cfg.ContextPath()),
		Logger:          &log,
	})
}

type listOptions struct {
	output  string
	search  string
	sort    string
	reverse bool
	limit   int
}

func newListCmd(a *app) *cobra.Command {
	opts := listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print recent topics from the feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer store.Close()
			rows, err := a.replayRows(store, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return writeRows(cmd.OutOrStdout(), rows, opts.output, time.Now())
		},
	}
	cmd.Flags().StringVar(&opts.output, "output", "table", "Output format: table or json")
	cmd.Flags().StringVar(&opts.search, "search", "", "only topics matching every word")
	cmd.Flags().StringVar(&opts.sort, "sort", "recency", "sort by recency|stream|topic")
	cmd.Flags().BoolVar(&opts.reverse, "reverse", false, "reverse the sort order")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "max rows (0 for all)")
	return cmd
}

func parseSortField(name string) (recent.SortField, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "recency":
		return recent.SortRecency, nil
	case "stream":
		return recent.SortStream, nil
	case "topic":
		return recent.SortTopic, nil
	default:
		return 0, fmt.Errorf("unknown sort %q (want recency, stream or topic)", name)
	}
}

// replayRows folds the whole feed into a realm and renders the recent topics
// table once with the persisted filters.
func (a *app) replayRows(store recent.Storage, opts listOptions, errOut io.Writer) ([]recent.Row, error) {
	field, err := parseSortField(opts.sort)
	if err != nil {
		return nil, err
	}
	path := strings.TrimSpace(a.cfg.Feed.Path)
	if path == "" {
		return nil, errors.New("no feed configured; pass --feed or set feed.path")
	}
	events, bad, err := feed.Replay(path)
	if err != nil {
		return nil, err
	}
	for _, lineErr := range bad {
		a.log.Warn().Err(lineErr).Msg("skip feed line")
	}
	if len(bad) > 0 {
		fmt.Fprintf(errOut, "skipped %d bad feed lines\n", len(bad))
	}

	realm := chat.NewRealm(chat.UserID(a.cfg.User.ID))
	ctrl := recent.New(recent.DepsFromRealm(realm, store, nil), recent.WithLogger(a.log))
	for _, ev := range events {
		if err := feed.Apply(realm, ctrl, ev); err != nil {
			a.log.Warn().Err(err).Str("kind", string(ev.Kind)).Msg("skip feed event")
		}
	}

	ctrl.Show()
	ctrl.SetSearch(opts.search)
	if field != recent.SortRecency {
		ctrl.SetSort(field)
	}
	if opts.reverse {
		ctrl.SetSort(field)
	}
	rows := ctrl.Rows()
	if opts.limit > 0 && len(rows) > opts.limit {
		rows = rows[:opts.limit]
	}
	return rows, nil
}

type listItem struct {
	StreamID     int64     `json:"stream_id"`
	Stream       string    `json:"stream"`
	Topic        string    `json:"topic"`
	Unread       int       `json:"unread"`
	Muted        bool      `json:"muted"`
	Participated bool      `json:"participated"`
	LastMsgID    float64   `json:"last_msg_id"`
	LastMsgTime  time.Time `json:"last_msg_time"`
	Senders      []string  `json:"senders"`
	OtherSenders int       `json:"other_senders,omitempty"`
}

func writeRows(w io.Writer, rows []recent.Row, output string, now time.Time) error {
	switch strings.ToLower(strings.TrimSpace(output)) {
	case "json":
		items := make([]listItem, 0, len(rows))
		for _, row := range rows {
			names := make([]string, 0, len(row.Senders))
			for _, p := range row.Senders {
				names = append(names, p.FullName)
			}
			items = append(items, listItem{
				StreamID:     int64(row.StreamID),
				Stream:       row.Stream,
				Topic:        row.Topic,
				Unread:       row.UnreadCount,
				Muted:        row.Muted,
				Participated: row.Participated,
				LastMsgID:    float64(row.LastMsgID),
				LastMsgTime:  row.LastMsgTime,
				Senders:      names,
				OtherSenders: row.OtherSenders,
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "", "table":
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"STREAM", "TOPIC", "UNREAD", "MUTED", "SENDERS", "LAST MESSAGE"})
		for _, row := range rows {
			unread := ""
			if row.UnreadCount > 0 {
				unread = strconv.Itoa(row.UnreadCount)
			}
			muted := ""
			if row.Muted {
				muted = "yes"
			}
			last := ""
			if !row.LastMsgTime.IsZero() {
				last = humanize.RelTime(row.LastMsgTime, now, "ago", "from now")
			}
			table.Append([]string{row.Stream, row.Topic, unread, muted, sendersLabel(row), last})
		}
		table.Render()
		return nil
	default:
		return fmt.Errorf("unknown output %q (want table or json)", output)
	}
}

func newFiltersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Show the persisted recent topics filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFilters(cmd.OutOrStdout(), nil)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle NAME",
		Short: "Toggle a filter (all, unread, participated, include_muted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := recent.ParseFilter(args[0])
			if err != nil {
				return err
			}
			return a.withFilters(cmd.OutOrStdout(), func(set *recent.FilterSet) error {
				return set.Toggle(f)
			})
		},
	})
	return cmd
}

func (a *app) withFilters(w io.Writer, mutate func(*recent.FilterSet) error) error {
	store, err := a.openStorage()
	if err != nil {
		return err
	}
	defer store.Close()

	set := recent.NewFilterSet(store)
	if err := set.Reload(); err != nil {
		return err
	}
	if mutate != nil {
		if err := mutate(set); err != nil {
			return err
		}
	}
	fmt.Fprintln(w, formatFilters(set.Active()))
	return nil
}

func formatFilters(active []recent.Filter) string {
	if len(active) == 0 {
		return string(recent.FilterAll)
	}
	names := make([]string, 0, len(active))
	for _, f := range active {
		names = append(names, string(f))
	}
	return strings.Join(names, " ")
}
