package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agentskill/api"
	"agentskill/config"
	"agentskill/i18n"
	"agentskill/listing"
	"agentskill/logger"
	"agentskill/models"
	"agentskill/pagination"
	"agentskill/seo"
	"agentskill/settings"
	"agentskill/textfmt"
)

const (
	descriptionWidth = 60
	beaconTimeout    = 3 * time.Second
	browseHelp       = "Commands: /search <text>, more, lang en|zh, quit"
)

var browseFlags struct {
	query        string
	topic        string
	language     string
	owner        string
	latest       bool
	openclaw     bool
	lang         string
	settingsPath string
}

func init() {
	f := browseCmd.Flags()
	f.StringVarP(&browseFlags.query, "query", "q", "", "initial search text")
	f.StringVar(&browseFlags.topic, "topic", "", "list one topic")
	f.StringVar(&browseFlags.language, "language", "", "list one programming language")
	f.StringVar(&browseFlags.owner, "owner", "", "list one owner")
	f.BoolVar(&browseFlags.latest, "latest", false, "list the most recently indexed skills")
	f.BoolVar(&browseFlags.openclaw, "openclaw", false, "list OpenClaw skills")
	f.StringVar(&browseFlags.lang, "lang", "", "display language (en or zh), remembered for next time")
	f.StringVar(&browseFlags.settingsPath, "settings", "", "settings file (default ~/.agentskill/config.json)")
	browseCmd.MarkFlagsMutuallyExclusive("topic", "language", "owner", "latest", "openclaw")

	rootCmd.AddCommand(browseCmd)
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse skills in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.NewConfig()
		if err := cfg.Load(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := logger.InitializeCLI("warn"); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Sync()

		path := browseFlags.settingsPath
		if path == "" {
			var err error
			if path, err = settings.DefaultPath(); err != nil {
				return err
			}
		}
		store, err := settings.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open settings: %w", err)
		}

		lang, err := browseLanguage(store, browseFlags.lang)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		client := api.NewClient(cfg.ServerAPIBase())
		sendBeacon(ctx, client, store.VisitorID())

		b := newBrowser(cmd.OutOrStdout(), cmd.InOrStdin(), client, store, lang, browseTarget{
			query:    browseFlags.query,
			topic:    browseFlags.topic,
			language: browseFlags.language,
			owner:    browseFlags.owner,
			latest:   browseFlags.latest,
			openclaw: browseFlags.openclaw,
		})
		return b.run(ctx)
	},
}

// browseLanguage picks the flag, then the stored preference, then the default.
// An explicit flag is remembered.
func browseLanguage(store *settings.Store, flag string) (i18n.Language, error) {
	if flag != "" {
		lang, ok := i18n.Parse(flag)
		if !ok {
			return "", fmt.Errorf("%w: %q", settings.ErrInvalidLanguage, flag)
		}
		return lang, store.SetLanguage(lang)
	}
	if lang, ok := store.Language(); ok {
		return lang, nil
	}
	return i18n.Default, nil
}

func sendBeacon(ctx context.Context, tracker api.Tracker, visitorID string) {
	ctx, cancel := context.WithTimeout(ctx, beaconTimeout)
	defer cancel()
	if err := tracker.TrackVisit(ctx, visitorID); err != nil {
		logger.Debug("Visit beacon failed", zap.Error(err))
	}
}

// browseTarget selects the listing, mirroring the site routes.
type browseTarget struct {
	query    string
	topic    string
	language string
	owner    string
	latest   bool
	openclaw bool
}

// path is the listing route below the language prefix.
func (t browseTarget) path(lang i18n.Language) string {
	switch {
	case t.topic != "":
		return seo.FacetPath(lang, models.FacetTopics, t.topic)
	case t.language != "":
		return seo.FacetPath(lang, models.FacetLanguages, t.language)
	case t.owner != "":
		return seo.FacetPath(lang, models.FacetOwners, t.owner)
	case t.latest:
		return seo.LocalizedPath(lang, "/latest")
	case t.openclaw:
		return seo.LocalizedPath(lang, "/openclaw")
	default:
		return seo.LocalizedPath(lang, "")
	}
}

func (t browseTarget) config() listing.Config {
	cfg := listing.Config{PageSize: pagination.PageSize}
	switch {
	case t.topic != "":
		cfg.Options.Topic = t.topic
	case t.language != "":
		cfg.Options.Language = t.language
	case t.owner != "":
		cfg.Options.Owner = t.owner
	case t.latest:
		cfg.Options.Sort = api.SortNewest
	case t.openclaw:
		cfg.BaseQuery = "openclaw"
	}
	return cfg
}

type browser struct {
	out     io.Writer
	in      io.Reader
	fetcher api.Fetcher
	prefs   listing.Preferences
	target  browseTarget
	lang    i18n.Language
	ctrl    *listing.Controller
	shown   int

	okColor   *color.Color
	infoColor *color.Color
	errColor  *color.Color
}

func newBrowser(out io.Writer, in io.Reader, fetcher api.Fetcher, prefs listing.Preferences, lang i18n.Language, target browseTarget) *browser {
	if target.latest {
		target.query = ""
	}
	return &browser{
		out:       out,
		in:        in,
		fetcher:   fetcher,
		prefs:     prefs,
		target:    target,
		lang:      lang,
		okColor:   color.New(color.FgGreen),
		infoColor: color.New(color.FgCyan),
		errColor:  color.New(color.FgRed, color.Bold),
	}
}

// run loads the first page, then serves commands until quit or end of input.
func (b *browser) run(ctx context.Context) error {
	b.reset()
	b.search(ctx, b.target.query)
	b.infoColor.Fprintln(b.out, browseHelp)

	scanner := bufio.NewScanner(b.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			return nil
		case line == "more":
			b.more(ctx)
		case strings.HasPrefix(line, "/search"):
			if b.target.latest {
				b.errColor.Fprintln(b.out, "search is not available on the latest listing")
				continue
			}
			b.search(ctx, strings.TrimSpace(strings.TrimPrefix(line, "/search")))
		case strings.HasPrefix(line, "lang"):
			if err := b.switchLanguage(ctx, strings.TrimSpace(strings.TrimPrefix(line, "lang"))); err != nil {
				b.errColor.Fprintln(b.out, err)
			}
		default:
			b.infoColor.Fprintln(b.out, browseHelp)
		}
	}
	return scanner.Err()
}

// reset starts a fresh controller, as a page navigation would.
func (b *browser) reset() {
	b.ctrl = listing.NewController(b.fetcher, b.prefs, b.target.config(), models.SkillListResponse{}, 0)
	b.shown = 0
}

func (b *browser) search(ctx context.Context, query string) {
	committed, err := b.ctrl.Search(ctx, query)
	if !committed {
		return
	}
	if err != nil {
		b.errColor.Fprintf(b.out, "%s: %v\n", i18n.For(b.lang).Error, err)
		return
	}
	b.shown = 0
	b.print()
}

func (b *browser) more(ctx context.Context) {
	snap := b.ctrl.Snapshot()
	if !snap.HasMore() {
		b.infoColor.Fprintln(b.out, i18n.For(b.lang).Empty)
		return
	}
	committed, err := b.ctrl.LoadMore(ctx)
	if !committed {
		return
	}
	if err != nil {
		b.errColor.Fprintf(b.out, "%s: %v\n", i18n.For(b.lang).Error, err)
		return
	}
	b.print()
}

func (b *browser) switchLanguage(ctx context.Context, arg string) error {
	lang, ok := i18n.Parse(arg)
	if !ok {
		return fmt.Errorf("%w: %q", settings.ErrInvalidLanguage, arg)
	}
	query := b.ctrl.Snapshot().Query
	target, err := b.ctrl.SwitchLanguage(b.target.path(b.lang), lang)
	if err != nil {
		return err
	}
	b.lang = lang
	b.infoColor.Fprintf(b.out, "-> %s\n", target)

	b.reset()
	b.search(ctx, query)
	return nil
}

// print renders the rows not yet shown and the counter line.
func (b *browser) print() {
	snap := b.ctrl.Snapshot()
	m := i18n.For(b.lang)

	if len(snap.Items) == 0 {
		b.infoColor.Fprintln(b.out, m.Empty)
		return
	}

	cnf := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
	}
	table := tablewriter.NewTable(b.out, tablewriter.WithConfig(cnf))
	table.Header("#", m.DetailFullName, m.DetailStars, m.DetailLanguage, m.DetailSummary)

	for i := b.shown; i < len(snap.Items); i++ {
		s := snap.Items[i]
		table.Append(
			strconv.Itoa(snap.Offset+i+1),
			s.FullName,
			textfmt.Number(string(b.lang), s.Stars),
			textfmt.FirstNonEmpty(s.Language, m.DetailUnknown),
			textfmt.Snippet(textfmt.FirstNonEmpty(seo.LocalizedDescription(b.lang, s), m.DetailNoDescription), descriptionWidth),
		)
	}
	if err := table.Render(); err != nil {
		b.errColor.Fprintf(b.out, "failed to render table: %v\n", err)
		return
	}
	b.shown = len(snap.Items)

	first, last := pagination.Range(snap.Offset, len(snap.Items))
	b.okColor.Fprintf(b.out, "%s %s-%s / %s\n", m.CountLabel,
		textfmt.Number(string(b.lang), first),
		textfmt.Number(string(b.lang), last),
		textfmt.Number(string(b.lang), snap.Total),
	)
	if snap.HasMore() {
		b.infoColor.Fprintf(b.out, "more: %s\n", m.LoadMore)
	}
}
