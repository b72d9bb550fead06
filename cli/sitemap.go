package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"agentskill/api"
	"agentskill/config"
	"agentskill/logger"
	"agentskill/sitemap"
)

func init() {
	rootCmd.AddCommand(sitemapCmd)
}

var sitemapCmd = &cobra.Command{
	Use:       "sitemap [index|pages|facets|skills N]",
	Short:     "Print a sitemap document",
	Long:      "Builds one of the sitemap documents the server exposes and writes it to stdout.",
	ValidArgs: []string{"index", "pages", "facets", "skills"},
	Args:      cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.NewConfig()
		if err := cfg.Load(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := logger.InitializeCLI(cfg.LogLevel); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Sync()

		client := api.NewClient(cfg.ServerAPIBase())
		return writeSitemap(cmd.Context(), cmd.OutOrStdout(), client, cfg.SiteOrigin, time.Now(), args)
	},
}

// writeSitemap renders the document named by args. No argument means the index.
func writeSitemap(ctx context.Context, out io.Writer, fetcher api.Fetcher, origin string, now time.Time, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	kind := "index"
	if len(args) > 0 {
		kind = args[0]
	}
	if kind != "skills" && len(args) > 1 {
		return fmt.Errorf("sitemap %s takes no page argument", kind)
	}

	var doc any
	switch kind {
	case "index":
		doc = sitemap.BuildIndex(ctx, fetcher, origin, now)
	case "pages":
		doc = sitemap.Pages(origin, now)
	case "facets":
		doc = sitemap.Facets(ctx, fetcher, origin, now)
	case "skills":
		raw := "1.xml"
		if len(args) > 1 {
			raw = args[1]
		}
		page, _, err := sitemap.ParseSkillsPage(raw)
		if err != nil {
			return err
		}
		set, err := sitemap.Skills(ctx, fetcher, origin, page, now)
		if err != nil {
			return err
		}
		doc = set
	default:
		return fmt.Errorf("unknown sitemap %q: want index, pages, facets or skills", kind)
	}
	body, err := sitemap.Render(doc)
	if err != nil {
		return fmt.Errorf("failed to render sitemap: %w", err)
	}
	_, err = out.Write(body)
	return err
}
