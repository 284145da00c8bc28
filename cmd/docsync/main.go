package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/quantmind-br/docsync-go/internal/cache"
	"github.com/quantmind-br/docsync-go/internal/config"
	"github.com/quantmind-br/docsync-go/internal/domain"
	"github.com/quantmind-br/docsync-go/internal/fetcher"
	"github.com/quantmind-br/docsync-go/internal/sitemap"
	"github.com/quantmind-br/docsync-go/internal/sites"
	"github.com/quantmind-br/docsync-go/internal/sync"
	"github.com/quantmind-br/docsync-go/internal/utils"
	"github.com/quantmind-br/docsync-go/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	sitesFile string
	verbose   bool
	log       *utils.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "docsync [site]",
	Short: "Mirror documentation sites as local markdown trees",
	Long: `Docsync keeps local markdown mirrors of documentation websites in
sync. It resolves each site's sitemap, downloads new and changed pages,
reuses unchanged ones, and atomically replaces the local tree together
with a generated index and manifest.

With no argument (or "all") every registered site is synced. Run
"docsync list" to see the registered sites.`,
	Version: version.Short(),
	Args:    cobra.MaximumNArgs(1),
	RunE:    run,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.docsync/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&sitesFile, "sites-file", "", "site overrides file (yaml or json)")
	rootCmd.PersistentFlags().StringP("output", "o", "./docs", "Output root directory")
	rootCmd.PersistentFlags().BoolP("force", "f", false, "Refetch every page regardless of manifest state")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	// Cache flags
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable the HTTP response cache")
	rootCmd.PersistentFlags().Duration("cache-ttl", 24*time.Hour, "Cache TTL")

	// Fetch flags
	rootCmd.PersistentFlags().Duration("request-delay", 100*time.Millisecond, "Delay between downloads")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().String("user-agent", "", "Custom User-Agent")

	// Bind flags to viper
	_ = viper.BindPFlag("output.directory", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("cache.ttl", rootCmd.PersistentFlags().Lookup("cache-ttl"))
	_ = viper.BindPFlag("fetch.request_delay", rootCmd.PersistentFlags().Lookup("request-delay"))
	_ = viper.BindPFlag("fetch.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("fetch.user_agent", rootCmd.PersistentFlags().Lookup("user-agent"))

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logLevel := "info"
	if verbose {
		logLevel = "debug"
	}
	log = utils.NewLogger(utils.LoggerOptions{
		Level:   logLevel,
		Format:  "pretty",
		Verbose: verbose,
	})

	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	force, _ := cmd.Flags().GetBool("force")

	policies, err := selectPolicies(args)
	if err != nil {
		return err
	}

	var overrides *sites.Overrides
	if sitesFile != "" {
		overrides, err = sites.LoadOverrides(utils.ExpandPath(sitesFile))
		if err != nil {
			return fmt.Errorf("failed to load site overrides: %w", err)
		}
	}

	// Cancel on SIGINT/SIGTERM so a half-built snapshot is abandoned
	// instead of committed.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("Shutting down gracefully...")
		cancel()
	}()

	var httpCache domain.Cache
	if cfg.Cache.Enabled {
		httpCache, err = cache.NewBadgerCache(cache.Options{Directory: cfg.Cache.Directory})
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer httpCache.Close()
	}

	client, err := fetcher.NewClient(fetcher.ClientOptions{
		Timeout:     cfg.Fetch.Timeout,
		MaxRetries:  cfg.Fetch.MaxRetries,
		RetryDelay:  cfg.Fetch.RetryDelay,
		MaxDelay:    cfg.Fetch.MaxRetryDelay,
		EnableCache: cfg.Cache.Enabled,
		CacheTTL:    cfg.Cache.TTL,
		Cache:       httpCache,
		UserAgent:   cfg.Fetch.UserAgent,
		ProxyURL:    cfg.Fetch.ProxyURL,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}
	defer client.Close()

	resolver := sitemap.NewResolver(client, log)
	orchestrator := sync.NewOrchestrator(resolver, client, log, sync.Options{
		Force:           force,
		RequestDelay:    cfg.Fetch.RequestDelay,
		SanityDropRatio: cfg.Sync.SanityDropRatio,
		MaxFailRatio:    cfg.Sync.MaxFailRatio,
	})

	succeeded := 0
	attempted := 0
	for _, policy := range policies {
		policy, enabled := overrides.Apply(policy)
		if !enabled {
			log.Info().Str("site", policy.Name).Msg("Site disabled, skipping")
			continue
		}
		if !filepath.IsAbs(policy.OutputDir) {
			policy.OutputDir = filepath.Join(cfg.Output.Directory, policy.OutputDir)
		}

		attempted++
		result, err := orchestrator.Run(ctx, policy)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Str("site", policy.Name).Msg("Sync failed")
			continue
		}
		succeeded++
		log.Info().
			Str("site", policy.Name).
			Int("entries", result.Entries).
			Int("downloaded", result.Downloaded).
			Int("reused", result.Reused).
			Int("failed", result.Failed).
			Msg("Sync complete")
	}

	if attempted == 0 {
		return fmt.Errorf("no sites to sync")
	}
	if succeeded == 0 {
		return fmt.Errorf("all %d site(s) failed", attempted)
	}
	if succeeded < attempted {
		log.Warn().Msgf("%d of %d site(s) failed", attempted-succeeded, attempted)
	}
	return nil
}

// selectPolicies maps the positional argument onto registered site
// policies. No argument and "all" both mean every site.
func selectPolicies(args []string) ([]domain.Policy, error) {
	if len(args) == 0 || args[0] == "all" {
		return sites.All(), nil
	}

	policy, ok := sites.Lookup(args[0])
	if !ok {
		return nil, fmt.Errorf("unknown site %q (available: %s)", args[0], strings.Join(sites.Names(), ", "))
	}
	return []domain.Policy{policy}, nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered sites",
	Run: func(cmd *cobra.Command, args []string) {
		for _, policy := range sites.All() {
			fmt.Printf("%-14s %s\n", policy.Name, policy.SitemapURL)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
	},
}
