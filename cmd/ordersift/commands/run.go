package commands

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ordersift/ordersift/internal/logger"
	"github.com/ordersift/ordersift/internal/mailbox"
	"github.com/ordersift/ordersift/pkg/extract"
	"github.com/ordersift/ordersift/pkg/ordersift"
	"github.com/ordersift/ordersift/pkg/profile"
	"github.com/ordersift/ordersift/pkg/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process pending notification messages into the store",
	Long: `Run lists messages from the configured source, skips the ones a
previous run already processed, and extracts and upserts the rest.

Failed messages are logged and left unmarked, so the next run retries
them.

Examples:
  # Gmail source with the default subject filter
  ordersift run --credentials credentials.json --token token.json

  # A folder of .html files (offline reprocessing)
  ordersift run --source dir --maildir ./archive

  # Archive raw copies before extraction
  ordersift run --source dir --maildir ./inbox --archive-dir ./archive`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()

	// Source settings
	flags.String("source", "gmail", "message source: gmail, dir")
	flags.String("maildir", "", "directory of .html messages (source=dir)")
	flags.String("credentials", "credentials.json", "OAuth client credentials file (source=gmail)")
	flags.String("token", "token.json", "OAuth user token file (source=gmail)")
	flags.String("query", "Action Required: PO", "subject filter (source=gmail)")
	flags.Int64("max-results", 0, "max messages to list (0=backend default)")

	// Processing settings
	flags.String("profile", "", "template profile file (default: built-in)")
	flags.String("archive-dir", "", "archive raw message copies to this directory")
	flags.IntP("concurrency", "c", 3, "concurrent extractions")
	flags.String("max-body-size", "1MB", "max message body size (e.g. 256KB, 1MB, 0=unlimited)")

	_ = viper.BindPFlag("credentials", flags.Lookup("credentials"))
	_ = viper.BindPFlag("token", flags.Lookup("token"))
	_ = viper.BindPFlag("query", flags.Lookup("query"))
}

func runRun(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src, err := buildSource(ctx, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	prof, err := loadProfile(cmd)
	if err != nil {
		return err
	}
	ext, err := extract.New(prof)
	if err != nil {
		return err
	}

	st, err := store.Open(viper.GetString("db"))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	opts := []ordersift.Option{
		ordersift.WithSource(src),
		ordersift.WithStore(st),
		ordersift.WithExtractor(ext),
	}

	if concurrency, _ := cmd.Flags().GetInt("concurrency"); concurrency > 0 {
		opts = append(opts, ordersift.WithConcurrency(concurrency))
	}

	maxBodyStr, _ := cmd.Flags().GetString("max-body-size")
	if s := strings.TrimSpace(maxBodyStr); s != "" && s != "0" {
		size, err := humanize.ParseBytes(s)
		if err != nil {
			return fmt.Errorf("invalid max-body-size %q: %w", maxBodyStr, err)
		}
		opts = append(opts, ordersift.WithMaxBodySize(int(size)))
	}

	if archiveDir, _ := cmd.Flags().GetString("archive-dir"); archiveDir != "" {
		opts = append(opts, ordersift.WithArchiver(mailbox.NewArchiver(archiveDir)))
	}

	o, err := ordersift.New(opts...)
	if err != nil {
		return err
	}

	summary, err := o.ProcessAll(ctx)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		logger.Warn("some messages failed and will be retried next run",
			"failed", summary.Failed)
	}
	return nil
}

func buildSource(ctx context.Context, cmd *cobra.Command) (mailbox.Source, error) {
	sourceStr, _ := cmd.Flags().GetString("source")
	switch sourceStr {
	case "dir":
		maildir, _ := cmd.Flags().GetString("maildir")
		if maildir == "" {
			return nil, fmt.Errorf("--maildir is required with --source dir")
		}
		return mailbox.NewDirSource(maildir), nil
	case "gmail", "":
		maxResults, _ := cmd.Flags().GetInt64("max-results")
		return mailbox.NewGmailSource(ctx, mailbox.GmailConfig{
			CredentialsFile: viper.GetString("credentials"),
			TokenFile:       viper.GetString("token"),
			Query:           viper.GetString("query"),
			MaxResults:      maxResults,
		})
	default:
		return nil, fmt.Errorf("unknown source: %s (use 'gmail' or 'dir')", sourceStr)
	}
}

func loadProfile(cmd *cobra.Command) (profile.Profile, error) {
	path, _ := cmd.Flags().GetString("profile")
	if path == "" {
		return profile.Default(), nil
	}
	return profile.FromFile(path)
}
