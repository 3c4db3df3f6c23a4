package commands

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ordersift/ordersift/internal/logger"
	"github.com/ordersift/ordersift/internal/output"
	"github.com/ordersift/ordersift/pkg/extract"
	"github.com/ordersift/ordersift/pkg/fetcher"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract records from local files or URLs without storing them",
	Long: `Extract runs the extraction engine over notification documents and
writes the records to stdout or a file, bypassing the store. Useful for
checking a template profile against a sample document.

Examples:
  # Local files, JSON to stdout
  ordersift extract sample1.html sample2.html

  # A re-hosted notification by URL, YAML output
  ordersift extract -u "https://archive.internal/po-123.html" --format yaml

  # Check a candidate profile revision
  ordersift extract --profile vendor-po-v2.yaml sample.html`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	flags := extractCmd.Flags()
	flags.StringSliceP("url", "u", nil, "URL(s) to fetch and extract (can be repeated)")
	flags.String("profile", "", "template profile file (default: built-in)")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "json", "output format: json, jsonl, yaml")
	flags.Duration("timeout", 30*time.Second, "request timeout for URL fetches")
}

func runExtract(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	urls, _ := cmd.Flags().GetStringSlice("url")
	if len(args) == 0 && len(urls) == 0 {
		return cmd.Help()
	}

	prof, err := loadProfile(cmd)
	if err != nil {
		return err
	}
	ext, err := extract.New(prof)
	if err != nil {
		return err
	}

	outFile := os.Stdout
	if outPath, _ := cmd.Flags().GetString("output"); outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		outFile = f
	}

	formatStr, _ := cmd.Flags().GetString("format")
	writer, err := output.NewWriter(outFile, output.Format(formatStr))
	if err != nil {
		return err
	}
	defer func() { _ = writer.Close() }()

	count := 0
	errorCount := 0

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("read failed", "file", path, "error", err)
			errorCount++
			continue
		}
		rec, err := ext.Extract(strings.NewReader(string(data)))
		if err != nil {
			logger.Error("extraction failed", "file", path, "error", err)
			errorCount++
			continue
		}
		if err := writer.Write(rec); err != nil {
			return err
		}
		count++
	}

	if len(urls) > 0 {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		f := fetcher.NewStatic(fetcher.StaticConfig{Timeout: timeout})
		defer func() { _ = f.Close() }()

		for _, u := range urls {
			content, err := f.Fetch(ctx, u, fetcher.Options{})
			if err != nil {
				logger.Error("fetch failed", "url", u, "error", err)
				errorCount++
				continue
			}
			rec, err := ext.Extract(strings.NewReader(content.HTML))
			if err != nil {
				logger.Error("extraction failed", "url", u, "error", err)
				errorCount++
				continue
			}
			if err := writer.Write(rec); err != nil {
				return err
			}
			count++
		}
	}

	logger.Info("extraction complete", "extracted", count, "errors", errorCount)
	return nil
}
