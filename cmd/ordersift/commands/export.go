package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ordersift/ordersift/internal/logger"
	"github.com/ordersift/ordersift/pkg/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the store to an XLSX workbook",
	Long: `Export writes the customers, products, orders, and order items
relations to a spreadsheet, one sheet per relation.

Example:
  ordersift export --db orders.db -o orders.xlsx`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "orders.xlsx", "output .xlsx path")
}

func runExport(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(viper.GetString("db"))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	outPath, _ := cmd.Flags().GetString("output")
	if err := st.ExportXLSX(ctx, outPath); err != nil {
		return err
	}

	logger.Info("export complete", "path", outPath)
	return nil
}
