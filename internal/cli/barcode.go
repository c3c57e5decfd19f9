package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var barcodeDir string

var barcodeCmd = &cobra.Command{
	Use:   "barcode <procedure-id>",
	Short: "Download a procedure's barcode image",
	Long: `Save the barcode image of a procedure as barcode_<timestamp>.png.

The directory defaults to barcode_dir from the config file.

Examples:
  procview barcode 64f1c2
  procview barcode 64f1c2 --dir ~/Pictures`,
	Args: cobra.ExactArgs(1),
	RunE: runBarcode,
}

func init() {
	barcodeCmd.Flags().StringVarP(&barcodeDir, "dir", "d", "", "destination directory")
}

func runBarcode(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	doc, err := library.Lookup(ctx, args[0])
	if err != nil {
		return err
	}

	dir := barcodeDir
	if dir == "" {
		dir = cfg.BarcodeDir
	}
	path, err := library.DownloadBarcode(ctx, doc, dir)
	if err != nil {
		return fmt.Errorf("download barcode: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
