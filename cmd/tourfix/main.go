// Command tourfix prepares tour assets for the configurator: it fixes scene
// metadata in the panorama viewer's tour XML, converts the authoring YAML
// into the JSON scene catalog, and can push the results to the tour bucket.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/tourconfig-backend/internal/platform/envutil"
	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
	"github.com/yungbote/tourconfig-backend/internal/platform/shutdown"
)

var (
	logMode      string
	uploadPrefix string
	upload       bool

	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "tourfix",
	Short:         "Fix up virtual-tour XML and scene catalogs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logger.New(logMode)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		log = l.With("cmd", cmd.Name())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", envutil.String("LOG_MODE", "development"), "Logger mode (development|production)")
	rootCmd.PersistentFlags().BoolVar(&upload, "upload", false, "Upload the produced file to the tour bucket")
	rootCmd.PersistentFlags().StringVar(&uploadPrefix, "upload-prefix", envutil.String("CATALOG_BUCKET_PREFIX", ""), "Object key prefix used with --upload")
	rootCmd.AddCommand(fixXMLCmd, convertCmd)
}

func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "tourfix: %v\n", err)
		os.Exit(1)
	}
}
