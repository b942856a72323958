package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/tourconfig-backend/internal/configurator"
	"github.com/yungbote/tourconfig-backend/internal/tourxml"
)

var (
	fixTourPath   string
	fixScenesPath string
	fixOutPath    string
	fixPrefix     string
	fixKeepTitles bool
	fixStrict     bool
)

var fixXMLCmd = &cobra.Command{
	Use:   "fix-xml",
	Short: "Set scene titles and image URLs in a tour XML from the scene catalog",
	Long: `Reads the tour XML, sets the title of every <scene name=...> that has a
record in the scene catalog, optionally moves its <image> URLs under a new
prefix, and reports scenes present on only one side.`,
	Args: cobra.NoArgs,
	RunE: runFixXML,
}

func init() {
	fixXMLCmd.Flags().StringVar(&fixTourPath, "tour", "tour.xml", "Tour XML to read")
	fixXMLCmd.Flags().StringVar(&fixScenesPath, "scenes", configurator.SceneCatalogAsset, "Scene catalog JSON")
	fixXMLCmd.Flags().StringVar(&fixOutPath, "out", "", "Output path (default: overwrite --tour)")
	fixXMLCmd.Flags().StringVar(&fixPrefix, "image-prefix", "", "Prefix for <image> source URLs")
	fixXMLCmd.Flags().BoolVar(&fixKeepTitles, "keep-titles", false, "Do not overwrite existing scene titles")
	fixXMLCmd.Flags().BoolVar(&fixStrict, "strict", false, "Fail when scenes are unmatched on either side")
}

func runFixXML(cmd *cobra.Command, args []string) error {
	rawScenes, err := os.ReadFile(fixScenesPath)
	if err != nil {
		return fmt.Errorf("read scenes: %w", err)
	}
	scenes, err := configurator.ParseSceneCatalog(rawScenes)
	if err != nil {
		return fmt.Errorf("parse scenes %s: %w", fixScenesPath, err)
	}

	in, err := os.Open(fixTourPath)
	if err != nil {
		return fmt.Errorf("open tour: %w", err)
	}
	var out bytes.Buffer
	report, err := tourxml.Fix(in, &out, scenes, tourxml.Options{
		ImagePrefix: fixPrefix,
		KeepTitles:  fixKeepTitles,
	})
	in.Close()
	if err != nil {
		return fmt.Errorf("fix %s: %w", fixTourPath, err)
	}

	dst := fixOutPath
	if dst == "" {
		dst = fixTourPath
	}
	if err := os.WriteFile(dst, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}

	log.Info("Tour XML fixed",
		"out", dst,
		"matched", len(report.Matched),
		"images_rewritten", report.ImagesRewritten,
	)
	for _, name := range report.MissingInCatalog {
		log.Warn("Scene in tour has no catalog record", "scene", name)
	}
	for _, id := range report.MissingInTour {
		log.Warn("Catalog record has no scene in tour", "scene", id)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}

	if upload {
		if err := uploadFile(cmd.Context(), dst); err != nil {
			return err
		}
	}
	if fixStrict && !report.Clean() {
		return fmt.Errorf("%d tour scenes without record, %d records without scene",
			len(report.MissingInCatalog), len(report.MissingInTour))
	}
	return nil
}
