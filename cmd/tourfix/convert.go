package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/tourconfig-backend/internal/configurator"
	"github.com/yungbote/tourconfig-backend/internal/tourxml"
)

var (
	convertYAMLPath    string
	convertOutPath     string
	convertProductPath string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert an authoring YAML scene list into the JSON scene catalog",
	Args:  cobra.NoArgs,
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&convertYAMLPath, "scenes-yaml", "scenes.yaml", "Authoring YAML to read")
	convertCmd.Flags().StringVar(&convertOutPath, "out", configurator.SceneCatalogAsset, "Scene catalog JSON to write")
	convertCmd.Flags().StringVar(&convertProductPath, "product", "", "Product catalog JSON to validate against")
}

func runConvert(cmd *cobra.Command, args []string) error {
	in, err := os.Open(convertYAMLPath)
	if err != nil {
		return fmt.Errorf("open authoring yaml: %w", err)
	}
	records, err := tourxml.ParseAuthoring(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", convertYAMLPath, err)
	}

	if convertProductPath != "" {
		raw, err := os.ReadFile(convertProductPath)
		if err != nil {
			return fmt.Errorf("read product catalog: %w", err)
		}
		product, err := configurator.ParseProductCatalog(raw)
		if err != nil {
			return fmt.Errorf("parse product catalog: %w", err)
		}
		warnings, err := configurator.Validate(product, configurator.SceneCatalog{Records: records})
		if err != nil {
			return err
		}
		for _, w := range warnings {
			log.Warn("Scene catalog warning", "warning", w)
		}
	}

	var out bytes.Buffer
	if err := tourxml.WriteSceneCatalog(&out, records); err != nil {
		return fmt.Errorf("encode scene catalog: %w", err)
	}
	if err := os.WriteFile(convertOutPath, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", convertOutPath, err)
	}
	log.Info("Scene catalog written", "out", convertOutPath, "scenes", len(records))

	if upload {
		return uploadFile(cmd.Context(), convertOutPath)
	}
	return nil
}
