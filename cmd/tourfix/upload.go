package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/yungbote/tourconfig-backend/internal/platform/gcp"
)

// uploadFile pushes a produced asset to the tour bucket under --upload-prefix,
// using the same storage env as the server.
func uploadFile(ctx context.Context, localPath string) error {
	storageCfg, err := gcp.ResolveObjectStorageConfigFromEnv()
	if err != nil {
		return fmt.Errorf("resolve object storage: %w", err)
	}
	bucket, err := gcp.NewBucketServiceWithConfig(log, storageCfg, gcp.BucketNamesFromEnv())
	if err != nil {
		return fmt.Errorf("init bucket: %w", err)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	key := path.Join(uploadPrefix, filepath.Base(localPath))
	if err := bucket.UploadFile(ctx, gcp.BucketCategoryTour, key, f); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	log.Info("Uploaded to tour bucket", "key", key, "url", bucket.GetPublicURL(gcp.BucketCategoryTour, key))
	return nil
}
