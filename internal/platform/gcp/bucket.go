package gcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/tourconfig-backend/internal/platform/logger"
)

type BucketCategory string

const (
	// BucketCategoryTour holds panoramas, thumbnails and the catalog assets.
	BucketCategoryTour   BucketCategory = "tour"
	BucketCategoryAvatar BucketCategory = "avatar"
)

// ErrObjectNotFound is returned (wrapped) when a key does not exist in its bucket.
var ErrObjectNotFound = errors.New("object not found")

type BucketNames struct {
	Tour      string
	TourCDN   string
	Avatar    string
	AvatarCDN string
}

type bucketConfig struct {
	name      string
	cdnDomain string
}

type BucketService interface {
	UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader) error
	DeleteFile(ctx context.Context, category BucketCategory, key string) error
	DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error)
	GetObjectAttrs(ctx context.Context, category BucketCategory, key string) (*ObjectAttrs, error)
	ListKeys(ctx context.Context, category BucketCategory, prefix string) ([]string, error)
	GetPublicURL(category BucketCategory, key string) string
}

// SizedReader is implemented by DownloadFile bodies that know how many bytes
// they will yield. Size is -1 when it is unknown, as with decompressive
// transcoding of gzip-encoded objects.
type SizedReader interface {
	Size() int64
}

type ObjectAttrs struct {
	Size        int64
	ContentType string
	Updated     time.Time
	ETag        string
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	httpClient    *http.Client
	storageMode   ObjectStorageMode
	emulatorHost  string
	tourBucket    bucketConfig
	avatarBucket  bucketConfig
	publicBaseURL string
}

// BucketNamesFromEnv reads bucket names. The avatar bucket falls back to the tour bucket.
func BucketNamesFromEnv() BucketNames {
	return BucketNames{
		Tour:      strings.TrimSpace(os.Getenv("TOUR_GCS_BUCKET_NAME")),
		TourCDN:   strings.TrimSpace(os.Getenv("TOUR_CDN_DOMAIN")),
		Avatar:    strings.TrimSpace(os.Getenv("AVATAR_GCS_BUCKET_NAME")),
		AvatarCDN: strings.TrimSpace(os.Getenv("AVATAR_CDN_DOMAIN")),
	}
}

func NewBucketServiceWithConfig(log *logger.Logger, storageCfg ObjectStorageConfig, names BucketNames) (BucketService, error) {
	if err := ValidateObjectStorageConfig(storageCfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	if names.Tour == "" {
		return nil, fmt.Errorf("missing env var TOUR_GCS_BUCKET_NAME")
	}
	if names.Avatar == "" {
		names.Avatar = names.Tour
	}
	serviceLog := log.With("service", "BucketService")

	stClient, err := newStorageClientForMode(context.Background(), storageCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog.Info(
		"Object storage initialized",
		"mode", storageCfg.Mode,
		"mode_source", storageCfg.ModeSource(),
		"emulator_host", storageCfg.EmulatorHost,
		"public_base_url", storageCfg.publicBase(),
		"tour_bucket", names.Tour,
		"avatar_bucket", names.Avatar,
	)

	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		httpClient:    &http.Client{Timeout: 2 * time.Minute},
		storageMode:   storageCfg.Mode,
		emulatorHost:  strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/"),
		tourBucket:    bucketConfig{name: names.Tour, cdnDomain: names.TourCDN},
		avatarBucket:  bucketConfig{name: names.Avatar, cdnDomain: names.AvatarCDN},
		publicBaseURL: storageCfg.publicBase(),
	}, nil
}

func newStorageClientForMode(ctx context.Context, storageCfg ObjectStorageConfig) (*storage.Client, error) {
	switch storageCfg.Mode {
	case ObjectStorageModeGCS:
		opts := ClientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		endpoint := strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/")
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(storageCfg.Mode)}
	}
}

func (bs *bucketService) getBucketConfig(category BucketCategory) (bucketConfig, error) {
	switch category {
	case BucketCategoryTour:
		return bs.tourBucket, nil
	case BucketCategoryAvatar:
		return bs.avatarBucket, nil
	default:
		return bucketConfig{}, fmt.Errorf("unknown bucket category: %s", category)
	}
}

func (bs *bucketService) UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader) error {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(cfg.name).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (bs *bucketService) DeleteFile(ctx context.Context, category BucketCategory, key string) error {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := bs.storageClient.Bucket(cfg.name).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, cfg.name, mapNotFound(err))
	}
	return nil
}

func (bs *bucketService) ListKeys(ctx context.Context, category BucketCategory, prefix string) ([]string, error) {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	it := bs.storageClient.Bucket(cfg.name).Objects(ctx, &storage.Query{Prefix: prefix})
	out := []string{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, attrs.Name)
	}
	return out, nil
}

func (bs *bucketService) GetPublicURL(category BucketCategory, key string) string {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return key
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if cfg.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.cdnDomain, key)
	}
	if bs.storageMode == ObjectStorageModeGCSEmulator {
		base := bs.publicBaseURL
		if base == "" {
			base = bs.emulatorHost
		}
		if base != "" {
			return emulatorObjectURL(base, cfg.name, key) + "?alt=media"
		}
	}
	if bs.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", bs.publicBaseURL, cfg.name, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.name, key)
}

// The reader's context must outlive this call, so cancel is tied to Close.
type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
	size   int64
}

func (r *readCloserWithCancel) Size() int64 { return r.size }

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	if r.cancel != nil {
		r.cancel()
	}
	return err
}

func (bs *bucketService) isEmulatorMode() bool {
	return bs != nil && IsEmulatorObjectStorageMode(bs.storageMode) && bs.emulatorHost != ""
}

func emulatorObjectURL(base, bucket, key string) string {
	return fmt.Sprintf(
		"%s/storage/v1/b/%s/o/%s",
		strings.TrimRight(strings.TrimSpace(base), "/"),
		url.PathEscape(bucket),
		url.PathEscape(key),
	)
}

func (bs *bucketService) DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error) {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return nil, err
	}
	ctx2, cancel := context.WithTimeout(ctx, 2*time.Minute)
	if bs.isEmulatorMode() {
		resp, err := bs.emulatorGet(ctx2, emulatorObjectURL(bs.emulatorHost, cfg.name, key)+"?alt=media")
		if err != nil {
			cancel()
			return nil, fmt.Errorf("emulator download %q: %w", key, err)
		}
		size := resp.ContentLength
		if resp.Uncompressed || resp.Header.Get("Content-Encoding") != "" {
			size = -1
		}
		return &readCloserWithCancel{ReadCloser: resp.Body, cancel: cancel, size: size}, nil
	}

	r, err := bs.storageClient.Bucket(cfg.name).Object(key).NewReader(ctx2)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open GCS reader for %q: %w", key, mapNotFound(err))
	}
	// Remain is -1 when GCS transcodes; the stored size would be wrong then.
	size := r.Remain()
	if r.Attrs.ContentEncoding != "" && r.Attrs.ContentEncoding != "identity" {
		size = -1
	}
	return &readCloserWithCancel{ReadCloser: r, cancel: cancel, size: size}, nil
}

func (bs *bucketService) GetObjectAttrs(ctx context.Context, category BucketCategory, key string) (*ObjectAttrs, error) {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return nil, err
	}
	ctx2, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if bs.isEmulatorMode() {
		resp, err := bs.emulatorGet(ctx2, emulatorObjectURL(bs.emulatorHost, cfg.name, key))
		if err != nil {
			return nil, fmt.Errorf("emulator attrs %q: %w", key, err)
		}
		defer resp.Body.Close()

		var payload struct {
			Size        string `json:"size"`
			ContentType string `json:"contentType"`
			Updated     string `json:"updated"`
			ETag        string `json:"etag"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode emulator attrs: %w", err)
		}
		size, _ := strconv.ParseInt(strings.TrimSpace(payload.Size), 10, 64)
		updated := time.Time{}
		if ts := strings.TrimSpace(payload.Updated); ts != "" {
			if parsed, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
				updated = parsed
			}
		}
		return &ObjectAttrs{
			Size:        size,
			ContentType: firstNonEmpty(payload.ContentType, contentTypeForKey(key)),
			Updated:     updated,
			ETag:        payload.ETag,
		}, nil
	}

	attrs, err := bs.storageClient.Bucket(cfg.name).Object(key).Attrs(ctx2)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch GCS object attrs for %q: %w", key, mapNotFound(err))
	}
	return &ObjectAttrs{
		Size:        attrs.Size,
		ContentType: firstNonEmpty(attrs.ContentType, contentTypeForKey(key)),
		Updated:     attrs.Updated,
		ETag:        attrs.Etag,
	}, nil
}

// emulatorGet returns a 200 response or an error; a 404 maps to ErrObjectNotFound.
func (bs *bucketService) emulatorGet(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	client := bs.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	_ = resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrObjectNotFound
	}
	return nil, fmt.Errorf("status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func mapNotFound(err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%w: %v", ErrObjectNotFound, err)
	}
	return err
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch path.Ext(s) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".json":
		return "application/json"
	case ".xml":
		return "application/xml"
	case ".js":
		return "application/javascript"
	case ".mp4":
		return "video/mp4"
	default:
		return ""
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
