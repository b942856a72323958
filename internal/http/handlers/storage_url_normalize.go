package handlers

import (
	"net/url"
	"strings"

	types "github.com/yungbote/tourconfig-backend/internal/domain"
	"github.com/yungbote/tourconfig-backend/internal/platform/gcp"
)

const fileProxyPath = "/api/files"

func resolveBucketBackedURL(
	bucket gcp.BucketService,
	category gcp.BucketCategory,
	storageKey string,
	currentURL string,
) string {
	key := strings.TrimSpace(storageKey)
	if bucket == nil || key == "" {
		return strings.TrimSpace(currentURL)
	}
	resolved := strings.TrimSpace(bucket.GetPublicURL(category, key))
	if resolved == "" {
		return strings.TrimSpace(currentURL)
	}
	return resolved
}

func normalizeUserAvatarURL(bucket gcp.BucketService, u *types.User) {
	if u == nil {
		return
	}
	u.AvatarURL = resolveBucketBackedURL(bucket, gcp.BucketCategoryAvatar, u.AvatarBucketKey, u.AvatarURL)
}

func fileProxyURL(key string) string {
	return fileProxyPath + "?key=" + url.QueryEscape(key)
}

// tourAssetURL maps panorama and thumbnail keys to browser URLs: through the
// file proxy when viaProxy is set (private buckets), else the bucket public URL.
func tourAssetURL(bucket gcp.BucketService, viaProxy bool) func(key string) string {
	return func(key string) string {
		key = strings.TrimSpace(key)
		if key == "" {
			return ""
		}
		if viaProxy || bucket == nil {
			return fileProxyURL(key)
		}
		return resolveBucketBackedURL(bucket, gcp.BucketCategoryTour, key, fileProxyURL(key))
	}
}
