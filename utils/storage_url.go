package utils

import (
	"net/url"
	"strings"
)

// BuildObjectAccessURL returns the public URL of objectKey in bucket.
func BuildObjectAccessURL(gcsURL, bucket, objectKey string) string {
	gcsURL = strings.TrimRight(strings.TrimSpace(gcsURL), "/")
	bucket = strings.TrimSpace(bucket)
	if gcsURL == "" || bucket == "" {
		return objectKey
	}
	if !strings.Contains(gcsURL, "://") {
		gcsURL = "https://" + gcsURL
	}
	return gcsURL + "/" + bucket + "/" + objectKey
}

// ExtractObjectKeyFromURL derives the object key from a stored access URL.
// It returns "" when the URL does not point into bucket.
func ExtractObjectKeyFromURL(bucket, rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	// Raw object keys are passed through (e.g. "zone-expense/receipts/x.png").
	if !strings.Contains(rawURL, "://") && !strings.HasPrefix(rawURL, "/") && strings.Contains(rawURL, "/") {
		if strings.Contains(rawURL, "..") {
			return ""
		}
		return rawURL
	}

	if strings.HasPrefix(rawURL, "gs://") {
		parts := strings.SplitN(strings.TrimPrefix(rawURL, "gs://"), "/", 2)
		if len(parts) == 2 && parts[0] == bucket {
			return parts[1]
		}
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if key := parsed.Query().Get("objectKey"); key != "" {
		return key
	}

	// - https://storage.googleapis.com/<bucket>/<objectKey>
	// - https://<bucket>.storage.googleapis.com/<objectKey>
	// - https://storage.cloud.google.com/<bucket>/<objectKey>
	host := strings.ToLower(parsed.Host)
	p := strings.TrimPrefix(parsed.Path, "/")
	if strings.HasSuffix(host, ".storage.googleapis.com") {
		if strings.TrimSuffix(host, ".storage.googleapis.com") == strings.ToLower(bucket) {
			return p
		}
		return ""
	}
	parts := strings.SplitN(p, "/", 2)
	if len(parts) == 2 && parts[0] == bucket && parts[1] != "" {
		return parts[1]
	}
	return ""
}
