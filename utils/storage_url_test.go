package utils

import "testing"

func TestBuildObjectAccessURL(t *testing.T) {
	cases := []struct {
		gcsURL, bucket, key, want string
	}{
		{"storage.googleapis.com", "files", "zone-expense/receipts/a.png", "https://storage.googleapis.com/files/zone-expense/receipts/a.png"},
		{"https://cdn.example.com/", "files", "k.png", "https://cdn.example.com/files/k.png"},
		{"", "files", "k.png", "k.png"},
	}
	for _, tc := range cases {
		if got := BuildObjectAccessURL(tc.gcsURL, tc.bucket, tc.key); got != tc.want {
			t.Fatalf("BuildObjectAccessURL(%q, %q, %q) = %q, want %q", tc.gcsURL, tc.bucket, tc.key, got, tc.want)
		}
	}
}

func TestExtractObjectKeyFromURL(t *testing.T) {
	cases := []struct {
		name, raw, want string
	}{
		{"path style", "https://storage.googleapis.com/files/zone-expense/profile/a.png", "zone-expense/profile/a.png"},
		{"virtual host", "https://files.storage.googleapis.com/zone-expense/profile/a.png", "zone-expense/profile/a.png"},
		{"gs scheme", "gs://files/zone-expense/a.png", "zone-expense/a.png"},
		{"query param", "https://example.com/download?objectKey=zone-expense/a.png", "zone-expense/a.png"},
		{"raw key", "zone-expense/receipts/a.pdf", "zone-expense/receipts/a.pdf"},
		{"raw key traversal", "zone-expense/../secrets", ""},
		{"other bucket", "https://storage.googleapis.com/other/a.png", ""},
		{"other bucket host", "https://other.storage.googleapis.com/a.png", ""},
		{"other gs bucket", "gs://other/a.png", ""},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractObjectKeyFromURL("files", tc.raw); got != tc.want {
				t.Fatalf("ExtractObjectKeyFromURL(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestObjectKeyRoundTrip(t *testing.T) {
	key := "zone-expense/receipts/b.pdf"
	if got := ExtractObjectKeyFromURL("files", BuildObjectAccessURL("storage.googleapis.com", "files", key)); got != key {
		t.Fatalf("round trip = %q, want %q", got, key)
	}
}
