package sharegate

import (
	"strings"
	"testing"
)

const origin = "https://news.example.com"

func TestNormalizeImageURLCloudinary(t *testing.T) {
	got := NormalizeImageURL("https://res.cloudinary.com/demo/image/upload/v123/sample.jpg", origin)
	want := "https://res.cloudinary.com/demo/image/upload/w_1200,h_630,c_fill,f_auto,q_auto/v123/sample.jpg"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	for _, param := range []string{"w_1200", "h_630", "c_fill"} {
		if !strings.Contains(got, param) {
			t.Errorf("rewritten URL missing %s", param)
		}
	}
}

func TestNormalizeImageURLCloudinaryReplacesTransform(t *testing.T) {
	got := NormalizeImageURL("https://res.cloudinary.com/demo/image/upload/w_400,h_300,c_fit/v123/sample.jpg", origin)
	if strings.Contains(got, "w_400") {
		t.Errorf("existing transform should be replaced, got %q", got)
	}
	if strings.Count(got, "w_1200") != 1 {
		t.Errorf("transform should appear exactly once, got %q", got)
	}
}

func TestNormalizeImageURLUpgradesHTTP(t *testing.T) {
	got := NormalizeImageURL("http://res.cloudinary.com/demo/image/upload/v1/pic.jpg", origin)
	if !strings.HasPrefix(got, "https://") {
		t.Errorf("expected https upgrade, got %q", got)
	}
	if !strings.Contains(got, "w_1200,h_630,c_fill") {
		t.Errorf("upgrade should not skip the rewrite, got %q", got)
	}

	if got := NormalizeImageURL("http://cdn.example.com/pic.jpg", origin); got != "https://cdn.example.com/pic.jpg" {
		t.Errorf("got %q, want https upgrade for plain hosts too", got)
	}
}

func TestNormalizeImageURLRejectsDataURI(t *testing.T) {
	if got := NormalizeImageURL("data:image/png;base64,AAAA", origin); got != "" {
		t.Errorf("data URI should be discarded, got %q", got)
	}
	if got := NormalizeImageURL("DATA:image/png;base64,AAAA", origin); got != "" {
		t.Errorf("data URI check should be case-insensitive, got %q", got)
	}
}

func TestNormalizeImageURLAbsolutizesRelative(t *testing.T) {
	if got := NormalizeImageURL("/uploads/pic.jpg", origin); got != "https://news.example.com/uploads/pic.jpg" {
		t.Errorf("got %q", got)
	}
	if got := NormalizeImageURL("//cdn.example.com/pic.jpg", origin); got != "https://cdn.example.com/pic.jpg" {
		t.Errorf("protocol-relative: got %q", got)
	}
}

func TestNormalizeImageURLEmptyAndJunk(t *testing.T) {
	if got := NormalizeImageURL("", origin); got != "" {
		t.Errorf("empty input: got %q", got)
	}
	if got := NormalizeImageURL("   ", origin); got != "" {
		t.Errorf("whitespace input: got %q", got)
	}
	if got := NormalizeImageURL("ftp://example.com/pic.jpg", origin); got != "" {
		t.Errorf("non-http scheme: got %q", got)
	}
}
