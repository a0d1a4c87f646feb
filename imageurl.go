package sharegate

import (
	"net/url"
	"strings"
)

// Cloudinary transformation forcing crawler-acceptable card dimensions.
const cloudinaryTransform = "w_1200,h_630,c_fill,f_auto,q_auto"

// NormalizeImageURL prepares an image URL for use as og:image. It discards
// data: URIs (crawlers cannot fetch them), absolutizes relative paths against
// origin, applies the Cloudinary card transformation, and finally upgrades
// http to https — WhatsApp's fetcher refuses plain-http images. The https
// upgrade happens after the Cloudinary rewrite, not before.
// Returns "" when no usable URL can be produced.
func NormalizeImageURL(raw, origin string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "data:") {
		return ""
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSuffix(origin, "/") + raw
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}

	out := rewriteCloudinary(raw)

	if strings.HasPrefix(out, "http://") {
		out = "https://" + strings.TrimPrefix(out, "http://")
	}
	return out
}

// rewriteCloudinary injects the card transformation into a Cloudinary
// delivery URL. Cloudinary paths look like
// /<cloud_name>/image/upload/[existing transforms/][v123/]<public id>;
// the transformation slots in directly after the upload segment. Existing
// transformation segments are replaced rather than stacked. Non-Cloudinary
// URLs pass through untouched.
func rewriteCloudinary(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.Contains(u.Host, "cloudinary.com") {
		return raw
	}
	const marker = "/upload/"
	idx := strings.Index(u.Path, marker)
	if idx < 0 {
		return raw
	}
	prefix := u.Path[:idx+len(marker)]
	rest := u.Path[idx+len(marker):]

	// Drop a leading transformation segment (contains "_" and ",") so
	// repeated rewrites stay idempotent.
	if slash := strings.Index(rest, "/"); slash > 0 {
		first := rest[:slash]
		if strings.Contains(first, "_") && strings.Contains(first, ",") {
			rest = rest[slash+1:]
		}
	}

	u.Path = prefix + cloudinaryTransform + "/" + rest
	return u.String()
}

// IsCloudinary reports whether the URL is served by the Cloudinary CDN.
func IsCloudinary(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && strings.Contains(u.Host, "cloudinary.com")
}
