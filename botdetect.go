package sharegate

import (
	"regexp"
	"strings"
)

// crawlerPattern matches the User-Agents of social link-preview fetchers and
// search indexers. This is a heuristic, not a security boundary: any client
// may claim to be a crawler and receive the static share card.
var crawlerPattern = regexp.MustCompile(`(?i)facebookexternalhit|facebot|twitterbot|linkedinbot|whatsapp|googlebot|bingbot|slackbot|applebot|discordbot|telegrambot|skypeuripreview|slurp|duckduckbot|baiduspider|yandex|sogou|exabot|ia_archiver`)

// slugPattern captures the slug segment of a post URL path.
var slugPattern = regexp.MustCompile(`/post/([^/?#]+)`)

// IsCrawler reports whether the User-Agent belongs to a known bot.
func IsCrawler(ua string) bool {
	return crawlerPattern.MatchString(ua)
}

// botNames maps UA substrings to display vendor names, checked in order so
// specific tokens win over generic ones.
var botNames = []struct {
	token string
	name  string
}{
	{"facebookexternalhit", "Facebook"},
	{"facebot", "Facebook"},
	{"twitterbot", "Twitter"},
	{"linkedinbot", "LinkedIn"},
	{"whatsapp", "WhatsApp"},
	{"googlebot", "Google"},
	{"bingbot", "Bing"},
	{"slackbot", "Slack"},
	{"applebot", "Apple"},
	{"discordbot", "Discord"},
	{"telegrambot", "Telegram"},
	{"skypeuripreview", "Skype"},
	{"slurp", "Yahoo"},
	{"duckduckbot", "DuckDuckGo"},
	{"baiduspider", "Baidu"},
	{"yandex", "Yandex"},
	{"sogou", "Sogou"},
	{"exabot", "Exalead"},
	{"ia_archiver", "Internet Archive"},
}

// BotName returns a display name for a crawler User-Agent, or "Unknown".
func BotName(ua string) string {
	ua = strings.ToLower(ua)
	for _, b := range botNames {
		if strings.Contains(ua, b.token) {
			return b.name
		}
	}
	if strings.Contains(ua, "bot") {
		return "Other Bot"
	}
	return "Unknown"
}

// PostSlug extracts the slug from a /post/<slug> path. The query string and
// fragment are excluded; the value is treated as opaque downstream.
func PostSlug(path string) string {
	m := slugPattern.FindStringSubmatch(path)
	if m == nil {
		return ""
	}
	return m[1]
}

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// IsObjectID reports whether slug looks like a 24-character hex document id,
// which selects the id-based backend endpoint instead of the slug one.
func IsObjectID(slug string) bool {
	return objectIDPattern.MatchString(slug)
}
