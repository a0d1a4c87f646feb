package sharegate

// Post is the externally-owned content record fetched from the backend API.
// Every field is optional; consumers default anything that is absent.
type Post struct {
	ID            string `json:"_id"`
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Excerpt       string `json:"excerpt"`
	Description   string `json:"description"`
	Subheading    string `json:"subheading"`
	Content       string `json:"content"` // rendered HTML from the backend
	Category      string `json:"category"`
	Author        string `json:"author"`
	PublishedAt   string `json:"publishedAt"`
	Published     bool   `json:"published"`
	FeaturedImage struct {
		URL string `json:"url"`
	} `json:"featuredImage"`
	FeaturedVideo struct {
		Thumbnail string `json:"thumbnail"`
		URL       string `json:"url"`
	} `json:"featuredVideo"`
}

// PostPage is one page of list results after envelope normalization.
type PostPage struct {
	Posts   []Post `json:"items"`
	Total   int    `json:"total"`
	HasMore bool   `json:"hasMore"`
}

// ListParams selects a page of posts from the backend.
type ListParams struct {
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
	Category string `json:"category,omitempty"`
	Search   string `json:"search,omitempty"`
}

// PageMeta carries the resolved share-card fields into the OG template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	Image       string // empty when no usable image resolved
	ImageAlt    string
	SiteName    string
	Locale      string
	OGType      string // "website" or "article"
}
