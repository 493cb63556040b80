package catalog

import (
	"net/url"
	"strconv"
)

// Defaults for the photo search API.
const (
	DefaultBaseURL    = "https://api.flickr.com/services/rest/"
	DefaultMethod     = "flickr.photos.search"
	DefaultImageField = "url_m"
	DefaultPerPage    = 21
	// DefaultMaxPages bounds random page selection. The search API only
	// serves the first 4000 results, which is 190 pages of 21.
	DefaultMaxPages = 190
)

// SearchParams is one search request. Zero PerPage or Page values are left
// out of the query.
type SearchParams struct {
	Method     string
	APIKey     string
	BBox       string
	SafeSearch string
	Extras     string
	Format     string
	NoCallback string
	PerPage    int
	Page       int
}

// Values returns the query parameters for p.
func (p SearchParams) Values() url.Values {
	v := url.Values{}
	v.Set("method", p.Method)
	v.Set("api_key", p.APIKey)
	v.Set("bbox", p.BBox)
	v.Set("safe_search", p.SafeSearch)
	v.Set("extras", p.Extras)
	v.Set("format", p.Format)
	v.Set("nojsoncallback", p.NoCallback)
	if p.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	return v
}

// Encode renders p as a query string, including the leading "?". Keys are
// sorted and every value is percent-encoded, so the output is stable.
func (p SearchParams) Encode() string {
	return "?" + p.Values().Encode()
}
