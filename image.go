package imgsearch

import "net/url"

// Item is the provider independent shape of a single image hit.
type Item struct {
	Type     string `json:"type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
	HostPage string `json:"hostPage"`
}

// Result is what every provider returns. The pagination fields are nil when
// the provider did not report them.
type Result struct {
	Items                 []Item `json:"items"`
	NextOffset            *int   `json:"nextOffset,omitempty"`
	TotalEstimatedMatches *int64 `json:"totalEstimatedMatches,omitempty"`
}

// Limits are the pagination bounds of a provider.
type Limits struct {
	MaxResultsPerPage int
	MinIndex          int
}

// Options is a provider specific, closed set of search parameters.
type Options interface {
	Values() url.Values
}

// Adapter supplies the provider specific half of a search.
type Adapter[O Options] interface {
	Name() string
	ValidateOptions(opts O, limits Limits) error
	ParseResponse(body []byte) (*Result, error)
}

// Int returns a pointer to n, for filling optional option fields.
func Int(n int) *int {
	return &n
}
