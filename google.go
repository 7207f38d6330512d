package imgsearch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const customSearchEndpoint = "https://www.googleapis.com/customsearch/v1"

type CustomSearchImage struct {
	Width       *int    `json:"width"`
	Height      *int    `json:"height"`
	ByteSize    *int64  `json:"byteSize"`
	ContextLink *string `json:"contextLink"`
}

type CustomSearchItem struct {
	Mime  *string            `json:"mime"`
	Link  *string            `json:"link"`
	Image *CustomSearchImage `json:"image"`
}

type CustomSearchResult struct {
	Items   *[]CustomSearchItem `json:"items"`
	Queries struct {
		NextPage []struct {
			StartIndex *int `json:"startIndex"`
		} `json:"nextPage"`
	} `json:"queries"`
	SearchInformation struct {
		TotalResults string `json:"totalResults"`
	} `json:"searchInformation"`
}

// CustomSearchOptions are the parameters of a custom search request.
// Start defaults to 1, Num is required.
type CustomSearchOptions struct {
	Start *int
	Num   *int
}

func (o CustomSearchOptions) Values() url.Values {
	v := url.Values{}
	start := 1
	if o.Start != nil {
		start = *o.Start
	}
	v.Set("start", strconv.Itoa(start))
	if o.Num != nil {
		v.Set("num", strconv.Itoa(*o.Num))
	}
	return v
}

// CustomSearchClient searches images through the custom search JSON API.
type CustomSearchClient = SearchClient[CustomSearchOptions]

type customSearch struct{}

// NewCustomSearchClient needs both the API key and the search engine id (cx).
func NewCustomSearchClient(apiKey, engineID string, opts ...ClientOption) (*CustomSearchClient, error) {
	if apiKey == "" {
		return nil, invalidArgument("expected an API key")
	}
	if engineID == "" {
		return nil, invalidArgument("expected a custom search engine id")
	}
	params := url.Values{}
	params.Set("key", apiKey)
	params.Set("cx", engineID)
	params.Set("searchType", "image")
	limits := Limits{MaxResultsPerPage: 10, MinIndex: 1}
	return newSearchClient[CustomSearchOptions](customSearch{}, customSearchEndpoint, limits, http.Header{}, params, opts)
}

func (customSearch) Name() string { return "google" }

func (customSearch) ValidateOptions(opts CustomSearchOptions, limits Limits) error {
	if opts.Num == nil {
		return invalidArgument("missing number of results to return")
	}
	if opts.Start != nil && *opts.Start < limits.MinIndex {
		return invalidArgument("invalid start index value, valid values start at %d", limits.MinIndex)
	}
	if *opts.Num > limits.MaxResultsPerPage || *opts.Num < limits.MinIndex {
		return invalidArgument("invalid num value, number of search results to return must be between %d and %d, inclusive",
			limits.MinIndex, limits.MaxResultsPerPage)
	}
	return nil
}

func (customSearch) ParseResponse(body []byte) (*Result, error) {
	data := CustomSearchResult{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: google: %w", ErrDecode, err)
	}
	if data.Items == nil {
		return nil, missingField("items")
	}
	output := make([]Item, len(*data.Items))
	for i, el := range *data.Items {
		path := fmt.Sprintf("items[%d]", i)
		switch {
		case el.Mime == nil:
			return nil, missingField(path + ".mime")
		case el.Link == nil:
			return nil, missingField(path + ".link")
		case el.Image == nil:
			return nil, missingField(path + ".image")
		case el.Image.Width == nil:
			return nil, missingField(path + ".image.width")
		case el.Image.Height == nil:
			return nil, missingField(path + ".image.height")
		case el.Image.ByteSize == nil:
			return nil, missingField(path + ".image.byteSize")
		case el.Image.ContextLink == nil:
			return nil, missingField(path + ".image.contextLink")
		}
		output[i].Type = *el.Mime
		output[i].Width = *el.Image.Width
		output[i].Height = *el.Image.Height
		output[i].Size = *el.Image.ByteSize
		output[i].URL = *el.Link
		output[i].HostPage = *el.Image.ContextLink
	}

	result := &Result{Items: output}
	if len(data.Queries.NextPage) > 0 && data.Queries.NextPage[0].StartIndex != nil {
		result.NextOffset = data.Queries.NextPage[0].StartIndex
	}
	if data.SearchInformation.TotalResults != "" {
		total, err := strconv.ParseInt(data.SearchInformation.TotalResults, 10, 64)
		if err != nil {
			return nil, decodeError("searchInformation.totalResults: %v", err)
		}
		result.TotalEstimatedMatches = &total
	}
	return result, nil
}
