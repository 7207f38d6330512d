package imgsearch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const webImageSearchEndpoint = "https://api.cognitive.microsoft.com/bing/v7.0/images/search"

const subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

// ContentSize accepts both a plain byte count and the "123456 B" string
// form reported by the live API.
type ContentSize int64

func (s *ContentSize) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		str = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(str), "B"))
		n, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid content size %q", str)
		}
		*s = ContentSize(n)
		return nil
	}
	n, err := strconv.ParseInt(string(bytes.TrimSpace(data)), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid content size %s", data)
	}
	*s = ContentSize(n)
	return nil
}

type WebImage struct {
	EncodingFormat     *string      `json:"encodingFormat"`
	Width              *int         `json:"width"`
	Height             *int         `json:"height"`
	ContentSize        *ContentSize `json:"contentSize"`
	ContentUrl         *string      `json:"contentUrl"`
	HostPageDisplayUrl *string      `json:"hostPageDisplayUrl"`
}

type WebImageSearchResult struct {
	Value                 *[]WebImage `json:"value"`
	NextOffset            *int        `json:"nextOffset"`
	TotalEstimatedMatches *int64      `json:"totalEstimatedMatches"`
}

// WebImageSearchOptions are the parameters of a web image search request.
// Offset defaults to 0, Count is required.
type WebImageSearchOptions struct {
	Offset *int
	Count  *int
}

func (o WebImageSearchOptions) Values() url.Values {
	v := url.Values{}
	offset := 0
	if o.Offset != nil {
		offset = *o.Offset
	}
	v.Set("offset", strconv.Itoa(offset))
	if o.Count != nil {
		v.Set("count", strconv.Itoa(*o.Count))
	}
	return v
}

// WebImageSearchClient searches images through the Bing image search API.
type WebImageSearchClient = SearchClient[WebImageSearchOptions]

type webImageSearch struct{}

// NewWebImageSearchClient sends apiKey in the subscription key header.
func NewWebImageSearchClient(apiKey string, opts ...ClientOption) (*WebImageSearchClient, error) {
	if apiKey == "" {
		return nil, invalidArgument("expected an API key")
	}
	headers := http.Header{}
	headers.Set(subscriptionKeyHeader, apiKey)
	limits := Limits{MaxResultsPerPage: 150, MinIndex: 1}
	return newSearchClient[WebImageSearchOptions](webImageSearch{}, webImageSearchEndpoint, limits, headers, url.Values{}, opts)
}

func (webImageSearch) Name() string { return "bing" }

func (webImageSearch) ValidateOptions(opts WebImageSearchOptions, limits Limits) error {
	if opts.Count == nil {
		return invalidArgument("missing number of results to return")
	}
	if opts.Offset != nil && *opts.Offset < limits.MinIndex-1 {
		return invalidArgument("invalid offset index value, valid values start at %d", limits.MinIndex-1)
	}
	if *opts.Count > limits.MaxResultsPerPage || *opts.Count < limits.MinIndex {
		return invalidArgument("invalid count value, number of search results to return must be between %d and %d, inclusive",
			limits.MinIndex, limits.MaxResultsPerPage)
	}
	return nil
}

func (webImageSearch) ParseResponse(body []byte) (*Result, error) {
	data := WebImageSearchResult{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: bing: %w", ErrDecode, err)
	}
	switch {
	case data.Value == nil:
		return nil, missingField("value")
	case data.NextOffset == nil:
		return nil, missingField("nextOffset")
	case data.TotalEstimatedMatches == nil:
		return nil, missingField("totalEstimatedMatches")
	}
	output := make([]Item, len(*data.Value))
	for i, el := range *data.Value {
		path := fmt.Sprintf("value[%d]", i)
		switch {
		case el.EncodingFormat == nil:
			return nil, missingField(path + ".encodingFormat")
		case el.Width == nil:
			return nil, missingField(path + ".width")
		case el.Height == nil:
			return nil, missingField(path + ".height")
		case el.ContentSize == nil:
			return nil, missingField(path + ".contentSize")
		case el.ContentUrl == nil:
			return nil, missingField(path + ".contentUrl")
		case el.HostPageDisplayUrl == nil:
			return nil, missingField(path + ".hostPageDisplayUrl")
		}
		output[i].Type = *el.EncodingFormat
		output[i].Width = *el.Width
		output[i].Height = *el.Height
		output[i].Size = int64(*el.ContentSize)
		output[i].URL = *el.ContentUrl
		output[i].HostPage = *el.HostPageDisplayUrl
	}
	return &Result{
		Items:                 output,
		NextOffset:            data.NextOffset,
		TotalEstimatedMatches: data.TotalEstimatedMatches,
	}, nil
}
