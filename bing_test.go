package imgsearch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webImageSearchBody = `{"value":[{"encodingFormat":"png","width":10,"height":20,"contentSize":500,"contentUrl":"u","hostPageDisplayUrl":"h"}],"nextOffset":5,"totalEstimatedMatches":999}`

func TestNewWebImageSearchClientCredentials(t *testing.T) {
	_, err := NewWebImageSearchClient("")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	c, err := NewWebImageSearchClient("key")
	require.NoError(t, err)
	assert.Equal(t, webImageSearchEndpoint, c.Endpoint())
	assert.Equal(t, Limits{MaxResultsPerPage: 150, MinIndex: 1}, c.Limits())
}

func TestWebImageSearchValidateOptions(t *testing.T) {
	limits := Limits{MaxResultsPerPage: 150, MinIndex: 1}
	a := webImageSearch{}

	assert.NoError(t, a.ValidateOptions(WebImageSearchOptions{Count: Int(10)}, limits))
	assert.NoError(t, a.ValidateOptions(WebImageSearchOptions{Offset: Int(0), Count: Int(150)}, limits))

	assert.ErrorIs(t, a.ValidateOptions(WebImageSearchOptions{}, limits), ErrInvalidArgument)
	assert.ErrorIs(t, a.ValidateOptions(WebImageSearchOptions{Count: Int(200)}, limits), ErrInvalidArgument)
	assert.ErrorIs(t, a.ValidateOptions(WebImageSearchOptions{Count: Int(0)}, limits), ErrInvalidArgument)
	assert.ErrorIs(t, a.ValidateOptions(WebImageSearchOptions{Offset: Int(-1), Count: Int(10)}, limits), ErrInvalidArgument)
}

func TestWebImageSearchParseResponse(t *testing.T) {
	res, err := webImageSearch{}.ParseResponse([]byte(webImageSearchBody))
	require.NoError(t, err)
	assert.Equal(t, []Item{{Type: "png", Width: 10, Height: 20, Size: 500, URL: "u", HostPage: "h"}}, res.Items)
	require.NotNil(t, res.NextOffset)
	assert.Equal(t, 5, *res.NextOffset)
	require.NotNil(t, res.TotalEstimatedMatches)
	assert.Equal(t, int64(999), *res.TotalEstimatedMatches)
}

func TestWebImageSearchContentSizeString(t *testing.T) {
	body := `{"value":[{"encodingFormat":"jpeg","width":1,"height":1,"contentSize":"123456 B","contentUrl":"u","hostPageDisplayUrl":"h"}],"nextOffset":1,"totalEstimatedMatches":1}`
	res, err := webImageSearch{}.ParseResponse([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, int64(123456), res.Items[0].Size)

	body = `{"value":[{"encodingFormat":"jpeg","width":1,"height":1,"contentSize":"big","contentUrl":"u","hostPageDisplayUrl":"h"}],"nextOffset":1,"totalEstimatedMatches":1}`
	_, err = webImageSearch{}.ParseResponse([]byte(body))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestWebImageSearchParseMissingField(t *testing.T) {
	_, err := webImageSearch{}.ParseResponse([]byte(`{"value":[],"totalEstimatedMatches":3}`))
	assert.ErrorIs(t, err, ErrDecode)
	assert.Contains(t, err.Error(), "nextOffset")

	_, err = webImageSearch{}.ParseResponse([]byte(`{"value":[{"encodingFormat":"png"}],"nextOffset":1,"totalEstimatedMatches":1}`))
	assert.ErrorIs(t, err, ErrDecode)
	assert.Contains(t, err.Error(), "value[0].width")
}

func TestWebImageSearchRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		q := r.URL.Query()
		assert.Equal(t, "cats", q.Get("q"))
		assert.Equal(t, "0", q.Get("offset"))
		assert.Equal(t, "10", q.Get("count"))
		assert.Empty(t, q.Get("key"))
		w.Write([]byte(webImageSearchBody))
	}))
	defer srv.Close()

	var logs bytes.Buffer
	c, err := NewWebImageSearchClient("key", WithEndpoint(srv.URL),
		WithLogger(zerolog.New(&logs).Level(zerolog.DebugLevel)))
	require.NoError(t, err)
	res, err := c.Search(context.Background(), "cats", WebImageSearchOptions{Count: Int(10)})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 5, *res.NextOffset)
	assert.Contains(t, logs.String(), `"provider":"bing"`)
}

func TestWebImageSearchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	c, err := NewWebImageSearchClient("key", WithEndpoint(endpoint))
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "cats", WebImageSearchOptions{Count: Int(10)})
	assert.ErrorIs(t, err, ErrTransport)
}

func TestWebImageSearchNotJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	c, err := NewWebImageSearchClient("key", WithEndpoint(srv.URL))
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "cats", WebImageSearchOptions{Count: Int(10)})
	assert.ErrorIs(t, err, ErrDecode)
}

func TestWebImageSearchRejectsBeforeRequest(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c, err := NewWebImageSearchClient("key", WithEndpoint(srv.URL))
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "", WebImageSearchOptions{Count: Int(10)})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = c.Search(context.Background(), "cats", WebImageSearchOptions{Count: Int(200)})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = c.Search(context.Background(), "cats", WebImageSearchOptions{Offset: Int(-1), Count: Int(10)})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = c.Search(context.Background(), "cats", WebImageSearchOptions{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}
