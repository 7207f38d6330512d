package imgsearch

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ParseCustomSearchOptions reads start and num from a raw parameter bag.
// Any other key is rejected.
func ParseCustomSearchOptions(v url.Values) (CustomSearchOptions, error) {
	opts := CustomSearchOptions{}
	if err := checkKeys(v, "start", "num"); err != nil {
		return opts, err
	}
	var err error
	if opts.Start, err = intParam(v, "start"); err != nil {
		return opts, err
	}
	if opts.Num, err = intParam(v, "num"); err != nil {
		return opts, err
	}
	return opts, nil
}

// ParseWebImageSearchOptions reads offset and count from a raw parameter
// bag. Any other key is rejected.
func ParseWebImageSearchOptions(v url.Values) (WebImageSearchOptions, error) {
	opts := WebImageSearchOptions{}
	if err := checkKeys(v, "offset", "count"); err != nil {
		return opts, err
	}
	var err error
	if opts.Offset, err = intParam(v, "offset"); err != nil {
		return opts, err
	}
	if opts.Count, err = intParam(v, "count"); err != nil {
		return opts, err
	}
	return opts, nil
}

func checkKeys(v url.Values, known ...string) error {
	var unknown []string
outer:
	for k := range v {
		for _, name := range known {
			if k == name {
				continue outer
			}
		}
		unknown = append(unknown, k)
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return invalidArgument("%s are invalid option keys", strings.Join(unknown, ", "))
}

func intParam(v url.Values, key string) (*int, error) {
	raw, ok := v[key]
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	if len(raw) > 1 {
		return nil, invalidArgument("%s given more than once", key)
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw[0]))
	if err != nil {
		return nil, invalidArgument("%s must be an integer, got %q", key, raw[0])
	}
	return &n, nil
}
