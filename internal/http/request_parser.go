package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"salesdash/internal/core"
)

// ErrBadRequest marks request input that could not be parsed.
var ErrBadRequest = errors.New("bad request")

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// ParseFilterSpec builds a spec from query parameters. List parameters take
// comma-separated values and may repeat. An absent years parameter means
// the default years; present but empty means every year.
func ParseFilterSpec(q url.Values) (core.FilterSpec, error) {
	years := core.DefaultYears()
	if _, ok := q["years"]; ok {
		years = []int{}
		for _, v := range listParam(q, "years") {
			y, err := strconv.Atoi(v)
			if err != nil {
				return core.FilterSpec{}, fmt.Errorf("%w: years: %q is not a year", ErrBadRequest, v)
			}
			years = append(years, y)
		}
	}

	threshold := 0.0
	if v := strings.TrimSpace(q.Get("threshold")); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return core.FilterSpec{}, fmt.Errorf("%w: threshold: %q is not a number", ErrBadRequest, v)
		}
		threshold = t
	}

	chart := core.ChartBar
	if v := strings.TrimSpace(q.Get("chart")); v != "" {
		c, err := core.ParseChartType(v)
		if err != nil {
			return core.FilterSpec{}, err
		}
		chart = c
	}

	return core.NewFilterSpec(
		years,
		listParam(q, "categories"),
		listParam(q, "regions"),
		listParam(q, "products"),
		threshold,
		chart,
	)
}

// listParam splits every value of key on commas and drops blanks.
func listParam(q url.Values, key string) []string {
	out := []string{}
	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			if v := sanitizeInput(part); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// decodeJSON reads one JSON value from the body into v, rejecting unknown
// fields and trailing data.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrBadRequest)
		}
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON body", ErrBadRequest)
	}
	return nil
}

// sanitizeInput trims whitespace and removes control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
