package utils

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"ms-events/internal/apperror"
)

// ParseFromSize reads the from/size offset-limit pair from the query string.
// Defaults are 0/10; negative from, or size < 1, is a validation error.
func ParseFromSize(r *http.Request) (int, int, error) {
	from := 0
	size := 10
	if s := r.URL.Query().Get("from"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return 0, 0, apperror.Newf(apperror.Validation, "invalid from parameter: %s", s)
		}
		from = v
	}
	if s := r.URL.Query().Get("size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return 0, 0, apperror.Newf(apperror.Validation, "invalid size parameter: %s", s)
		}
		size = v
	}
	return from, size, nil
}

// ParseID parses a positive int64 path or query parameter.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, apperror.Newf(apperror.Validation, "invalid identifier: %s", s)
	}
	return id, nil
}

// ParseIDList parses a comma-separated id list query parameter.
func ParseIDList(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := ParseID(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RemoteIP extracts the client address for hit recording, preferring
// X-Forwarded-For when a proxy sits in front.
func RemoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
