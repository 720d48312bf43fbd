package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/omnisent/omnisent/internal/common"
)

// errorBody is the backend's error envelope.
type errorBody struct {
	Detail string `json:"detail"`
}

// mapStatus converts a non-2xx response into a sentinel error, preserving
// the backend's human-readable detail message where present.
func mapStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	detail := ""
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		detail = eb.Detail
	}

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if strings.Contains(strings.ToLower(detail), "expired") {
			sentinel = common.ErrTokenExpired
		} else {
			sentinel = common.ErrUnauthorized
		}
	case resp.StatusCode == http.StatusForbidden:
		sentinel = common.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		sentinel = common.ErrNotFound
	case resp.StatusCode >= 500:
		sentinel = common.ErrUnavailable
	default:
		sentinel = common.ErrInternal
	}

	if detail != "" {
		return fmt.Errorf("%w: %s", sentinel, detail)
	}
	return fmt.Errorf("%w: http %d", sentinel, resp.StatusCode)
}

// mapTransportError converts low-level request failures. Context
// cancellation passes through unchanged so callers can distinguish a user
// cancel from a dead server.
func mapTransportError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
}
