package deskapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const maxRequestBytes = 1_048_576

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

type envelope map[string]any

// encodeJSON serializes data to JSON and writes it with the given status code.
func (h *Handler) encodeJSON(w http.ResponseWriter, status int, data envelope) error {
	js, err := jsonAPI.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	js = append(js, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(js)

	return nil
}

// decodeJSON reads exactly one JSON object from the request body into dst.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	dec := jsonAPI.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxRequestBytes)
		default:
			return fmt.Errorf("body contains badly-formed JSON: %w", err)
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

// readLimit returns the limit query parameter, or fallback if it is absent.
func readLimit(r *http.Request, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return fallback, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.New("limit must be a non-negative integer")
	}

	return limit, nil
}

// readAsOf returns the asOf query parameter, or fallback if it is absent.
// Both RFC 3339 timestamps and plain dates are accepted; a date means its midnight UTC.
func readAsOf(r *http.Request, fallback time.Time) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("asOf"))
	if raw == "" {
		return fallback, nil
	}

	if asOf, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return asOf, nil
	}

	if asOf, err := time.Parse(time.DateOnly, raw); err == nil {
		return asOf, nil
	}

	return time.Time{}, errors.New("asOf must be an RFC 3339 timestamp or a date like 2006-01-02")
}
