package controller

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// generateTimeBasedId returns a UUIDv7, so ids sort by creation time in logs.
func (c controller) generateTimeBasedId() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

// getIntQueryParam returns the integer query parameter key, or def when it is absent.
func (c controller) getIntQueryParam(r *http.Request, key string, def int) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, newInputError(key, "INTEGER", key+" must be an integer")
	}

	return n, nil
}
