package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns <unix-millis>-<10 hex chars>. The millisecond prefix keeps ids
// roughly sortable; the random suffix separates ids minted in the same instant.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}

// UniqueID draws ids from gen until taken reports the id as free.
func UniqueID(gen func() string, taken func(string) bool) string {
	for {
		id := gen()
		if id != "" && !taken(id) {
			return id
		}
	}
}
