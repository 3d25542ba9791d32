package orderdemo

import (
	"fmt"
	"strconv"
	"strings"
)

func UserPath(id int64) string {
	return UsersPath + "/" + strconv.FormatInt(id, 10)
}

// ParseID parses a positive decimal identifier taken from a path segment.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
