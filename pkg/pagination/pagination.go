package pagination

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	MinLimit     = 1
)

// Params holds validated limit/offset parameters
type Params struct {
	Limit  int
	Offset int
}

// Parse extracts limit and offset from query parameters. A limit above
// MaxLimit is capped; every other out-of-range value is an error.
func Parse(c *gin.Context) (Params, error) {
	limit, err := intQuery(c, "limit", DefaultLimit)
	if err != nil {
		return Params{}, err
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		return Params{}, err
	}

	if limit < MinLimit {
		return Params{}, fmt.Errorf("limit must be greater than 0")
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		return Params{}, fmt.Errorf("offset must not be negative")
	}

	return Params{Limit: limit, Offset: offset}, nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}
