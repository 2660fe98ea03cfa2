package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseQuery(query string) (Params, error) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParse(t *testing.T) {
	p, err := parseQuery("")
	require.NoError(t, err)
	assert.Equal(t, Params{Limit: DefaultLimit, Offset: 0}, p)

	p, err = parseQuery("limit=5&offset=20")
	require.NoError(t, err)
	assert.Equal(t, Params{Limit: 5, Offset: 20}, p)

	p, err = parseQuery("limit=1000")
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, p.Limit)
}

func TestParse_Invalid(t *testing.T) {
	for _, q := range []string{"limit=0", "limit=-3", "offset=-1", "limit=abc", "offset=1.5"} {
		_, err := parseQuery(q)
		assert.Error(t, err, q)
	}
}
