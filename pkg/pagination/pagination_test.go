package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromRequest_Defaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/reviews", nil)

	p := FromRequest(r, 20, 100)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.Offset)
}

func TestFromRequest_ExplicitValues(t *testing.T) {
	r := httptest.NewRequest("GET", "/reviews?page=3&per_page=50", nil)

	p := FromRequest(r, 20, 100)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.PerPage)
	assert.Equal(t, 100, p.Offset)
}

func TestFromRequest_ClampsPerPage(t *testing.T) {
	r := httptest.NewRequest("GET", "/reviews?per_page=1000", nil)

	p := FromRequest(r, 20, 100)

	assert.Equal(t, 100, p.PerPage)
}

func TestFromRequest_IgnoresGarbage(t *testing.T) {
	r := httptest.NewRequest("GET", "/reviews?page=abc&per_page=-5", nil)

	p := FromRequest(r, 25, 100)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 25, p.PerPage)
}
