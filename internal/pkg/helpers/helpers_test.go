package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		page, size    int
		offset, limit uint64
	}{
		{1, 10, 0, 10},
		{3, 20, 40, 20},
		{0, 0, 0, DefaultPageSize},
		{2, 500, MaxPageSize, MaxPageSize},
	}
	for _, tt := range tests {
		offset, limit := CalculateOffsetLimit(tt.page, tt.size)
		assert.Equal(t, tt.offset, offset)
		assert.Equal(t, tt.limit, limit)
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(41, 2, 10)
	assert.Equal(t, 5, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, empty.TotalPages)

	clamped := NewPaginationInfo(5, 9, 10)
	assert.Equal(t, 1, clamped.CurrentPage)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=3&size=25", nil)
	page, size := ParsePaginationParams(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, size)

	c.Request = httptest.NewRequest("GET", "/?page=-1&size=1000", nil)
	page, size = ParsePaginationParams(c)
	assert.Equal(t, 1, page)
	assert.Equal(t, MaxPageSize, size)

	c.Request = httptest.NewRequest("GET", "/?size=abc", nil)
	_, size = ParsePaginationParams(c)
	assert.Equal(t, DefaultPageSize, size)
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, ClampPageSize(0))
	assert.Equal(t, DefaultPageSize, ClampPageSize(-5))
	assert.Equal(t, 40, ClampPageSize(40))
	assert.Equal(t, MaxPageSize, ClampPageSize(250))

	offset, limit := CalculateOffsetLimit(3, 500)
	assert.Equal(t, uint64(200), offset)
	assert.Equal(t, uint64(MaxPageSize), limit)

	assert.Equal(t, MaxPageSize, NewPaginationInfo(1000, 1, 500).PageSize)
}

func TestApplySearchAndCount(t *testing.T) {
	q := squirrel.Select("id", "name").From("departments").PlaceholderFormat(squirrel.Dollar)
	q = ApplySearch(q, " 50%_off ", "name", "code")

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name FROM departments WHERE (name ILIKE $1 OR code ILIKE $2)", sql)
	assert.Equal(t, []interface{}{`%50\%\_off%`, `%50\%\_off%`}, args)

	countSQL, _, err := CountOf(ApplyPage(q, 2, 10)).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM departments WHERE (name ILIKE $1 OR code ILIKE $2)", countSQL)
}

func TestTextAndTimeHelpers(t *testing.T) {
	assert.Equal(t, "Computer Science", NormalizeName("  computer   SCIENCE "))
	assert.Equal(t, "CS-101", NormalizeCode(" cs-101 "))
	assert.Equal(t, "a@b.edu", NormalizeEmail(" A@B.edu "))

	m, err := ClockMinutes("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)
	_, err = ClockMinutes("9am")
	assert.Error(t, err)

	assert.True(t, RangesOverlap(540, 600, 570, 630))
	assert.False(t, RangesOverlap(540, 600, 600, 660))

	assert.Equal(t, 66.67, Percentage(2, 3))
	assert.Equal(t, 0.0, Percentage(1, 0))
}
