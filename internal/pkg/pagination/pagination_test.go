package pagination

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsParams(t *testing.T) {
	tests := []struct {
		name        string
		defaults    Defaults
		page, limit int
		sort        string
		want        Params
	}{
		{"member defaults", Members, 0, 0, "",
			Params{Page: 1, Limit: 50, Sort: "name", OrderBy: "name ASC"}},
		{"payment defaults", Payments, 0, 0, "",
			Params{Page: 1, Limit: 25, Sort: "-paymentDate", OrderBy: "payment_date DESC"}},
		{"third page", Members, 3, 10, "missed",
			Params{Page: 3, Limit: 10, Offset: 20, Sort: "missed", OrderBy: "consecutive_months_missed ASC"}},
		{"descending", Members, 1, 10, "-joinDate",
			Params{Page: 1, Limit: 10, Sort: "-joinDate", OrderBy: "join_date DESC"}},
		{"unknown sort falls back", Payments, 1, 10, "memberId; DROP TABLE payments",
			Params{Page: 1, Limit: 10, Sort: "-paymentDate", OrderBy: "payment_date DESC"}},
		{"limit clamped", Payments, 2, 500, "amount",
			Params{Page: 2, Limit: 100, Offset: 100, Sort: "amount", OrderBy: "amount ASC"}},
		{"unsorted listing", Users, -4, 0, "name",
			Params{Page: 1, Limit: 20}},
		{"zero defaults", Defaults{}, 1, 0, "",
			Params{Page: 1, Limit: fallbackLimit}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, *tt.defaults.Params(tt.page, tt.limit, tt.sort))
		})
	}
}

func TestParseReadsQuery(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(Parse(c, Members))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/?page=2&limit=abc&sort=-lastPayment", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got Params
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 50, got.Limit, "a malformed limit uses the listing default")
	assert.Equal(t, "-lastPayment", got.Sort)
}

func TestGetMeta(t *testing.T) {
	meta := GetMeta(Members.Params(2, 10, ""), 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, "name", meta.Sort)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	meta = GetMeta(Payments.Params(1, 10, ""), 0)
	assert.Zero(t, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrev)
}
