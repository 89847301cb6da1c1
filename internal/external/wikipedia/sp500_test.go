package wikipedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bullscan/pkg/config"
	"github.com/wonny/bullscan/pkg/httputil"
	"github.com/wonny/bullscan/pkg/logger"
)

const page = `<html><body>
<table class="wikitable" id="other"><tbody><tr><td>NOPE</td><td>x</td><td>y</td></tr></tbody></table>
<table class="wikitable sortable" id="constituents">
<tbody>
<tr><th>Symbol</th><th>Security</th><th>GICS Sector</th></tr>
<tr><td><a href="#">MMM</a></td><td><a href="#">3M</a></td><td>Industrials</td></tr>
<tr><td><a href="#">BRK.B</a>
</td><td>Berkshire Hathaway</td><td>Financials</td></tr>
<tr><td><a href="#">AAPL</a></td><td>Apple Inc.</td><td>Information Technology</td></tr>
<tr><td><a href="#">AAPL</a></td><td>Apple Inc.</td><td>Information Technology</td></tr>
<tr><td>footnote</td><td></td><td></td></tr>
</tbody>
</table>
</body></html>`

func TestParseConstituents(t *testing.T) {
	members, err := parseConstituents([]byte(page))
	require.NoError(t, err)

	require.Len(t, members, 3)
	assert.Equal(t, Constituent{Symbol: "MMM", Name: "3M", Sector: "Industrials"}, members[0])
	assert.Equal(t, "BRK.B", members[1].Symbol)
	assert.Equal(t, "AAPL", members[2].Symbol)
}

func TestParseConstituents_NoTable(t *testing.T) {
	_, err := parseConstituents([]byte(`<html><body><p>moved</p></body></html>`))
	assert.Error(t, err)
}

func TestSymbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	hc := httputil.New(config.MarketDataConfig{Timeout: 5 * time.Second, RPS: 1000}, logger.Nop())
	syms, err := NewSP500(hc, srv.URL, logger.Nop()).Symbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"MMM", "BRK.B", "AAPL"}, syms)
}
