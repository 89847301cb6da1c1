package wikipedia

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/bullscan/pkg/httputil"
	"github.com/wonny/bullscan/pkg/logger"
)

// DefaultSP500URL lists the current S&P 500 constituents
const DefaultSP500URL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

// Constituent is one index member
type Constituent struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

// SP500 scrapes the constituent table
// ⭐ SSOT: 유니버스 목록 스크래핑은 여기서만
type SP500 struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	url        string
}

// NewSP500 creates a constituent scraper. An empty pageURL uses DefaultSP500URL.
func NewSP500(httpClient *httputil.Client, pageURL string, log *logger.Logger) *SP500 {
	if pageURL == "" {
		pageURL = DefaultSP500URL
	}
	return &SP500{
		httpClient: httpClient,
		logger:     log.Component("wikipedia"),
		url:        pageURL,
	}
}

// Symbols implements contracts.UniverseProvider
func (s *SP500) Symbols(ctx context.Context) ([]string, error) {
	members, err := s.Constituents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Symbol
	}
	return out, nil
}

// Constituents fetches and parses the table
func (s *SP500) Constituents(ctx context.Context) ([]Constituent, error) {
	body, err := s.httpClient.GetBytes(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch constituents: %w", err)
	}

	members, err := parseConstituents(body)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("count", len(members)).Debug("Parsed S&P 500 constituents")
	return members, nil
}

var symbolRe = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// parseConstituents reads table#constituents: Symbol | Security | GICS Sector | ...
func parseConstituents(html []byte) ([]Constituent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table#constituents")
	if table.Length() == 0 {
		return nil, fmt.Errorf("constituents table not found")
	}

	var members []Constituent
	seen := make(map[string]bool)
	table.Find("tbody tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}

		symbol := strings.TrimSpace(cells.Eq(0).Text())
		if !symbolRe.MatchString(symbol) || seen[symbol] {
			return
		}
		seen[symbol] = true

		members = append(members, Constituent{
			Symbol: symbol,
			Name:   strings.TrimSpace(cells.Eq(1).Text()),
			Sector: strings.TrimSpace(cells.Eq(2).Text()),
		})
	})

	if len(members) == 0 {
		return nil, fmt.Errorf("constituents table has no rows")
	}
	return members, nil
}
