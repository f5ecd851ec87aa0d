package source

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/utakatalp/league-odds/internal/league"
)

var (
	roundRegex = regexp.MustCompile(`(?i)(?:dia de jogo|rodada|round)\s*(\d+)`)
	scoreRegex = regexp.MustCompile(`(\d+)\s*[-x]\s*(\d+)`)
)

// ParseFixtures reads match rows out of a fixtures page. Rounds are marked by
// a data-round attribute or by a heading such as "Dia de Jogo 12"; every
// following tr.match row belongs to that round. Rows with the complete class
// carry the final score in .ft-score.
func ParseFixtures(r io.Reader) ([]*league.Match, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing fixtures HTML: %w", err)
	}

	var (
		matches []*league.Match
		round   int
		rowErr  error
	)
	doc.Find("[data-round], h2, h3, .round-title, tr.match").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if !s.Is("tr.match") {
			if n, ok := roundOf(s); ok {
				round = n
			}
			return true
		}
		if round == 0 {
			rowErr = fmt.Errorf("match row %d appears before any round marker", len(matches)+1)
			return false
		}
		m, err := parseRow(s, round)
		if err != nil {
			rowErr = err
			return false
		}
		matches = append(matches, m)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return matches, nil
}

func roundOf(s *goquery.Selection) (int, bool) {
	if v, ok := s.Attr("data-round"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	m := roundRegex.FindStringSubmatch(s.Text())
	if len(m) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

func parseRow(s *goquery.Selection, round int) (*league.Match, error) {
	home := teamName(s, ".team-home", 0)
	away := teamName(s, ".team-away", -1)
	if home == "" || away == "" {
		return nil, fmt.Errorf("round %d: match row without both team names", round)
	}

	if !s.HasClass("complete") {
		return league.Fixture(round, home, away), nil
	}

	score := strings.TrimSpace(s.Find(".ft-score").First().Text())
	m := scoreRegex.FindStringSubmatch(score)
	if len(m) < 3 {
		return nil, &league.DataIntegrityError{
			Match:  league.Fixture(round, home, away).String(),
			Reason: fmt.Sprintf("unreadable score %q", score),
		}
	}
	hg, _ := strconv.Atoi(m[1])
	ag, _ := strconv.Atoi(m[2])
	return league.Played(round, home, hg, ag, away), nil
}

// teamName prefers the explicit class and falls back to the idx-th
// itemprop=name span (negative counts from the end).
func teamName(s *goquery.Selection, class string, idx int) string {
	if name := strings.TrimSpace(s.Find(class).First().Text()); name != "" {
		return name
	}
	spans := s.Find(`span[itemprop="name"]`)
	if spans.Length() == 0 {
		return ""
	}
	if idx < 0 {
		idx += spans.Length()
	}
	return strings.TrimSpace(spans.Eq(idx).Text())
}
