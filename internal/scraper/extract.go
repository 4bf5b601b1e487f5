package scraper

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pfrederiksen/top100-archive/internal/logger"
)

// Extractor maps raw page markup to the ranked names of one poll year, in rank order.
// Implementations return a *ParseError when no entry for the year is found.
type Extractor interface {
	Name() string
	Extract(markup string, year int) ([]string, error)
}

// Entry links look like /top100djs/2024/1/martin-garrix
var entryPathPattern = regexp.MustCompile(`^/top100djs/(\d{4})/(\d{1,3})/([^/]+)/?$`)

type rankedName struct {
	rank int
	name string
}

// parseEntryPath extracts year, rank and display name from an entry link
func parseEntryPath(href string) (year, rank int, name string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return 0, 0, "", false
	}

	matches := entryPathPattern.FindStringSubmatch(u.EscapedPath())
	if matches == nil {
		return 0, 0, "", false
	}

	year, _ = strconv.Atoi(matches[1])
	rank, _ = strconv.Atoi(matches[2])
	name = NameFromSlug(matches[3])
	if rank < 1 || name == "" {
		return 0, 0, "", false
	}

	return year, rank, name, true
}

var slugReplacer = strings.NewReplacer("-", " ", "/", " ")

// NameFromSlug turns a URL slug such as "martin-garrix" into "Martin Garrix"
func NameFromSlug(slug string) string {
	if unescaped, err := url.PathUnescape(slug); err == nil {
		slug = unescaped
	}
	words := strings.Fields(slugReplacer.Replace(slug))
	if len(words) == 0 {
		return ""
	}
	return cases.Title(language.Und).String(strings.Join(words, " "))
}

// sortedNames orders by rank and keeps the first name seen for each rank
func sortedNames(found []rankedName) []string {
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].rank < found[j].rank
	})

	names := make([]string, 0, len(found))
	lastRank := 0
	for _, rn := range found {
		if rn.rank == lastRank {
			continue
		}
		lastRank = rn.rank
		names = append(names, rn.name)
	}
	return names
}

// LinkExtractor reads entry links from a poll year page
type LinkExtractor struct{}

func (LinkExtractor) Name() string { return "links" }

// Extract scans every anchor for entry links belonging to year
func (x LinkExtractor) Extract(markup string, year int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, &ParseError{Year: year, Extractor: x.Name(), Reason: "parsing HTML", Err: err}
	}

	found := make([]rankedName, 0, 100)
	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		linkYear, rank, name, ok := parseEntryPath(href)
		if !ok || linkYear != year {
			return
		}
		found = append(found, rankedName{rank: rank, name: name})
	})

	if len(found) == 0 {
		return nil, &ParseError{Year: year, Extractor: x.Name(), Reason: "no entry links found"}
	}

	return sortedNames(found), nil
}

// JSONLDExtractor reads the schema.org ItemList embedded in the current poll's landing page
type JSONLDExtractor struct{}

func (JSONLDExtractor) Name() string { return "json-ld" }

type ldNode struct {
	Type            json.RawMessage `json:"@type"`
	Graph           []ldNode        `json:"@graph"`
	ItemListElement []ldListItem    `json:"itemListElement"`
}

type ldListItem struct {
	Position json.RawMessage `json:"position"`
	URL      string          `json:"url"`
}

// isType reports whether @type is want, either as a string or within an array
func (n ldNode) isType(want string) bool {
	var single string
	if err := json.Unmarshal(n.Type, &single); err == nil {
		return single == want
	}
	var many []string
	if err := json.Unmarshal(n.Type, &many); err == nil {
		for _, t := range many {
			if t == want {
				return true
			}
		}
	}
	return false
}

// findItemList returns the first ItemList node, searching @graph recursively
func findItemList(n ldNode) (ldNode, bool) {
	if n.isType("ItemList") {
		return n, true
	}
	for _, child := range n.Graph {
		if list, ok := findItemList(child); ok {
			return list, true
		}
	}
	return ldNode{}, false
}

// decodeLD accepts a single JSON-LD object or an array of them
func decodeLD(text string) ([]ldNode, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "[") {
		var nodes []ldNode
		if err := json.Unmarshal([]byte(text), &nodes); err != nil {
			return nil, err
		}
		return nodes, nil
	}
	var node ldNode
	if err := json.Unmarshal([]byte(text), &node); err != nil {
		return nil, err
	}
	return []ldNode{node}, nil
}

func parsePosition(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("position %s: %w", string(raw), err)
	}
	return strconv.Atoi(strings.TrimSpace(s))
}

// Extract decodes each ld+json script and reads the ItemList entries for year
func (x JSONLDExtractor) Extract(markup string, year int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, &ParseError{Year: year, Extractor: x.Name(), Reason: "parsing HTML", Err: err}
	}

	var (
		list    ldNode
		hasList bool
	)
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		nodes, err := decodeLD(sel.Text())
		if err != nil {
			logger.Debug("Skipping undecodable JSON-LD block", logger.Fields{"index": i, "error": err.Error()})
			return true
		}
		for _, node := range nodes {
			if list, hasList = findItemList(node); hasList {
				return false
			}
		}
		return true
	})

	if !hasList {
		return nil, &ParseError{Year: year, Extractor: x.Name(), Reason: "no JSON-LD ItemList found"}
	}

	found := make([]rankedName, 0, len(list.ItemListElement))
	for _, item := range list.ItemListElement {
		itemYear, _, name, ok := parseEntryPath(item.URL)
		if !ok {
			logger.Debug("Skipping JSON-LD item with unrecognized URL", logger.Fields{"url": item.URL})
			continue
		}
		if itemYear != year {
			continue
		}
		position, err := parsePosition(item.Position)
		if err != nil || position < 1 {
			logger.Debug("Skipping JSON-LD item with invalid position", logger.Fields{"url": item.URL})
			continue
		}
		found = append(found, rankedName{rank: position, name: name})
	}

	if len(found) == 0 {
		return nil, &ParseError{Year: year, Extractor: x.Name(), Reason: "ItemList has no entries for year"}
	}

	return sortedNames(found), nil
}
