// Package scraper provides HTTP fetching and HTML parsing for the DJ Mag Top 100 poll.
//
// The scraper package fetches ranking pages from djmag.com and extracts the ordered
// list of ranked names for a poll year. Two extraction strategies are provided: the
// JSON-LD ItemList embedded in the current poll's landing page, and the per-entry
// links (/top100djs/<year>/<rank>/<slug>) found on every historical year page.
package scraper
