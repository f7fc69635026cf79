package feed

import (
	"encoding/xml"
	"errors"

	appLog "eventcal/internal/log"
)

// NS is the namespace the feed uses for its start/end child elements, e.g.
// <ev:start xmlns:ev="urn:eventcal:feed">. Decoding matches the local names
// regardless of prefix, so unprefixed feeds work too.
const NS = "urn:eventcal:feed"

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Link        string `xml:"link"`
	Start       string `xml:"start"`
	End         string `xml:"end"`
}

// Parse decodes an RSS feed document into raw items. Items are returned
// as-is; the selector owns the rule that entries without both a start and
// an end are skipped.
func Parse(body []byte) ([]Item, error) {
	if len(body) == 0 {
		return nil, errors.New("empty feed body")
	}

	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(doc.Channel.Items))
	for _, it := range doc.Channel.Items {
		items = append(items, Item{
			Title:       it.Title,
			Description: it.Description,
			Link:        it.Link,
			Start:       it.Start,
			End:         it.End,
		})
	}

	appLog.Debug("feed parse completed", "channel", doc.Channel.Title, "item_count", len(items))
	return items, nil
}
