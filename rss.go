package inkwell

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkwell/views"
)

const feedItemLimit = 20

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
}

// renderRSS writes an RSS 2.0 feed of the newest posts. posts must already
// be shaped (newest first).
func (a *App) renderRSS(c echo.Context, posts []views.PostView) error {
	base := a.Config.URL
	if len(posts) > feedItemLimit {
		posts = posts[:feedItemLimit]
	}
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := AbsoluteURL(base, p.Link)
		item := rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.LongSnippet,
			Author:      p.AuthorName,
			PubDate:     p.Created.UTC().Format(time.RFC1123Z),
			GUID:        postURL,
		}
		for _, l := range p.Labels {
			item.Categories = append(item.Categories, l.Name)
		}
		items = append(items, item)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        AbsoluteURL(base, a.paths.Index()),
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(feed)
}
