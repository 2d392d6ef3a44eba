package inkwell

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/inkwell/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// renderSitemap lists the index, every post, every label and every author
// with at least one published post.
func (a *App) renderSitemap(c echo.Context, posts []views.PostView, labels []views.LabelView) error {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: AbsoluteURL(base, a.paths.Index())},
	}
	authors := make(map[string]struct{})
	var authorLinks []string
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     AbsoluteURL(base, p.Link),
			LastMod: p.Created.Format("2006-01-02"),
		})
		if p.AuthorLink == "" {
			continue
		}
		if _, seen := authors[p.AuthorLink]; !seen {
			authors[p.AuthorLink] = struct{}{}
			authorLinks = append(authorLinks, p.AuthorLink)
		}
	}
	for _, l := range labels {
		urls = append(urls, sitemapURL{Loc: AbsoluteURL(base, l.Link)})
	}
	for _, link := range authorLinks {
		urls = append(urls, sitemapURL{Loc: AbsoluteURL(base, link)})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
