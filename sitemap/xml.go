package sitemap

import (
	"bytes"
	"encoding/xml"
)

// Namespace is the sitemaps.org protocol namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Change frequencies used by the site.
const (
	Hourly = "hourly"
	Daily  = "daily"
	Weekly = "weekly"
)

// URL is one <url> entry of a urlset.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// URLSet is a sitemap document.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Locations returns the loc of every entry in document order.
func (s URLSet) Locations() []string {
	out := make([]string, len(s.URLs))
	for i, u := range s.URLs {
		out[i] = u.Loc
	}
	return out
}

// Entry is one <sitemap> of an index.
type Entry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// Index is a sitemap index document.
type Index struct {
	XMLName  xml.Name `xml:"sitemapindex"`
	Xmlns    string   `xml:"xmlns,attr"`
	Sitemaps []Entry  `xml:"sitemap"`
}

func newURLSet(urls []URL) URLSet {
	if urls == nil {
		urls = []URL{}
	}
	return URLSet{Xmlns: Namespace, URLs: urls}
}

// Render encodes v with the XML declaration.
func Render(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
