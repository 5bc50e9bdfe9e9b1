package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/tehpwnage/posthub/app/cfg"
	"github.com/tehpwnage/posthub/app/post"
)

const feedTitle = "Posts Feed"

// Generator renders a list of posts as an Atom 1.0 document. Entry order
// follows input order; the generator never re-sorts.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Run(posts []post.Post, asOf time.Time) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n")

	g.writeElement(&buf, "title", feedTitle, 2)
	g.writeElement(&buf, "updated", asOf.UTC().Format(time.RFC3339), 2)
	g.writeElement(&buf, "id", g.feedID(), 2)

	for _, p := range posts {
		g.writeEntry(&buf, p)
	}

	buf.WriteString("</feed>")

	return buf.String(), nil
}

func (g *Generator) feedID() string {
	if cfg.Get().BaseUrl != "" {
		return fmt.Sprintf("%s/posts/atom", cfg.Get().BaseUrl)
	}
	return fmt.Sprintf("http://localhost:%s/posts/atom", cfg.Get().Port)
}

func (g *Generator) writeEntry(buf *bytes.Buffer, p post.Post) {
	var title, link, summary string

	switch d := p.Data.(type) {
	case post.YoutubeVideoData:
		title = d.Title
		link = p.URL
		summary = d.Description
	case post.ForumThreadData:
		title = d.Title
		link = p.URL
		summary = truncate(d.Content, 500)
	case post.PatreonPostData:
		title = d.Title
		link = p.URL
		summary = d.TeaserText
	}

	buf.WriteString("  <entry>\n")
	g.writeElement(buf, "id", p.ID, 4)
	g.writeElement(buf, "title", title, 4)
	buf.WriteString(fmt.Sprintf("    <link href=\"%s\" />\n", html.EscapeString(link)))
	g.writeElement(buf, "updated", p.UpdatedAt.UTC().Format(time.RFC3339), 4)
	g.writeElement(buf, "published", p.PublishedAt.UTC().Format(time.RFC3339), 4)

	buf.WriteString(`    <summary type="html"><![CDATA[`)
	// CDATA content is passed through unescaped, but a literal "]]>" in
	// source text would terminate the section early.
	buf.WriteString(strings.ReplaceAll(summary, "]]>", "]]]]><![CDATA[>"))
	buf.WriteString("]]></summary>\n")

	buf.WriteString("  </entry>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
