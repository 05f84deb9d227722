// internal/scaffold/skeleton.go
package scaffold

const defaultConfig = `name: An inkwell blog
tagline: Notes written with inkwell
permalinks: /@year/@month/@slug.html
root_url: https://example.com
`

const layoutTemplate = `{{define "header"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{if .Post}}{{.Post.Title}} | {{end}}{{.Blog.Name}}</title>
  <link rel="stylesheet" href="{{.RelRoot}}style.css">
  <link rel="alternate" type="application/rss+xml" title="{{.Blog.Name}}" href="{{.RelRoot}}feed.xml">
</head>
<body>
<header>
  <a class="site" href="{{.RelRoot}}index.html">{{.Blog.Name}}</a>
  <p class="tagline">{{.Blog.Tagline}}</p>
</header>
<main>
{{end}}

{{define "footer"}}</main>
<footer>Built {{longdate .Blog.BuiltAt}}</footer>
</body>
</html>
{{end}}
`

const postTemplate = `{{template "header" .}}
<article>
  <h1>{{.Post.Title}}</h1>
  <time datetime="{{param .Post "date"}}">{{longdate .Post.Date}}</time>
  {{markdown .Post.Content}}
</article>
{{template "footer" .}}
`

const indexPage = `title: Home

{{template "header" .}}
<ul class="posts">
{{range .Blog.Posts}}  <li><time>{{shortdate .Date}}</time> <a href="{{.URL}}">{{.Title}}</a></li>
{{else}}  <li>Nothing here yet.</li>
{{end}}</ul>
{{template "footer" .}}
`

const feedPage = `title: Feed

<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>{{.Blog.Name}}</title>
  <link>{{.Blog.RootURL}}</link>
  <description>{{.Blog.Tagline}}</description>
{{range .Blog.Recent 20}}  <item>
    <title>{{.Title}}</title>
    <link>{{$.Blog.Permalink .}}</link>
    <guid>{{$.Blog.Permalink .}}</guid>
    <pubDate>{{rssdate .Date}}</pubDate>
  </item>
{{end}}</channel>
</rss>
`

const stylesheet = `body {
  max-width: 42rem;
  margin: 2rem auto;
  padding: 0 1rem;
  font: 17px/1.6 Georgia, serif;
  color: #222;
}
header .site { font-size: 1.4rem; font-weight: bold; color: inherit; text-decoration: none; }
header .tagline { margin-top: 0; color: #777; }
ul.posts { list-style: none; padding: 0; }
ul.posts time { display: inline-block; width: 4.5rem; color: #777; }
pre, code { font-family: Menlo, Consolas, monospace; font-size: 0.9em; }
.highlight pre { padding: 0.75rem; overflow-x: auto; background: #f6f8fa; }
footer { margin-top: 3rem; font-size: 0.85rem; color: #999; }
`

const welcomeBody = "This is your first post. Edit it in `_posts`, or add a new one with\n\n" +
	"```sh\ninkwell post \"My next post\"\n```\n\n" +
	"then run `inkwell serve` and watch the preview reload as you write.\n"
