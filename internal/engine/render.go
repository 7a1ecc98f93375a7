package engine

import (
	"bytes"
	"html/template"

	"github.com/brackenfield/quill/internal/content"
	"github.com/brackenfield/quill/internal/markdown"
	"github.com/brackenfield/quill/internal/toc"
)

// The real template language and CSS framework are an external
// collaborator (spec §6: "the core neither prescribes the template
// language nor the CSS framework"). These templates are the fallback used
// when a consumer of this module does not supply its own
// devserver.PageRenderer, so `quill build`/`quill serve` produce a
// runnable site out of the box.
var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{if .Description}}<meta name="description" content="{{.Description}}">{{end}}
</head>
<body>
{{if .Nav}}<nav>{{template "navItems" .Nav}}</nav>{{end}}
<article>
<h1>{{.Title}}</h1>
{{if .Outline}}<nav class="outline">{{template "outlineItems" .Outline}}</nav>{{end}}
{{.Content}}
</article>
</body>
</html>
{{define "navItems"}}<ul>{{range .}}<li>{{if .HasHref}}<a href="{{.Href}}">{{.Name}}</a>{{else}}{{.Name}}{{end}}{{if .Items}}{{template "navItems" .Items}}{{end}}</li>{{end}}</ul>{{end}}
{{define "outlineItems"}}<ul>{{range .}}<li><a href="#{{.ID}}">{{.Title}}</a>{{if .Children}}{{template "outlineItems" .Children}}{{end}}</li>{{end}}</ul>{{end}}
`))

var tagTemplate = template.Must(template.New("tag").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Tag: {{.Name}}</title></head>
<body>
<h1>Tag: {{.Name}}</h1>
<ul>
{{range .Pages}}<li><a href="{{.URL}}">{{.Title}}</a></li>
{{end}}
</ul>
</body>
</html>
`))

type pageView struct {
	Title       string
	Description string
	Content     template.HTML
	Outline     []*markdown.HeadingNode
	Nav         []*toc.Entry
}

// renderPage fills the fallback page template from one PageRecord plus the
// site-wide nav tree synthesized by the TOC builder (C9).
func renderPage[F markdown.FrontMatter](rec *content.PageRecord[F], nav []*toc.Entry) ([]byte, error) {
	view := pageView{
		Title:       rec.Metadata.Title,
		Description: rec.Metadata.Description,
		Content:     template.HTML(rec.MarkdownContent),
		Outline:     rec.Outline,
		Nav:         nav,
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var listTemplate = template.Must(template.New("list").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Name}}</title></head>
<body>
{{if .Nav}}<nav>{{template "navItems" .Nav}}</nav>{{end}}
<h1>{{.Name}}</h1>
<ul>
{{range .Pages}}<li><a href="{{.URL}}">{{.Title}}</a></li>
{{end}}
</ul>
<p>
{{if .HasPrev}}<a href="{{.PrevURL}}">Previous</a>{{end}}
Page {{.PageNumber}} of {{.TotalPages}}
{{if .HasNext}}<a href="{{.NextURL}}">Next</a>{{end}}
</p>
</body>
</html>
{{define "navItems"}}<ul>{{range .}}<li>{{if .HasHref}}<a href="{{.Href}}">{{.Name}}</a>{{else}}{{.Name}}{{end}}{{if .Items}}{{template "navItems" .Items}}{{end}}</li>{{end}}</ul>{{end}}
`))

type listView struct {
	Name       string
	Nav        []*toc.Entry
	Pages      []tagListItem
	PageNumber int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevURL    string
	NextURL    string
}

// renderListPage fills the fallback paginated-index template from one
// Pager (content.Paginate's supplemented pagination feature).
func renderListPage[F markdown.FrontMatter](name string, nav []*toc.Entry, pager *content.Pager[F]) ([]byte, error) {
	view := listView{
		Name:       name,
		Nav:        nav,
		PageNumber: pager.PageNumber,
		TotalPages: pager.TotalPages,
		HasPrev:    pager.HasPrev,
		HasNext:    pager.HasNext,
		PrevURL:    pager.PrevURL,
		NextURL:    pager.NextURL,
	}
	for _, p := range pager.Pages {
		view.Pages = append(view.Pages, tagListItem{Title: p.Metadata.Title, URL: p.NavigateURL})
	}
	var buf bytes.Buffer
	if err := listTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type tagListItem struct {
	Title string
	URL   string
}

type tagView struct {
	Name  string
	Pages []tagListItem
}

// renderTagPage fills the fallback tag-index template from the pages
// carrying one tag.
func renderTagPage[F markdown.FrontMatter](name string, pages []*content.PageRecord[F]) ([]byte, error) {
	view := tagView{Name: name}
	for _, p := range pages {
		view.Pages = append(view.Pages, tagListItem{Title: p.Metadata.Title, URL: p.NavigateURL})
	}
	var buf bytes.Buffer
	if err := tagTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
