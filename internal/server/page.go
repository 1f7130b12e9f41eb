package server

import (
	"html/template"

	"github.com/matzehuels/svg2png/pkg/convert"
)

// pageData feeds pageTemplate.
type pageData struct {
	FileName string
	Size     int
	Error    string
	Preview  *previewView
	Version  string
}

// previewView carries the data URI as a trusted URL; html/template would
// otherwise rewrite data: URLs in href and src.
type previewView struct {
	Href  template.URL
	Text  string
	Title string
	Src   template.URL
}

func newPreviewView(p *convert.Preview) *previewView {
	if p == nil {
		return nil
	}
	return &previewView{
		Href:  template.URL(p.LinkHref),
		Text:  p.LinkText,
		Title: p.LinkTitle,
		Src:   template.URL(p.ImageSrc),
	}
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>SVG to PNG</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
  form { margin: 1rem 0; }
  .error { color: #b00020; }
  #preview { max-width: 100%; border: 1px solid #ddd; margin-top: 1rem; }
  footer { color: #888; font-size: .8rem; margin-top: 2rem; }
</style>
</head>
<body>
<h1>SVG to PNG</h1>

<form action="/svg" method="post" enctype="multipart/form-data">
  <input type="file" id="svgInput" name="svg" accept=".svg" onchange="this.form.submit()">
  <noscript><button type="submit">Upload</button></noscript>
</form>
{{if .FileName}}<p>Selected: <strong>{{.FileName}}</strong> ({{.Size}} bytes)</p>{{end}}

<form action="/download" method="post" class="action">
  <input type="hidden" name="dpr" value="1">
  <button type="submit" id="downloadBtn">Download PNG</button>
</form>
<form action="/base64" method="post" class="action">
  <input type="hidden" name="dpr" value="1">
  <button type="submit" id="base64Btn">Get Base64</button>
</form>

{{if .Error}}<p class="error" id="error">{{.Error}}</p>{{end}}

<div id="base64Output">
{{with .Preview}}<a href="{{.Href}}" title="{{.Title}}" target="_blank">{{.Text}}</a>{{end}}
</div>
{{with .Preview}}<img id="preview" src="{{.Src}}" alt="PNG preview">{{end}}

<footer>svg2png {{.Version}}</footer>
<script>
  document.querySelectorAll('input[name="dpr"]').forEach(function (el) {
    el.value = String(window.devicePixelRatio || 1);
  });
</script>
</body>
</html>
`))
