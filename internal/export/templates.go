package export

import (
	"bytes"
	"html/template"
	"strings"
	"time"
)

var guideTemplate *template.Template

func init() {
	funcMap := template.FuncMap{
		"lower": strings.ToLower,
		"formatDate": func(t time.Time, layout string) string {
			return t.Format(layout)
		},
	}
	guideTemplate = template.Must(template.New("guide").Funcs(funcMap).Parse(brandGuideTemplate))
}

// TemplateData holds data for brand guide rendering
type TemplateData struct {
	BrandName   string
	Domain      string
	Description string
	GeneratedAt time.Time
	Colors      []TemplateColor
	Fonts       []TemplateFont
	Logos       []TemplateLogo
}

// TemplateColor is one palette entry
type TemplateColor struct {
	Hex  string
	Kind string
	Name string
}

// TemplateFont is one typeface entry
type TemplateFont struct {
	Family string
	Usage  string
	Source string
}

// TemplateLogo is one logo variant with a resolvable image URL
type TemplateLogo struct {
	URL    string
	Kind   string
	Theme  string
	Format string
}

// RenderBrandGuideHTML renders the brand guide template with provided data
func RenderBrandGuideHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := guideTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const brandGuideTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.BrandName}} Brand Guide</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 2rem auto; color: #222; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    h2 { margin-top: 2.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    .swatches { display: flex; flex-wrap: wrap; gap: 1rem; }
    .swatch { width: 140px; }
    .swatch .chip { height: 70px; border-radius: 4px; border: 1px solid #ddd; }
    .swatch .hex { font-family: monospace; margin-top: 0.25rem; }
    .swatch .kind { color: #666; font-size: 0.85em; text-transform: capitalize; }
    table { border-collapse: collapse; width: 100%; }
    th, td { text-align: left; padding: 0.5rem 0.75rem; border-bottom: 1px solid #eee; }
    th { color: #666; font-size: 0.85em; text-transform: uppercase; }
    .logos { display: flex; flex-wrap: wrap; gap: 1.5rem; }
    .logo { width: 200px; text-align: center; }
    .logo img { max-width: 100%; max-height: 120px; border: 1px solid #eee; border-radius: 4px; padding: 8px; }
    .logo.dark img { background: #1a1a2e; }
    .logo .label { color: #666; font-size: 0.85em; text-transform: capitalize; }
  </style>
</head>
<body>
  <h1>{{.BrandName}}</h1>
  <div class="meta">
    {{if .Domain}}{{.Domain}} | {{end}}Brand guide generated {{formatDate .GeneratedAt "Jan 2, 2006"}}
  </div>
  {{if .Description}}<p>{{.Description}}</p>{{end}}

  {{if .Colors}}
  <h2>Colors</h2>
  <div class="swatches">
    {{range .Colors}}
    <div class="swatch">
      <div class="chip" style="background: {{.Hex}};"></div>
      <div class="hex">{{.Hex}}</div>
      <div class="kind">{{.Kind}}{{if .Name}} &middot; {{.Name}}{{end}}</div>
    </div>
    {{end}}
  </div>
  {{end}}

  {{if .Fonts}}
  <h2>Typography</h2>
  <table>
    <tr><th>Family</th><th>Usage</th><th>Source</th></tr>
    {{range .Fonts}}
    <tr><td>{{.Family}}</td><td>{{.Usage}}</td><td>{{.Source}}</td></tr>
    {{end}}
  </table>
  {{end}}

  {{if .Logos}}
  <h2>Logos</h2>
  <div class="logos">
    {{range .Logos}}
    <div class="logo {{lower .Theme}}">
      <img src="{{.URL}}" alt="{{.Kind}} {{.Theme}}">
      <div class="label">{{.Kind}} &middot; {{.Theme}} &middot; {{.Format}}</div>
    </div>
    {{end}}
  </div>
  {{end}}
</body>
</html>`
