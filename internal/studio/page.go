package studio

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTemplate = "index.html"

type PageData struct {
	Title           string
	Accept          string
	HasImage        bool
	ImageName       string
	ImageURL        string
	HasDescription  bool
	DescriptionHTML template.HTML
	AuraURL         string
	Error           string
	ErrorStage      string
}

// Renderer renders the studio page for echo's c.Render.
type Renderer struct {
	templates *template.Template
	markdown  goldmark.Markdown
	policy    *bluemonday.Policy
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{
		templates: tmpl,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:    bluemonday.UGCPolicy(),
	}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// Markdown converts model output to sanitised HTML. Conversion failures fall
// back to the escaped plain text.
func (r *Renderer) Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

func acceptAttr(exts []string) string {
	return strings.Join(exts, ",")
}
