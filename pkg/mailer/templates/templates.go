package templates

import (
	"bytes"
	"errors"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"

	"github.com/oksasatya/studypal/pkg/mailer"
)

// ErrUnknownTemplate is returned by Render for a name with no registered template.
var ErrUnknownTemplate = errors.New("unknown email template")

// Brand carries the fields every template may use. The worker merges it into job data.
type Brand struct {
	CompanyName string
	AppURL      string
	SupportURL  string
}

// Merge copies the brand fields into data without overwriting values the job already set.
func (b Brand) Merge(data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+3)
	for k, v := range data {
		out[k] = v
	}
	for k, v := range map[string]string{"CompanyName": b.CompanyName, "AppURL": b.AppURL, "SupportURL": b.SupportURL} {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

type emailTemplate struct {
	subject string
	text    string
	html    string
}

var registry = map[string]emailTemplate{
	mailer.TemplateWelcome: {
		subject: `Welcome to {{ .CompanyName | default "StudyPal" }}`,
		text: `Hi {{ .Name | default "there" }},

Your {{ .CompanyName | default "StudyPal" }} account is ready. Sign in at {{ .AppURL }} to create your first study plan.
{{ with .SupportURL }}
Questions? {{ . }}{{ end }}
`,
		html: `<p>Hi {{ .Name | default "there" }},</p>
<p>Your {{ .CompanyName | default "StudyPal" }} account is ready. <a href="{{ .AppURL }}">Sign in</a> to create your first study plan.</p>
{{ with .SupportURL }}<p>Questions? <a href="{{ . }}">Contact support</a>.</p>{{ end }}`,
	},
	mailer.TemplatePasswordChanged: {
		subject: `Your {{ .CompanyName | default "StudyPal" }} password was changed`,
		text: `Hi {{ .Name | default "there" }},

The password on your account was changed on {{ now | formatTime "02 January 2006, 15:04 MST" }}.
If this was not you, reset it at {{ .AppURL }} and contact support{{ with .SupportURL }} at {{ . }}{{ end }}.
`,
		html: `<p>Hi {{ .Name | default "there" }},</p>
<p>The password on your account was changed on {{ now | formatTime "02 January 2006, 15:04 MST" }}.</p>
<p>If this was not you, <a href="{{ .AppURL }}">reset it</a>{{ with .SupportURL }} and <a href="{{ . }}">contact support</a>{{ end }}.</p>`,
	},
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.IsZero() {
			return fallback
		}
		return value
	}
}

func baseFuncs() map[string]any {
	return map[string]any{
		"now":        func() time.Time { return time.Now().UTC() },
		"formatTime": func(layout string, t time.Time) string { return t.Format(layout) },
		"upper":      strings.ToUpper,
		"default":    defaultFn,
	}
}

var (
	htmlFuncMap = htmpl.FuncMap(baseFuncs())
	textFuncMap = texttpl.FuncMap(baseFuncs())
)

func renderText(name, src string, data any) (string, error) {
	tpl, err := texttpl.New(name).Funcs(textFuncMap).Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse text %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

func renderHTML(name, src string, data any) (string, error) {
	tpl, err := htmpl.New(name).Funcs(htmlFuncMap).Option("missingkey=zero").Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse html %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

// Render renders the subject, text and html parts of the named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	t, ok := registry[name]
	if !ok {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	if subject, err = renderText(name+".subject", t.subject, data); err != nil {
		return "", "", "", err
	}
	if text, err = renderText(name+".text", t.text, data); err != nil {
		return "", "", "", err
	}
	if html, err = renderHTML(name+".html", t.html, data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
