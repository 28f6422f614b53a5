// internal/notification/templates.go

package notifications

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/imadgeboyega/kiekky-kinship/internal/matching"
)

const draftSubjectTemplate = `Model draft {{.Version}} awaiting review`

const draftTextTemplate = `A new compatibility model draft is ready for review.

Version: {{.Version}}
Parent:  {{.ParentVersion}}
Created: {{.CreatedAt}}
Triggers: {{.Triggers}}

Weights:
{{range .Weights}}  {{.Name}}: {{.Value}}
{{end}}
Minimum score: {{.MinScore}}
Observed accuracy: {{.Accuracy}} (baseline {{.BaselineAccuracy}})
Observed satisfaction: {{.Satisfaction}} (baseline {{.BaselineSatisfaction}})

Drafts are never activated automatically. Review and activate it via
POST /api/v1/models/{{.Version}}/activate.
`

const draftHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #4F46E5; color: white; padding: 16px; border-radius: 8px 8px 0 0; }
        .content { background: #f9f9f9; padding: 16px; border-radius: 0 0 8px 8px; }
        table { border-collapse: collapse; }
        td { padding: 2px 12px 2px 0; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h2>Draft {{.Version}}</h2></div>
        <div class="content">
            <p>Parent <strong>{{.ParentVersion}}</strong>, triggered by {{.Triggers}}.</p>
            <table>
                {{range .Weights}}<tr><td>{{.Name}}</td><td>{{.Value}}</td></tr>
                {{end}}
                <tr><td>min score</td><td>{{.MinScore}}</td></tr>
            </table>
            <p>Observed accuracy {{.Accuracy}}, satisfaction {{.Satisfaction}}. Baseline {{.BaselineAccuracy}} and {{.BaselineSatisfaction}}.</p>
        </div>
    </div>
</body>
</html>`

const draftShortTemplate = `Kinship: model draft {{.Version}} ({{.Triggers}}) awaiting review`

type weightLine struct {
	Name  string
	Value string
}

type draftView struct {
	Version       string
	ParentVersion string
	CreatedAt     string
	Triggers      string
	Weights       []weightLine
	MinScore      string
	Accuracy      string
	Satisfaction  string

	BaselineAccuracy     string
	BaselineSatisfaction string
}

var (
	subjectTmpl = template.Must(template.New("subject").Parse(draftSubjectTemplate))
	textTmpl    = template.Must(template.New("text").Parse(draftTextTemplate))
	shortTmpl   = template.Must(template.New("short").Parse(draftShortTemplate))
	htmlTmpl    = htmltemplate.Must(htmltemplate.New("html").Parse(draftHTMLTemplate))
)

// RenderDraftReview renders every channel's content for a draft
func RenderDraftReview(draft *matching.CompatibilityModel, triggers []string) (*DraftReview, error) {
	if draft == nil {
		return nil, fmt.Errorf("render draft review: nil draft")
	}
	view := newDraftView(draft, triggers)

	subject, err := renderString(subjectTmpl, view)
	if err != nil {
		return nil, err
	}
	body, err := renderString(textTmpl, view)
	if err != nil {
		return nil, err
	}
	short, err := renderString(shortTmpl, view)
	if err != nil {
		return nil, err
	}

	var html bytes.Buffer
	if err := htmlTmpl.Execute(&html, view); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	return &DraftReview{
		Subject: subject,
		Body:    body,
		HTML:    html.String(),
		Short:   short,
	}, nil
}

func newDraftView(draft *matching.CompatibilityModel, triggers []string) draftView {
	parent := draft.ParentVersion
	if parent == "" {
		parent = "none"
	}
	trig := "manual"
	if len(triggers) > 0 {
		trig = strings.Join(triggers, ", ")
	}

	dims := make([]string, 0, len(draft.Weights))
	for d := range draft.Weights {
		dims = append(dims, string(d))
	}
	sort.Strings(dims)
	weights := make([]weightLine, 0, len(dims))
	for _, d := range dims {
		weights = append(weights, weightLine{
			Name:  d,
			Value: fmt.Sprintf("%.3f", draft.Weights[matching.Dimension(d)]),
		})
	}

	accuracy, satisfaction := "n/a", "n/a"
	if obs := draft.Observed; obs != nil {
		accuracy, satisfaction = percent(obs.Accuracy), percent(obs.Satisfaction)
	}

	return draftView{
		Version:       draft.Version,
		ParentVersion: parent,
		CreatedAt:     draft.CreatedAt.UTC().Format(time.RFC3339),
		Triggers:      trig,
		Weights:       weights,
		MinScore:      fmt.Sprintf("%.1f", draft.MinScore),
		Accuracy:      accuracy,
		Satisfaction:  satisfaction,

		BaselineAccuracy:     percent(draft.Baseline.Accuracy),
		BaselineSatisfaction: percent(draft.Baseline.Satisfaction),
	}
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func renderString(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
