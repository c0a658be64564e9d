package mail

import (
	"bytes"
	"embed"
	"html/template"

	"membertracker/internal/config"

	"github.com/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateRenderer renders the embedded HTML email templates
type TemplateRenderer struct {
	templates *template.Template
	defaults  map[string]interface{}
}

// NewTemplateRenderer parses the embedded templates. Church contact details
// and the payment link are available to every template.
func NewTemplateRenderer(cfg config.MailConfig) (*TemplateRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse email templates")
	}
	return &TemplateRenderer{
		templates: tmpl,
		defaults: map[string]interface{}{
			"ChurchName":  cfg.Church.Name,
			"ChurchPhone": cfg.Church.Phone,
			"ChurchEmail": cfg.Church.Email,
			"PaymentURL":  cfg.ReminderURL,
		},
	}, nil
}

// Render executes the template called name. vars override the defaults.
func (r *TemplateRenderer) Render(name string, vars map[string]interface{}) (string, error) {
	tmpl := r.templates.Lookup(name + ".html")
	if tmpl == nil {
		return "", errors.Errorf("email template %q not found", name)
	}

	data := make(map[string]interface{}, len(r.defaults)+len(vars))
	for k, v := range r.defaults {
		data[k] = v
	}
	for k, v := range vars {
		data[k] = v
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(err, "render email template %q", name)
	}
	return buf.String(), nil
}
