package mailer

// Template names understood by the email worker.
const (
	TemplateWelcome         = "welcome"
	TemplatePasswordChanged = "password_changed"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (with Data) or Text/HTML is set; a rendered template wins.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
