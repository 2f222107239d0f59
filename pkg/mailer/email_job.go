package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either set Template (one of "verify_email", "login_code", "login_link")
// with its Data, or provide a raw Subject with Text/HTML bodies.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
