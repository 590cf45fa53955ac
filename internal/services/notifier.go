package services

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"sort"
	"strings"
	texttemplate "text/template"
	"unicode"

	"debo-engineering/job-portal/internal/logger"
	"debo-engineering/job-portal/internal/metrics"
	"debo-engineering/job-portal/internal/models"
)

const (
	TemplateApplicationReceived = "application_received"
	TemplateStatusUpdate        = "status_update"
	TemplateFeedback            = "feedback"
	TemplateInterviewInvitation = "interview_invitation"
	TemplateInternPromotion     = "intern_promotion"
	TemplatePasswordReset       = "password_reset"
)

type builtinTemplate struct {
	Subject string
	Body    string
}

const signature = `<p>Best regards,<br/>{{.Company}}</p>`

var builtinTemplates = map[string]builtinTemplate{
	TemplateApplicationReceived: {
		Subject: "Application Received for {{.JobTitle}}",
		Body: `<p>Dear {{.Name}},</p>
<p>Your application for the position of <strong>{{.JobTitle}}</strong> has been received. We will review your application and get back to you soon.</p>` + signature,
	},
	TemplateStatusUpdate: {
		Subject: "Application Update for {{.JobTitle}}",
		Body: `<p>Dear {{.Name}},</p>
<p>The status of your application for <strong>{{.JobTitle}}</strong> is now <strong>{{.Status}}</strong>.</p>` + signature,
	},
	TemplateFeedback: {
		Subject: "Application Feedback",
		Body: `<p>Dear {{.Name}},</p>
{{range .FeedbackLines}}<p>{{.}}</p>
{{end}}` + signature,
	},
	TemplateInterviewInvitation: {
		Subject: "Interview Invitation for {{.JobTitle}}",
		Body: `<p>Dear {{.Name}},</p>
<p>You are invited for an interview for the position of <strong>{{.JobTitle}}</strong>. Details are as follows:</p>
<p>{{range .Details}}<b>{{.Label}}:</b> {{.Value}}<br/>{{end}}</p>` + signature,
	},
	TemplateInternPromotion: {
		Subject: "Congratulations on Your New Level: {{.LevelName}}",
		Body: `<p>Dear {{.Name}},</p>
<p>Congratulations! You have been promoted to the level of <strong>{{.LevelName}}</strong> in the {{.Company}} program. Keep up the great work!</p>` + signature,
	},
	TemplatePasswordReset: {
		Subject: "Reset your password",
		Body: `<p>Dear {{.Name}},</p>
<p>Use the link below to reset your password. It expires soon.</p>
<p><a href="{{.ResetURL}}">{{.ResetURL}}</a></p>` + signature,
	},
}

type DetailLine struct {
	Label string
	Value string
}

// TemplateData is the value every notification template is executed with.
type TemplateData struct {
	Name          string
	Company       string
	JobTitle      string
	Status        string
	FeedbackLines []string
	LevelName     string
	Details       []DetailLine
	ResetURL      string
}

type EmailTemplateFinder interface {
	FindByName(ctx context.Context, name string) (*models.EmailTemplate, error)
}

type Notifier interface {
	ApplicationReceived(ctx context.Context, user *models.User, job *models.Job) error
	StatusUpdated(ctx context.Context, user *models.User, job *models.Job, status models.ApplicationStatus) error
	Feedback(ctx context.Context, user *models.User, job *models.Job, feedback string) error
	InterviewInvitation(ctx context.Context, user *models.User, job *models.Job, details map[string]interface{}) error
	InternPromoted(ctx context.Context, user *models.User, level GadaLevel) error
	PasswordReset(ctx context.Context, user *models.User, resetURL string) error
}

type notifier struct {
	mailer    Mailer
	templates EmailTemplateFinder
	company   string
	log       logger.Logger
}

func NewNotifier(mailer Mailer, templates EmailTemplateFinder, company string, log logger.Logger) Notifier {
	return &notifier{
		mailer:    mailer,
		templates: templates,
		company:   company,
		log:       log,
	}
}

func (n *notifier) ApplicationReceived(ctx context.Context, user *models.User, job *models.Job) error {
	return n.send(ctx, TemplateApplicationReceived, user, TemplateData{JobTitle: job.Title})
}

func (n *notifier) StatusUpdated(ctx context.Context, user *models.User, job *models.Job, status models.ApplicationStatus) error {
	return n.send(ctx, TemplateStatusUpdate, user, TemplateData{JobTitle: job.Title, Status: string(status)})
}

func (n *notifier) Feedback(ctx context.Context, user *models.User, job *models.Job, feedback string) error {
	return n.send(ctx, TemplateFeedback, user, TemplateData{
		JobTitle:      job.Title,
		FeedbackLines: strings.Split(feedback, "\n"),
	})
}

func (n *notifier) InterviewInvitation(ctx context.Context, user *models.User, job *models.Job, details map[string]interface{}) error {
	return n.send(ctx, TemplateInterviewInvitation, user, TemplateData{
		JobTitle: job.Title,
		Details:  detailLines(details),
	})
}

func (n *notifier) InternPromoted(ctx context.Context, user *models.User, level GadaLevel) error {
	return n.send(ctx, TemplateInternPromotion, user, TemplateData{LevelName: level.Name})
}

func (n *notifier) PasswordReset(ctx context.Context, user *models.User, resetURL string) error {
	return n.send(ctx, TemplatePasswordReset, user, TemplateData{ResetURL: resetURL})
}

func (n *notifier) send(ctx context.Context, name string, user *models.User, data TemplateData) error {
	data.Name = user.Name
	data.Company = n.company

	subject, body, err := n.render(ctx, name, data)
	if err == nil {
		err = n.mailer.Send(ctx, EmailMessage{To: user.Email, Subject: subject, HTMLBody: body})
	}
	metrics.RecordEmail(name, err)

	if err != nil {
		return fmt.Errorf("failed to send %s email to user %d: %w", name, user.ID, err)
	}
	return nil
}

// render prefers a stored template and falls back to the built-in one.
func (n *notifier) render(ctx context.Context, name string, data TemplateData) (string, string, error) {
	tmpl, ok := builtinTemplates[name]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", name)
	}

	if n.templates != nil {
		stored, err := n.templates.FindByName(ctx, name)
		if err == nil && stored != nil {
			tmpl = builtinTemplate{Subject: stored.Subject, Body: stored.Body}
		} else if err != nil {
			n.log.Debug("using built-in email template", map[string]interface{}{"template": name, "reason": err.Error()})
		}
	}

	return RenderEmailTemplate(name, tmpl.Subject, tmpl.Body, data)
}

// RenderEmailTemplate executes subject as plain text and body as escaped HTML.
func RenderEmailTemplate(name, subject, body string, data TemplateData) (string, string, error) {
	subjectTmpl, err := texttemplate.New(name + "_subject").Parse(subject)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse subject of %s: %w", name, err)
	}
	bodyTmpl, err := htmltemplate.New(name + "_body").Parse(body)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse body of %s: %w", name, err)
	}

	var subjectBuf, bodyBuf bytes.Buffer
	if err := subjectTmpl.Execute(&subjectBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to render subject of %s: %w", name, err)
	}
	if err := bodyTmpl.Execute(&bodyBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to render body of %s: %w", name, err)
	}

	return strings.TrimSpace(subjectBuf.String()), bodyBuf.String(), nil
}

func detailLines(details map[string]interface{}) []DetailLine {
	keys := make([]string, 0, len(details))
	for k, v := range details {
		if k == "" || v == nil || fmt.Sprint(v) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]DetailLine, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, DetailLine{Label: humanizeKey(k), Value: fmt.Sprint(details[k])})
	}
	return lines
}

// humanizeKey turns "interviewDate" into "Interview Date".
func humanizeKey(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		if r == '_' {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
