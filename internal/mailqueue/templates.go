package mailqueue

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"seatsnag/pkg/model"
)

const supportAddress = "support@seatsnag.io"

// VerificationData fills the signup verification email.
type VerificationData struct {
	AdminName   string
	CompanyName string
	Email       string
	Link        string
	TrialDays   int
}

// WelcomeData fills the email sent once a company is verified.
type WelcomeData struct {
	AdminName    string
	CompanyName  string
	Email        string
	TrialDays    int
	TrialEndDate time.Time
}

// TrialExtendedData fills the email sent when an operator extends a trial.
type TrialExtendedData struct {
	CompanyName  string
	Days         int
	TrialEndDate time.Time
}

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"longDate": func(t time.Time) string { return t.Format("January 2, 2006") },
	"support":  func() string { return supportAddress },
}).Parse(`
{{define "verification"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h1>Welcome to SeatSnag{{with .AdminName}}, {{.}}{{end}}!</h1>
<p>Thank you for signing up! Please verify your email address to activate your {{.TrialDays}}-day free trial.</p>
<p><strong>Company:</strong> {{.CompanyName}}<br><strong>Email:</strong> {{.Email}}</p>
<p><a href="{{.Link}}">Verify Email &amp; Start Trial</a></p>
<p>If you didn't create this account, you can safely ignore this email.</p>
<p>Need help? <a href="mailto:{{support}}">Contact support</a></p>
</div>{{end}}

{{define "welcome"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h1>You're all set{{with .AdminName}}, {{.}}{{end}}!</h1>
<p>Your email has been verified and your {{.TrialDays}}-day free trial for {{.CompanyName}} is now active.</p>
<p><strong>Login Email:</strong> {{.Email}}<br><strong>Trial Expires:</strong> {{longDate .TrialEndDate}}</p>
<p>Next steps: create your office locations, share the access code with your team and watch the dashboard fill up.</p>
<p>Questions? <a href="mailto:{{support}}">Contact support</a></p>
</div>{{end}}

{{define "trial_extended"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h1>Your trial has been extended</h1>
<p>We added {{.Days}} days to the SeatSnag trial for {{.CompanyName}}. It now runs until {{longDate .TrialEndDate}}.</p>
</div>{{end}}
`))

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s mail: %w", name, err)
	}
	return buf.String(), nil
}

func VerificationMail(to string, data VerificationData) (model.Mail, error) {
	html, err := render("verification", data)
	if err != nil {
		return model.Mail{}, err
	}
	return model.Mail{
		To:      []string{to},
		Message: model.MailContent{Subject: "Verify Your Email - SeatSnag", HTML: html},
	}, nil
}

func WelcomeMail(to string, data WelcomeData) (model.Mail, error) {
	html, err := render("welcome", data)
	if err != nil {
		return model.Mail{}, err
	}
	return model.Mail{
		To:      []string{to},
		Message: model.MailContent{Subject: "Welcome to SeatSnag - Your Trial is Active", HTML: html},
	}, nil
}

func TrialExtendedMail(to string, data TrialExtendedData) (model.Mail, error) {
	html, err := render("trial_extended", data)
	if err != nil {
		return model.Mail{}, err
	}
	return model.Mail{
		To:      []string{to},
		Message: model.MailContent{Subject: "Your SeatSnag trial has been extended", HTML: html},
	}, nil
}
