package resend

import (
	"bytes"
	"html/template"

	"github.com/resend/resend-go/v2"
)

type ResendNotifier struct {
	ApiKey string
	From   string
}

const htmlTemplate = `
<p>The following streaks are expiring within the next {{.Hours}} hours:</p>
<ul>
{{range .Arenas}}
  <li>{{.}}</li>
{{end}}
</ul>
`

func (r *ResendNotifier) SendReminder(email string, arenas []string, hoursTillExpiry int) error {
	tmpl, err := template.New("email").Parse(htmlTemplate)
	if err != nil {
		return err
	}

	data := struct {
		Arenas []string
		Hours  int
	}{
		Arenas: arenas,
		Hours:  hoursTillExpiry,
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}

	client := resend.NewClient(r.ApiKey)
	params := &resend.SendEmailRequest{
		From:    r.From,
		To:      []string{email},
		Subject: "Streaks are expiring soon",
		Html:    buf.String(),
	}

	_, err = client.Emails.Send(params)
	return err
}
