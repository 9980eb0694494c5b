package mail

import (
	"bytes"
	"html/template"
)

var messageTemplate = template.Must(template.New("contact").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #2d2d2d; border-bottom: 2px solid #8b9a7a; padding-bottom: 10px;">Nowe zapytanie ze strony</h1>
  <table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
    <tr>
      <td style="padding: 12px 0; border-bottom: 1px solid #eee; color: #666;"><strong>Imię i nazwisko:</strong></td>
      <td style="padding: 12px 0; border-bottom: 1px solid #eee;">{{.Name}}</td>
    </tr>
    <tr>
      <td style="padding: 12px 0; border-bottom: 1px solid #eee; color: #666;"><strong>Email:</strong></td>
      <td style="padding: 12px 0; border-bottom: 1px solid #eee;"><a href="mailto:{{.Email}}" style="color: #8b9a7a;">{{.Email}}</a></td>
    </tr>
    {{- if .Phone}}
    <tr>
      <td style="padding: 12px 0; border-bottom: 1px solid #eee; color: #666;"><strong>Telefon:</strong></td>
      <td style="padding: 12px 0; border-bottom: 1px solid #eee;"><a href="tel:{{.Phone}}" style="color: #8b9a7a;">{{.Phone}}</a></td>
    </tr>
    {{- end}}
    {{- if .Date}}
    <tr>
      <td style="padding: 12px 0; border-bottom: 1px solid #eee; color: #666;"><strong>Planowana data:</strong></td>
      <td style="padding: 12px 0; border-bottom: 1px solid #eee;">{{.Date}}</td>
    </tr>
    {{- end}}
    {{- if .Service}}
    <tr>
      <td style="padding: 12px 0; border-bottom: 1px solid #eee; color: #666;"><strong>Rodzaj sesji:</strong></td>
      <td style="padding: 12px 0; border-bottom: 1px solid #eee;">{{.Service}}</td>
    </tr>
    {{- end}}
  </table>
  <div style="background-color: #f5f0eb; padding: 20px; margin: 20px 0; border-radius: 4px;">
    <h3 style="color: #2d2d2d; margin-top: 0;">Wiadomość:</h3>
    <p style="color: #4a4a4a; line-height: 1.6; white-space: pre-wrap; margin: 0;">{{.Message}}</p>
  </div>
  <p style="color: #888; font-size: 12px; margin-top: 30px; text-align: center;">Ta wiadomość została wysłana z formularza kontaktowego na stronie fiodorowphotography.pl</p>
</div>
`))

// RenderHTML renders the email body for msg with all fields escaped.
func RenderHTML(msg ContactMessage) (string, error) {
	var buf bytes.Buffer
	if err := messageTemplate.Execute(&buf, msg); err != nil {
		return "", err
	}
	return buf.String(), nil
}
