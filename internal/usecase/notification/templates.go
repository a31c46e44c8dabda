package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"sync"
	"time"

	"dojo-admin/internal/logger"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var (
	markdownOnce     sync.Once
	markdownRenderer goldmark.Markdown
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownRenderer = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		)
	})
	return markdownRenderer
}

// RenderMarkdown converts markdown to HTML. Raw HTML in the source is
// dropped.
func RenderMarkdown(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := getMarkdown().Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func renderHTML(name string, data interface{}, fallback string) string {
	var buf bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("Failed to render email template",
			zap.String("template", name),
			zap.Error(err),
		)
		return "<p>" + html.EscapeString(fallback) + "</p>"
	}
	return buf.String()
}

const dateLayout = "02/01/2006"

// ResetPasswordMessage links to the frontend page that redeems token.
func ResetPasswordMessage(r Recipient, link string, ttl time.Duration) Message {
	text := "Solicitaste restablecer tu contraseña."
	return Message{
		Text:    text,
		Subject: "Restablecer contraseña - Dojo Bunkai",
		HTML: renderHTML("reset_password", map[string]interface{}{
			"Name":      r.Name,
			"Link":      link,
			"ExpiresIn": humanDuration(ttl),
		}, text+" "+link),
	}
}

// Payment concepts are stored HTML-escaped; the builders unescape them
// before the template escapes again.
func PaymentPendingMessage(r Recipient, concept string, amount float64, dueDate time.Time) Message {
	concept = html.UnescapeString(concept)
	due := dueDate.Format(dateLayout)
	text := fmt.Sprintf("Se ha registrado un nuevo pago pendiente: %s (Vence: %s).", concept, due)
	return Message{
		Text:    text,
		Subject: "Nuevo pago pendiente - Dojo Bunkai",
		HTML: renderHTML("payment_pending", map[string]interface{}{
			"Name":    r.Name,
			"Concept": concept,
			"Amount":  fmt.Sprintf("$%.2f", amount),
			"DueDate": due,
		}, text),
	}
}

func PaymentConfirmedMessage(r Recipient, concept string) Message {
	concept = html.UnescapeString(concept)
	text := fmt.Sprintf("¡Tu pago de \"%s\" ha sido confirmado! Gracias.", concept)
	return Message{
		Text:    text,
		Subject: "Pago confirmado - Dojo Bunkai",
		HTML: renderHTML("payment_confirmed", map[string]interface{}{
			"Name":    r.Name,
			"Concept": concept,
		}, text),
	}
}

func DocumentValidatedMessage(r Recipient) Message {
	text := "Tus documentos RENADE han sido validados."
	return Message{
		Text:    text,
		Subject: "Actualización RENADE - Validado",
		HTML: renderHTML("document_validated", map[string]interface{}{
			"Name": r.Name,
		}, text),
	}
}

func DocumentRejectedMessage(r Recipient, reason string) Message {
	text := "Tu solicitud RENADE fue rechazada: " + reason
	return Message{
		Text:    text,
		Subject: "Actualización RENADE - Rechazado",
		HTML: renderHTML("document_rejected", map[string]interface{}{
			"Name":   r.Name,
			"Reason": reason,
		}, text),
	}
}

// AnnouncementMessage renders body as markdown for the email and keeps the
// raw text for the in-app entry.
func AnnouncementMessage(r Recipient, author string, body string) Message {
	text := fmt.Sprintf("Nuevo comunicado del profesor: \"%s\"", body)

	rendered, err := RenderMarkdown(body)
	if err != nil {
		rendered = template.HTML("<p>" + html.EscapeString(body) + "</p>")
	}

	return Message{
		Text:    text,
		Subject: "Nuevo comunicado - Dojo Bunkai",
		HTML: renderHTML("announcement", map[string]interface{}{
			"Name":   r.Name,
			"Author": author,
			"Body":   rendered,
		}, text),
	}
}

func MonthlyReminderMessage(r Recipient, dueDay int) Message {
	text := fmt.Sprintf("Recuerda que la fecha límite de pago de tu colegiatura es el día %d.", dueDay)
	return Message{
		Text:    text,
		Subject: "Recordatorio de Colegiatura - Dojo Bunkai",
		HTML: renderHTML("monthly_reminder", map[string]interface{}{
			"Name":   r.Name,
			"DueDay": dueDay,
		}, text),
	}
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hora"
		}
		return fmt.Sprintf("%d horas", hours)
	case d >= time.Minute:
		return fmt.Sprintf("%d minutos", int(d/time.Minute))
	default:
		return d.String()
	}
}
