package utils

import (
	"fmt"
	"net/smtp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// RoomInfo represents a room's number + type for emails / display
type RoomInfo struct {
	Number string // e.g. "101"
	Type   string // e.g. "DELUXE"
}

// ReservationEmail carries what the confirmation email shows.
type ReservationEmail struct {
	To            string
	GuestName     string
	ReservationID uint
	HotelName     string
	Rooms         []RoomInfo
	CheckIn       string
	CheckOut      string
	QRLink        string
}

// Mailer sends multipart emails over SMTP. With no host configured it
// only logs what it would have sent.
type Mailer struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

func (m *Mailer) configured() bool {
	return m != nil && m.Host != "" && m.Port != "" && m.Username != "" && m.Password != ""
}

// SendReservationConfirmation sends the booking summary with the guest QR link.
func (m *Mailer) SendReservationConfirmation(e ReservationEmail) error {
	if !m.configured() {
		log.WithFields(log.Fields{
			"to":          MaskEmail(e.To),
			"reservation": e.ReservationID,
			"rooms":       strings.TrimSpace(roomsListText(e.Rooms)),
		}).Info("[MOCK EMAIL] reservation confirmation")
		return nil
	}

	guestName := safeHeader(e.GuestName)
	hotelName := safeHeader(e.HotelName)
	qrLink := ensureScheme(safeHeader(e.QRLink))

	subject := fmt.Sprintf("Reservation Confirmation #%d", e.ReservationID)

	plainBody := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Thank you for booking with %s. Here are your reservation details:\n\n"+
			"Reservation: #%d\n"+
			"Rooms:\n%s\n"+
			"Check-In: %s\n"+
			"Check-Out: %s\n\n"+
			"Show this QR code at the front desk for a quick check-in: %s\n\n"+
			"Best regards,\n%s",
		guestName, hotelName, e.ReservationID, roomsListText(e.Rooms), e.CheckIn, e.CheckOut, qrLink, hotelName,
	)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Reservation Confirmation</title>
<style>
body { background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222; }
.container { max-width:700px; margin:20px auto; }
.card { background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px; }
.label { font-weight:700; width:160px; display:inline-block; vertical-align:top; }
.btn { display:inline-block; padding:12px 20px; background:#0b74ff; color:#fff;
       text-decoration:none; border-radius:6px; margin-top:18px; }
.room-list { margin:12px 0 18px 0; padding-left:18px; }
.room-item { margin:6px 0; }
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h2>Reservation Confirmation</h2>
    <p>Dear %s,</p>
    <p>Thank you for choosing %s. Below are your reservation details:</p>
    <p><span class="label">Reservation:</span> #%d</p>
    <p><span class="label">Rooms:</span> %s</p>
    <p><span class="label">Check-In:</span> %s</p>
    <p><span class="label">Check-Out:</span> %s</p>
    <a class="btn" href="%s" target="_blank">Show my check-in QR code</a>
    <p>Best regards,<br>%s</p>
  </div>
</div>
</body>
</html>`,
		htmlEscape(guestName), htmlEscape(hotelName), e.ReservationID, roomsListHTML(e.Rooms),
		htmlEscape(e.CheckIn), htmlEscape(e.CheckOut), qrLink, htmlEscape(hotelName),
	)

	return m.send(e.To, subject, plainBody, htmlBody)
}

// SendStaffWelcome tells a new staff member which portal role they were given.
func (m *Mailer) SendStaffWelcome(to, name, role, loginLink string) error {
	if !m.configured() {
		log.WithFields(log.Fields{"to": MaskEmail(to), "role": role}).Info("[MOCK EMAIL] staff welcome")
		return nil
	}

	name = safeHeader(name)
	role = safeHeader(role)
	loginLink = ensureScheme(safeHeader(loginLink))

	plainBody := fmt.Sprintf(
		"Hi %s,\n\n"+
			"An account with the %s role was created for you.\n"+
			"Sign in here: %s\n\n"+
			"If you did not expect this, contact your system administrator.\n",
		name, role, loginLink,
	)
	htmlBody := fmt.Sprintf(`<!doctype html>
<html><head><meta charset="utf-8"><title>Welcome</title></head>
<body style="background:#f5f7fb;font-family:Arial, Helvetica, sans-serif;color:#222;">
<div style="max-width:640px;margin:20px auto;background:#fff;border:1px solid #e6eef6;padding:24px;border-radius:8px;">
<h2>Welcome aboard</h2>
<p>Hi %s,</p>
<p>An account with the <strong>%s</strong> role was created for you.</p>
<a href="%s" target="_blank" style="display:inline-block;padding:12px 20px;background:#0b74ff;color:#fff;text-decoration:none;border-radius:6px;">Sign in</a>
</div></body></html>`, htmlEscape(name), htmlEscape(role), loginLink)

	return m.send(to, "Your hotel staff account", plainBody, htmlBody)
}

func (m *Mailer) send(to, subject, plainBody, htmlBody string) error {
	boundary := "----=_HOTEL_PMS_BOUNDARY"
	from := fmt.Sprintf("%s <%s>", m.FromName, m.Username)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plainBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(htmlBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	addr := fmt.Sprintf("%s:%s", m.Host, m.Port)
	if err := smtp.SendMail(addr, auth, m.Username, []string{to}, []byte(sb.String())); err != nil {
		log.WithError(err).WithField("to", MaskEmail(to)).Error("failed to send email")
		return err
	}

	log.WithField("to", MaskEmail(to)).Info("📨 email sent")
	return nil
}

func safeHeader(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
}

func ensureScheme(link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return "https://" + strings.TrimLeft(link, "/")
}

// helper: produce plain text list for rooms
func roomsListText(rooms []RoomInfo) string {
	if len(rooms) == 0 {
		return "N/A"
	}
	var b strings.Builder
	for _, r := range rooms {
		num := strings.TrimSpace(r.Number)
		typ := strings.TrimSpace(r.Type)
		if typ != "" {
			b.WriteString(fmt.Sprintf(" - %s (%s)\n", num, typ))
		} else {
			b.WriteString(fmt.Sprintf(" - %s\n", num))
		}
	}
	return b.String()
}

// helper: produce HTML list for rooms
func roomsListHTML(rooms []RoomInfo) string {
	if len(rooms) == 0 {
		return "<em>N/A</em>"
	}
	var b strings.Builder
	b.WriteString("<ul class=\"room-list\">")
	for _, r := range rooms {
		num := strings.TrimSpace(r.Number)
		typ := strings.TrimSpace(r.Type)
		if typ != "" {
			b.WriteString(fmt.Sprintf("<li class=\"room-item\">%s (%s)</li>", htmlEscape(num), htmlEscape(typ)))
		} else {
			b.WriteString(fmt.Sprintf("<li class=\"room-item\">%s</li>", htmlEscape(num)))
		}
	}
	b.WriteString("</ul>")
	return b.String()
}

// minimal html escaper for the small strings we use
func htmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(s)
}
