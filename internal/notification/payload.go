// internal/notification/payload.go
package notification

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"mentoloop-waitlist/internal/mailer"
	"mentoloop-waitlist/internal/waitlist"
)

// Payload is the ephemeral per-submission view the dispatcher sends from.
// It is constructed fresh for every signup and never persisted.
type Payload struct {
	Welcome       mailer.Message
	OperatorAlert mailer.Message
	OperatorSMS   string
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// plainText derives the text fallback from an HTML body by stripping markup
// and collapsing whitespace. Plain-text bodies are never hand-authored.
func plainText(html string) string {
	text := tagPattern.ReplaceAllString(html, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// BuildPayload composes the welcome message (role-specific variant) and the
// operator alert for one signup.
func BuildPayload(req *waitlist.SignupRequest, at time.Time, operatorAddress string) Payload {
	subject, html := welcomeTemplate(req)
	alertSubject, alertHTML := operatorAlertTemplate(req, at)

	return Payload{
		Welcome: mailer.Message{
			To:      req.Email,
			Subject: subject,
			HTML:    html,
			Text:    plainText(html),
		},
		OperatorAlert: mailer.Message{
			To:      operatorAddress,
			Subject: alertSubject,
			HTML:    alertHTML,
			Text:    plainText(alertHTML),
		},
		OperatorSMS: fmt.Sprintf("New %s waitlist signup: %s <%s>", req.Role, req.FullName, req.Email),
	}
}

func welcomeTemplate(req *waitlist.SignupRequest) (subject, html string) {
	switch req.Role {
	case waitlist.RolePreceptor:
		subject = "Welcome to MentoLoop - Shape the Future of Nursing Education!"
		html = fmt.Sprintf(`
<div style="font-family: 'Inter', Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; color: #1f2937;">
  <div style="text-align: center; margin-bottom: 30px;">
    <h1 style="color: #059669; font-size: 28px; margin-bottom: 10px;">Welcome to MentoLoop!</h1>
    <p style="color: #6b7280; font-size: 16px;">Thank you for being part of the mentorship revolution</p>
  </div>
  <p style="font-size: 16px; line-height: 1.6;">Hi %s,</p>
  <p style="font-size: 16px; line-height: 1.6;">
    Thank you for joining MentoLoop as a preceptor! Your experience and dedication to mentoring the next generation
    of nurse practitioners is exactly what our platform was built to support.
  </p>
  <div style="background: #f0fdf4; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #059669; margin-bottom: 15px;">What makes MentoLoop different for preceptors?</h3>
    <ul style="margin: 0; padding-left: 20px;">
      <li style="margin-bottom: 10px;">Smart matching with students who fit your teaching style</li>
      <li style="margin-bottom: 10px;">Streamlined communication and scheduling tools</li>
      <li style="margin-bottom: 10px;">No administrative hassle - we handle the paperwork</li>
      <li>Connect with other preceptors in our professional community</li>
    </ul>
  </div>
  <p style="font-size: 16px; line-height: 1.6;">
    We'll be in touch soon with launch updates and early access to set up your preceptor profile.
  </p>
  <div style="border-top: 1px solid #e5e7eb; padding-top: 20px; text-align: center; color: #6b7280; font-size: 14px;">
    <p>MentoLoop - Transforming nursing education through meaningful connections</p>
  </div>
</div>`, req.FullName)

	case waitlist.RoleSchool:
		subject = "Welcome to MentoLoop - Streamline Your Clinical Placements!"
		html = fmt.Sprintf(`
<div style="font-family: 'Inter', Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; color: #1f2937;">
  <div style="text-align: center; margin-bottom: 30px;">
    <h1 style="color: #ea580c; font-size: 28px; margin-bottom: 10px;">Welcome to MentoLoop!</h1>
    <p style="color: #6b7280; font-size: 16px;">Revolutionizing clinical placements for nursing programs</p>
  </div>
  <p style="font-size: 16px; line-height: 1.6;">Hi %s,</p>
  <p style="font-size: 16px; line-height: 1.6;">
    Thank you for your interest in MentoLoop! We're excited to work with forward-thinking nursing programs
    that prioritize quality clinical experiences and meaningful mentorship.
  </p>
  <div style="background: #fff7ed; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #ea580c; margin-bottom: 15px;">How MentoLoop supports nursing programs:</h3>
    <ul style="margin: 0; padding-left: 20px;">
      <li style="margin-bottom: 10px;">Streamlined clinical placement coordination</li>
      <li style="margin-bottom: 10px;">Access to our vetted network of preceptors</li>
      <li style="margin-bottom: 10px;">Real-time tracking and communication tools</li>
      <li>Comprehensive reporting and analytics</li>
    </ul>
  </div>
  <p style="font-size: 16px; line-height: 1.6;">
    Our team will reach out soon to discuss how MentoLoop can support your program's clinical placement needs.
  </p>
  <div style="border-top: 1px solid #e5e7eb; padding-top: 20px; text-align: center; color: #6b7280; font-size: 14px;">
    <p>MentoLoop - Transforming nursing education through meaningful connections</p>
  </div>
</div>`, req.FullName)

	default: // student
		subject = "Welcome to MentoLoop - Your Clinical Placement Journey Starts Here!"
		html = fmt.Sprintf(`
<div style="font-family: 'Inter', Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; color: #1f2937;">
  <div style="text-align: center; margin-bottom: 30px;">
    <h1 style="color: #2563eb; font-size: 28px; margin-bottom: 10px;">Welcome to MentoLoop!</h1>
    <p style="color: #6b7280; font-size: 16px;">Your journey to meaningful clinical experiences begins now</p>
  </div>
  <p style="font-size: 16px; line-height: 1.6;">Hi %s,</p>
  <p style="font-size: 16px; line-height: 1.6;">
    Thank you for joining the MentoLoop waitlist! You're now part of a growing community of nurse practitioner
    students who are transforming their clinical education experience.
  </p>
  <div style="background: #f8fafc; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #2563eb; margin-bottom: 15px;">What happens next?</h3>
    <ul style="margin: 0; padding-left: 20px;">
      <li style="margin-bottom: 10px;">We'll notify you as soon as MentoLoop launches</li>
      <li style="margin-bottom: 10px;">You'll get early access to our MentorFit&trade; matching system</li>
      <li style="margin-bottom: 10px;">Connect with verified, experienced preceptors in your area</li>
      <li>Join a supportive community focused on mentorship and growth</li>
    </ul>
  </div>
  <p style="font-size: 16px; line-height: 1.6;">
    In the meantime, follow us on social media for updates and tips on making the most of your clinical rotations.
  </p>
  <div style="border-top: 1px solid #e5e7eb; padding-top: 20px; text-align: center; color: #6b7280; font-size: 14px;">
    <p>MentoLoop - Transforming nursing education through meaningful connections</p>
  </div>
</div>`, req.FullName)
	}

	return subject, html
}

func operatorAlertTemplate(req *waitlist.SignupRequest, at time.Time) (subject, html string) {
	referral := "Not specified"
	if req.ReferralSource != nil && *req.ReferralSource != "" {
		referral = *req.ReferralSource
	}

	subject = fmt.Sprintf("[MentoLoop] New %s signup: %s", req.Role, req.FullName)
	html = fmt.Sprintf(`
<div style="font-family: 'Inter', Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; color: #1f2937;">
  <div style="background: #f3f4f6; padding: 20px; border-radius: 8px; border-left: 4px solid #3b82f6;">
    <h2 style="color: #1f2937; margin: 0 0 20px 0; font-size: 24px;">New Waitlist Signup!</h2>
    <div style="background: white; padding: 20px; border-radius: 6px;">
      <table style="width: 100%%; border-collapse: collapse;">
        <tr><td style="padding: 8px 0; font-weight: 600; width: 120px;">Name:</td><td style="padding: 8px 0;">%s</td></tr>
        <tr><td style="padding: 8px 0; font-weight: 600;">Email:</td><td style="padding: 8px 0;"><a href="mailto:%s" style="color: #3b82f6; text-decoration: none;">%s</a></td></tr>
        <tr><td style="padding: 8px 0; font-weight: 600;">Role:</td><td style="padding: 8px 0; text-transform: capitalize;">%s</td></tr>
        <tr><td style="padding: 8px 0; font-weight: 600;">Referral:</td><td style="padding: 8px 0;">%s</td></tr>
        <tr><td style="padding: 8px 0; font-weight: 600;">Timestamp:</td><td style="padding: 8px 0; color: #6b7280; font-size: 14px;">%s</td></tr>
      </table>
    </div>
  </div>
  <div style="margin-top: 20px; padding: 15px; background: #f9fafb; border-radius: 6px; font-size: 14px; color: #6b7280;">
    <p style="margin: 0;">This is an automated notification from your MentoLoop waitlist form.</p>
  </div>
</div>`, req.FullName, req.Email, req.Email, req.Role, referral, humanTimestamp(at))

	return subject, html
}

// humanTimestamp renders the signup time for the operator alert in the
// operations timezone.
func humanTimestamp(at time.Time) string {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return at.In(loc).Format("Monday, January 2, 2006 at 3:04 PM MST")
}
