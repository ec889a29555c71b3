package mail

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// render executes the named template into a string.
func render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %v", name, err)
	}
	return sb.String(), nil
}

// Welcome builds the post-signup email carrying the verification link.
func Welcome(to, name, verifyURL string) (Message, error) {
	html, err := render("welcome.html", map[string]string{
		"Name":      name,
		"VerifyURL": verifyURL,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "Welcome to SkyDeals! Please verify your email",
		HTML:    html,
	}, nil
}

// ListingCreated builds the seller notification for a newly submitted
// listing awaiting moderation.
func ListingCreated(to, name, aircraftName string) (Message, error) {
	html, err := render("listing_created.html", map[string]string{
		"Name":         name,
		"AircraftName": aircraftName,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "Your listing has been submitted for review",
		HTML:    html,
	}, nil
}

// ListingModerated builds the approval or rejection notification.
func ListingModerated(to, name, aircraftName string, approved bool) (Message, error) {
	html, err := render("listing_moderated.html", map[string]any{
		"Name":         name,
		"AircraftName": aircraftName,
		"Approved":     approved,
	})
	if err != nil {
		return Message{}, err
	}
	subject := "Your listing has been approved"
	if !approved {
		subject = "Your listing has been rejected"
	}
	return Message{To: to, Subject: subject, HTML: html}, nil
}

// PasswordReset builds the reset email carrying the raw reset link. The
// link is only valid for a short window.
func PasswordReset(to, name, resetURL string) (Message, error) {
	html, err := render("password_reset.html", map[string]string{
		"Name":     name,
		"ResetURL": resetURL,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: "Reset your SkyDeals password (valid for 10 minutes)",
		HTML:    html,
	}, nil
}
