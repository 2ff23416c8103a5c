// Package notify sends transactional email for moderation events. Every
// send is best-effort: the workflow dispatches notifications after its
// own state change has committed and logs failures instead of surfacing
// them.
package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/carenshare/carenshare/internal/model"
)

// Mailer delivers a single email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Service builds and sends the marketplace's notification emails. A nil
// mailer disables delivery: sends are skipped with a warning, matching
// running without mail configuration.
type Service struct {
	mailer  Mailer
	baseURL string
}

// NewService creates a notification service. baseURL is used for
// dashboard and reset links in email bodies.
func NewService(mailer Mailer, baseURL string) *Service {
	return &Service{mailer: mailer, baseURL: baseURL}
}

func (s *Service) send(ctx context.Context, to, subject, body string) error {
	if s == nil || s.mailer == nil {
		slog.Warn("mail not configured, skipping notification", "to", to, "subject", subject)
		return nil
	}
	if to == "" {
		return fmt.Errorf("empty recipient for %q", subject)
	}
	return s.mailer.Send(ctx, to, subject, body)
}

// SubmissionReceived tells an owner their listing entered moderation.
func (s *Service) SubmissionReceived(ctx context.Context, item *model.Item) error {
	body := layout("Listing Under Review", fmt.Sprintf(
		`<p>Hi %s,</p>
		<p>Your listing <strong>%s</strong> has been submitted and is awaiting review.
		We will let you know once it has been processed.</p>%s`,
		html.EscapeString(item.OwnerName), html.EscapeString(item.Name),
		button(s.baseURL+"/dashboard", "View My Listings", colorGreen)))
	return s.send(ctx, item.OwnerEmail, "Listing Under Review - CareNShare", body)
}

// ItemApproved tells an owner their listing is now public.
func (s *Service) ItemApproved(ctx context.Context, item *model.Item) error {
	body := layout("Listing Approved", fmt.Sprintf(
		`<p>Hi %s,</p>
		<p>Good news! Your listing <strong>%s</strong> has been approved and is now
		visible to other users.</p>%s`,
		html.EscapeString(item.OwnerName), html.EscapeString(item.Name),
		button(s.baseURL+"/dashboard", "View My Listings", colorGreen)))
	return s.send(ctx, item.OwnerEmail, "Listing Approved - CareNShare", body)
}

// ItemRejected tells an owner their listing was rejected, including the
// reason and any reviewer notes.
func (s *Service) ItemRejected(ctx context.Context, item *model.Item) error {
	notes := ""
	if item.AdminReviewNotes != "" {
		notes = fmt.Sprintf(`<p><strong>Reviewer notes:</strong> %s</p>`, html.EscapeString(item.AdminReviewNotes))
	}
	body := layout("Listing Rejected", fmt.Sprintf(
		`<p>Hi %s,</p>
		<p>Unfortunately your listing <strong>%s</strong> was not approved.</p>
		<p><strong>Reason:</strong> %s</p>%s%s`,
		html.EscapeString(item.OwnerName), html.EscapeString(item.Name),
		html.EscapeString(item.RejectionReason), notes,
		button(s.baseURL+"/dashboard", "View Details", colorRed)))
	return s.send(ctx, item.OwnerEmail, "Listing Rejected - CareNShare", body)
}

// RequestReceived tells both parties a new request was submitted: the
// owner that one arrived, the requester that it is awaiting review.
func (s *Service) RequestReceived(ctx context.Context, req *model.Request, item *model.Item) error {
	ownerBody := layout("New Request Received", fmt.Sprintf(
		`<p>You have received a new %s request for <strong>%s</strong>
		from %s.</p>%s%s`,
		req.Type, html.EscapeString(item.Name), html.EscapeString(req.RequesterName),
		offerDetails(req),
		button(s.baseURL+"/dashboard", "View Request", colorBlue)))
	ownerErr := s.send(ctx, item.OwnerEmail, "New Request Received - CareNShare", ownerBody)

	requesterBody := layout("Request Submitted", fmt.Sprintf(
		`<p>Hi %s,</p>
		<p>Your %s request for <strong>%s</strong> has been submitted and is
		awaiting review.</p>%s`,
		html.EscapeString(req.RequesterName), req.Type, html.EscapeString(item.Name),
		button(s.baseURL+"/dashboard", "View My Requests", colorGreen)))
	requesterErr := s.send(ctx, req.RequesterEmail, "Request Submitted - CareNShare", requesterBody)

	if ownerErr != nil {
		return ownerErr
	}
	return requesterErr
}

// RequestApproved tells the winning requester and the item owner that the
// request went through and the item is claimed.
func (s *Service) RequestApproved(ctx context.Context, req *model.Request, item *model.Item) error {
	requesterBody := layout("Request Approved", fmt.Sprintf(
		`<p>Hi %s,</p>
		<p>Congratulations! Your request for <strong>%s</strong> has been approved.
		Check your dashboard for further details.</p>%s`,
		html.EscapeString(req.RequesterName), html.EscapeString(item.Name),
		button(s.baseURL+"/dashboard", "View Details", colorGreen)))
	requesterErr := s.send(ctx, req.RequesterEmail, "Request Approved - CareNShare", requesterBody)

	ownerBody := layout("Your Item Has Been Claimed", fmt.Sprintf(
		`<p>Hi %s,</p>
		<p>Your listing <strong>%s</strong> has been claimed by %s. Check your
		dashboard to arrange the handover.</p>%s`,
		html.EscapeString(item.OwnerName), html.EscapeString(item.Name),
		html.EscapeString(req.RequesterName),
		button(s.baseURL+"/dashboard", "View Details", colorGreen)))
	ownerErr := s.send(ctx, item.OwnerEmail, "Your Item Has Been Claimed - CareNShare", ownerBody)

	if requesterErr != nil {
		return requesterErr
	}
	return ownerErr
}

// RequestRejected tells a requester their request was declined, with the
// recorded reason.
func (s *Service) RequestRejected(ctx context.Context, req *model.Request) error {
	reason := ""
	if req.RejectionReason != "" {
		reason = fmt.Sprintf(`<p><strong>Reason:</strong> %s</p>`, html.EscapeString(req.RejectionReason))
	}
	body := layout("Request Rejected", fmt.Sprintf(
		`<p>Hi %s,</p>
		<p>Your request for <strong>%s</strong> has been rejected.</p>%s%s`,
		html.EscapeString(req.RequesterName), html.EscapeString(req.ItemName), reason,
		button(s.baseURL+"/dashboard", "View Details", colorRed)))
	return s.send(ctx, req.RequesterEmail, "Request Rejected - CareNShare", body)
}

// PasswordReset sends a single-use reset link.
func (s *Service) PasswordReset(ctx context.Context, user *model.User, token string, ttlMinutes int) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)
	body := layout("Password Reset Request", fmt.Sprintf(
		`<p>Hi %s,</p>
		<p>You requested to reset your password. Click the button below to reset it:</p>%s
		<p>Or copy and paste this link in your browser:</p>
		<p style="word-break: break-all; color: #666;">%s</p>
		<p style="color: #666; font-size: 14px;">This link will expire in %d minutes.</p>
		<p style="color: #666; font-size: 14px;">If you didn't request this, please ignore this email.</p>`,
		html.EscapeString(user.FirstName), button(resetURL, "Reset Password", colorGreen),
		resetURL, ttlMinutes))
	return s.send(ctx, user.Email, "Password Reset Request - CareNShare", body)
}

func offerDetails(req *model.Request) string {
	switch req.Type {
	case model.RequestExchange:
		return fmt.Sprintf(
			`<p><strong>They are offering:</strong> %s</p><p><strong>Category:</strong> %s</p>`,
			html.EscapeString(req.OfferName), html.EscapeString(req.OfferCategory))
	case model.RequestPurchase:
		return fmt.Sprintf(`<p><strong>Amount:</strong> %.2f</p>`, req.Amount)
	}
	return ""
}

const (
	colorGreen = "#4CAF50"
	colorBlue  = "#2196F3"
	colorRed   = "#f44336"
)

func layout(title, body string) string {
	return fmt.Sprintf(
		`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2>%s</h2>
		%s
		<hr style="border: 0; border-top: 1px solid #eee; margin: 30px 0;">
		<p style="color: #999; font-size: 12px;">CareNShare - Share, Care, Repair</p>
		</div>`, title, body)
}

func button(url, label, color string) string {
	return fmt.Sprintf(
		`<div style="text-align: center; margin: 30px 0;">
		<a href="%s" style="background-color: %s; color: white; padding: 12px 30px;
		   text-decoration: none; border-radius: 5px; display: inline-block;">%s</a>
		</div>`, url, color, label)
}
