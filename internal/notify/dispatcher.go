// Package notify fans a notification out to a recipient's preferred delivery
// channels. Delivery is best-effort: one attempt per channel, failures are
// recorded and logged, never propagated to the triggering operation, and one
// channel's failure does not stop the others.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/streamslot/streamslot/internal/model"
	"github.com/streamslot/streamslot/internal/push"
)

type Status string

const (
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Content is the message to deliver. Text doubles as the SMS body; HTML
// defaults to Text when empty.
type Content struct {
	Subject string
	Text    string
	HTML    string
}

type ChannelResult struct {
	Channel string `json:"channel"`
	Status  Status `json:"status"`
	Reason  string `json:"reason,omitempty"`
}

// Result records the per-channel outcome of one dispatch.
type Result struct {
	DispatchID string          `json:"dispatch_id"`
	Channels   []ChannelResult `json:"channels"`
}

// Delivered reports whether at least one channel delivered.
func (r Result) Delivered() bool {
	for _, c := range r.Channels {
		if c.Status == StatusDelivered {
			return true
		}
	}
	return false
}

type EmailSender interface {
	Send(ctx context.Context, to, subject, text, html string) error
	Configured() bool
}

type SMSSender interface {
	Send(ctx context.Context, to, body string) error
	Configured() bool
}

type PushSender interface {
	Send(sub *model.PushSubscription, payload push.Payload) error
}

// PushSubscriptionLister yields a user's push subscriptions.
type PushSubscriptionLister interface {
	ListByUser(userID int64) ([]model.PushSubscription, error)
	Delete(id int64) error
}

type Dispatcher struct {
	email    EmailSender
	sms      SMSSender
	pushSvc  PushSender
	pushSubs PushSubscriptionLister
	logger   *slog.Logger
}

// NewDispatcher creates the dispatcher. pushSvc and pushSubs may be nil when
// web push is not configured; the push channel is then skipped.
func NewDispatcher(email EmailSender, sms SMSSender, pushSvc PushSender, pushSubs PushSubscriptionLister, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{email: email, sms: sms, pushSvc: pushSvc, pushSubs: pushSubs, logger: logger}
}

// Dispatch attempts delivery to the recipient over each channel enabled in
// prefs. Every channel is attempted regardless of the others' outcomes.
func (d *Dispatcher) Dispatch(ctx context.Context, recipient model.User, prefs model.NotificationPreference, content Content) Result {
	result := Result{DispatchID: uuid.NewString()}

	result.Channels = append(result.Channels,
		d.sendEmail(ctx, recipient, prefs, content),
		d.sendSMS(ctx, recipient, prefs, content),
		d.sendPush(recipient, prefs, content),
	)

	for _, c := range result.Channels {
		if c.Status == StatusFailed {
			d.logger.Warn("notification delivery failed",
				"dispatch_id", result.DispatchID,
				"channel", c.Channel,
				"recipient_id", recipient.ID,
				"reason", c.Reason,
			)
		}
	}

	return result
}

func (d *Dispatcher) sendEmail(ctx context.Context, recipient model.User, prefs model.NotificationPreference, content Content) ChannelResult {
	res := ChannelResult{Channel: "email"}

	switch {
	case !prefs.EmailEnabled:
		res.Status = StatusSkipped
		res.Reason = "channel not enabled"
	case recipient.Email == "":
		res.Status = StatusFailed
		res.Reason = "missing email address"
	case !d.email.Configured():
		res.Status = StatusFailed
		res.Reason = "email sender not configured"
	default:
		if err := d.email.Send(ctx, recipient.Email, content.Subject, content.Text, content.HTML); err != nil {
			res.Status = StatusFailed
			res.Reason = err.Error()
		} else {
			res.Status = StatusDelivered
		}
	}

	return res
}

func (d *Dispatcher) sendSMS(ctx context.Context, recipient model.User, prefs model.NotificationPreference, content Content) ChannelResult {
	res := ChannelResult{Channel: "sms"}

	switch {
	case !prefs.SMSEnabled:
		res.Status = StatusSkipped
		res.Reason = "channel not enabled"
	case recipient.Phone == "":
		res.Status = StatusFailed
		res.Reason = "missing phone number"
	case !d.sms.Configured():
		res.Status = StatusFailed
		res.Reason = "sms sender not configured"
	default:
		if err := d.sms.Send(ctx, recipient.Phone, content.Text); err != nil {
			res.Status = StatusFailed
			res.Reason = err.Error()
		} else {
			res.Status = StatusDelivered
		}
	}

	return res
}

func (d *Dispatcher) sendPush(recipient model.User, prefs model.NotificationPreference, content Content) ChannelResult {
	res := ChannelResult{Channel: "push"}

	if d.pushSvc == nil || d.pushSubs == nil || !prefs.PushEnabled {
		res.Status = StatusSkipped
		res.Reason = "channel not enabled"
		return res
	}

	subs, err := d.pushSubs.ListByUser(recipient.ID)
	if err != nil {
		res.Status = StatusFailed
		res.Reason = fmt.Sprintf("list subscriptions: %v", err)
		return res
	}
	if len(subs) == 0 {
		res.Status = StatusFailed
		res.Reason = "no push subscriptions"
		return res
	}

	payload := push.Payload{Title: content.Subject, Body: content.Text}
	delivered := 0
	for i := range subs {
		err := d.pushSvc.Send(&subs[i], payload)
		if errors.Is(err, push.ErrExpired) {
			if derr := d.pushSubs.Delete(subs[i].ID); derr != nil {
				d.logger.Error("remove expired push subscription", "id", subs[i].ID, "error", derr)
			}
			continue
		}
		if err != nil {
			res.Reason = err.Error()
			continue
		}
		delivered++
	}

	if delivered > 0 {
		res.Status = StatusDelivered
		res.Reason = ""
	} else {
		res.Status = StatusFailed
		if res.Reason == "" {
			res.Reason = "no live subscriptions"
		}
	}
	return res
}
