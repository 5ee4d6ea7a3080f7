package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// calendarID is the calendar events are mirrored into: the authorizing
// user's primary calendar.
const calendarID = "primary"

// GoogleProvider implements Provider against the Google Calendar API. Calls
// are made with the owner's access token; transient API errors (rate limits,
// server errors) are retried with a short bounded backoff.
type GoogleProvider struct {
	opts []option.ClientOption
}

// NewGoogleProvider creates a provider. Extra client options are forwarded to
// the Calendar service; tests use option.WithEndpoint to point at a fake.
func NewGoogleProvider(opts ...option.ClientOption) *GoogleProvider {
	return &GoogleProvider{opts: opts}
}

func (p *GoogleProvider) service(ctx context.Context, accessToken string) (*gcal.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, p.opts...)
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return svc, nil
}

func toGoogleEvent(ev RemoteEvent) *gcal.Event {
	return &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Start: &gcal.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: ev.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: ev.TimeZone,
		},
	}
}

func (p *GoogleProvider) Create(ctx context.Context, accessToken string, ev RemoteEvent) (string, error) {
	svc, err := p.service(ctx, accessToken)
	if err != nil {
		return "", err
	}

	var remoteID string
	err = p.withBackoff(ctx, func(ctx context.Context) error {
		res, err := svc.Events.Insert(calendarID, toGoogleEvent(ev)).Context(ctx).Do()
		if err != nil {
			return classify(err)
		}
		remoteID = res.Id
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("insert remote event: %w", err)
	}
	return remoteID, nil
}

func (p *GoogleProvider) Update(ctx context.Context, accessToken, remoteID string, ev RemoteEvent) error {
	svc, err := p.service(ctx, accessToken)
	if err != nil {
		return err
	}

	err = p.withBackoff(ctx, func(ctx context.Context) error {
		_, err := svc.Events.Update(calendarID, remoteID, toGoogleEvent(ev)).Context(ctx).Do()
		return classify(err)
	})
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update remote event: %w", err)
	}
	return nil
}

func (p *GoogleProvider) Delete(ctx context.Context, accessToken, remoteID string) error {
	svc, err := p.service(ctx, accessToken)
	if err != nil {
		return err
	}

	err = p.withBackoff(ctx, func(ctx context.Context) error {
		return classify(svc.Events.Delete(calendarID, remoteID).Context(ctx).Do())
	})
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete remote event: %w", err)
	}
	return nil
}

func (p *GoogleProvider) withBackoff(ctx context.Context, f func(context.Context) error) error {
	b := retry.WithMaxRetries(3, retry.NewFibonacci(200*time.Millisecond))
	return retry.Do(ctx, b, f)
}

// classify maps Google API errors: missing remote ids become ErrNotFound,
// rate limits and server errors become retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone:
			return ErrNotFound
		case gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500:
			return retry.RetryableError(err)
		}
	}
	return err
}
