package service

import (
	"context"
	"strings"
	"time"

	"github.com/themagicbeanstock/backend-go/internal/metrics"
)

// Options carry the dependencies shared by every service.
type Options struct {
	// Location decides which calendar day "today" is. Defaults to time.Local.
	Location *time.Location
	// Now is the clock. Defaults to time.Now.
	Now     func() time.Time
	Metrics *metrics.Collector
	// LoadTimeout bounds reading an account's datasets. Zero means no limit.
	LoadTimeout time.Duration
}

func (o Options) loadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.LoadTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.LoadTimeout)
}

func (o Options) today() time.Time {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	loc := o.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func normalizeAccount(accountID string) (string, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return "", ErrInvalidAccount
	}
	return accountID, nil
}
