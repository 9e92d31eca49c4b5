package dashboard

import (
	"context"
	"time"
)

// Notice texts shown to users.
const (
	MsgRefreshed     = "তথ্য সফলভাবে আপডেট হয়েছে!"
	MsgLoadFailed    = "তথ্য লোড করতে সমস্যা হয়েছে।"
	MsgSourceUpdated = "শীট সোর্স আপডেট করা হয়েছে!"
	MsgInvalidSource = "সঠিক শীট লিংক বা আইডি প্রদান করুন"
)

// DefaultNoticeDuration is how long a notice stays current.
const DefaultNoticeDuration = 3 * time.Second

// Kind classifies a notice.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notice is a short-lived message for whoever is looking at the dashboard.
type Notice struct {
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Active reports whether n is still visible at now.
func (n Notice) Active(now time.Time) bool {
	return n.Message != "" && now.Before(n.ExpiresAt)
}

// Notifier receives every notice the controller raises.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notice) error {
	return f(ctx, n)
}
