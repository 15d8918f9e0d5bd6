package marauder

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// DownloadTrigger fires a download for one identifier by pointing the
// session's proxy element at it and clicking it.
type DownloadTrigger struct {
	h       *SessionHandle
	profile Profile
}

func NewDownloadTrigger(h *SessionHandle, profile Profile) *DownloadTrigger {
	return &DownloadTrigger{h: h, profile: profile}
}

// Fire rewrites the proxy element's attribute to id, waits for the element
// matching id to become actionable and activates it.
//
// It fails with ErrElementNotReady when the session is not ready or the
// element does not become actionable, and with ErrActivationBlocked when the
// click is intercepted. Either failure leaves the session SessionDegraded.
func (t *DownloadTrigger) Fire(ctx context.Context, id int64) error {
	sess, proxy := t.h.Session()
	if t.h.State() != SessionReady || sess == nil {
		return t.fail(fmt.Errorf("%w: session is %s", ErrElementNotReady, t.h.State()))
	}
	if err := sess.SetAttribute(ctx, proxy, t.profile.Attribute, strconv.FormatInt(id, 10)); err != nil {
		return t.fail(asNotReady(err))
	}
	el, err := sess.WaitActionable(ctx, t.profile.TargetFor(id), t.profile.LoadTimeout)
	if err != nil {
		return t.fail(asNotReady(err))
	}
	if err := sess.Activate(ctx, el); err != nil {
		if errors.Is(err, ErrActivationBlocked) {
			return t.fail(err)
		}
		return t.fail(asNotReady(err))
	}
	return nil
}

func (t *DownloadTrigger) fail(err error) error {
	t.h.MarkDegraded()
	return err
}

func asNotReady(err error) error {
	if errors.Is(err, ErrElementNotReady) || errors.Is(err, ErrActivationBlocked) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrElementNotReady, err)
}
