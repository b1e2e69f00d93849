package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// How a space expects visitors to authenticate.
type authKind string

const (
	authAnonymous authKind = "anonymous"
	authUsername  authKind = "username"
	authPassword  authKind = "password"
)

// probeAuthKind asks the auth-type endpoint how the space is protected. The
// endpoint answers with a JSON body carrying an auth field even on non-2xx
// statuses, so the body is read regardless. Unreachable or unreadable
// endpoints degrade to anonymous.
func probeAuthKind(ctx context.Context, client *http.Client, url string) authKind {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return authAnonymous
	}
	resp, err := client.Do(req)
	if err != nil {
		return authAnonymous
	}
	defer resp.Body.Close()

	var body struct {
		Auth string `json:"auth"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return authAnonymous
	}
	switch authKind(body.Auth) {
	case authUsername:
		return authUsername
	case authPassword:
		return authPassword
	default:
		return authAnonymous
	}
}

// navigate loads the space page and waits for the network to go idle. A page
// that never settles within timeout fails the job.
func navigate(page *rod.Page, url string, timeout time.Duration) error {
	p := page.Timeout(timeout)
	wait := p.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("export: navigate %s: %w", url, err)
	}
	wait()
	return lifecycleErr(p.GetContext(), url)
}

// lifecycleErr inspects the timed page context after a navigation wait.
// WaitNavigation's wait func returns silently when the deadline passes, so
// the context is the only signal that the lifecycle event never fired.
func lifecycleErr(ctx context.Context, target string) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s", ErrNavigationTimeout, target)
	default:
		return err
	}
}

// loginLookupTimeout bounds the wait for login controls; the form is either
// already rendered after navigation or not there at all.
const loginLookupTimeout = 3 * time.Second

// signIn fills the login form the auth kind requires and submits it. Spaces
// without a visible submit control are treated as already open.
func signIn(p *pipeline, kind authKind, username, password string, timeout time.Duration) error {
	page := p.page

	type field struct {
		sel, value string
	}
	var fields []field
	switch kind {
	case authUsername:
		fields = []field{{p.sel.Username, username}}
	case authPassword:
		fields = []field{{p.sel.Username, username}, {p.sel.Password, password}}
	}
	for _, f := range fields {
		el, res, err := waitElement(page, f.sel, loginLookupTimeout)
		if err != nil {
			return err
		}
		if res != lookupFound {
			return fmt.Errorf("export: login field %q not present", f.sel)
		}
		if err := el.Input(f.value); err != nil {
			return fmt.Errorf("export: fill %q: %w", f.sel, err)
		}
	}

	submit, res, err := waitElement(page, p.sel.Submit, loginLookupTimeout)
	if err != nil {
		return err
	}
	if res != lookupFound {
		p.log.Debug("no submit control, continuing without sign-in")
		return nil
	}

	tp := page.Timeout(timeout)
	wait := tp.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("export: click submit: %w", err)
	}
	wait()
	return lifecycleErr(tp.GetContext(), "login submit")
}
