package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/trypromptly/promptly-cli/internal/logger"
	"github.com/trypromptly/promptly-cli/internal/router"
)

// loginHint is printed when the server rejects the stored session
const loginHint = "Session expired or missing. Run `promptly login` to sign in."

// headlessNavigator stands in for the console router in one-shot commands.
// A login redirect prints a hint instead of changing pages.
type headlessNavigator struct {
	out  io.Writer
	path string

	mu         sync.Mutex
	redirected bool
}

func newHeadlessNavigator(out io.Writer, path string) *headlessNavigator {
	if path == "" {
		path = router.PathApps
	}
	return &headlessNavigator{out: out, path: path}
}

func (n *headlessNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *headlessNavigator) RedirectToLogin() {
	n.mu.Lock()
	defer n.mu.Unlock()
	logger.WithComponent("cmd").Info("login required", "from", n.path)
	n.path = router.PathLogin
	if n.redirected {
		return
	}
	n.redirected = true
	fmt.Fprintln(n.out, loginHint)
}

// Redirected reports whether a login redirect happened
func (n *headlessNavigator) Redirected() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.redirected
}
