package testutil

import (
	"sync"

	"github.com/go-rod/rod/lib/launcher"
)

// running holds the launchers of sessions that were started and not yet
// closed.
var running = struct {
	sync.Mutex
	launchers map[*launcher.Launcher]struct{}
}{launchers: map[*launcher.Launcher]struct{}{}}

func track(l *launcher.Launcher) {
	running.Lock()
	defer running.Unlock()
	running.launchers[l] = struct{}{}
}

func untrack(l *launcher.Launcher) {
	running.Lock()
	defer running.Unlock()
	delete(running.launchers, l)
}

// LeakedBrowsers returns how many browsers this process launched and did
// not close.
func LeakedBrowsers() int {
	running.Lock()
	defer running.Unlock()
	return len(running.launchers)
}

// KillLeakedBrowsers kills the browsers this process launched and did not
// close, e.g. because a test panicked before its cleanup ran. Browsers that
// other processes started are left alone. It returns how many it killed.
func KillLeakedBrowsers() int {
	running.Lock()
	leaked := make([]*launcher.Launcher, 0, len(running.launchers))
	for l := range running.launchers {
		leaked = append(leaked, l)
	}
	running.launchers = map[*launcher.Launcher]struct{}{}
	running.Unlock()

	for _, l := range leaked {
		l.Kill()
	}
	return len(leaked)
}
