package products

import (
	"testing"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
)

func lifecycle(frame cdp.FrameID, name string) *page.EventLifecycleEvent {
	return &page.EventLifecycleEvent{FrameID: frame, Name: name}
}

func isIdle(w *idleWatcher) bool {
	select {
	case <-w.idle:
		return true
	default:
		return false
	}
}

func TestIdleWatcherIgnoresSubframes(t *testing.T) {
	w := newIdleWatcher("main")

	w.observe(lifecycle("main", "init"))
	w.observe(lifecycle("ad-frame", "init"))
	w.observe(lifecycle("ad-frame", "networkIdle"))
	if isIdle(w) {
		t.Fatal("subframe networkIdle ended the wait")
	}

	w.observe(lifecycle("main", "networkIdle"))
	if !isIdle(w) {
		t.Fatal("main frame networkIdle did not end the wait")
	}
}

func TestIdleWatcherWaitsForInit(t *testing.T) {
	w := newIdleWatcher("main")

	// idle left over from about:blank
	w.observe(lifecycle("main", "networkIdle"))
	if isIdle(w) {
		t.Fatal("networkIdle before init ended the wait")
	}

	w.observe(lifecycle("main", "init"))
	w.observe(lifecycle("main", "networkIdle"))
	w.observe(lifecycle("main", "networkIdle"))
	if !isIdle(w) {
		t.Fatal("networkIdle after init did not end the wait")
	}
}

func TestIdleWatcherIgnoresOtherEvents(t *testing.T) {
	w := newIdleWatcher("main")
	w.observe(lifecycle("main", "init"))
	w.observe(&page.EventLoadEventFired{})
	w.observe(lifecycle("main", "load"))
	if isIdle(w) {
		t.Fatal("non-idle events ended the wait")
	}
}
