// Package scroll keeps a message viewport pinned to its newest entry.
package scroll

import (
	"sync"

	chatservice "github.com/medassist/medchat/internal/service/chat"
)

// Viewport is anything that can show its last line.
type Viewport interface {
	ScrollToBottom()
}

// Source is the observable the helper follows.
type Source interface {
	Subscribe(fn chatservice.Observer) func()
}

// AutoScroller scrolls the attached viewport after every change of the
// source. Without a viewport it does nothing.
type AutoScroller struct {
	mu       sync.Mutex
	viewport Viewport
	cancel   func()
}

// Follow starts observing src. vp may be nil and attached later.
func Follow(src Source, vp Viewport) *AutoScroller {
	a := &AutoScroller{viewport: vp}
	a.cancel = src.Subscribe(func(chatservice.Event) { a.ScrollToBottom() })
	return a
}

// Attach sets the viewport once it exists.
func (a *AutoScroller) Attach(vp Viewport) {
	a.mu.Lock()
	a.viewport = vp
	a.mu.Unlock()
}

// ScrollToBottom scrolls now; safe before a viewport is attached.
func (a *AutoScroller) ScrollToBottom() {
	a.mu.Lock()
	vp := a.viewport
	a.mu.Unlock()
	if vp == nil {
		return
	}
	vp.ScrollToBottom()
}

// Stop detaches from the source.
func (a *AutoScroller) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
}
