package testutil

import "sync"

// dialogLog records the message of every JavaScript dialog a page opened.
// A nil log records nothing.
type dialogLog struct {
	mu    sync.Mutex
	texts []string
}

func (d *dialogLog) add(text string) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.texts = append(d.texts, text)
}

func (d *dialogLog) count() int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.texts)
}

// since returns the messages recorded after the first mark ones.
func (d *dialogLog) since(mark int) []string {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if mark < 0 {
		mark = 0
	}
	if mark >= len(d.texts) {
		return nil
	}
	return append([]string(nil), d.texts[mark:]...)
}

// Dialogs returns the messages of every alert, confirm and prompt the page
// opened so far. The session accepts each one as it opens.
func (s *Session) Dialogs() []string {
	return s.dialogs.since(0)
}

// DialogCount is a mark for WaitMessage: dialogs opened after it count.
func (s *Session) DialogCount() int {
	return s.dialogs.count()
}
