// Package selector implements the process-wide Protocol Selector: a
// memo of which V2 feed variant answered first for a given (auth, url)
// pair, so later calls skip variants that are known not to be served.
package selector

import (
	"sync"
)

// Selector is a process-wide (auth, url) -> variantKey memo. Its zero
// value is ready to use. All methods are safe for concurrent use.
type Selector struct {
	bound sync.Map // key: auth+"\x00"+url -> variantKey string
}

// New returns a ready-to-use Selector.
func New() *Selector {
	return &Selector{}
}

func memoKey(auth, url string) string {
	return auth + "\x00" + url
}

// Bound reports the variant currently bound for (auth, url), if any.
func (s *Selector) Bound(auth, url string) (string, bool) {
	v, ok := s.bound.Load(memoKey(auth, url))
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Guard wraps a variant's listVersions call. If the memo already holds a
// different variant for (auth, url), the call is skipped and ([]string)(nil)
// is returned without invoking fn. Otherwise fn runs; a successful
// non-None result (a non-nil slice) binds the memo to variant. Reads are
// allowed to observe a stale unbound state (at worst one extra wasted
// call); binds use a CAS-style store-if-absent so a losing racer never
// overwrites the winner.
func (s *Selector) Guard(auth, url, variant string, fn func() ([]string, error)) ([]string, error) {
	key := memoKey(auth, url)

	if v, ok := s.bound.Load(key); ok && v.(string) != variant {
		return nil, nil
	}

	versions, err := fn()
	if err != nil {
		return nil, err
	}

	if versions != nil {
		s.bound.LoadOrStore(key, variant)
	}

	return versions, nil
}

// Reset clears the memo for (auth, url). Intended for tests; production
// callers never need to unbind a variant once it has proven itself.
func (s *Selector) Reset(auth, url string) {
	s.bound.Delete(memoKey(auth, url))
}
