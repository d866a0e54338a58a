package catalog

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// fakeClock is a manually-advanced clock for freshness tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// catalogBody builds a syntactically valid catalog of n records with
// distinct catalog numbers starting at firstNum.
func catalogBody(n, firstNum int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		num := firstNum + i
		fmt.Fprintf(&b, "TESTSAT-%03d\n", i)
		fmt.Fprintf(&b, "1 %05dU 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990\n", num)
		fmt.Fprintf(&b, "2 %05d  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760\n", num)
	}
	return b.String()
}
