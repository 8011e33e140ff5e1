package lobby

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/Levyks/muuzika-server/internal/v1/metrics"
)

// CodePool is the finite, pre-shuffled supply of room codes. A popped code
// is considered in use by the caller until it is either installed in the
// Registry or explicitly pushed back; the pool itself does not track that.
type CodePool struct {
	mu    sync.Mutex
	codes []RoomCode
}

// NewCodePool enumerates every decimal string of the given width (1..=9)
// and returns a pool holding them in random order.
func NewCodePool(width int) *CodePool {
	total := 1
	for i := 0; i < width; i++ {
		total *= 10
	}

	codes := make([]RoomCode, total)
	for i := 0; i < total; i++ {
		codes[i] = formatCode(i, width)
	}

	rand.Shuffle(len(codes), func(i, j int) {
		codes[i], codes[j] = codes[j], codes[i]
	})

	metrics.RoomCodesAvailable.Set(float64(total))

	return &CodePool{codes: codes}
}

func formatCode(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return s
}

// Pop removes and returns the tail of the pool, or ok=false if it is empty.
func (p *CodePool) Pop() (RoomCode, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.codes)
	if n == 0 {
		return "", false
	}

	code := p.codes[n-1]
	p.codes = p.codes[:n-1]
	metrics.RoomCodesAvailable.Set(float64(len(p.codes)))
	return code, true
}

// Push appends code back to the pool. The pool's length strictly increases.
func (p *CodePool) Push(code RoomCode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.codes = append(p.codes, code)
	metrics.RoomCodesAvailable.Set(float64(len(p.codes)))
}

// Len reports the number of codes currently available. Intended for
// metrics and tests, not for synchronization decisions.
func (p *CodePool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.codes)
}
