package refgen

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	BookingPrefix     = "BK"
	TransactionPrefix = "TXN"

	suffixLen = 5
	alphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Generator builds references of the form prefix + unix millis + 5 uppercase
// base36 characters, e.g. BK1718000000000A1B2C. The millisecond component is
// kept strictly increasing per generator, so one process never repeats a
// reference; the random suffix separates processes.
type Generator struct {
	prefix string
	now    func() time.Time

	mu   sync.Mutex
	src  io.Reader
	last int64
}

type Option func(*Generator)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option { return func(g *Generator) { g.now = now } }

// WithSource overrides the random source (crypto/rand by default).
func WithSource(r io.Reader) Option { return func(g *Generator) { g.src = r } }

func New(prefix string, opts ...Option) *Generator {
	g := &Generator{prefix: prefix, now: time.Now, src: rand.Reader}
	for _, o := range opts {
		o(g)
	}
	return g
}

func (g *Generator) Next() (string, error) {
	var buf [8]byte
	g.mu.Lock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	_, err := io.ReadFull(g.src, buf[:])
	g.mu.Unlock()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(len(g.prefix) + 13 + suffixLen)
	sb.WriteString(g.prefix)
	sb.WriteString(strconv.FormatInt(ms, 10))
	sb.WriteString(encodeSuffix(buf))
	return sb.String(), nil
}

func encodeSuffix(buf [8]byte) string {
	// 36^5 = 60466176; modulo bias over 2^64 is negligible.
	n := binary.BigEndian.Uint64(buf[:]) % 60466176
	out := make([]byte, suffixLen)
	for i := suffixLen - 1; i >= 0; i-- {
		out[i] = alphabet[n%36]
		n /= 36
	}
	return string(out)
}

// Valid reports whether s looks like a reference produced with prefix.
func Valid(prefix, s string) bool {
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	rest := s[len(prefix):]
	if len(rest) <= suffixLen {
		return false
	}
	ts, suf := rest[:len(rest)-suffixLen], rest[len(rest)-suffixLen:]
	if _, err := strconv.ParseInt(ts, 10, 64); err != nil {
		return false
	}
	for i := 0; i < len(suf); i++ {
		if !strings.ContainsRune(alphabet, rune(suf[i])) {
			return false
		}
	}
	return true
}
