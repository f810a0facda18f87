package utils

import (
	"crypto/rand"
	"strconv"
	"sync/atomic"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var callIDCounter uint64

// NewCallID returns a correlation id: nine random base36 characters followed
// by a process-wide sequence number, e.g. "k3f9a0zq1-2a". The random part
// keeps ids opaque across restarts; the counter makes them unique within one
// process.
func NewCallID() string {
	var b [9]byte
	_, _ = rand.Read(b[:])
	buf := make([]byte, 0, 20)
	for _, c := range b {
		buf = append(buf, idAlphabet[int(c)%len(idAlphabet)])
	}
	n := atomic.AddUint64(&callIDCounter, 1)
	buf = append(buf, '-')
	buf = strconv.AppendUint(buf, n, 36)
	return string(buf)
}
