package utils

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

var callIDPattern = regexp.MustCompile(`^[0-9a-z]{9}-[0-9a-z]+$`)

func TestNewCallIDShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Regexp(t, callIDPattern, NewCallID())
	}
}

func TestNewCallIDUniqueUnderConcurrency(t *testing.T) {
	const workers, per = 8, 500
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, workers*per)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				id := NewCallID()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*per)
}

func TestDetectImageMime(t *testing.T) {
	assert.Equal(t, "image/png", DetectImageMime([]byte("\x89PNG\r\n\x1a\n"), "image/webp"))
	assert.Equal(t, "image/jpeg", DetectImageMime([]byte("\xff\xd8\xff\xe0"), "image/png"))
	assert.Equal(t, "image/png", DetectImageMime(nil, "image/png"))
	assert.Equal(t, "image/png", DetectImageMime([]byte("plain text"), "image/png"))
}
