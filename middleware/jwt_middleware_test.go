package middleware

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestBlacklistConcurrentAccess(t *testing.T) {
	expiry := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		token := fmt.Sprintf("token-%d", i)
		wg.Add(3)
		go func() {
			defer wg.Done()
			BlacklistToken(token, expiry)
		}()
		go func() {
			defer wg.Done()
			IsTokenBlacklisted(token)
		}()
		go func() {
			defer wg.Done()
			sweepBlacklist(time.Now())
		}()
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		token := fmt.Sprintf("token-%d", i)
		if !IsTokenBlacklisted(token) {
			t.Errorf("token %q not blacklisted after concurrent writes", token)
		}
	}
}

func TestSweepBlacklistRemovesExpired(t *testing.T) {
	now := time.Now()
	BlacklistToken("expired-token", now.Add(-time.Minute))
	BlacklistToken("live-token", now.Add(time.Hour))

	sweepBlacklist(now)

	if IsTokenBlacklisted("expired-token") {
		t.Error("expired token survived the sweep")
	}
	if !IsTokenBlacklisted("live-token") {
		t.Error("unexpired token was swept")
	}
}
