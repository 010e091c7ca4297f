package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	limiter := New(Config{
		MessagesPerMinute: 3,
	})

	chatID := int64(-100123)

	for i := 0; i < 3; i++ {
		if !limiter.Allow(chatID) {
			t.Errorf("message %d should be allowed", i+1)
		}
	}

	if limiter.Allow(chatID) {
		t.Error("fourth message should be blocked")
	}
}

func TestLimiter_DifferentChats(t *testing.T) {
	limiter := New(Config{
		MessagesPerMinute: 1,
	})

	chat1 := int64(111)
	chat2 := int64(222)

	if !limiter.Allow(chat1) {
		t.Error("chat1 first message should be allowed")
	}
	if !limiter.Allow(chat2) {
		t.Error("chat2 first message should be allowed")
	}
	if limiter.Allow(chat1) {
		t.Error("chat1 second message should be blocked")
	}
	if limiter.Allow(chat2) {
		t.Error("chat2 second message should be blocked")
	}
}

func TestLimiter_Remaining(t *testing.T) {
	limiter := New(Config{
		MessagesPerMinute: 5,
	})

	chatID := int64(12345)

	if remaining := limiter.Remaining(chatID); remaining != 5 {
		t.Errorf("Remaining() = %d, want 5", remaining)
	}

	limiter.Allow(chatID)
	limiter.Allow(chatID)
	limiter.Allow(chatID)

	if remaining := limiter.Remaining(chatID); remaining != 2 {
		t.Errorf("Remaining() = %d, want 2", remaining)
	}

	limiter.Allow(chatID)
	limiter.Allow(chatID)

	if remaining := limiter.Remaining(chatID); remaining != 0 {
		t.Errorf("Remaining() = %d, want 0", remaining)
	}
}

func TestLimiter_ResetTime(t *testing.T) {
	limiter := New(Config{
		MessagesPerMinute: 1,
	})

	chatID := int64(12345)

	before := time.Now()
	if reset := limiter.ResetTime(chatID); reset.After(before.Add(time.Second)) {
		t.Errorf("ResetTime() with free slots = %v, want now", reset)
	}

	limiter.Allow(chatID)
	resetTime := limiter.ResetTime(chatID)

	expectedReset := before.Add(time.Minute)
	tolerance := 2 * time.Second

	if resetTime.Before(expectedReset.Add(-tolerance)) || resetTime.After(expectedReset.Add(tolerance)) {
		t.Errorf("ResetTime() = %v, expected around %v", resetTime, expectedReset)
	}
}

func TestLimiter_WindowSlides(t *testing.T) {
	limiter := New(Config{MessagesPerMinute: 1})
	now := time.Now()
	limiter.now = func() time.Time { return now }

	chatID := int64(1)
	if !limiter.Allow(chatID) {
		t.Fatal("first message should be allowed")
	}
	if limiter.Allow(chatID) {
		t.Fatal("second message inside the window should be blocked")
	}

	now = now.Add(time.Minute + time.Millisecond)
	if !limiter.Allow(chatID) {
		t.Error("message after the window should be allowed")
	}
}

func TestLimiter_DefaultConfig(t *testing.T) {
	limiter := New(Config{})

	chatID := int64(12345)

	for i := 0; i < DefaultPerMinute; i++ {
		if !limiter.Allow(chatID) {
			t.Errorf("message %d should be allowed with default config", i+1)
		}
	}

	if limiter.Allow(chatID) {
		t.Errorf("message %d should be blocked", DefaultPerMinute+1)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := New(Config{
		MessagesPerMinute: 1,
		Window:            50 * time.Millisecond,
	})
	chatID := int64(7)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(context.Background(), chatID); err != nil {
			t.Fatalf("Wait() #%d error = %v", i, err)
		}
	}

	// третье сообщение ждет два окна
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("three messages took %v, want at least two windows", elapsed)
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := New(Config{MessagesPerMinute: 1})
	chatID := int64(7)
	limiter.Allow(chatID)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, chatID)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := New(Config{
		MessagesPerMinute: 100,
	})

	done := make(chan bool)
	chatID := int64(12345)

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 20; j++ {
				limiter.Allow(chatID)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	if remaining := limiter.Remaining(chatID); remaining != 0 {
		t.Errorf("Remaining() = %d, want 0 after concurrent access", remaining)
	}
}
