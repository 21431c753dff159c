package queue

import "time"

// maxBackoff caps the retry delay so a high attempt count never schedules
// an item hours out.
const maxBackoff = 15 * time.Minute

// Backoff returns the delay before the next retry: base * 2^attempts.
// attempts is the number of attempts already made, so the first retry
// after one failure waits base*2.
func Backoff(attempts int, base time.Duration) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	if attempts > 20 {
		attempts = 20
	}
	d := base * (1 << uint(attempts))
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}
