package export

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"
)

// Runner is anything with a Run method; *Exporter in production.
type Runner interface {
	Run(ctx context.Context) (string, error)
}

// StartNightly runs r every day at localTime ("HH:MM") in tzName until ctx
// is cancelled. Call once at startup.
func StartNightly(ctx context.Context, r Runner, localTime, tzName string) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Printf("[export] unknown timezone %q, using local: %v", tzName, err)
		loc = time.Local
	}
	h, m := parseClock(localTime)

	go func() {
		for {
			next := NextRun(time.Now(), loc, h, m)
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				if _, err := r.Run(ctx); err != nil {
					log.Printf("[export] nightly run failed: %v", err)
				}
			}
		}
	}()
}

// NextRun is the first h:m in loc strictly after now.
func NextRun(now time.Time, loc *time.Location, h, m int) time.Time {
	now = now.In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, loc)
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, h, m, 0, 0, loc)
	}
	return next
}

func parseClock(s string) (h, m int) {
	h, m = 3, 0
	hs, ms, ok := strings.Cut(s, ":")
	if !ok {
		return
	}
	if v, err := strconv.Atoi(hs); err == nil && v >= 0 && v < 24 {
		h = v
	}
	if v, err := strconv.Atoi(ms); err == nil && v >= 0 && v < 60 {
		m = v
	}
	return
}
