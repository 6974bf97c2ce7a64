package workspace

import (
	"log"
	"time"

	"github.com/gorhill/cronexpr"
)

// Janitor drops idle workspaces on a cron schedule.
type Janitor struct {
	Manager  *Manager
	CronSpec string
	TTL      time.Duration
	Stop     chan struct{}

	logger  *log.Logger
	lastRun *time.Time
}

func NewJanitor(m *Manager, cronSpec string, ttl time.Duration) *Janitor {
	return &Janitor{
		Manager:  m,
		CronSpec: cronSpec,
		TTL:      ttl,
		Stop:     make(chan struct{}),
		logger:   log.New(log.Writer(), "[JANITOR] ", log.LstdFlags),
	}
}

func (j *Janitor) Start() {
	if j.CronSpec == "" || j.TTL <= 0 {
		return
	}
	ticker := time.NewTicker(1 * time.Minute)
	go func() {
		for {
			select {
			case <-j.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				j.tick()
			}
		}
	}()
}

func (j *Janitor) tick() {
	if !isDue(j.CronSpec, j.lastRun) {
		return
	}
	now := time.Now()
	j.lastRun = &now
	if n := j.Manager.Sweep(j.TTL); n > 0 {
		j.logger.Printf("retention sweep removed %d workspaces", n)
	}
}

// isDue determines if the janitor should run now based on its last run.
// Supports "@daily", "@hourly", and standard 5-field cron expressions.
func isDue(cronSpec string, last *time.Time) bool {
	now := time.Now()
	switch cronSpec {
	case "@daily":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= 24*time.Hour
	case "@hourly":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= time.Hour
	default:
		expr, err := cronexpr.Parse(cronSpec)
		if err != nil {
			// Fallback: treat as @daily if invalid
			if last == nil {
				return true
			}
			return now.Sub(*last) >= 24*time.Hour
		}
		if last == nil {
			// If never run, due now
			return true
		}
		next := expr.Next(*last)
		return !next.After(now)
	}
}
