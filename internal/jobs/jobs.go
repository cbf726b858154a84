// Package jobs runs the periodic maintenance tasks.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/bwise1/groupsplit_api/util"
)

const runTimeout = 30 * time.Second

// InvitationExpirer rejects PENDING memberships created before cutoff.
// *service.GroupService satisfies it.
type InvitationExpirer interface {
	ExpireInvitations(ctx context.Context, cutoff time.Time) (int, error)
}

type Config struct {
	InviteExpiryDays     int
	InviteExpirySchedule string
}

type Scheduler struct {
	cron    *cron.Cron
	expirer InvitationExpirer
	window  time.Duration
	now     func() time.Time
}

// New registers the jobs enabled by cfg. An invite expiry of zero days
// disables the expiry job.
func New(cfg Config, expirer InvitationExpirer) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		expirer: expirer,
		window:  time.Duration(cfg.InviteExpiryDays) * 24 * time.Hour,
		now:     time.Now,
	}

	if cfg.InviteExpiryDays <= 0 {
		util.Logger.Info("invitation expiry disabled")
		return s, nil
	}

	if _, err := s.cron.AddFunc(cfg.InviteExpirySchedule, s.runExpiry); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) runExpiry() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if _, err := s.ExpireInvitations(ctx); err != nil {
		util.Logger.WithFields(logrus.Fields{"error": err}).Error("invitation expiry failed")
	}
}

// ExpireInvitations runs the expiry job once.
func (s *Scheduler) ExpireInvitations(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.window)
	n, err := s.expirer.ExpireInvitations(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		util.Logger.WithFields(logrus.Fields{"expired": n, "cutoff": cutoff}).Info("expired pending invitations")
	}
	return n, nil
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
	util.Logger.WithFields(logrus.Fields{"jobs": s.Entries()}).Info("scheduler started")
}

// Stop halts the scheduler and waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}
