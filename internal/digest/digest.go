package digest

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/valleyviewvt/snowline/internal/email"
	"github.com/valleyviewvt/snowline/internal/mountain"
	"github.com/valleyviewvt/snowline/internal/subscribers"
)

// MountainSource provides assembled resort data for every known resort.
type MountainSource interface {
	GetAllMountainData(ctx context.Context) map[string]*mountain.MountainData
}

// SubscriberSource lists the recipients active on a given day.
type SubscriberSource interface {
	ActiveOn(ctx context.Context, day time.Time) ([]subscribers.Subscriber, error)
}

// EmailSender delivers one rendered email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Stats summarizes one digest run.
type Stats struct {
	Subscribers int `json:"subscribers"`
	Sent        int `json:"sent"`
	Failed      int `json:"failed"`
}

// Job assembles and delivers the daily snow report emails.
type Job struct {
	source MountainSource
	subs   SubscriberSource
	sender EmailSender
}

func New(source MountainSource, subs SubscriberSource, sender EmailSender) *Job {
	return &Job{source: source, subs: subs, sender: sender}
}

// Run fetches all resorts, loads today's active subscribers, and sends each
// one a single-resort report or a multi-resort digest depending on how many
// resorts they follow. Per-subscriber failures are counted, not fatal.
func (j *Job) Run(ctx context.Context) (Stats, error) {
	log.Println("digest: starting daily snow report")

	data := j.source.GetAllMountainData(ctx)

	subs, err := j.subs.ActiveOn(ctx, time.Now().UTC())
	if err != nil {
		return Stats{}, fmt.Errorf("failed to load active subscribers: %w", err)
	}

	stats := Stats{Subscribers: len(subs)}
	log.Printf("digest: %d active subscribers", len(subs))

	for _, sub := range subs {
		if len(sub.Resorts) == 0 {
			continue
		}

		subject, html, err := j.compose(sub.Resorts, data)
		if err != nil {
			log.Printf("digest: skipping %s: %v", sub.Email, err)
			stats.Failed++
			continue
		}

		if err := j.sender.Send(ctx, sub.Email, subject, html); err != nil {
			log.Printf("digest: failed to send to %s: %v", sub.Email, err)
			stats.Failed++
			continue
		}
		stats.Sent++
	}

	log.Printf("digest: done, sent=%d failed=%d", stats.Sent, stats.Failed)
	return stats, nil
}

func (j *Job) compose(slugs []string, data map[string]*mountain.MountainData) (subject, html string, err error) {
	var relevant []*mountain.MountainData
	for _, slug := range slugs {
		if d, ok := data[slug]; ok {
			relevant = append(relevant, d)
		}
	}
	if len(relevant) == 0 {
		return "", "", fmt.Errorf("no data available for resorts %v", slugs)
	}

	if len(relevant) == 1 {
		d := relevant[0]
		subject = fmt.Sprintf("%s Report: %.0f\" New Snow", d.Mountain.Name, d.SnowReport.Snow24hIn)
		html, err = email.SingleResortHTML(d)
		return subject, html, err
	}

	// Deepest 24h snowfall leads the digest and the subject line.
	sort.SliceStable(relevant, func(i, k int) bool {
		return relevant[i].SnowReport.Snow24hIn > relevant[k].SnowReport.Snow24hIn
	})
	winner := relevant[0]
	subject = fmt.Sprintf("Snow Update: %s leads with %.0f\" New Snow", winner.Mountain.Name, winner.SnowReport.Snow24hIn)
	html, err = email.MultiResortHTML(relevant)
	return subject, html, err
}
