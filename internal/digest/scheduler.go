package digest

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
)

// DeliveryConfig controls where the digest goes.
type DeliveryConfig struct {
	OutputDir      string
	TopN           int
	SlackAPI       *slack.Client
	SlackChannelID string
}

// WriteFile writes the rendered digest into the output dir and returns the
// file path.
func WriteFile(content, outputDir string, generatedAt time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("creating digest output dir: %w", err)
	}
	path := filepath.Join(outputDir, fmt.Sprintf("churn-digest-%s.md", generatedAt.Format("2006-01-02")))
	return path, os.WriteFile(path, []byte(content), 0644)
}

// RunOnce builds, writes and delivers one digest.
func RunOnce(sc Scorer, cfg DeliveryConfig) error {
	d, err := Build(sc, cfg.TopN)
	if err != nil {
		return err
	}
	content := RenderMarkdown(d)

	path, err := WriteFile(content, cfg.OutputDir, d.GeneratedAt)
	if err != nil {
		return err
	}
	log.Printf("digest written path=%s scored=%d entries=%d warnings=%d",
		path, d.Scored, len(d.Entries), len(d.Errors))

	if cfg.SlackAPI != nil && cfg.SlackChannelID != "" {
		_, _, postErr := cfg.SlackAPI.PostMessage(cfg.SlackChannelID,
			slack.MsgOptionText("Churn risk digest: "+Summary(d)+"\n\n"+content, false))
		if postErr != nil {
			log.Printf("digest slack post error: %v", postErr)
		}
	}
	return nil
}

// StartScheduler starts the cron-based digest scheduler. The schedule is a
// standard 5-field cron expression (minute hour day-of-month month
// day-of-week), e.g. "0 8 * * 1" for Mondays at 08:00.
func StartScheduler(schedule string, sc Scorer, cfg DeliveryConfig) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		log.Println("Digest disabled (digest_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		log.Printf("Invalid digest_schedule '%s': %v, digest disabled", schedule, err)
		return
	}

	c := cron.New(cron.WithParser(parser))
	c.AddFunc(schedule, func() {
		if err := RunOnce(sc, cfg); err != nil {
			log.Printf("digest run error: %v", err)
		}
	})
	c.Start()
	log.Printf("Digest scheduled (cron: %s) top_n=%d output=%s", schedule, cfg.TopN, cfg.OutputDir)
}
