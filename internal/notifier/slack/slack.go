package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtside/internal/event"
	"github.com/mauv0809/courtside/internal/metrics"
	"github.com/mauv0809/courtside/internal/notifier"
	"github.com/mauv0809/courtside/internal/slots"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) error {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return nil
}

// Implement the Notifier interface

func (s *Notifier) SendBookingConfirmation(match *event.Match, slot slots.TimeSlot, players []event.Player, dryRun bool) error {
	return s.sendMessage(s.formatBookingConfirmation(match, slot, players), dryRun)
}

func (s *Notifier) SendBookingCancelled(match *event.Match, players []event.Player, dryRun bool) error {
	return s.sendMessage(s.formatBookingCancelled(match, players), dryRun)
}

func (s *Notifier) SendResultRecorded(match *event.Match, players []event.Player, dryRun bool) error {
	return s.sendMessage(s.formatResultRecorded(match, players), dryRun)
}

func (s *Notifier) SendScheduleDigest(dates []string, free []slots.TimeSlot, dryRun bool) error {
	return s.sendMessage(s.formatScheduleDigest(dates, free), dryRun)
}

func matchupLine(match *event.Match, players []event.Player) string {
	names := map[string]string{}
	for _, p := range players {
		names[p.ID] = p.Name
	}
	name := func(id string) string {
		if n, ok := names[id]; ok && n != "" {
			return n
		}
		return id
	}
	return fmt.Sprintf("%s vs %s", name(match.Player1ID), name(match.Player2ID))
}

func (s *Notifier) formatBookingConfirmation(match *event.Match, slot slots.TimeSlot, players []event.Player) slack.Message {
	start := time.UnixMilli(slot.Start).Local()
	where := slot.Location
	if slot.Field != "" {
		where = fmt.Sprintf("%s, %s", slot.Location, slot.Field)
	}

	headerText := slack.NewTextBlockObject("plain_text", ":calendar: Match booked", false, false)
	bodyText := slack.NewTextBlockObject("mrkdwn", fmt.Sprintf(
		"*%s*\n%s at *%s*",
		matchupLine(match, players),
		start.Format("Monday, Jan 2 15:04"),
		where,
	), false, false)

	msg := slack.NewBlockMessage(
		slack.NewHeaderBlock(headerText),
		slack.NewSectionBlock(bodyText, nil, nil),
	)
	return msg
}

func (s *Notifier) formatBookingCancelled(match *event.Match, players []event.Player) slack.Message {
	headerText := slack.NewTextBlockObject("plain_text", ":no_entry: Booking cancelled", false, false)
	bodyText := slack.NewTextBlockObject("mrkdwn", fmt.Sprintf(
		"*%s* is back to pending. The slot is free again.",
		matchupLine(match, players),
	), false, false)

	return slack.NewBlockMessage(
		slack.NewHeaderBlock(headerText),
		slack.NewSectionBlock(bodyText, nil, nil),
	)
}

func (s *Notifier) formatResultRecorded(match *event.Match, players []event.Player) slack.Message {
	score := "-"
	if match.Score1 != nil && match.Score2 != nil {
		score = fmt.Sprintf("%d : %d", *match.Score1, *match.Score2)
	}

	headerText := slack.NewTextBlockObject("plain_text", ":trophy: Result recorded", false, false)
	bodyText := slack.NewTextBlockObject("mrkdwn", fmt.Sprintf(
		"*%s*\nFinal score: *%s*",
		matchupLine(match, players),
		score,
	), false, false)

	return slack.NewBlockMessage(
		slack.NewHeaderBlock(headerText),
		slack.NewSectionBlock(bodyText, nil, nil),
	)
}

func (s *Notifier) formatScheduleDigest(dates []string, free []slots.TimeSlot) slack.Message {
	headerText := slack.NewTextBlockObject("plain_text", ":tennis: Open slots", false, false)

	var lines []string
	byDate := map[string][]slots.TimeSlot{}
	for _, slot := range free {
		key := slot.DateKey()
		byDate[key] = append(byDate[key], slot)
	}
	for _, date := range dates {
		daySlots := byDate[date]
		if len(daySlots) == 0 {
			continue
		}
		var times []string
		for _, slot := range daySlots {
			times = append(times, time.UnixMilli(slot.Start).Local().Format("15:04"))
		}
		lines = append(lines, fmt.Sprintf("*%s*: %s", date, strings.Join(times, ", ")))
	}
	if len(lines) == 0 {
		lines = append(lines, "No open slots right now.")
	}

	bodyText := slack.NewTextBlockObject("mrkdwn", strings.Join(lines, "\n"), false, false)
	return slack.NewBlockMessage(
		slack.NewHeaderBlock(headerText),
		slack.NewSectionBlock(bodyText, nil, nil),
	)
}
