package usecases

import (
	"time"

	"github.com/rs/zerolog"

	"rolebot/internal/interfaces"
	"rolebot/internal/repository"
)

// SchedulerInterval is the fixed poll period. Thirty seconds bounds delivery
// lag without hammering the store; it is an accepted trade-off, not a tunable.
const SchedulerInterval = 30 * time.Second

// Scheduler is the background actor that delivers due broadcasts. It shares
// the persisted store with the message router; each store call is
// individually atomic, and the read-due-then-mark-sent sequence deliberately
// is not (at-least-once delivery across a crash).
type Scheduler struct {
	schedules *repository.ScheduleRepository
	chats     *repository.ChatRepository
	settings  *SettingsManager
	messenger interfaces.Messenger
	interval  time.Duration
	stop      chan struct{}
	done      chan struct{}
	log       zerolog.Logger
}

func NewScheduler(
	schedules *repository.ScheduleRepository,
	chats *repository.ChatRepository,
	settings *SettingsManager,
	messenger interfaces.Messenger,
	log zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		schedules: schedules,
		chats:     chats,
		settings:  settings,
		messenger: messenger,
		interval:  SchedulerInterval,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// Start launches the loop. Stop it with Stop; per-cycle errors never
// terminate it.
func (s *Scheduler) Start() {
	go s.loop()
}

// Stop signals the loop and waits for it to observe the signal between
// cycles. A cycle in flight finishes; nothing is cancelled mid-send.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) loop() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Msg("scheduler started")
	for {
		select {
		case <-s.stop:
			s.log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.runCycle(time.Now())
		}
	}
}

// runCycle delivers every due broadcast once. The timezone setting is re-read
// here so /set timezone takes effect on the next cycle without a restart.
func (s *Scheduler) runCycle(now time.Time) {
	now = now.In(s.location())

	due, err := s.schedules.Due(now)
	if err != nil {
		s.log.Error().Err(err).Msg("due query failed")
		return
	}

	for _, broadcast := range due {
		recipients, err := s.chats.ChatsByAudience(broadcast.Target)
		if err != nil {
			// Not marked sent; the broadcast stays due and is retried next cycle.
			s.log.Error().Err(err).Int64("id", broadcast.ID).Msg("audience resolution failed")
			continue
		}

		sent := 0
		for _, chatID := range recipients {
			if err := s.messenger.SendMessage(chatID, "📅 Scheduled: "+broadcast.Text); err != nil {
				// Per-recipient isolation: log and keep going.
				s.log.Error().Err(err).Int64("id", broadcast.ID).Int64("chat", chatID).Msg("delivery failed")
				continue
			}
			sent++
		}
		s.log.Info().
			Int64("id", broadcast.ID).
			Str("target", broadcast.Target).
			Int("sent", sent).
			Int("recipients", len(recipients)).
			Msg("scheduled broadcast delivered")

		// Marked exactly once after the fan-out, regardless of per-recipient
		// failures.
		if err := s.schedules.MarkSent(broadcast.ID); err != nil {
			s.log.Error().Err(err).Int64("id", broadcast.ID).Msg("mark sent failed")
		}
	}
}

func (s *Scheduler) location() *time.Location {
	name := s.settings.Get("timezone")
	loc, err := time.LoadLocation(name)
	if err != nil {
		s.log.Warn().Str("timezone", name).Msg("invalid timezone setting, using UTC")
		return time.UTC
	}
	return loc
}
