package jobs

import (
	"github.com/rs/zerolog"

	"github.com/y1ran/journal-dashboard/internal/modules/balance"
)

// PollJob runs the periodic balance check cycle.
type PollJob struct {
	service *balance.Service
	log     zerolog.Logger
}

// NewPollJob creates a new poll job
func NewPollJob(service *balance.Service, log zerolog.Logger) *PollJob {
	return &PollJob{
		service: service,
		log:     log.With().Str("job", "balance_poll").Logger(),
	}
}

// Name returns the job name
func (j *PollJob) Name() string {
	return "balance_poll"
}

// Run performs one full check cycle.
func (j *PollJob) Run() error {
	j.service.CheckAll()
	return nil
}
