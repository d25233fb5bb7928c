package merlin

import (
	"context"
	"math/rand"
	"time"

	"github.com/danmuck/merlinctl/internal/protocol/session"
	"github.com/rs/zerolog/log"
)

// WaitForStatus polls STATUS until the device reports want. It returns the
// first exchange failure or ctx's error. Failed polls are not retried.
func WaitForStatus(ctx context.Context, c *Connection, want DetectorStatus, backoff session.BackoffConfig) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		got, err := c.Get(VarStatus)
		if err != nil {
			return err
		}
		if got == want {
			return nil
		}
		log.Debug().Int("attempt", attempt).Stringer("status", got.(DetectorStatus)).Stringer("want", want).Msg("merlin.WaitForStatus")
		if err := backoff.Sleep(ctx, attempt, rng); err != nil {
			return err
		}
	}
}
