package pentagon

import (
	"time"
)

// Time is the wall clock at the start of the current tick and the time
// since the previous one.
type Time struct {
	Time  time.Time
	Dt    time.Duration
	Ticks uint64

	now func() time.Time
}

type TimeModule struct {
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time: time.Now(),
		Dt:   0,
		now:  time.Now,
	})
	cmd.UseSystem(
		System(timeSystem).
			InStage(Prelude).
			RunAlways(),
	)
}

func timeSystem(timeResource *Time) {
	now := time.Now()
	if timeResource.now != nil {
		now = timeResource.now()
	}

	timeResource.Dt = now.Sub(timeResource.Time)
	timeResource.Time = now
	timeResource.Ticks++
}
