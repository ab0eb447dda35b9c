package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

var secondsParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseCron parses cron expression supporting both 5 and 6 field formats
func ParseCron(expr string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(expr)
	if err == nil {
		return sched, nil
	}

	sched, err = secondsParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cron expression: %w", err)
	}
	return sched, nil
}
