package indices

import (
	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartCron schedules a full sync on spec, a six field expression with seconds.
func StartCron(spec string) (*cron.Cron, error) {
	crontab := cron.New(cron.WithSeconds())
	_, err := crontab.AddFunc(spec, func() {
		if !ScheduleNewSyncRunFunc() {
			logrus.Info("indices fully sync: previous run still in progress, skipped")
		}
	})
	if err != nil {
		return nil, err
	}
	crontab.Start()
	return crontab, nil
}
