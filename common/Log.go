package common

import (
	"os"

	"github.com/sirupsen/logrus"
)

var (
	serviceName     = "shopfloor"
	serviceInstance = ""
)

func init() {
	serviceInstance, _ = os.Hostname()

	logger := logrus.StandardLogger()
	logger.Out = os.Stdout
	logger.Formatter = &logrus.TextFormatter{}
	logger.AddHook(&DefaultFieldsHook{})
}

// ConfigureLogger applies format and level settings to the standard logger.
func ConfigureLogger(name, format, level string) {
	if name != "" {
		serviceName = name
	}
	logger := logrus.StandardLogger()
	if format == "json" {
		logger.Formatter = &logrus.JSONFormatter{}
	}
	if lvl, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	} else if level != "" {
		logrus.Warnf("unknown log level %q, keep %s", level, logger.GetLevel())
	}
}

func GetServiceName() string {
	return serviceName
}

func GetServiceInstance() string {
	return serviceInstance
}

type DefaultFieldsHook struct {
}

func (hook *DefaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (hook *DefaultFieldsHook) Fire(e *logrus.Entry) error {
	e.Data["serviceName"] = GetServiceName()
	e.Data["serviceInstance"] = GetServiceInstance()
	return nil
}
