package sinks

import (
	"context"

	"github.com/sirupsen/logrus"

	"paint-bots/client/logging"
)

// Console renders events as logrus entries, one field per event attribute.
type Console struct {
	logger logrus.FieldLogger
}

func NewConsole(logger logrus.FieldLogger) *Console {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Console{logger: logger}
}

func (s *Console) Write(event logging.Event) error {
	fields := logrus.Fields{
		"tick":     event.Tick,
		"category": event.Category,
	}
	if event.Actor != (logging.EntityRef{}) {
		fields["actor"] = event.Actor.String()
	}
	if len(event.Targets) > 0 {
		targets := make([]string, 0, len(event.Targets))
		for _, target := range event.Targets {
			targets = append(targets, target.String())
		}
		fields["targets"] = targets
	}
	if event.Payload != nil {
		fields["payload"] = event.Payload
	}
	for k, v := range event.Extra {
		if _, taken := fields[k]; !taken {
			fields[k] = v
		}
	}
	s.logger.WithFields(fields).WithTime(event.Time).Log(levelFor(event.Severity), string(event.Type))
	return nil
}

func (s *Console) Close(context.Context) error {
	return nil
}

func levelFor(sev logging.Severity) logrus.Level {
	switch sev {
	case logging.SeverityDebug:
		return logrus.DebugLevel
	case logging.SeverityWarn:
		return logrus.WarnLevel
	case logging.SeverityError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
