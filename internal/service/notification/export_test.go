package notification

import (
	"github.com/sirupsen/logrus"

	"asrama/internal/repository"
)

// NewServiceWithHook returns a service that calls done after every background
// write so tests can wait for Notify.
func NewServiceWithHook(notifRepo repository.NotificationRepository, logger *logrus.Logger, done func()) Service {
	return &service{
		notifRepo: notifRepo,
		log:       logrus.NewEntry(logger).WithField("component", "notification"),
		done:      done,
	}
}
