package app

import (
	"context"

	"idetude/internal/domain/teacher"
	"idetude/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// Notifier delivers transient success and failure messages to people. Delivery is best
// effort: failures are logged and never undo the operation that triggered them.
type Notifier interface {
	NotifyTeacher(ctx context.Context, teacherID int64, text string)
	NotifyAdmin(ctx context.Context, text string)
}

// ChatNotifier sends notifications through the chat client. A nil client only logs.
type ChatNotifier struct {
	teacherRepo teacher.Repository
	client      telegram.Client
	adminChatID int64
	logger      *logrus.Entry
}

func NewChatNotifier(tr teacher.Repository, client telegram.Client, adminChatID int64, logger *logrus.Entry) *ChatNotifier {
	return &ChatNotifier{
		teacherRepo: tr,
		client:      client,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

func (n *ChatNotifier) NotifyTeacher(ctx context.Context, teacherID int64, text string) {
	log := n.logger.WithField("teacher_id", teacherID)
	if n.client == nil {
		log.WithField("text", text).Debug("Chat client disabled, notification dropped")
		return
	}
	t, err := n.teacherRepo.GetByID(ctx, teacherID)
	if err != nil {
		log.WithError(err).Warn("Cannot resolve teacher for notification")
		return
	}
	if !t.IsActive || t.TelegramID == 0 {
		log.Debug("Teacher is inactive or has no chat, notification skipped")
		return
	}
	if err := n.client.SendMessage(t.TelegramID, text); err != nil {
		log.WithError(err).Warn("Failed to notify teacher")
	}
}

func (n *ChatNotifier) NotifyAdmin(ctx context.Context, text string) {
	if n.client == nil || n.adminChatID == 0 {
		n.logger.WithField("text", text).Debug("Admin chat not configured, notification dropped")
		return
	}
	if err := n.client.SendMessage(n.adminChatID, text); err != nil {
		n.logger.WithError(err).Warn("Failed to notify admin")
	}
}
