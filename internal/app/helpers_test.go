package app

import (
	"context"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

type sentMessage struct {
	teacherID int64 // 0 for the admin
	text      string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeNotifier) NotifyTeacher(_ context.Context, teacherID int64, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{teacherID: teacherID, text: text})
}

func (f *fakeNotifier) NotifyAdmin(_ context.Context, text string) {
	f.NotifyTeacher(context.Background(), 0, text)
}

func (f *fakeNotifier) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
