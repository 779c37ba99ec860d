package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"idetude/internal/app"
	"idetude/internal/domain/teacher"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// TeacherServices are the services behind the teacher commands.
type TeacherServices struct {
	Admin        *app.AdminService
	Assignments  *app.AssignmentService
	Competencies *app.CompetencyService
	Progress     *app.ProgressService
	Resources    *app.ResourceService
}

// RegisterTeacherHandlers registers the commands available to active teachers.
func RegisterTeacherHandlers(b *telebot.Bot, svc TeacherServices, baseLogger *logrus.Entry) {
	teacherOnly := func(name string, fn func(c telebot.Context, t *teacher.Teacher, log *logrus.Entry) error) {
		b.Handle(name, func(c telebot.Context) error {
			log := baseLogger.WithFields(logrus.Fields{
				"handler":   name,
				"sender_id": c.Sender().ID,
			})
			log.Info("Command received")

			ctx, cancel := handlerContext()
			t, err := svc.Admin.ResolveTeacher(ctx, c.Sender().ID)
			cancel()
			if err != nil {
				if app.Kind(err) == app.KindNotFound {
					log.Warn("Command from unknown or inactive teacher")
					return c.Send("Cette commande est réservée aux enseignants actifs.")
				}
				log.WithError(err).Error("Failed to resolve teacher")
				return c.Send(userMessage(err))
			}
			return fn(c, t, log.WithField("teacher_id", t.ID))
		})
	}

	teacherOnly("/my_classes", func(c telebot.Context, t *teacher.Teacher, log *logrus.Entry) error {
		ctx, cancel := handlerContext()
		defer cancel()
		overview, err := svc.Assignments.Overview(ctx, t.ID)
		if err != nil {
			log.WithError(err).Error("Failed to load assignments")
			return c.Send(userMessage(err))
		}
		return c.Send(formatOverview(overview))
	})

	teacherOnly("/evaluate", func(c telebot.Context, t *teacher.Teacher, log *logrus.Entry) error {
		args := c.Args()
		if len(args) < 3 {
			return c.Send("Format invalide. Utilisez : /evaluate <élèveID> <compétenceID> <niveau> [notes]")
		}
		ids, err := parseIDs(args[:2])
		if err != nil {
			return c.Send("Erreur : " + err.Error())
		}
		level, err := strconv.Atoi(args[2])
		if err != nil {
			return c.Send("Erreur : le niveau doit être un nombre.")
		}

		ctx, cancel := handlerContext()
		defer cancel()
		state, entry, err := svc.Competencies.Evaluate(ctx, app.EvaluationRequest{
			StudentID:    ids[0],
			CompetencyID: ids[1],
			Level:        level,
			Notes:        strings.Join(args[3:], " "),
			EvaluatorID:  t.ID,
		})
		if err != nil {
			log.WithError(err).Warn("Evaluation rejected")
			return c.Send(userMessage(err))
		}
		return c.Send("Évaluation enregistrée : niveau " + strconv.Itoa(entry.PreviousLevel) + " → " + strconv.Itoa(state.CurrentLevel) + ".")
	})

	teacherOnly("/level", func(c telebot.Context, _ *teacher.Teacher, log *logrus.Entry) error {
		ids, err := parseIDs(c.Args())
		if err != nil || len(ids) != 2 {
			return c.Send("Format invalide. Utilisez : /level <élèveID> <compétenceID>")
		}
		ctx, cancel := handlerContext()
		defer cancel()
		level, err := svc.Competencies.GetLevel(ctx, ids[0], ids[1])
		if err != nil {
			log.WithError(err).Error("Failed to read level")
			return c.Send(userMessage(err))
		}
		return c.Send("Niveau actuel : " + strconv.Itoa(level) + ".")
	})

	teacherOnly("/history", func(c telebot.Context, _ *teacher.Teacher, log *logrus.Entry) error {
		ids, err := parseIDs(c.Args())
		if err != nil || len(ids) != 2 {
			return c.Send("Format invalide. Utilisez : /history <élèveID> <compétenceID>")
		}
		ctx, cancel := handlerContext()
		defer cancel()
		entries, err := svc.Competencies.GetHistoryFor(ctx, ids[0], ids[1])
		if err != nil {
			log.WithError(err).Error("Failed to read history")
			return c.Send(userMessage(err))
		}
		return c.Send(formatHistory(entries))
	})

	teacherOnly("/progress", func(c telebot.Context, _ *teacher.Teacher, log *logrus.Entry) error {
		ids, err := parseIDs(c.Args())
		if err != nil || len(ids) != 1 {
			return c.Send("Format invalide. Utilisez : /progress <élèveID>")
		}
		ctx, cancel := handlerContext()
		defer cancel()
		report, err := svc.Progress.StudentReport(ctx, ids[0], time.Now().AddDate(-1, 0, 0))
		if err != nil {
			log.WithError(err).Error("Failed to compute progress")
			return c.Send(userMessage(err))
		}
		return c.Send(formatReport(report))
	})

	teacherOnly("/top_resources", func(c telebot.Context, _ *teacher.Teacher, log *logrus.Entry) error {
		limit := 5
		if args := c.Args(); len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return c.Send("Format invalide. Utilisez : /top_resources [n]")
			}
			limit = n
		}
		ctx, cancel := handlerContext()
		defer cancel()
		top, err := svc.Progress.TopResources(ctx, limit)
		if err != nil {
			log.WithError(err).Error("Failed to rank resources")
			return c.Send(userMessage(err))
		}
		return c.Send(formatTopResources(top))
	})

	teacherOnly("/share", func(c telebot.Context, t *teacher.Teacher, log *logrus.Entry) error {
		title := strings.TrimSpace(c.Message().Payload)
		if title == "" {
			return c.Send("Format invalide. Utilisez : /share <titre>")
		}
		ctx, cancel := handlerContext()
		defer cancel()
		r, err := svc.Resources.Share(ctx, app.NewResource{TeacherID: t.ID, Title: title})
		if err != nil {
			log.WithError(err).Warn("Resource not shared")
			return c.Send(userMessage(err))
		}
		return c.Send(fmt.Sprintf("Ressource « %s » partagée (ID : %d).", r.Title, r.ID))
	})

	teacherOnly("/my_resources", func(c telebot.Context, t *teacher.Teacher, log *logrus.Entry) error {
		ctx, cancel := handlerContext()
		defer cancel()
		rs, err := svc.Resources.ListForTeacher(ctx, t.ID)
		if err != nil {
			log.WithError(err).Error("Failed to list resources")
			return c.Send(userMessage(err))
		}
		return c.Send(formatResources(rs))
	})
}
