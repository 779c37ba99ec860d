package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"idetude/internal/app"
	"idetude/internal/domain/teacher"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterAdminHandlers registers the commands reserved to the administrator.
func RegisterAdminHandlers(b *telebot.Bot, adminService *app.AdminService, assignmentService *app.AssignmentService, baseLogger *logrus.Entry) {
	adminOnly := func(name string, fn func(c telebot.Context, log *logrus.Entry) error) {
		b.Handle(name, func(c telebot.Context) error {
			log := baseLogger.WithFields(logrus.Fields{
				"handler":   name,
				"sender_id": c.Sender().ID,
			})
			log.Info("Command received")
			if !adminService.IsAdmin(c.Sender().ID) {
				log.Warn("Unauthorized access attempt")
				return c.Send(msgUnauthorized)
			}
			return fn(c, log)
		})
	}

	adminOnly("/add_teacher", func(c telebot.Context, log *logrus.Entry) error {
		args := c.Args()
		if len(args) < 2 || len(args) > 3 {
			return c.Send("Format invalide. Utilisez : /add_teacher <TelegramID> <Prénom> [Nom]")
		}
		telegramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Erreur : l'identifiant Telegram doit être un nombre.")
		}
		var lastName string
		if len(args) == 3 {
			lastName = args[2]
		}

		ctx, cancel := handlerContext()
		defer cancel()
		t, err := adminService.AddTeacher(ctx, c.Sender().ID, telegramID, args[1], lastName)
		if err != nil {
			log.WithError(err).Warn("Teacher not added")
			return c.Send(userMessage(err))
		}
		log.WithField("teacher_id", t.ID).Info("Teacher added")
		return c.Send(fmt.Sprintf("Enseignant %s (ID : %d, Telegram : %d) ajouté.", t.FullName(), t.ID, t.TelegramID))
	})

	adminOnly("/remove_teacher", func(c telebot.Context, log *logrus.Entry) error {
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Format invalide. Utilisez : /remove_teacher <TelegramID>")
		}
		telegramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Erreur : l'identifiant Telegram doit être un nombre.")
		}

		ctx, cancel := handlerContext()
		defer cancel()
		t, err := adminService.RemoveTeacher(ctx, c.Sender().ID, telegramID)
		if err != nil {
			log.WithError(err).Warn("Teacher not removed")
			return c.Send(userMessage(err))
		}
		log.WithField("teacher_id", t.ID).Info("Teacher deactivated")
		return c.Send(fmt.Sprintf("Enseignant %s (Telegram : %d) désactivé.", t.FullName(), t.TelegramID))
	})

	adminOnly("/list_teachers", func(c telebot.Context, log *logrus.Entry) error {
		listType := "active"
		if args := c.Args(); len(args) > 0 {
			listType = strings.ToLower(args[0])
		}

		ctx, cancel := handlerContext()
		defer cancel()
		var (
			teachers []*teacher.Teacher
			err      error
		)
		switch listType {
		case "active":
			teachers, err = adminService.ListActiveTeachers(ctx, c.Sender().ID)
		case "all":
			teachers, err = adminService.ListAllTeachers(ctx, c.Sender().ID)
		default:
			return c.Send("Argument invalide. Utilisez 'active' ou 'all'.")
		}
		if err != nil {
			log.WithError(err).Error("Failed to list teachers")
			return c.Send(userMessage(err))
		}
		if len(teachers) == 0 {
			return c.Send("Aucun enseignant.")
		}

		var response strings.Builder
		for _, t := range teachers {
			status := "désactivé"
			if t.IsActive {
				status = "actif"
			}
			fmt.Fprintf(&response, "ID : %d, Telegram : %d, %s, %s\n", t.ID, t.TelegramID, t.FullName(), status)
		}
		return c.Send(response.String())
	})

	// /assign <teacherID> <classID> <subjectID> [main]
	adminOnly("/assign", func(c telebot.Context, log *logrus.Entry) error {
		args := c.Args()
		if len(args) != 3 && !(len(args) == 4 && strings.EqualFold(args[3], "main")) {
			return c.Send("Format invalide. Utilisez : /assign <enseignantID> <classeID> <matièreID> [main]")
		}
		ids, err := parseIDs(args[:3])
		if err != nil {
			return c.Send("Erreur : " + err.Error())
		}

		ctx, cancel := handlerContext()
		defer cancel()
		a, err := assignmentService.AddAssignment(ctx, app.NewAssignment{
			TeacherID:     ids[0],
			ClassID:       ids[1],
			SubjectID:     ids[2],
			IsMainTeacher: len(args) == 4,
		})
		if err != nil {
			log.WithError(err).Warn("Assignment not added")
			return c.Send(userMessage(err))
		}
		return c.Send(fmt.Sprintf("Affectation %d créée (%s).", a.ID, a.SchoolYear))
	})

	adminOnly("/unassign", func(c telebot.Context, log *logrus.Entry) error {
		args := c.Args()
		if len(args) != 3 {
			return c.Send("Format invalide. Utilisez : /unassign <enseignantID> <classeID> <matièreID>")
		}
		ids, err := parseIDs(args)
		if err != nil {
			return c.Send("Erreur : " + err.Error())
		}

		ctx, cancel := handlerContext()
		defer cancel()
		if err := assignmentService.RemoveAssignment(ctx, ids[0], ids[1], ids[2]); err != nil {
			log.WithError(err).Warn("Assignment not removed")
			return c.Send(userMessage(err))
		}
		return c.Send("Affectation supprimée.")
	})

	adminOnly("/main", func(c telebot.Context, log *logrus.Entry) error {
		args := c.Args()
		if len(args) != 2 {
			return c.Send("Format invalide. Utilisez : /main <classeID> <enseignantID>")
		}
		ids, err := parseIDs(args)
		if err != nil {
			return c.Send("Erreur : " + err.Error())
		}

		ctx, cancel := handlerContext()
		defer cancel()
		rows, err := assignmentService.ToggleMainTeacher(ctx, ids[0], ids[1])
		if err != nil {
			log.WithError(err).Warn("Main teacher not toggled")
			return c.Send(userMessage(err))
		}
		for _, a := range rows {
			if a.IsMainTeacher {
				return c.Send(fmt.Sprintf("L'enseignant %d est maintenant professeur principal de la classe %d.", ids[1], ids[0]))
			}
		}
		return c.Send(fmt.Sprintf("L'enseignant %d n'est plus professeur principal de la classe %d.", ids[1], ids[0]))
	})

	adminOnly("/add_class", func(c telebot.Context, log *logrus.Entry) error {
		name, level := splitClassPayload(c.Message().Payload)
		if name == "" {
			return c.Send("Format invalide. Utilisez : /add_class <nom> [| niveau]")
		}
		ctx, cancel := handlerContext()
		defer cancel()
		class, err := assignmentService.AddClass(ctx, app.NewClass{Name: name, Level: level})
		if err != nil {
			log.WithError(err).Warn("Class not added")
			return c.Send(userMessage(err))
		}
		return c.Send(fmt.Sprintf("Classe %s ajoutée (ID : %d, %s).", class.Name, class.ID, class.SchoolYear))
	})

	adminOnly("/add_subject", func(c telebot.Context, log *logrus.Entry) error {
		name := strings.TrimSpace(c.Message().Payload)
		if name == "" {
			return c.Send("Format invalide. Utilisez : /add_subject <nom>")
		}
		ctx, cancel := handlerContext()
		defer cancel()
		subject, err := assignmentService.AddSubject(ctx, app.NewSubject{Name: name})
		if err != nil {
			log.WithError(err).Warn("Subject not added")
			return c.Send(userMessage(err))
		}
		return c.Send(fmt.Sprintf("Matière %s ajoutée (ID : %d).", subject.Name, subject.ID))
	})

	adminOnly("/classes", func(c telebot.Context, log *logrus.Entry) error {
		var year string
		if args := c.Args(); len(args) == 1 {
			year = args[0]
		}
		ctx, cancel := handlerContext()
		defer cancel()
		classes, err := assignmentService.ListClasses(ctx, year)
		if err != nil {
			log.WithError(err).Error("Failed to list classes")
			return c.Send(userMessage(err))
		}
		return c.Send(formatClasses(classes))
	})

	adminOnly("/subjects", func(c telebot.Context, log *logrus.Entry) error {
		ctx, cancel := handlerContext()
		defer cancel()
		subjects, err := assignmentService.ListSubjects(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to list subjects")
			return c.Send(userMessage(err))
		}
		return c.Send(formatSubjects(subjects))
	})
}
