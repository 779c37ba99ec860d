package telegram

import (
	"errors"
	"fmt"

	"idetude/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const adminHelp = "Commandes administrateur :\n\n" +
	"/add_teacher <TelegramID> <Prénom> [Nom] - ajouter un enseignant\n" +
	"/remove_teacher <TelegramID> - désactiver un enseignant\n" +
	"/list_teachers [active|all] - lister les enseignants\n" +
	"/assign <enseignantID> <classeID> <matièreID> [main] - affecter un enseignant\n" +
	"/unassign <enseignantID> <classeID> <matièreID> - retirer une affectation\n" +
	"/main <classeID> <enseignantID> - basculer le rôle de professeur principal\n" +
	"/add_class <nom> [| niveau] - créer une classe pour l'année en cours\n" +
	"/add_subject <nom> - créer une matière\n" +
	"/classes [année] - lister les classes\n" +
	"/subjects - lister les matières\n" +
	"/help - afficher cette aide"

const teacherHelp = "Commandes enseignant :\n\n" +
	"/my_classes - vos classes, matières et niveaux\n" +
	"/evaluate <élèveID> <compétenceID> <niveau> [notes] - évaluer une compétence\n" +
	"/level <élèveID> <compétenceID> - niveau actuel\n" +
	"/history <élèveID> <compétenceID> - historique des évaluations\n" +
	"/progress <élèveID> - progression de l'élève\n" +
	"/top_resources [n] - ressources les plus consultées\n" +
	"/share <titre> - partager une ressource\n" +
	"/my_resources - vos ressources partagées\n" +
	"/help - afficher cette aide"

func RegisterBotCommands(b *telebot.Bot, adminService *app.AdminService, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	// role reports "admin", "teacher" or "" for unknown and inactive users.
	role := func(c telebot.Context, log *logrus.Entry) (string, string, error) {
		if adminService.IsAdmin(c.Sender().ID) {
			return "admin", c.Sender().FirstName, nil
		}
		ctx, cancel := handlerContext()
		defer cancel()
		t, err := adminService.ResolveTeacher(ctx, c.Sender().ID)
		switch {
		case err == nil:
			log.WithField("teacher_id", t.ID).Debug("User identified as teacher")
			return "teacher", t.FirstName, nil
		case errors.Is(err, app.ErrNotFound):
			return "", c.Sender().FirstName, nil
		default:
			return "", "", err
		}
	}

	b.Handle("/start", func(c telebot.Context) error {
		log := startHelpLogger.WithFields(logrus.Fields{"command": "/start", "sender_id": c.Sender().ID})
		log.Info("Processing /start command")

		who, name, err := role(c, log)
		if err != nil {
			log.WithError(err).Error("Error checking user role")
			return c.Send(userMessage(err))
		}
		switch who {
		case "admin":
			return c.Send(fmt.Sprintf("Bonjour %s ! Vous êtes administrateur. Tapez /help pour la liste des commandes.", name))
		case "teacher":
			return c.Send(fmt.Sprintf("Bonjour %s ! Vous pouvez consulter vos classes et évaluer les compétences de vos élèves. Tapez /help.", name))
		default:
			return c.Send("Bonjour ! Si vous êtes enseignant, demandez à l'administrateur de vous ajouter.")
		}
	})

	b.Handle("/help", func(c telebot.Context) error {
		log := startHelpLogger.WithFields(logrus.Fields{"command": "/help", "sender_id": c.Sender().ID})
		log.Info("Processing /help command")

		who, _, err := role(c, log)
		if err != nil {
			log.WithError(err).Error("Error checking user role")
			return c.Send(userMessage(err))
		}
		switch who {
		case "admin":
			return c.Send(adminHelp)
		case "teacher":
			return c.Send(teacherHelp)
		default:
			return c.Send("Aucune commande disponible. Demandez à l'administrateur de vous ajouter.")
		}
	})
}
