package telegram

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"idetude/internal/app"
	"idetude/internal/domain/assignment"
	"idetude/internal/domain/competency"
	"idetude/internal/domain/progress"
	"idetude/internal/domain/resource"
)

const handlerTimeout = 10 * time.Second

const msgUnauthorized = "Erreur : vous n'avez pas les droits pour exécuter cette commande."

func handlerContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), handlerTimeout)
}

// userMessage turns a service error into the reply shown in the chat.
func userMessage(err error) string {
	var vErr *app.ValidationError
	switch {
	case errors.Is(err, app.ErrTeacherAlreadyExists):
		return "Erreur : un enseignant avec cet identifiant Telegram existe déjà."
	case errors.Is(err, app.ErrTeacherAlreadyInactive):
		return "Cet enseignant est déjà désactivé."
	case errors.As(err, &vErr):
		return "Données invalides : " + strings.Join(fieldMessages(vErr), "; ")
	case errors.Is(err, app.ErrMainTeacherConflict):
		return "Le professeur principal a été modifié entre-temps. Réessayez."
	case errors.Is(err, assignment.ErrUnknownReference):
		return "Enseignant, classe ou matière introuvable."
	}
	switch app.Kind(err) {
	case app.KindDuplicateAssignment:
		return "Cet enseignant est déjà affecté à cette classe pour cette matière."
	case app.KindDuplicate:
		return "Cet élément existe déjà."
	case app.KindInvalidLevel:
		return "Niveau invalide : " + err.Error()
	case app.KindNotFound:
		return "Élément introuvable."
	case app.KindConflict:
		return "L'évaluation a été modifiée entre-temps. Réessayez."
	case app.KindUnauthorized:
		return msgUnauthorized
	default:
		return "Une erreur interne est survenue. Réessayez plus tard."
	}
}

func fieldMessages(vErr *app.ValidationError) []string {
	out := make([]string, len(vErr.Fields))
	for i, f := range vErr.Fields {
		out[i] = f.Error
	}
	return out
}

// parseIDs parses every argument as a positive integer.
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%q n'est pas un identifiant valide", a)
		}
		ids[i] = id
	}
	return ids, nil
}

func formatOverview(o *app.TeacherOverview) string {
	if len(o.Assignments) == 0 {
		return "Vous n'avez aucune affectation."
	}
	var b strings.Builder
	b.WriteString("Vos classes :\n")
	for _, v := range o.Assignments {
		fmt.Fprintf(&b, "- %s, %s (%s)", classLabel(v), subjectLabel(v), v.SchoolYear)
		if v.IsMainTeacher {
			b.WriteString(" [professeur principal]")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Matières : %s\n", strings.Join(o.Subjects, ", "))
	fmt.Fprintf(&b, "Niveaux : %s", strings.Join(o.Levels, ", "))
	return b.String()
}

func classLabel(v *assignment.View) string {
	if v.ClassName != "" {
		return v.ClassName
	}
	return fmt.Sprintf("classe %d", v.ClassID)
}

func subjectLabel(v *assignment.View) string {
	if v.SubjectName != "" {
		return v.SubjectName
	}
	return fmt.Sprintf("matière %d", v.SubjectID)
}

func formatHistory(entries []*competency.HistoryEntry) string {
	if len(entries) == 0 {
		return "Aucune évaluation enregistrée."
	}
	var b strings.Builder
	b.WriteString("Historique :\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%s : %d → %d", e.CreatedAt.Format("02/01/2006"), e.PreviousLevel, e.NewLevel)
		if e.Notes != "" {
			fmt.Fprintf(&b, " (%s)", e.Notes)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatReport(r *app.StudentReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Élève %d : progression globale %d%%\n", r.StudentID, r.Overall)
	for _, subject := range sortedKeys(r.Subjects) {
		fmt.Fprintf(&b, "- %s : %d%%\n", subject, r.Subjects[subject])
	}
	if len(r.Monthly) > 0 {
		b.WriteString("Par mois :\n")
		for _, m := range r.Monthly {
			fmt.Fprintf(&b, "- %s : %d%%\n", m.Month, m.Percent)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatTopResources(items []progress.Engagement) string {
	if len(items) == 0 {
		return "Aucune ressource partagée."
	}
	var b strings.Builder
	b.WriteString("Ressources les plus consultées :\n")
	for i, e := range items {
		fmt.Fprintf(&b, "%d. %s (%d téléchargements, %d vues)\n", i+1, e.Title, e.Downloads, e.Views)
	}
	return strings.TrimRight(b.String(), "\n")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// splitClassPayload reads "<nom> [| niveau]" as typed after /add_class.
func splitClassPayload(payload string) (name, level string) {
	name, level, _ = strings.Cut(payload, "|")
	return strings.TrimSpace(name), strings.TrimSpace(level)
}

func formatClasses(classes []*assignment.Class) string {
	if len(classes) == 0 {
		return "Aucune classe enregistrée pour cette année."
	}
	var b strings.Builder
	b.WriteString("Classes :\n")
	for _, c := range classes {
		fmt.Fprintf(&b, "%d. %s", c.ID, c.Name)
		if c.Level != "" {
			fmt.Fprintf(&b, " (%s)", c.Level)
		}
		fmt.Fprintf(&b, " - %s\n", c.SchoolYear)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSubjects(subjects []*assignment.Subject) string {
	if len(subjects) == 0 {
		return "Aucune matière enregistrée."
	}
	var b strings.Builder
	b.WriteString("Matières :\n")
	for _, s := range subjects {
		fmt.Fprintf(&b, "%d. %s\n", s.ID, s.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatResources(rs []*resource.Resource) string {
	if len(rs) == 0 {
		return "Vous n'avez partagé aucune ressource."
	}
	var b strings.Builder
	b.WriteString("Vos ressources :\n")
	for _, r := range rs {
		fmt.Fprintf(&b, "%d. %s - %d téléchargements, %d vues\n", r.ID, r.Title, r.Downloads, r.Views)
	}
	return strings.TrimRight(b.String(), "\n")
}
