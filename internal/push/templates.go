package push

import (
	"fmt"

	"github.com/woutervis/wotohe/internal/model"
)

type template struct {
	title    string
	taskName string
}

var templatesByType = map[model.ChoreType]template{
	model.ChoreKitchen:  {title: "Kitchen hygiene restored! 🧽", taskName: "kitchen"},
	model.ChoreBathroom: {title: "Throne room has been detoxified! 🚽", taskName: "bathroom"},
	model.ChoreFloor:    {title: "Wow, look at the shiny floor! ✨", taskName: "living room"},
	model.ChorePlants:   {title: "Plant genocide successfully prevented! 🌱", taskName: "plant"},
}

// CompletionMessage resolves the notification title and body for a
// completed chore. ok is false for types with no configured template.
func CompletionMessage(choreType model.ChoreType, assignee string) (title, body string, ok bool) {
	tmpl, found := templatesByType[choreType]
	if !found {
		return "", "", false
	}
	return tmpl.title, fmt.Sprintf("%s completed their %s chore.", assignee, tmpl.taskName), true
}

// ReminderMessage resolves the overdue reminder for a chore that has
// been open for the given number of days.
func ReminderMessage(choreType model.ChoreType, assignee string, days int) (title, body string, ok bool) {
	tmpl, found := templatesByType[choreType]
	if !found {
		return "", "", false
	}
	title = fmt.Sprintf("The %s chore is overdue ⏰", tmpl.taskName)
	body = fmt.Sprintf("%s has been on the hook for %d days now.", assignee, days)
	return title, body, true
}
