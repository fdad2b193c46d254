package services

import (
	"fmt"

	"workboard/internal/core"
)

// Toast is the notification shown after a successful mutation.
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func AddedToast(n core.NewEntry) Toast {
	return Toast{
		Title:       "Work entry added",
		Description: fmt.Sprintf("%s for %s has been added successfully.", n.WorkTopic, n.Company),
	}
}

func UpdatedToast(e core.WorkEntry) Toast {
	return Toast{
		Title:       "Entry updated",
		Description: fmt.Sprintf("%s has been updated successfully.", e.WorkTopic),
	}
}

func DeletedToast() Toast {
	return Toast{Title: "Entry deleted", Description: "The work entry has been removed."}
}
