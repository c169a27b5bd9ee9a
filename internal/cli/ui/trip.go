package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain"
)

// RenderTripContext renders the extracted trip fields, one line per field.
// Fields the extractor could not determine render as "(not detected)".
func RenderTripContext(tc *domain.TripContext) string {
	var b strings.Builder
	b.WriteString(formatKeyValue("Destination", orNotDetected(tc.Destination)))
	b.WriteString("\n")
	b.WriteString(formatKeyValue("Dates", orNotDetected(tc.Dates)))
	b.WriteString("\n")
	b.WriteString(formatKeyValue("Activity", orNotDetected(tc.Activity)))
	return b.String()
}

func orNotDetected(s string) string {
	if s == "" {
		return "(not detected)"
	}
	return s
}

// RenderItinerary renders a day-by-day itinerary as a tree, one node per
// day with its activities as children.
func RenderItinerary(days []domain.ItineraryDay) string {
	if len(days) == 0 {
		return "No itinerary days found."
	}

	var output strings.Builder
	for i, day := range days {
		label := fmt.Sprintf("Day %d", day.Day)
		if day.Title != "" {
			label += ": " + day.Title
		}
		node := tree.New().Root(productStyle.Render(label))
		for _, activity := range day.Activities {
			node.Child(valueStyle.Render(activity))
		}
		output.WriteString(node.String())
		if i < len(days)-1 {
			output.WriteString("\n")
		}
	}
	return output.String()
}
