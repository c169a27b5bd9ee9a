package ui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/domain"
)

func TestRenderTripContext(t *testing.T) {
	out := RenderTripContext(&domain.TripContext{
		Destination: "Patagonia",
		Activity:    "trekking",
	})

	require.Contains(t, out, "Patagonia")
	require.Contains(t, out, "trekking")
	require.Contains(t, out, "(not detected)")
}

func TestRenderItinerary(t *testing.T) {
	out := RenderItinerary([]domain.ItineraryDay{
		{Day: 1, Title: "Arrival", Activities: []string{"Check in", "Gear check"}},
		{Day: 2, Activities: []string{"Summit hike"}},
	})

	require.Contains(t, out, "Day 1: Arrival")
	require.Contains(t, out, "Gear check")
	require.Contains(t, out, "Day 2")
	require.Contains(t, out, "Summit hike")
}

func TestRenderItineraryEmpty(t *testing.T) {
	require.Equal(t, "No itinerary days found.", RenderItinerary(nil))
}
