package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"tripplanner/internal/domain"
	"tripplanner/internal/itinerary"
	"tripplanner/pkg/tripclient"
)

func summary(sel tripclient.Selection) string {
	return domain.TripSelection{
		Location: sel.Location,
		NoOfDays: domain.DayCount(sel.NoOfDays),
		Budget:   domain.Budget(sel.Budget),
		Travels:  domain.TravelGroup(sel.Travels),
	}.Summary()
}

func renderTrip(out io.Writer, trip *tripclient.Trip) error {
	fmt.Fprintf(out, "%s\n", summary(trip.UserSelection))
	fmt.Fprintf(out, "owner %s, created %s\n\n", trip.UserEmail, trip.CreatedAt.Format("2006-01-02 15:04"))
	return renderPlan(out, trip.TripData)
}

// renderPlan prints hotels and the day-by-day plan with each stop's
// distance from the first hotel.
func renderPlan(out io.Writer, raw json.RawMessage) error {
	plan, err := itinerary.Inspect(raw)
	if err != nil {
		return err
	}
	if plan.Unstructured {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, raw, "", "  "); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out, pretty.String())
		return err
	}
	plan.Annotate()

	if len(plan.Hotels) > 0 {
		fmt.Fprintln(out, "Hotels")
		for _, h := range plan.Hotels {
			line := "  - " + h.Name
			if h.Price != "" {
				line += " (" + h.Price + ")"
			}
			if h.Rating > 0 {
				line += fmt.Sprintf(" ★%.1f", h.Rating)
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, day := range plan.Days {
		header := fmt.Sprintf("Day %d", day.Day)
		if day.Theme != "" {
			header += ": " + day.Theme
		}
		fmt.Fprintln(tw, header)
		for _, stop := range day.Stops {
			distance := "-"
			if stop.DistanceKm != nil {
				distance = fmt.Sprintf("%.1f km", *stop.DistanceKm)
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", stop.PlaceName, distance, stop.TicketPricing)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d days, %d stops\n", len(plan.Days), plan.TotalStops())
	return nil
}

func renderList(out io.Writer, trips []tripclient.Trip) {
	if len(trips) == 0 {
		fmt.Fprintln(out, "no trips")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, t := range trips {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.CreatedAt.Format("2006-01-02"), summary(t.UserSelection))
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "%d trip(s)\n", len(trips))
}
