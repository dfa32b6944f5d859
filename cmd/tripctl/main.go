// Command tripctl talks to the trip planner API from a terminal.
//
//	tripctl [-api URL] [-locale id] <command> [flags]
//
// Commands: generate, create, get, list, delete, export, user, stats, health.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tripplanner/pkg/tripclient"
	"tripplanner/pkg/zip"
)

const usage = `usage: tripctl [-api URL] [-token T] [-locale L] <command> [flags]

commands:
  generate -location L -days N -budget B -travels T   generate a plan without saving
  create   -email E -location L -days N -budget B -travels T
  get      <trip-id>                                  show a trip with distances
  list     <email>                                    list a user's trips
  delete   <trip-id>
  export   <trip-id> [-o file.zip]                    bundle trip JSON and text plan
  user     -email E -name N [-picture URL]            create or refresh a user
  stats    <email>
  health   [-ai]
`

func main() {
	_ = godotenv.Load()

	global := flag.NewFlagSet("tripctl", flag.ExitOnError)
	apiURL := global.String("api", envOr("TRIPCTL_API_URL", tripclient.DefaultBaseURL), "API base URL")
	token := global.String("token", os.Getenv("TRIPCTL_TOKEN"), "bearer token")
	locale := global.String("locale", "", "language for generated text, e.g. id")
	timeout := global.Duration("timeout", 2*time.Minute, "overall command timeout")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = global.Parse(os.Args[1:])

	if global.NArg() == 0 {
		global.Usage()
		os.Exit(2)
	}

	client := tripclient.New(*apiURL, tripclient.WithToken(*token), tripclient.WithLocale(*locale))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, client, global.Arg(0), global.Args()[1:], os.Stdout); err != nil {
		cancel()
		exitWithError(err)
	}
}

func run(ctx context.Context, c *tripclient.Client, command string, args []string, out io.Writer) error {
	switch command {
	case "generate":
		fs := flag.NewFlagSet("generate", flag.ContinueOnError)
		sel := selectionFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		data, err := c.GenerateTrip(ctx, *sel)
		if err != nil {
			return err
		}
		return renderPlan(out, data)

	case "create":
		fs := flag.NewFlagSet("create", flag.ContinueOnError)
		email := fs.String("email", "", "owner email")
		sel := selectionFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		trip, err := c.CreateTrip(ctx, tripclient.CreateTripRequest{UserSelection: *sel, UserEmail: *email})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "created trip %s\n", trip.ID)
		return renderTrip(out, trip)

	case "get":
		id, err := oneArg(command, args)
		if err != nil {
			return err
		}
		trip, err := c.Trip(ctx, id)
		if err != nil {
			return err
		}
		return renderTrip(out, trip)

	case "list":
		email, err := oneArg(command, args)
		if err != nil {
			return err
		}
		trips, err := c.UserTrips(ctx, email)
		if err != nil {
			return err
		}
		renderList(out, trips)
		return nil

	case "delete":
		id, err := oneArg(command, args)
		if err != nil {
			return err
		}
		if err := c.DeleteTrip(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted trip %s\n", id)
		return nil

	case "export":
		fs := flag.NewFlagSet("export", flag.ContinueOnError)
		output := fs.String("o", "", "output file (default trip-<id>.zip)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		id, err := oneArg(command, fs.Args())
		if err != nil {
			return err
		}
		trip, err := c.Trip(ctx, id)
		if err != nil {
			return err
		}
		path := *output
		if path == "" {
			path = "trip-" + id + ".zip"
		}
		if err := exportTrip(path, trip); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", path)
		return nil

	case "user":
		fs := flag.NewFlagSet("user", flag.ContinueOnError)
		var req tripclient.UserRequest
		fs.StringVar(&req.Email, "email", "", "user email")
		fs.StringVar(&req.Name, "name", "", "display name")
		fs.StringVar(&req.Picture, "picture", "", "avatar URL")
		fs.StringVar(&req.Provider, "provider", "", "identity provider (default google)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		user, err := c.UpsertUser(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s <%s> trips=%d last login %s\n", user.Name, user.Email, user.TripCount, user.LastLogin.Format(time.RFC822))
		return nil

	case "stats":
		email, err := oneArg(command, args)
		if err != nil {
			return err
		}
		stats, err := c.UserStats(ctx, email)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s <%s>\n  trips         %d\n  member since  %s\n  last login    %s\n",
			stats.Name, stats.Email, stats.TripCount,
			stats.CreatedAt.Format("2006-01-02"), stats.LastLogin.Format(time.RFC822))
		return nil

	case "health":
		fs := flag.NewFlagSet("health", flag.ContinueOnError)
		ai := fs.Bool("ai", false, "check the AI service instead of the API")
		if err := fs.Parse(args); err != nil {
			return err
		}
		msg, err := c.Health(ctx, *ai)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, msg)
		return nil
	}
	return fmt.Errorf("unknown command %q\n\n%s", command, usage)
}

func selectionFlags(fs *flag.FlagSet) *tripclient.Selection {
	sel := &tripclient.Selection{}
	fs.StringVar(&sel.Location, "location", "", "destination")
	fs.IntVar(&sel.NoOfDays, "days", 3, "number of days (1-30)")
	fs.StringVar(&sel.Budget, "budget", "Moderate", "Cheap, Moderate or Expensive")
	fs.StringVar(&sel.Travels, "travels", "Solo", "Solo, Couple, Family or Friends")
	return sel
}

func oneArg(command string, args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("%s takes exactly one argument", command)
	}
	return strings.TrimSpace(args[0]), nil
}

func exportTrip(path string, trip *tripclient.Trip) error {
	tripJSON, err := json.MarshalIndent(trip, "", "  ")
	if err != nil {
		return err
	}
	var text strings.Builder
	if err := renderTrip(&text, trip); err != nil {
		return err
	}
	modified := trip.UpdatedAt
	if modified.IsZero() {
		modified = time.Now()
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	werr := zip.Write(f, []zip.File{
		{Name: "trip.json", Modified: modified, Data: tripJSON},
		{Name: "itinerary.txt", Modified: modified, Data: []byte(text.String())},
	})
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return werr
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func exitWithError(err error) {
	var apiErr *tripclient.Error
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		fmt.Fprintln(os.Stderr, apiErr.Error())
		for _, f := range apiErr.Fields {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", f.Field, f.Message)
		}
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
