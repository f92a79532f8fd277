package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/passgage/passgage-go/internal/util"
	"github.com/passgage/passgage-go/passgage"
)

// Supported subcommands:
// - login:    Authenticate and store the session
// - logout:   Revoke and drop the session
// - profile:  Show the authenticated user's profile
// - scan:     Validate a QR payload
// - nfc:      Validate an NFC tag
// - branches: List nearby branches
// - entry:    Geofenced check-in at a branch
// - exit:     Geofenced check-out from a branch
// - work:     Start/stop remote work, show history
// - entrances: Show recent access events

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	client, err := newClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := dispatch(ctx, client, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newClient() (*passgage.Client, error) {
	baseURL := os.Getenv("PASSGAGE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home directory: %w", err)
	}

	var logger *slog.Logger
	if os.Getenv("PASSGAGE_DEBUG") != "" {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return passgage.New(passgage.Config{
		BaseURL:         baseURL,
		APIKey:          os.Getenv("PASSGAGE_API_KEY"),
		RememberSession: true,
		SessionStore:    passgage.NewFileSessionStore(filepath.Join(home, ".passgage", "session.json")),
		Logger:          logger,
		OnUnauthorized: func() {
			fmt.Fprintln(os.Stderr, "Session expired, please log in again.")
		},
	})
}

func dispatch(ctx context.Context, client *passgage.Client, command string, args []string) error {
	switch command {
	case "login":
		return runLogin(ctx, client, args)
	case "logout":
		return runLogout(ctx, client)
	case "profile":
		return runProfile(ctx, client)
	case "scan":
		return runScan(ctx, client, args, client.ValidateQR)
	case "nfc":
		return runScan(ctx, client, args, client.ValidateNFC)
	case "branches":
		return runBranches(ctx, client, args)
	case "entry":
		return runCheckIn(ctx, client, args, client.CheckInEntry)
	case "exit":
		return runCheckIn(ctx, client, args, client.CheckInExit)
	case "work":
		return runWork(ctx, client, args)
	case "entrances":
		return runEntrances(ctx, client, args)
	default:
		printUsage()

		return fmt.Errorf("unknown command: %s", command)
	}
}

func runLogin(ctx context.Context, client *passgage.Client, args []string) error {
	cmd := flag.NewFlagSet("login", flag.ExitOnError)
	email := cmd.String("email", "", "Account email")
	password := cmd.String("password", "", "Account password")
	_ = cmd.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("login requires -email and -password")
	}

	result := client.Login(ctx, *email, *password)
	if !result.Success {
		return fmt.Errorf("login failed: %s", result.Error)
	}

	fmt.Printf("Logged in as %s (%s)\n", result.Data.User.FullName, result.Data.User.Company.Name)
	fmt.Printf("Session valid for %s\n", util.FormatDuration(time.Until(result.Data.ExpiresAt)))

	return nil
}

func runLogout(ctx context.Context, client *passgage.Client) error {
	result := client.Logout(ctx)
	if !result.Success {
		return fmt.Errorf("logout failed: %s", result.Error)
	}

	fmt.Println("Logged out.")

	return nil
}

func runProfile(ctx context.Context, client *passgage.Client) error {
	result := client.Profile(ctx)
	if !result.Success {
		return fmt.Errorf("profile failed: %s", result.Error)
	}

	user := result.Data
	fmt.Printf("%s <%s>\n", user.FullName, user.Email)
	fmt.Printf("Company: %s\n", user.Company.Name)
	if user.JobTitle != "" {
		fmt.Printf("Title:   %s\n", user.JobTitle)
	}
	if user.GSM != "" {
		fmt.Printf("GSM:     %s\n", user.GSM)
	}

	return nil
}

type scanFunc func(ctx context.Context, code string, opts passgage.ScanOptions) passgage.ScanResult

func runScan(ctx context.Context, client *passgage.Client, args []string, fn scanFunc) error {
	cmd := flag.NewFlagSet("scan", flag.ExitOnError)
	code := cmd.String("code", "", "QR payload or NFC tag ID")
	lat := cmd.Float64("lat", 0, "Current latitude")
	lng := cmd.Float64("lng", 0, "Current longitude")
	_ = cmd.Parse(args)

	if *code == "" {
		return fmt.Errorf("scan requires -code")
	}

	opts := passgage.ScanOptions{}
	if *lat != 0 || *lng != 0 {
		opts.Latitude = lat
		opts.Longitude = lng
	}

	result := fn(ctx, *code, opts)
	if !result.Success {
		return fmt.Errorf("validation failed: %s", result.Error)
	}

	fmt.Printf("Recorded %s at %s via %s\n",
		result.Data.Entrance.Type, result.Data.Branch.Title, result.Data.Entrance.Source)

	return nil
}

func runBranches(ctx context.Context, client *passgage.Client, args []string) error {
	cmd := flag.NewFlagSet("branches", flag.ExitOnError)
	lat := cmd.Float64("lat", 0, "Current latitude")
	lng := cmd.Float64("lng", 0, "Current longitude")
	radius := cmd.Float64("radius", 0, "Search radius in meters (0 = server default)")
	_ = cmd.Parse(args)

	result := client.NearbyBranches(ctx, *lat, *lng, *radius)
	if !result.Success {
		return fmt.Errorf("search failed: %s", result.Error)
	}

	if len(result.Data) == 0 {
		fmt.Println("No branches in range.")

		return nil
	}

	for _, branch := range result.Data {
		if branch.DistanceM != nil {
			fmt.Printf("%-30s %8.0f m  %s\n", branch.Title, *branch.DistanceM, branch.ID)
		} else {
			fmt.Printf("%-30s           %s\n", branch.Title, branch.ID)
		}
	}

	return nil
}

type checkInFunc func(ctx context.Context, branchID string, latitude, longitude float64) passgage.CheckInResult

func runCheckIn(ctx context.Context, client *passgage.Client, args []string, fn checkInFunc) error {
	cmd := flag.NewFlagSet("checkin", flag.ExitOnError)
	branch := cmd.String("branch", "", "Branch ID")
	lat := cmd.Float64("lat", 0, "Current latitude")
	lng := cmd.Float64("lng", 0, "Current longitude")
	_ = cmd.Parse(args)

	if *branch == "" {
		return fmt.Errorf("check-in requires -branch")
	}

	result := fn(ctx, *branch, *lat, *lng)
	if !result.Success {
		return fmt.Errorf("check-in failed: %s", result.Error)
	}

	fmt.Printf("Recorded %s at %s\n", result.Data.Type, result.Data.Timestamp.Local().Format(time.Kitchen))

	return nil
}

func runWork(ctx context.Context, client *passgage.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("work requires a subcommand: start, stop or history")
	}

	cmd := flag.NewFlagSet("work", flag.ExitOnError)
	description := cmd.String("desc", "", "Optional description")
	limit := cmd.Int("limit", 0, "History entries to show (0 = server default)")
	_ = cmd.Parse(args[1:])

	switch args[0] {
	case "start":
		result := client.LogWorkEntry(ctx, *description)
		if !result.Success {
			return fmt.Errorf("work start failed: %s", result.Error)
		}
		fmt.Printf("Work started at %s\n", result.Data.Timestamp.Local().Format(time.Kitchen))
	case "stop":
		result := client.LogWorkExit(ctx, *description)
		if !result.Success {
			return fmt.Errorf("work stop failed: %s", result.Error)
		}
		fmt.Printf("Work stopped at %s\n", result.Data.Timestamp.Local().Format(time.Kitchen))
	case "history":
		result := client.WorkHistory(ctx, *limit)
		if !result.Success {
			return fmt.Errorf("work history failed: %s", result.Error)
		}
		printWorkHistory(result.Data)
	default:
		return fmt.Errorf("unknown work subcommand: %s", args[0])
	}

	return nil
}

// printWorkHistory pairs exits with the preceding entry to show session
// lengths. Records arrive newest first.
func printWorkHistory(records []passgage.WorkLogRecord) {
	if len(records) == 0 {
		fmt.Println("No work log records.")

		return
	}

	var openExit *passgage.WorkLogRecord
	for i := range records {
		record := records[i]
		stamp := record.Timestamp.Local().Format("2006-01-02 15:04")

		switch record.Type {
		case "exit":
			openExit = &record
			fmt.Printf("%s  stop   %s\n", stamp, record.Description)
		case "entry":
			line := fmt.Sprintf("%s  start  %s", stamp, record.Description)
			if openExit != nil {
				line += fmt.Sprintf("  (%s)", util.FormatDuration(openExit.Timestamp.Sub(record.Timestamp)))
				openExit = nil
			}
			fmt.Println(line)
		}
	}
}

func runEntrances(ctx context.Context, client *passgage.Client, args []string) error {
	cmd := flag.NewFlagSet("entrances", flag.ExitOnError)
	limit := cmd.Int("limit", 0, "Entries to show (0 = server default)")
	_ = cmd.Parse(args)

	result := client.AccessHistory(ctx, *limit)
	if !result.Success {
		return fmt.Errorf("entrance history failed: %s", result.Error)
	}

	if len(result.Data) == 0 {
		fmt.Println("No access events.")

		return nil
	}

	for _, event := range result.Data {
		stamp := event.Timestamp.Local().Format("2006-01-02 15:04")
		fmt.Printf("%s  %-5s  %-7s  branch %s\n", stamp, event.Type, event.Source, event.BranchID)
	}

	return nil
}

func printUsage() {
	fmt.Println("Usage: passctl <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  login     -email <email> -password <password>")
	fmt.Println("  logout")
	fmt.Println("  profile")
	fmt.Println("  scan      -code <qr-payload> [-lat <lat> -lng <lng>]")
	fmt.Println("  nfc       -code <tag-id> [-lat <lat> -lng <lng>]")
	fmt.Println("  branches  -lat <lat> -lng <lng> [-radius <meters>]")
	fmt.Println("  entry     -branch <id> -lat <lat> -lng <lng>")
	fmt.Println("  exit      -branch <id> -lat <lat> -lng <lng>")
	fmt.Println("  work      start|stop|history [-desc <text>] [-limit <n>]")
	fmt.Println("  entrances [-limit <n>]")
	fmt.Println()
	fmt.Println("Environment: PASSGAGE_URL, PASSGAGE_API_KEY, PASSGAGE_DEBUG")
}
