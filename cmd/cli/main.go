// Command pamoja is a CLI client for the Pamoja donation platform.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/amolo254/pamoja/internal/client/api"
	"github.com/amolo254/pamoja/internal/client/session"
	"github.com/amolo254/pamoja/internal/client/store"
	"github.com/amolo254/pamoja/internal/client/tracker"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, `pamoja CLI
Usage:
  pamoja [-addr URL] [-v] <cmd> [args]

Commands:
  version
  register      -email <email> -p <password> -role donor|charity
  login         -email <email> -p <password>
  logout
  whoami
  charities
  charity       -id <uuid>
  donate        -charity <uuid> -amount <ksh> -phone <07XXXXXXXX> [-m msg] [-anon]
  status        -id <uuid>
  mine                                         (my donations)
  apply         -name <name> [-desc text]      (charity application)
  application                                  (my application status)
  applications                                 (admin: pending)
  approve       -id <uuid>                     (admin)
  reject        -id <uuid>                     (admin)
  stats                                        (admin)
`)
	os.Exit(2)
}

func fail(err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		fmt.Fprintf(os.Stderr, "error: %s (http %d)\n", apiErr.Message, apiErr.Status)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// main dispatches subcommands over a restored session.
func main() {
	// global flags
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}

	tokens := store.NewFile()
	client := api.New(*addr, tokens, logger)
	sess := session.NewManager(client, tokens, logger)
	client.OnAuthExpired(sess.HandleAuthExpired)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {

	case "version":
		fmt.Printf("pamoja %s (%s)\n", version, buildDate)

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		email := fs.String("email", "", "email")
		p := fs.String("p", "", "password")
		role := fs.String("role", "donor", "donor|charity")
		_ = fs.Parse(flag.Args()[1:])

		u, err := sess.Register(ctx, *email, *p, *role)
		if err != nil {
			fail(err)
		}
		fmt.Printf("registered %s (%s), landing: %s\n", u.Email, u.Role, session.RedirectPath(u.Role))

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "email")
		p := fs.String("p", "", "password")
		_ = fs.Parse(flag.Args()[1:])

		u, err := sess.Login(ctx, *email, *p)
		if err != nil {
			if reason := sess.Err(); reason != "" {
				fmt.Fprintln(os.Stderr, reason)
				os.Exit(1)
			}
			fail(err)
		}
		fmt.Printf("ok, landing: %s\n", session.RedirectPath(u.Role))

	case "logout":
		sess.Logout()
		fmt.Println("ok")

	case "whoami":
		st := sess.Restore(ctx)
		if st != session.StatusAuthenticated {
			if sess.Expired() {
				fmt.Fprintln(os.Stderr, "session expired, login again")
			} else {
				fmt.Fprintln(os.Stderr, "not logged in")
			}
			os.Exit(1)
		}
		u, _ := sess.User()
		printJSON(u)

	case "charities":
		cs, err := client.Charities(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(cs)

	case "charity":
		fs := flag.NewFlagSet("charity", flag.ExitOnError)
		id := fs.String("id", "", "charity id")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		c, err := client.Charity(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(c)

	case "donate":
		cmdDonate(flag.Args()[1:], client, sess)

	case "status":
		fs := flag.NewFlagSet("status", flag.ExitOnError)
		id := fs.String("id", "", "donation id")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		requireAuth(ctx, sess)
		st, err := client.DonationStatus(ctx, *id)
		if err != nil {
			fail(err)
		}
		printJSON(st)

	case "mine":
		requireAuth(ctx, sess)
		ds, err := client.MyDonations(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(ds)

	case "apply":
		fs := flag.NewFlagSet("apply", flag.ExitOnError)
		name := fs.String("name", "", "charity name")
		desc := fs.String("desc", "", "description")
		_ = fs.Parse(flag.Args()[1:])
		requireAuth(ctx, sess)
		c, err := client.Apply(ctx, *name, *desc)
		if err != nil {
			fail(err)
		}
		printJSON(c)

	case "application":
		requireAuth(ctx, sess)
		c, err := client.OwnApplication(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(c)

	case "applications":
		requireAuth(ctx, sess)
		cs, err := client.PendingApplications(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(cs)

	case "approve", "reject":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "application id")
		_ = fs.Parse(flag.Args()[1:])
		if *id == "" {
			fmt.Fprintln(os.Stderr, "need -id")
			os.Exit(1)
		}
		requireAuth(ctx, sess)
		if err := client.ReviewApplication(ctx, *id, cmd == "approve"); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "stats":
		requireAuth(ctx, sess)
		st, err := client.AdminStats(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(st)

	default:
		usage()
	}
}

// requireAuth restores the session and exits when no user is signed in.
func requireAuth(ctx context.Context, sess *session.Manager) {
	if sess.Restore(ctx) != session.StatusAuthenticated {
		if sess.Expired() {
			fmt.Fprintln(os.Stderr, "session expired, login again")
		} else {
			fmt.Fprintln(os.Stderr, "login required")
		}
		os.Exit(1)
	}
}

// cmdDonate initiates a donation and follows it to an outcome, or until
// interrupted. Ctrl-C stops the tracker cleanly; the donation keeps
// settling server-side and can be checked later with `pamoja status`.
func cmdDonate(args []string, client *api.Client, sess *session.Manager) {
	fs := flag.NewFlagSet("donate", flag.ExitOnError)
	charityID := fs.String("charity", "", "charity id")
	amount := fs.Int64("amount", 0, "amount (KSh)")
	phone := fs.String("phone", "", "M-Pesa phone number")
	msg := fs.String("m", "", "message")
	anon := fs.Bool("anon", false, "donate anonymously")
	_ = fs.Parse(args)
	if *charityID == "" || *amount <= 0 || *phone == "" {
		fmt.Fprintln(os.Stderr, "need -charity, -amount and -phone")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	requireAuth(ctx, sess)

	ack, err := client.InitiateDonation(ctx, api.InitiateDonationRequest{
		CharityID:   *charityID,
		Amount:      *amount,
		PhoneNumber: *phone,
		Message:     *msg,
		Anonymous:   *anon,
	})
	if err != nil {
		fail(err)
	}
	fmt.Println(ack.Message)

	tr := tracker.Start(client, ack.Donation.ID, tracker.WithOnChange(func(s tracker.Snapshot) {
		if s.State == tracker.StatePending {
			fmt.Printf("waiting for confirmation... (check %d)\n", s.Attempts)
		}
	}))
	defer tr.Stop()

	select {
	case <-tr.Done():
	case <-ctx.Done():
		tr.Stop()
		<-tr.Done()
	}

	switch snap := tr.Snapshot(); snap.State {
	case tracker.StateSucceeded:
		fmt.Printf("donation confirmed, receipt %s\n", snap.Receipt)
	case tracker.StateFailed:
		fmt.Fprintln(os.Stderr, "donation failed (declined or timed out on the phone)")
		os.Exit(1)
	default:
		fmt.Printf("still pending; check later with: pamoja status -id %s\n", ack.Donation.ID)
	}
}
