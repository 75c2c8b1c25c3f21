package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"strength-tracker/internal/client"
	"strength-tracker/internal/config"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// The terminal dashboard: logs in, opens the terminal view, and re-renders
// the strength blocks on every candle-synchronized refresh.
func main() {
	username := flag.String("user", "", "username to log in as")
	secret := flag.String("secret", "", "login secret")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found")
	}
	cfg := config.Load()

	if *username == "" || *secret == "" {
		fmt.Fprintln(os.Stderr, "usage: watch -user <name> -secret <secret>")
		os.Exit(2)
	}

	apiClient := client.New(cfg.APIBaseURL)
	profile, err := apiClient.Login(*username, *secret)
	if err != nil {
		logrus.WithError(err).Fatal("login failed")
	}

	session, err := client.NewSession(apiClient, profile)
	if err != nil {
		logrus.WithError(err).Fatal("no views available")
	}
	if err := session.SetView(client.ViewTerminal); err != nil {
		logrus.WithError(err).Fatal("terminal view not permitted")
	}
	session.OnUpdate = func() { render(session) }

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session.Start(ctx)
	defer session.Close()

	<-ctx.Done()
}

func render(session *client.Session) {
	payload, stale := session.Live()

	fmt.Println("========================================================")
	status := payload.Metadata.LastUpdate
	if stale {
		status += " (STALE)"
	}
	fmt.Printf("STRENGTH TRACKER [UTC-5: %s]\n\n", status)

	renderBlock("[ 1 HOUR ]", payload.Series.H1, payload.Scores.H1)
	renderBlock("[ 4 HOURS ]", payload.Series.H4, payload.Scores.H4)
	renderBlock("[ DAILY ]", payload.Series.Daily, payload.Scores.Daily)

	fmt.Println("--------------------------------------------------------")
	fmt.Println("[ DETECTED SETUPS ]")
	fmt.Printf("  1H ..... %s\n", payload.Setups.Setup1h)
	fmt.Printf("  4H ..... %s\n", payload.Setups.Setup4h)
	fmt.Printf("  DAILY .. %s\n\n", payload.Setups.SetupDaily)
	fmt.Println("> SYSTEM READY. WAITING NEXT TICK...")
}

func renderBlock(title string, series map[string]float64, scores map[string]int) {
	fmt.Println(title)
	if len(series) == 0 {
		fmt.Println("  waiting for data...")
		return
	}

	sorted := make([]string, 0, len(series))
	for ccy := range series {
		sorted = append(sorted, ccy)
	}
	sort.Slice(sorted, func(i, j int) bool { return series[sorted[i]] > series[sorted[j]] })

	for _, ccy := range sorted {
		score := scores[ccy]
		arrow := "→"
		if score > 0 {
			arrow = "↑"
		} else if score < 0 {
			arrow = "↓"
		}
		fmt.Printf("  %s: %7.3f | Score: %3d %s\n", ccy, series[ccy], score, arrow)
	}
	fmt.Println()
}
