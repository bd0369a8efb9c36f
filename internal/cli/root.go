// Package cli implements the seatctl command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Domenick1991/seatbooking/internal/client"
	"github.com/Domenick1991/seatbooking/internal/tui"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// API is the subset of the HTTP client the commands use.
type API interface {
	ListFlights(ctx context.Context) ([]client.Flight, error)
	GetFlightByNumber(ctx context.Context, number string) (client.Flight, error)
	tui.Backend
}

type options struct {
	apiURL string
	newAPI func(baseURL string) API
}

// NewRootCommand builds seatctl. newAPI may be nil.
func NewRootCommand(newAPI func(baseURL string) API) *cobra.Command {
	opts := &options{newAPI: newAPI}
	if opts.newAPI == nil {
		opts.newAPI = func(baseURL string) API { return client.NewClient(baseURL, nil) }
	}

	root := &cobra.Command{
		Use:           "seatctl",
		Short:         "Seat maps and bookings from the terminal",
		Long:          `Browse flights, print seat maps and book several seats at once, all or nothing.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultURL := os.Getenv("SEATCTL_API")
	if defaultURL == "" {
		defaultURL = client.DefaultBaseURL
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api", defaultURL, "seatbooking API base URL")

	root.AddCommand(
		newFlightsCommand(opts),
		newSeatMapCommand(opts),
		newBookCommand(opts),
		newPickCommand(opts),
		newVersionCommand(),
	)
	return root
}

func Execute() {
	if err := NewRootCommand(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of seatctl",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "seatctl %s\n", Version)
		},
	}
}

// resolveFlight accepts a numeric flight id or a flight number.
func resolveFlight(ctx context.Context, api API, arg string) (int64, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil && id > 0 {
		return id, nil
	}
	flight, err := api.GetFlightByNumber(ctx, strings.ToUpper(arg))
	if err != nil {
		return 0, fmt.Errorf("flight %s: %w", arg, err)
	}
	return flight.ID, nil
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
