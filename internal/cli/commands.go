package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/seatmap"
	"github.com/Domenick1991/seatbooking/internal/selection"
	"github.com/Domenick1991/seatbooking/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newFlightsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "flights",
		Short: "List flights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flights, err := opts.newAPI(opts.apiURL).ListFlights(cmd.Context())
			if err != nil {
				return err
			}
			renderFlights(out(cmd), flights)
			return nil
		},
	}
}

func newSeatMapCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seatmap <flight>",
		Short: "Print the seat map of a flight",
		Long:  `Print the seat map of a flight given by id or flight number.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := opts.newAPI(opts.apiURL)
			flightID, err := resolveFlight(cmd.Context(), api, args[0])
			if err != nil {
				return err
			}
			grid, err := api.SeatMap(cmd.Context(), flightID)
			if err != nil {
				return err
			}
			renderSeatMap(out(cmd), grid)
			return nil
		},
	}
}

func newBookCommand(opts *options) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "book <flight> <seat>...",
		Short: "Book seats all or nothing",
		Long: `Book every given seat or none of them. Seats are seat ids or row:col
coordinates of the printed seat map.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			api := opts.newAPI(opts.apiURL)
			flightID, err := resolveFlight(ctx, api, args[0])
			if err != nil {
				return err
			}
			grid, err := api.SeatMap(ctx, flightID)
			if err != nil {
				return err
			}
			seatIDs, err := selectSeats(grid, args[1:])
			if err != nil {
				return err
			}
			if key == "" {
				key = uuid.NewString()
			}

			result, err := api.CommitBooking(ctx, flightID, seatIDs, key)
			if err != nil {
				return err
			}
			renderResult(out(cmd), result)
			if !result.Succeeded() {
				return fmt.Errorf("%w: nothing was booked", domain.ErrConflict)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "idempotency key; a random one is used when empty")
	return cmd
}

func newPickCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pick <flight>",
		Short: "Pick seats interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := opts.newAPI(opts.apiURL)
			flightID, err := resolveFlight(cmd.Context(), api, args[0])
			if err != nil {
				return err
			}
			p := tea.NewProgram(tui.New(api, flightID), tea.WithContext(cmd.Context()), tea.WithAltScreen())
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(tui.Model); ok && m.LastResult() != nil {
				renderResult(out(cmd), m.LastResult())
			}
			return nil
		},
	}
}

// selectSeats resolves arguments against the seat map and checks them the
// same way the interactive picker does.
func selectSeats(grid *seatmap.Grid, args []string) ([]string, error) {
	set := selection.New(grid.FlightID, grid)
	for _, arg := range args {
		seatID, err := seatIDFor(grid, arg)
		if err != nil {
			return nil, err
		}
		if err := set.Add(seatID); err != nil {
			return nil, err
		}
	}
	return set.IDs(), nil
}

func seatIDFor(grid *seatmap.Grid, arg string) (string, error) {
	rowText, colText, ok := strings.Cut(arg, ":")
	if !ok {
		return arg, nil
	}
	row, rowErr := strconv.Atoi(rowText)
	col, colErr := strconv.Atoi(colText)
	if err := errors.Join(rowErr, colErr); err != nil {
		return "", fmt.Errorf("%w: seat %q: %v", domain.ErrInvalidSelection, arg, err)
	}
	cell, found := grid.CellAt(row, col)
	if !found || cell.Empty() {
		return "", fmt.Errorf("%w: no seat at %s", domain.ErrInvalidSelection, arg)
	}
	return cell.SeatID, nil
}
