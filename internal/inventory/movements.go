package inventory

import (
	"errors"
	"fmt"
	"sort"

	"boutique/internal/core"
)

// ErrInsufficientStock is returned when an exit movement asks for more
// units than the matching depot holds at that point in time.
var ErrInsufficientStock = errors.New("insufficient stock")

// Lot is a partially consumed entry movement.
type Lot struct {
	EntryDate core.Date
	Remaining int64
	Price     core.Money
}

// Match pairs an exit against the entry lot it consumed. One exit may
// produce several matches when it spans lots.
type Match struct {
	Product     string
	Depot       string
	Quantity    int64
	Price       core.Money
	EntryDate   core.Date
	ExitDate    core.Date
	DaysInDepot int
}

// Position is the residual stock of one product in one depot after all
// movements are applied.
type Position struct {
	Product string
	Depot   string
	OnHand  int64
	Lots    []Lot
}

type key struct {
	product string
	depot   string
}

// Reconcile replays the movements in chronological order and matches
// each exit against the oldest open lots of the same product and depot.
// Movements must already be sorted by date then id, which is how the
// store returns them.
func Reconcile(movements []core.InventoryMovement) ([]Match, []Position, error) {
	lots := make(map[key][]Lot)
	var matches []Match

	for _, m := range movements {
		k := key{product: m.Product, depot: m.Depot}
		switch m.Direction {
		case core.EntryMovement:
			lots[k] = append(lots[k], Lot{
				EntryDate: m.Date,
				Remaining: m.Quantity,
				Price:     m.Price,
			})
		case core.ExitMovement:
			need := m.Quantity
			open := lots[k]
			for need > 0 && len(open) > 0 {
				lot := &open[0]
				take := need
				if take > lot.Remaining {
					take = lot.Remaining
				}
				matches = append(matches, Match{
					Product:     m.Product,
					Depot:       m.Depot,
					Quantity:    take,
					Price:       lot.Price,
					EntryDate:   lot.EntryDate,
					ExitDate:    m.Date,
					DaysInDepot: daysBetween(lot.EntryDate, m.Date),
				})
				lot.Remaining -= take
				need -= take
				if lot.Remaining == 0 {
					open = open[1:]
				}
			}
			lots[k] = open
			if need > 0 {
				return nil, nil, fmt.Errorf("%w: %s in %s on %s, short %d units",
					ErrInsufficientStock, m.Product, m.Depot, m.Date, need)
			}
		default:
			return nil, nil, fmt.Errorf("%w: %q", core.ErrInvalidMovement, m.Direction)
		}
	}

	positions := make([]Position, 0, len(lots))
	for k, open := range lots {
		var onHand int64
		for _, lot := range open {
			onHand += lot.Remaining
		}
		if onHand == 0 {
			continue
		}
		positions = append(positions, Position{
			Product: k.product,
			Depot:   k.depot,
			OnHand:  onHand,
			Lots:    open,
		})
	}
	sort.Slice(positions, func(i, j int) bool {
		if positions[i].Product != positions[j].Product {
			return positions[i].Product < positions[j].Product
		}
		return positions[i].Depot < positions[j].Depot
	})

	return matches, positions, nil
}

// AverageDaysInDepot is the quantity-weighted mean shelf time of the
// matched exits, zero when nothing matched.
func AverageDaysInDepot(matches []Match) float64 {
	var units, daySum int64
	for _, m := range matches {
		units += m.Quantity
		daySum += m.Quantity * int64(m.DaysInDepot)
	}
	if units == 0 {
		return 0
	}
	return float64(daySum) / float64(units)
}

func daysBetween(from, to core.Date) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}
