package estate

import (
	"fmt"
	"strconv"
	"time"
)

// Record is the flat key-value form a listing persists as. It carries enough
// to rebuild the transaction without runtime object identity: kind, owner,
// price, marker world/x/y/z, plus variant extras.
type Record map[string]string

func baseRecord(kind, owner string, price float64, marker Location) Record {
	rec := Record{
		"kind":  kind,
		"price": trimFloat(price),
		"world": marker.World,
		"x":     itoa(marker.X),
		"y":     itoa(marker.Y),
		"z":     itoa(marker.Z),
	}
	if owner != "" {
		rec["owner"] = owner
	}
	return rec
}

func (rec Record) Marker() (Location, error) {
	x, errX := strconv.Atoi(rec["x"])
	y, errY := strconv.Atoi(rec["y"])
	z, errZ := strconv.Atoi(rec["z"])
	if rec["world"] == "" || errX != nil || errY != nil || errZ != nil {
		return Location{}, fmt.Errorf("record: bad marker location %q/%q/%q/%q",
			rec["world"], rec["x"], rec["y"], rec["z"])
	}
	return Location{World: rec["world"], X: x, Y: y, Z: z}, nil
}

// Decode rebuilds a transaction from its flat record.
func Decode(rec Record) (Transaction, error) {
	marker, err := rec.Marker()
	if err != nil {
		return nil, err
	}
	price, err := strconv.ParseFloat(rec["price"], 64)
	if err != nil || price < 0 {
		return nil, fmt.Errorf("record: bad price %q", rec["price"])
	}
	owner := rec["owner"]

	switch rec["kind"] {
	case KindSell:
		return NewSell(owner, price, marker), nil
	case KindRent:
		days, err := strconv.Atoi(rec["period_days"])
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("record: bad period_days %q", rec["period_days"])
		}
		r := NewRent(owner, price, days, marker)
		if rec["renter"] != "" {
			until, err := strconv.ParseInt(rec["rented_until"], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("record: bad rented_until %q", rec["rented_until"])
			}
			r.renter = rec["renter"]
			r.rentedUntil = time.Unix(until, 0).UTC()
		}
		return r, nil
	default:
		return nil, fmt.Errorf("record: unknown kind %q", rec["kind"])
	}
}

func itoa(n int) string     { return strconv.Itoa(n) }
func itoa64(n int64) string { return strconv.FormatInt(n, 10) }
