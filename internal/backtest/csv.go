package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

var capacityHeader = []string{
	"hour_utc",
	"hour_local",
	"interval",
	"weekday",
	"up_price",
	"down_price",
	"composite_price",
	"bid_kw",
	"gate",
	"revenue",
}

var activationHeader = []string{
	"time_utc",
	"time_local",
	"up_price",
	"down_price",
	"composite_price",
	"eligibility",
	"activation_price",
	"deviation_cost",
	"bid_kw",
	"run_length",
	"fraction",
	"revenue",
	"cost",
	"power_mw",
}

func WriteCapacityCSV(w io.Writer, rows []CapacityRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(capacityHeader); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{
			fmtTime(r.HourUTC),
			fmtTime(r.HourLocal),
			r.Interval,
			r.Weekday,
			fmtOpt(r.UpPrice),
			fmtOpt(r.DownPrice),
			fmtOpt(r.Composite),
			fmtFloat(r.BidKW),
			string(r.Gate),
			fmtOpt(r.Revenue),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteActivationCSV(w io.Writer, rows []ActivationRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(activationHeader); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{
			fmtTime(r.TimeUTC),
			fmtTime(r.TimeLocal),
			fmtOpt(r.UpPrice),
			fmtOpt(r.DownPrice),
			fmtOpt(r.Composite),
			string(r.Eligibility),
			fmtOpt(r.ActivationPrice),
			fmtOpt(r.DeviationCost),
			fmtFloat(r.BidKW),
			strconv.Itoa(r.RunLength),
			fmtFloat(r.Fraction),
			fmtFloat(r.Revenue),
			fmtFloat(r.Cost),
			fmtFloat(r.PowerMW),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLedgerFiles writes both ledgers of res to the given paths.
func WriteLedgerFiles(res *Result, capacityPath, activationPath string) error {
	if err := writeFile(capacityPath, func(w io.Writer) error { return WriteCapacityCSV(w, res.Capacity) }); err != nil {
		return err
	}
	return writeFile(activationPath, func(w io.Writer) error { return WriteActivationCSV(w, res.Activation) })
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

// fmtOpt renders a missing value as an empty cell.
func fmtOpt(x *float64) string {
	if x == nil {
		return ""
	}
	return fmtFloat(*x)
}
