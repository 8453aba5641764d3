package app

import (
	"math"

	"github.com/shopspring/decimal"

	"crypto-screener/internal/indicator"
	"crypto-screener/internal/snapshot"
	"crypto-screener/internal/storage"
)

func nullDecimalToFloat(v decimal.NullDecimal) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Decimal.InexactFloat64()
}

func nullDecimalToPtr(v decimal.NullDecimal) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Decimal.InexactFloat64()
	return &f
}

func ptrToNullDecimal(v *float64) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(*v), Valid: true}
}

func storageBarsToSeries(bars []storage.PriceBar) (*indicator.Series, error) {
	converted := make([]indicator.Bar, len(bars))
	for i, bar := range bars {
		converted[i] = indicator.Bar{
			Time:   bar.Time,
			Open:   nullDecimalToFloat(bar.Open),
			High:   nullDecimalToFloat(bar.High),
			Low:    nullDecimalToFloat(bar.Low),
			Close:  bar.Close.InexactFloat64(),
			Volume: nullDecimalToFloat(bar.Volume),
		}
	}
	return indicator.NewSeries(converted)
}

func recordsToSeries(records []snapshot.Record) (*indicator.Series, error) {
	ptrOrNaN := func(v *float64) float64 {
		if v == nil {
			return math.NaN()
		}
		return *v
	}

	converted := make([]indicator.Bar, len(records))
	for i, rec := range records {
		converted[i] = indicator.Bar{
			Time:   rec.Timestamp,
			Open:   ptrOrNaN(rec.Open),
			High:   ptrOrNaN(rec.High),
			Low:    ptrOrNaN(rec.Low),
			Close:  rec.Close,
			Volume: ptrOrNaN(rec.Volume),
		}
	}
	return indicator.NewSeries(converted)
}

func storageBarsToRecords(bars []storage.PriceBar) []snapshot.Record {
	records := make([]snapshot.Record, len(bars))
	for i, bar := range bars {
		records[i] = snapshot.Record{
			Timestamp: bar.Time,
			Open:      nullDecimalToPtr(bar.Open),
			High:      nullDecimalToPtr(bar.High),
			Low:       nullDecimalToPtr(bar.Low),
			Close:     bar.Close.InexactFloat64(),
			Volume:    nullDecimalToPtr(bar.Volume),
		}
	}
	return records
}

func recordsToStorageBars(records []snapshot.Record) []storage.PriceBar {
	bars := make([]storage.PriceBar, len(records))
	for i, rec := range records {
		bars[i] = storage.PriceBar{
			Time:   rec.Timestamp,
			Open:   ptrToNullDecimal(rec.Open),
			High:   ptrToNullDecimal(rec.High),
			Low:    ptrToNullDecimal(rec.Low),
			Close:  decimal.NewFromFloat(rec.Close),
			Volume: ptrToNullDecimal(rec.Volume),
		}
	}
	return bars
}

// frameToRecords widens a pipeline result onto its source series: one record
// per bar, indicator columns inlined, undefined values carried as nil.
func frameToRecords(series *indicator.Series, frame *indicator.Frame) []snapshot.Record {
	records := make([]snapshot.Record, len(series.Bars))
	for i, bar := range series.Bars {
		indicators := make(map[string]*float64, len(frame.Names))
		for _, name := range frame.Names {
			value := frame.Columns[name][i]
			if math.IsNaN(value) {
				indicators[name] = nil
				continue
			}
			v := value
			indicators[name] = &v
		}

		floatOrNil := func(v float64) *float64 {
			if math.IsNaN(v) {
				return nil
			}
			return &v
		}
		records[i] = snapshot.Record{
			Timestamp:  bar.Time,
			Open:       floatOrNil(bar.Open),
			High:       floatOrNil(bar.High),
			Low:        floatOrNil(bar.Low),
			Close:      bar.Close,
			Volume:     floatOrNil(bar.Volume),
			Indicators: indicators,
		}
	}
	return records
}

func frameToIndicatorRows(frame *indicator.Frame) []storage.IndicatorRow {
	observations := frame.Rows()
	rows := make([]storage.IndicatorRow, len(observations))
	for i, obs := range observations {
		rows[i] = storage.IndicatorRow{Time: obs.Time, Name: obs.Name, Value: obs.Value}
	}
	return rows
}
