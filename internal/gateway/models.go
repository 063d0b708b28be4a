package gateway

import (
	"encoding/json"
	"time"

	"indicatorworker/internal/domain"

	"gorm.io/datatypes"
)

// indicatorConfigRow is the GORM row shape for indicator_config: the
// declarative work list an operator edits, read-only to the core.
type indicatorConfigRow struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	Symbol    string         `gorm:"column:symbol;size:32;not null;uniqueIndex:uq_indicator_config"`
	Interval  string         `gorm:"column:interval;size:16;not null;uniqueIndex:uq_indicator_config"`
	Kind      string         `gorm:"column:indicator_type;size:16;not null"`
	Name      string         `gorm:"column:indicator_name;size:32;not null;uniqueIndex:uq_indicator_config"`
	Params    datatypes.JSON `gorm:"column:parameters;type:jsonb;not null;default:'{}';uniqueIndex:uq_indicator_config"`
	Enabled   bool           `gorm:"column:enabled;not null;default:true;index"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (indicatorConfigRow) TableName() string { return "indicator_config" }

func (r indicatorConfigRow) toDomain() (domain.IndicatorConfig, error) {
	params, err := decodeParams(r.Params)
	if err != nil {
		return domain.IndicatorConfig{}, err
	}
	return domain.IndicatorConfig{
		ID:        r.ID,
		Symbol:    r.Symbol,
		Interval:  r.Interval,
		Kind:      domain.IndicatorKind(r.Kind),
		Name:      r.Name,
		Params:    params,
		Enabled:   r.Enabled,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

// calculatedIndicatorRow is the GORM row shape for calculated_indicators,
// the sink. Uniqueness spans (symbol, interval, name, parameters, time) —
// time is included in the key by design (spec.md §4.2) so the table stays
// compatible with a time-series hypertable conversion, which forbids
// unique indexes that exclude the partition column.
type calculatedIndicatorRow struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	Symbol    string         `gorm:"column:symbol;size:32;not null;uniqueIndex:uq_calculated_indicator"`
	Interval  string         `gorm:"column:interval;size:16;not null;uniqueIndex:uq_calculated_indicator"`
	Kind      string         `gorm:"column:indicator_type;size:16;not null"`
	Name      string         `gorm:"column:indicator_name;size:32;not null;uniqueIndex:uq_calculated_indicator"`
	Params    datatypes.JSON `gorm:"column:parameters;type:jsonb;not null;default:'{}';uniqueIndex:uq_calculated_indicator"`
	Time      time.Time      `gorm:"column:time;not null;uniqueIndex:uq_calculated_indicator;index:idx_calculated_indicator_time"`
	Value     datatypes.JSON `gorm:"column:value;type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"column:created_at"`
}

func (calculatedIndicatorRow) TableName() string { return "calculated_indicators" }

func newCalculatedIndicatorRow(p domain.CalculatedIndicatorPoint) (calculatedIndicatorRow, error) {
	params, err := encodeParams(p.Params)
	if err != nil {
		return calculatedIndicatorRow{}, err
	}
	value, err := json.Marshal(p.Value)
	if err != nil {
		return calculatedIndicatorRow{}, err
	}
	return calculatedIndicatorRow{
		Symbol:   p.Symbol,
		Interval: p.Interval,
		Kind:     string(p.Kind),
		Name:     p.Name,
		Params:   params,
		Time:     p.Time,
		Value:    datatypes.JSON(value),
	}, nil
}

func (r calculatedIndicatorRow) toPoint() (domain.CalculatedIndicatorPoint, error) {
	params, err := decodeParams(r.Params)
	if err != nil {
		return domain.CalculatedIndicatorPoint{}, err
	}
	var value domain.IndicatorValue
	if len(r.Value) > 0 {
		var record map[string]any
		if err := json.Unmarshal(r.Value, &record); err == nil {
			value = domain.RecordValue(record)
		} else {
			var scalar float64
			if err := json.Unmarshal(r.Value, &scalar); err != nil {
				return domain.CalculatedIndicatorPoint{}, err
			}
			value = domain.ScalarValue(scalar)
		}
	}
	return domain.CalculatedIndicatorPoint{
		Symbol:   r.Symbol,
		Interval: r.Interval,
		Kind:     domain.IndicatorKind(r.Kind),
		Name:     r.Name,
		Params:   params,
		Time:     r.Time,
		Value:    value,
	}, nil
}

func decodeParams(raw datatypes.JSON) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// externalCandleRow maps to binance_candles, a table owned and populated by
// an upstream ingestion pipeline outside this worker's scope (spec.md §1
// Non-goals: no ingestion). The gateway only ever reads it.
type externalCandleRow struct {
	Symbol    string    `gorm:"column:symbol"`
	Interval  string    `gorm:"column:interval"`
	OpenTime  time.Time `gorm:"column:open_time"`
	Open      float64   `gorm:"column:open"`
	High      float64   `gorm:"column:high"`
	Low       float64   `gorm:"column:low"`
	Close     float64   `gorm:"column:close"`
	Volume    float64   `gorm:"column:volume"`
	CloseTime time.Time `gorm:"column:close_time"`
}

func (externalCandleRow) TableName() string { return "binance_candles" }

func (r externalCandleRow) toDomain() domain.Candle {
	return domain.Candle{
		Symbol:    r.Symbol,
		Interval:  r.Interval,
		OpenTime:  r.OpenTime,
		Open:      r.Open,
		High:      r.High,
		Low:       r.Low,
		Close:     r.Close,
		Volume:    r.Volume,
		CloseTime: r.CloseTime,
	}
}

func encodeParams(m map[string]any) (datatypes.JSON, error) {
	if m == nil {
		m = map[string]any{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
