package analytics

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/kominz1028-maker/polar-plant-dashboard/internal/config"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/models"
)

// ErrUnknownMetric is returned when a requested column does not map to a
// stored measurement.
var ErrUnknownMetric = errors.New("unknown metric")

// growthColumns maps dataset headers to their storage columns. Queries
// only ever interpolate the mapped value, never caller input.
var growthColumns = map[string]string{
	models.GrowthColLeafCount:   "leaf_count",
	models.GrowthColShootLength: "shoot_length",
	models.GrowthColRootLength:  "root_length",
	models.GrowthColFreshWeight: "fresh_weight",
}

var envColumns = map[string]string{
	models.EnvColTemperature: "temperature",
	models.EnvColHumidity:    "humidity",
	models.EnvColPH:          "ph",
	models.EnvColEC:          "ec",
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// SchoolMeans computes per-sensor averages for each configured school.
// Schools with no readings still appear, with nil means.
func (s *Store) SchoolMeans(schools []config.School) ([]models.SchoolMeans, error) {
	const q = `SELECT AVG(temperature), AVG(humidity), AVG(ph), AVG(ec)
		FROM env_readings WHERE school = ?`

	out := make([]models.SchoolMeans, 0, len(schools))
	for _, school := range schools {
		var temp, hum, ph, ec sql.NullFloat64
		if err := s.db.QueryRow(q, school.Name).Scan(&temp, &hum, &ph, &ec); err != nil {
			return nil, fmt.Errorf("averaging %s readings: %w", school.Name, err)
		}
		out = append(out, models.SchoolMeans{
			School:      school.Name,
			TargetEC:    school.TargetEC,
			Temperature: nullable(temp),
			Humidity:    nullable(hum),
			PH:          nullable(ph),
			EC:          nullable(ec),
		})
	}
	return out, nil
}

// Overview computes the headline numbers for the landing tab.
func (s *Store) Overview() (*models.OverviewStats, error) {
	stats := &models.OverviewStats{}

	var temp, hum sql.NullFloat64
	err := s.db.QueryRow(
		`SELECT COUNT(*), AVG(temperature), AVG(humidity) FROM env_readings`,
	).Scan(&stats.TotalMeasurements, &temp, &hum)
	if err != nil {
		return nil, fmt.Errorf("summarising env readings: %w", err)
	}
	stats.AvgTemperature = nullable(temp)
	stats.AvgHumidity = nullable(hum)

	err = s.db.QueryRow(`SELECT COUNT(*) FROM growth_records`).Scan(&stats.TotalIndividuals)
	if err != nil {
		return nil, fmt.Errorf("counting growth records: %w", err)
	}

	optimal, err := s.OptimalEC()
	if err != nil {
		return nil, err
	}
	if optimal != nil {
		stats.OptimalEC = &optimal.TargetEC
	}
	return stats, nil
}

// GrowthStats summarises one growth metric, identified by its dataset
// header.
func (s *Store) GrowthStats(column string) (*models.StatBlock, error) {
	col, ok := growthColumns[column]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, column)
	}

	q := fmt.Sprintf(
		`SELECT COUNT(%[1]s), AVG(%[1]s), MIN(%[1]s), MAX(%[1]s) FROM growth_records`, col)

	block := &models.StatBlock{Column: column}
	var mean, min, max sql.NullFloat64
	if err := s.db.QueryRow(q).Scan(&block.Count, &mean, &min, &max); err != nil {
		return nil, fmt.Errorf("summarising %s: %w", column, err)
	}
	block.Mean = nullable(mean)
	block.Min = nullable(min)
	block.Max = nullable(max)
	return block, nil
}

// GrowthSummary summarises every growth metric.
func (s *Store) GrowthSummary() ([]models.StatBlock, error) {
	out := make([]models.StatBlock, 0, len(models.GrowthMetricColumns))
	for _, column := range models.GrowthMetricColumns {
		block, err := s.GrowthStats(column)
		if err != nil {
			return nil, err
		}
		out = append(out, *block)
	}
	return out, nil
}

// Histogram buckets one growth metric into equal-width bins. The top
// edge is inclusive so the maximum lands in the last bucket.
func (s *Store) Histogram(column string, bins int) ([]models.HistogramBucket, error) {
	col, ok := growthColumns[column]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, column)
	}
	if bins <= 0 {
		bins = 15
	}

	var min, max sql.NullFloat64
	rangeQ := fmt.Sprintf(`SELECT MIN(%[1]s), MAX(%[1]s) FROM growth_records`, col)
	if err := s.db.QueryRow(rangeQ).Scan(&min, &max); err != nil {
		return nil, fmt.Errorf("ranging %s: %w", column, err)
	}
	if !min.Valid || !max.Valid {
		return nil, nil
	}

	width := (max.Float64 - min.Float64) / float64(bins)
	if width == 0 {
		// All values identical: a single bucket holds everything.
		var count int
		countQ := fmt.Sprintf(`SELECT COUNT(%s) FROM growth_records`, col)
		if err := s.db.QueryRow(countQ).Scan(&count); err != nil {
			return nil, fmt.Errorf("counting %s: %w", column, err)
		}
		return []models.HistogramBucket{{Low: min.Float64, High: max.Float64, Count: count}}, nil
	}

	q := fmt.Sprintf(`SELECT LEAST(CAST(FLOOR((%[1]s - ?) / ?) AS INTEGER), ?) AS bucket, COUNT(*)
		FROM growth_records WHERE %[1]s IS NOT NULL
		GROUP BY bucket ORDER BY bucket`, col)
	rows, err := s.db.Query(q, min.Float64, width, bins-1)
	if err != nil {
		return nil, fmt.Errorf("bucketing %s: %w", column, err)
	}
	defer rows.Close()

	buckets := make([]models.HistogramBucket, bins)
	for i := range buckets {
		buckets[i].Low = min.Float64 + float64(i)*width
		buckets[i].High = min.Float64 + float64(i+1)*width
	}
	for rows.Next() {
		var bucket, count int
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("reading histogram row: %w", err)
		}
		if bucket >= 0 && bucket < bins {
			buckets[bucket].Count = count
		}
	}
	return buckets, rows.Err()
}

// Scatter pairs two growth metrics per individual and reports their
// Pearson correlation. Rows missing either value are dropped.
func (s *Store) Scatter(xColumn, yColumn string) ([]models.ScatterPoint, *float64, error) {
	xCol, ok := growthColumns[xColumn]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownMetric, xColumn)
	}
	yCol, ok := growthColumns[yColumn]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownMetric, yColumn)
	}

	q := fmt.Sprintf(`SELECT COALESCE(school, ''), %[1]s, %[2]s FROM growth_records
		WHERE %[1]s IS NOT NULL AND %[2]s IS NOT NULL`, xCol, yCol)
	rows, err := s.db.Query(q)
	if err != nil {
		return nil, nil, fmt.Errorf("selecting scatter points: %w", err)
	}
	defer rows.Close()

	var points []models.ScatterPoint
	for rows.Next() {
		var p models.ScatterPoint
		if err := rows.Scan(&p.School, &p.X, &p.Y); err != nil {
			return nil, nil, fmt.Errorf("reading scatter row: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	corrQ := fmt.Sprintf(`SELECT corr(%s, %s) FROM growth_records`, xCol, yCol)
	var corr sql.NullFloat64
	if err := s.db.QueryRow(corrQ).Scan(&corr); err != nil {
		return nil, nil, fmt.Errorf("correlating %s and %s: %w", xColumn, yColumn, err)
	}
	return points, nullable(corr), nil
}

// WeightByEC groups mean fresh weight by target EC condition.
func (s *Store) WeightByEC() ([]models.ECGroupMean, error) {
	rows, err := s.db.Query(`SELECT target_ec, AVG(fresh_weight), COUNT(fresh_weight)
		FROM growth_records
		WHERE target_ec IS NOT NULL AND fresh_weight IS NOT NULL
		GROUP BY target_ec ORDER BY target_ec`)
	if err != nil {
		return nil, fmt.Errorf("grouping weight by EC: %w", err)
	}
	defer rows.Close()

	var out []models.ECGroupMean
	for rows.Next() {
		var g models.ECGroupMean
		if err := rows.Scan(&g.TargetEC, &g.MeanWeight, &g.Count); err != nil {
			return nil, fmt.Errorf("reading EC group row: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// OptimalEC finds the EC condition with the highest mean fresh weight.
// Ties break toward the lower EC. Returns nil when no group has data.
func (s *Store) OptimalEC() (*models.ECGroupMean, error) {
	row := s.db.QueryRow(`SELECT target_ec, AVG(fresh_weight), COUNT(fresh_weight)
		FROM growth_records
		WHERE target_ec IS NOT NULL AND fresh_weight IS NOT NULL
		GROUP BY target_ec
		ORDER BY AVG(fresh_weight) DESC, target_ec
		LIMIT 1`)

	var g models.ECGroupMean
	if err := row.Scan(&g.TargetEC, &g.MeanWeight, &g.Count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding optimal EC: %w", err)
	}
	return &g, nil
}

// EnvSeries returns one school's time series for one sensor, ordered by
// timestamp. Rows without a timestamp or value are dropped.
func (s *Store) EnvSeries(school, column string) ([]models.SeriesPoint, error) {
	col, ok := envColumns[column]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, column)
	}

	q := fmt.Sprintf(`SELECT ts, %[1]s FROM env_readings
		WHERE school = ? AND ts IS NOT NULL AND %[1]s IS NOT NULL
		ORDER BY ts`, col)
	rows, err := s.db.Query(q, school)
	if err != nil {
		return nil, fmt.Errorf("selecting %s series: %w", school, err)
	}
	defer rows.Close()

	var out []models.SeriesPoint
	for rows.Next() {
		var p models.SeriesPoint
		if err := rows.Scan(&p.Time, &p.Value); err != nil {
			return nil, fmt.Errorf("reading series row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
