package analytics

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kominz1028-maker/polar-plant-dashboard/internal/catalog"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/models"
	"github.com/kominz1028-maker/polar-plant-dashboard/internal/resolver"
)

// numericCell parses a cell into a nullable float. Blank or malformed
// cells become nil, which the store persists as NULL.
func numericCell(cell string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return nil
	}
	return &v
}

// EnvReadingsFromTable converts a loaded environment table into typed
// readings for one school.
func EnvReadingsFromTable(school string, table *models.Table) []models.EnvReading {
	tempIdx := table.ColumnIndex(models.EnvColTemperature)
	humIdx := table.ColumnIndex(models.EnvColHumidity)
	phIdx := table.ColumnIndex(models.EnvColPH)
	ecIdx := table.ColumnIndex(models.EnvColEC)

	readings := make([]models.EnvReading, 0, table.Len())
	for i := range table.Rows {
		r := models.EnvReading{
			School:      school,
			Temperature: numericCell(table.Cell(i, tempIdx)),
			Humidity:    numericCell(table.Cell(i, humIdx)),
			PH:          numericCell(table.Cell(i, phIdx)),
			EC:          numericCell(table.Cell(i, ecIdx)),
		}
		if table.TimeIndex >= 0 {
			ts := table.Times[i]
			r.Time = &ts
		}
		readings = append(readings, r)
	}
	return readings
}

// GrowthRecordsFromTable converts a loaded growth table into typed
// records. lookup maps a raw school tag (possibly NFD, possibly unknown)
// to a canonical name and target EC; for combined workbooks without a
// school column both stay empty.
func GrowthRecordsFromTable(table *models.Table, lookup func(tag string) (string, *float64)) []models.GrowthRecord {
	idIdx := table.ColumnIndex(models.GrowthColIndividual)
	leafIdx := table.ColumnIndex(models.GrowthColLeafCount)
	shootIdx := table.ColumnIndex(models.GrowthColShootLength)
	rootIdx := table.ColumnIndex(models.GrowthColRootLength)
	weightIdx := table.ColumnIndex(models.GrowthColFreshWeight)
	schoolIdx := table.ColumnIndex(models.GrowthColSchool)

	records := make([]models.GrowthRecord, 0, table.Len())
	for i := range table.Rows {
		rec := models.GrowthRecord{
			Individual:  strings.TrimSpace(table.Cell(i, idIdx)),
			LeafCount:   numericCell(table.Cell(i, leafIdx)),
			ShootLength: numericCell(table.Cell(i, shootIdx)),
			RootLength:  numericCell(table.Cell(i, rootIdx)),
			FreshWeight: numericCell(table.Cell(i, weightIdx)),
		}
		if schoolIdx >= 0 {
			rec.School, rec.TargetEC = lookup(table.Cell(i, schoolIdx))
		}
		records = append(records, rec)
	}
	return records
}

// InsertEnvReadings replaces one school's environment readings.
func (s *Store) InsertEnvReadings(school string, readings []models.EnvReading) error {
	if _, err := s.db.Exec(`DELETE FROM env_readings WHERE school = ?`, school); err != nil {
		return fmt.Errorf("clearing env readings: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting insert: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO env_readings VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range readings {
		var ts any
		if r.Time != nil {
			ts = *r.Time
		}
		if _, err := stmt.Exec(school, ts, ptrOrNil(r.Temperature), ptrOrNil(r.Humidity), ptrOrNil(r.PH), ptrOrNil(r.EC)); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting env reading: %w", err)
		}
	}
	return tx.Commit()
}

// InsertGrowthRecords replaces the growth dataset.
func (s *Store) InsertGrowthRecords(records []models.GrowthRecord) error {
	if _, err := s.db.Exec(`DELETE FROM growth_records`); err != nil {
		return fmt.Errorf("clearing growth records: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting insert: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO growth_records VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var school any
		if rec.School != "" {
			school = rec.School
		}
		if _, err := stmt.Exec(school, rec.Individual, ptrOrNil(rec.LeafCount), ptrOrNil(rec.ShootLength), ptrOrNil(rec.RootLength), ptrOrNil(rec.FreshWeight), ptrOrNil(rec.TargetEC)); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting growth record: %w", err)
		}
	}
	return tx.Commit()
}

func ptrOrNil(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// Build loads every dataset in the catalog into a fresh Store. A missing
// or unreadable dataset becomes a warning, not a failure: the dashboard
// still renders whatever did load.
func Build(cat *catalog.Catalog, opts Options) (*Store, []models.Warning, error) {
	s, err := Open(opts)
	if err != nil {
		return nil, nil, err
	}

	var warnings []models.Warning
	exp := cat.Experiment()

	for _, school := range exp.Schools {
		res := cat.EnvData(school.Name)
		if res.Err != nil {
			warnings = append(warnings, models.Warning{Dataset: school.Name, Reason: res.Err.Error()})
			continue
		}
		warnings = append(warnings, res.Warnings...)
		if err := s.InsertEnvReadings(school.Name, EnvReadingsFromTable(school.Name, res.Table)); err != nil {
			s.Close()
			return nil, nil, err
		}
	}

	growth := cat.Growth()
	if growth.Err != nil {
		warnings = append(warnings, models.Warning{Dataset: exp.GrowthFileKey, Reason: growth.Err.Error()})
		return s, warnings, nil
	}
	for _, col := range models.GrowthMetricColumns {
		if !growth.Table.HasColumn(col) {
			warnings = append(warnings, models.Warning{
				Dataset: exp.GrowthFileKey,
				Column:  col,
				Reason:  fmt.Sprintf("column %q absent; dependent statistics unavailable", col),
			})
		}
	}

	records := GrowthRecordsFromTable(growth.Table, func(tag string) (string, *float64) {
		for _, sc := range exp.Schools {
			if resolver.KeyEquals(sc.Name, tag) {
				ec := sc.TargetEC
				return sc.Name, &ec
			}
		}
		return norm.NFC.String(tag), nil
	})
	if err := s.InsertGrowthRecords(records); err != nil {
		s.Close()
		return nil, nil, err
	}

	return s, warnings, nil
}
