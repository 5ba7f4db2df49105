// Package store persists devices, criteria, measurements and the
// append-only test-result log in SQLite.
package store

// #region imports
import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/macallanrf/rfcompliance/internal/model"
)

// #endregion

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS devices (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	part_number     TEXT NOT NULL UNIQUE,
	op_freq_min     REAL NOT NULL,
	op_freq_max     REAL NOT NULL,
	wb_freq_min     REAL NOT NULL,
	wb_freq_max     REAL NOT NULL,
	multi_gain_mode INTEGER NOT NULL DEFAULT 0,
	tests_json      TEXT NOT NULL,
	input_ports     TEXT NOT NULL,
	output_ports    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS test_criteria (
	id               TEXT PRIMARY KEY,
	device_id        TEXT NOT NULL,
	test_type        TEXT NOT NULL,
	test_stage       TEXT NOT NULL,
	requirement_name TEXT NOT NULL,
	mode             TEXT NOT NULL,
	min_value        REAL NOT NULL DEFAULT 0,
	max_value        REAL NOT NULL DEFAULT 0,
	unit             TEXT NOT NULL DEFAULT '',
	oob_windows      TEXT,
	FOREIGN KEY (device_id) REFERENCES devices(id)
);

CREATE TABLE IF NOT EXISTS measurements (
	id            TEXT PRIMARY KEY,
	device_id     TEXT NOT NULL,
	serial_number TEXT NOT NULL,
	test_type     TEXT NOT NULL,
	temperature   TEXT NOT NULL,
	path          TEXT NOT NULL,
	gain_mode     TEXT NOT NULL DEFAULT '',
	file_path     TEXT NOT NULL,
	measured_at   TEXT NOT NULL,
	network_blob  BLOB NOT NULL,
	FOREIGN KEY (device_id) REFERENCES devices(id)
);

CREATE TABLE IF NOT EXISTS test_results (
	id             TEXT PRIMARY KEY,
	measurement_id TEXT NOT NULL,
	criteria_id    TEXT NOT NULL,
	s_parameter    TEXT NOT NULL,
	measured_value REAL NOT NULL,
	measured_min   REAL,
	measured_max   REAL,
	oob_window     TEXT,
	passed         INTEGER NOT NULL,
	stale          INTEGER NOT NULL DEFAULT 0,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (measurement_id) REFERENCES measurements(id),
	FOREIGN KEY (criteria_id) REFERENCES test_criteria(id)
);

CREATE INDEX IF NOT EXISTS idx_criteria_lookup
ON test_criteria(device_id, test_type, test_stage);

CREATE INDEX IF NOT EXISTS idx_measurements_device
ON measurements(device_id);

CREATE INDEX IF NOT EXISTS idx_results_measurement
ON test_results(measurement_id);

CREATE INDEX IF NOT EXISTS idx_results_criteria
ON test_results(criteria_id);
`

// #endregion schema

// #region store-struct

// Store wraps the SQLite database holding all compliance entities.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by inspection tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store-struct

// #region devices

// SaveDevice inserts or replaces a device row.
func (s *Store) SaveDevice(d *model.Device) error {
	if err := d.Validate(); err != nil {
		return err
	}
	tests, _ := json.Marshal(d.TestsPerformed)
	in, _ := json.Marshal(d.InputPorts)
	out, _ := json.Marshal(d.OutputPorts)
	multiGain := 0
	if d.MultiGainMode {
		multiGain = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO devices (id, name, description, part_number, op_freq_min, op_freq_max,
		                      wb_freq_min, wb_freq_max, multi_gain_mode, tests_json, input_ports, output_ports)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name, description = excluded.description,
		   part_number = excluded.part_number,
		   op_freq_min = excluded.op_freq_min, op_freq_max = excluded.op_freq_max,
		   wb_freq_min = excluded.wb_freq_min, wb_freq_max = excluded.wb_freq_max,
		   multi_gain_mode = excluded.multi_gain_mode, tests_json = excluded.tests_json,
		   input_ports = excluded.input_ports, output_ports = excluded.output_ports`,
		d.ID.String(), d.Name, d.Description, d.PartNumber,
		d.OperationalFreqMin, d.OperationalFreqMax, d.WidebandFreqMin, d.WidebandFreqMax,
		multiGain, string(tests), string(in), string(out),
	)
	if err != nil {
		return fmt.Errorf("save device %s: %w", d.PartNumber, err)
	}
	return nil
}

// DeviceByID retrieves a device.
func (s *Store) DeviceByID(id uuid.UUID) (*model.Device, error) {
	return s.scanDevice(s.db.QueryRow(
		`SELECT id, name, description, part_number, op_freq_min, op_freq_max,
		        wb_freq_min, wb_freq_max, multi_gain_mode, tests_json, input_ports, output_ports
		 FROM devices WHERE id = ?`, id.String()))
}

// DeviceByPartNumber retrieves a device by its Lnnnnnn part number.
func (s *Store) DeviceByPartNumber(pn string) (*model.Device, error) {
	return s.scanDevice(s.db.QueryRow(
		`SELECT id, name, description, part_number, op_freq_min, op_freq_max,
		        wb_freq_min, wb_freq_max, multi_gain_mode, tests_json, input_ports, output_ports
		 FROM devices WHERE part_number = ?`, pn))
}

func (s *Store) scanDevice(row *sql.Row) (*model.Device, error) {
	var d model.Device
	var idStr, testsJSON, inJSON, outJSON string
	var multiGain int
	err := row.Scan(&idStr, &d.Name, &d.Description, &d.PartNumber,
		&d.OperationalFreqMin, &d.OperationalFreqMax, &d.WidebandFreqMin, &d.WidebandFreqMax,
		&multiGain, &testsJSON, &inJSON, &outJSON)
	if err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}
	d.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse device id: %w", err)
	}
	d.MultiGainMode = multiGain != 0
	if err := json.Unmarshal([]byte(testsJSON), &d.TestsPerformed); err != nil {
		return nil, fmt.Errorf("unmarshal tests: %w", err)
	}
	if err := json.Unmarshal([]byte(inJSON), &d.InputPorts); err != nil {
		return nil, fmt.Errorf("unmarshal input ports: %w", err)
	}
	if err := json.Unmarshal([]byte(outJSON), &d.OutputPorts); err != nil {
		return nil, fmt.Errorf("unmarshal output ports: %w", err)
	}
	return &d, nil
}

// #endregion devices

// #region criteria

// SaveCriteria appends a criterion. CriteriaFor returns rows in the
// order they were saved (rowid order), and that order is what makes
// re-evaluations diff-stable.
func (s *Store) SaveCriteria(c *model.TestCriteria) error {
	if err := c.Validate(); err != nil {
		return err
	}
	var oobJSON interface{}
	if len(c.OOBWindows) > 0 {
		b, err := json.Marshal(c.OOBWindows)
		if err != nil {
			return fmt.Errorf("marshal oob windows: %w", err)
		}
		oobJSON = string(b)
	}
	_, err := s.db.Exec(
		`INSERT INTO test_criteria (id, device_id, test_type, test_stage, requirement_name,
		                            mode, min_value, max_value, unit, oob_windows)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.DeviceID.String(), c.TestType, c.TestStage, c.RequirementName,
		string(c.Mode), c.MinValue, c.MaxValue, c.Unit, oobJSON,
	)
	if err != nil {
		return fmt.Errorf("save criteria %q: %w", c.RequirementName, err)
	}
	return nil
}

// UpdateCriteria rewrites a criterion's bounds and, in the same
// transaction, marks every result computed against it stale.
func (s *Store) UpdateCriteria(c *model.TestCriteria) error {
	if err := c.Validate(); err != nil {
		return err
	}
	var oobJSON interface{}
	if len(c.OOBWindows) > 0 {
		b, err := json.Marshal(c.OOBWindows)
		if err != nil {
			return fmt.Errorf("marshal oob windows: %w", err)
		}
		oobJSON = string(b)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE test_criteria SET requirement_name = ?, mode = ?, min_value = ?,
		        max_value = ?, unit = ?, oob_windows = ?
		 WHERE id = ?`,
		c.RequirementName, string(c.Mode), c.MinValue, c.MaxValue, c.Unit, oobJSON, c.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update criteria %s: %w", c.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("criteria %s not found", c.ID)
	}
	if _, err := tx.Exec(`UPDATE test_results SET stale = 1 WHERE criteria_id = ?`, c.ID.String()); err != nil {
		return fmt.Errorf("stale results for %s: %w", c.ID, err)
	}
	return tx.Commit()
}

// CriteriaFor returns the criteria for one device/test-type/stage in
// insertion order.
func (s *Store) CriteriaFor(deviceID uuid.UUID, testType, testStage string) ([]model.TestCriteria, error) {
	rows, err := s.db.Query(
		`SELECT id, device_id, test_type, test_stage, requirement_name, mode,
		        min_value, max_value, unit, oob_windows
		 FROM test_criteria
		 WHERE device_id = ? AND test_type = ? AND test_stage = ?
		 ORDER BY rowid`,
		deviceID.String(), testType, testStage,
	)
	if err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}
	defer rows.Close()

	var list []model.TestCriteria
	for rows.Next() {
		var c model.TestCriteria
		var idStr, devStr, mode string
		var oobJSON sql.NullString
		if err := rows.Scan(&idStr, &devStr, &c.TestType, &c.TestStage, &c.RequirementName,
			&mode, &c.MinValue, &c.MaxValue, &c.Unit, &oobJSON); err != nil {
			return nil, fmt.Errorf("scan criteria: %w", err)
		}
		if c.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse criteria id: %w", err)
		}
		if c.DeviceID, err = uuid.Parse(devStr); err != nil {
			return nil, fmt.Errorf("parse criteria device id: %w", err)
		}
		c.Mode = model.CriteriaMode(mode)
		if oobJSON.Valid {
			if err := json.Unmarshal([]byte(oobJSON.String), &c.OOBWindows); err != nil {
				return nil, fmt.Errorf("unmarshal oob windows: %w", err)
			}
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// #endregion criteria

// #region measurements

// SaveMeasurement inserts a measurement with its encoded network.
// Measurements are immutable: there is no update path.
func (s *Store) SaveMeasurement(m *model.Measurement) error {
	if err := m.Validate(); err != nil {
		return err
	}
	blob, err := encodeNetwork(m.Network)
	if err != nil {
		return fmt.Errorf("encode network: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO measurements (id, device_id, serial_number, test_type, temperature,
		                           path, gain_mode, file_path, measured_at, network_blob)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID.String(), m.DeviceID.String(), m.SerialNumber, m.TestType, string(m.Temperature),
		string(m.Path), string(m.GainMode), m.FilePath, m.MeasuredAt.UTC().Format(time.RFC3339Nano), blob,
	)
	if err != nil {
		return fmt.Errorf("save measurement %s: %w", m.SerialNumber, err)
	}
	return nil
}

// MeasurementsForDevice lists a device's measurements, oldest first.
func (s *Store) MeasurementsForDevice(deviceID uuid.UUID) ([]model.Measurement, error) {
	rows, err := s.db.Query(
		`SELECT id, device_id, serial_number, test_type, temperature, path, gain_mode,
		        file_path, measured_at, network_blob
		 FROM measurements WHERE device_id = ? ORDER BY measured_at, serial_number`,
		deviceID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	defer rows.Close()

	var list []model.Measurement
	for rows.Next() {
		var m model.Measurement
		var idStr, devStr, temp, path, gainMode, measuredStr string
		var blob []byte
		if err := rows.Scan(&idStr, &devStr, &m.SerialNumber, &m.TestType, &temp, &path,
			&gainMode, &m.FilePath, &measuredStr, &blob); err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		if m.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse measurement id: %w", err)
		}
		if m.DeviceID, err = uuid.Parse(devStr); err != nil {
			return nil, fmt.Errorf("parse measurement device id: %w", err)
		}
		m.Temperature = model.Temperature(temp)
		m.Path = model.PathType(path)
		m.GainMode = model.GainMode(gainMode)
		m.MeasuredAt, _ = time.Parse(time.RFC3339Nano, measuredStr)
		if m.Network, err = decodeNetwork(blob); err != nil {
			return nil, fmt.Errorf("decode network for %s: %w", m.SerialNumber, err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// #endregion measurements

// #region results

// SaveResults appends a measurement's results in a single transaction,
// so a crash mid-evaluation can never commit a partial result set for
// one measurement. Prior rows are left in place: the log is
// append-only and superseded rows stay queryable for audit.
func (s *Store) SaveResults(measurementID uuid.UUID, results []model.TestResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO test_results (id, measurement_id, criteria_id, s_parameter, measured_value,
		                           measured_min, measured_max, oob_window, passed, stale, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		passed := 0
		if r.Passed {
			passed = 1
		}
		stale := 0
		if r.Stale {
			stale = 1
		}
		var oobJSON interface{}
		if r.OOBWindow != nil {
			b, err := json.Marshal(r.OOBWindow)
			if err != nil {
				return fmt.Errorf("marshal oob window: %w", err)
			}
			oobJSON = string(b)
		}
		var minPtr, maxPtr interface{}
		if r.MeasuredMin != nil {
			minPtr = *r.MeasuredMin
		}
		if r.MeasuredMax != nil {
			maxPtr = *r.MeasuredMax
		}
		_, err = stmt.Exec(
			r.ID.String(), measurementID.String(), r.CriteriaID.String(), r.SParameter,
			r.MeasuredValue, minPtr, maxPtr, oobJSON, passed, stale,
			r.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert result %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// MarkStaleByCriteria flags every result referencing a criterion and
// returns how many rows flipped.
func (s *Store) MarkStaleByCriteria(criteriaID uuid.UUID) (int, error) {
	res, err := s.db.Exec(
		`UPDATE test_results SET stale = 1 WHERE criteria_id = ? AND stale = 0`,
		criteriaID.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("mark stale: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ResultsForMeasurement returns every stored result for a measurement,
// stale included, newest first.
func (s *Store) ResultsForMeasurement(measurementID uuid.UUID) ([]model.TestResult, error) {
	rows, err := s.db.Query(
		`SELECT id, measurement_id, criteria_id, s_parameter, measured_value,
		        measured_min, measured_max, oob_window, passed, stale, created_at
		 FROM test_results WHERE measurement_id = ? ORDER BY created_at DESC, id`,
		measurementID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

// ResultsForCriteria returns every stored result for a criterion.
func (s *Store) ResultsForCriteria(criteriaID uuid.UUID) ([]model.TestResult, error) {
	rows, err := s.db.Query(
		`SELECT id, measurement_id, criteria_id, s_parameter, measured_value,
		        measured_min, measured_max, oob_window, passed, stale, created_at
		 FROM test_results WHERE criteria_id = ? ORDER BY created_at DESC, id`,
		criteriaID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

func scanResults(rows *sql.Rows) ([]model.TestResult, error) {
	var list []model.TestResult
	for rows.Next() {
		var r model.TestResult
		var idStr, measStr, critStr, createdStr string
		var minVal, maxVal sql.NullFloat64
		var oobJSON sql.NullString
		var passed, stale int
		if err := rows.Scan(&idStr, &measStr, &critStr, &r.SParameter, &r.MeasuredValue,
			&minVal, &maxVal, &oobJSON, &passed, &stale, &createdStr); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		var err error
		if r.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse result id: %w", err)
		}
		if r.MeasurementID, err = uuid.Parse(measStr); err != nil {
			return nil, fmt.Errorf("parse result measurement id: %w", err)
		}
		if r.CriteriaID, err = uuid.Parse(critStr); err != nil {
			return nil, fmt.Errorf("parse result criteria id: %w", err)
		}
		if minVal.Valid {
			v := minVal.Float64
			r.MeasuredMin = &v
		}
		if maxVal.Valid {
			v := maxVal.Float64
			r.MeasuredMax = &v
		}
		if oobJSON.Valid {
			var w model.OOBWindow
			if err := json.Unmarshal([]byte(oobJSON.String), &w); err != nil {
				return nil, fmt.Errorf("unmarshal oob window: %w", err)
			}
			r.OOBWindow = &w
		}
		r.Passed = passed != 0
		r.Stale = stale != 0
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		list = append(list, r)
	}
	return list, rows.Err()
}

// #endregion results
