package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"device-catalog/internal/model"
	"device-catalog/pkg/validation"
)

// Custom errors for better error handling
var (
	ErrRecordNotFound   = errors.New("no catalogued record for this MAC address")
	ErrDuplicateMAC     = errors.New("machine with this MAC address already catalogued")
	ErrInvalidRecord    = errors.New("record failed validation")
	ErrPermissionDenied = errors.New("no permission to read or write the store")
)

const (
	opTimeout     = 5 * time.Second
	storeFileMode = 0o644
)

// RecordRepository is an interface for interacting with the catalogue of
// device records.
type RecordRepository interface {
	Upsert(ctx context.Context, record model.DeviceRecord) error
	Replace(ctx context.Context, record model.DeviceRecord) error
	List(ctx context.Context) ([]model.DeviceRecord, error)
}

// csvRecordRepository is the concrete implementation of RecordRepository
// around a flat CSV file. The file's header row, written on first
// insert, fixes the column order every later scan maps through; rows are
// only ever appended, except for Replace which rewrites in place.
type csvRecordRepository struct {
	path string
	log  zerolog.Logger
	mu   sync.Mutex
}

// NewCSVRepository creates a RecordRepository backed by the CSV file at
// path. The file is created on first write; its directory must already
// exist.
func NewCSVRepository(path string, log zerolog.Logger) RecordRepository {
	return &csvRecordRepository{
		path: path,
		log:  log.With().Str("component", "store").Str("path", path).Logger(),
	}
}

// Upsert appends the record to the store unless a record with the same
// MAC address already exists. On a duplicate the store is left
// byte-identical and ErrDuplicateMAC is returned. A new store gets a
// header row in the record's canonical field order first.
func (r *csvRecordRepository) Upsert(ctx context.Context, record model.DeviceRecord) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	if errs := validation.ValidateRecord(record); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(errs, "; "))
	}

	file, err := os.OpenFile(r.path, os.O_RDWR|os.O_CREATE, storeFileMode)
	if err != nil {
		return openError(err, r.path)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat store: %w", err)
	}

	empty := info.Size() == 0
	if !empty {
		header, rows, err := readStore(file)
		if err != nil {
			return err
		}

		macIdx := findColumn(header, model.ColumnMACAddress)
		if macIdx < 0 {
			return fmt.Errorf("store %s has no %s column", r.path, model.ColumnMACAddress)
		}

		for _, row := range rows {
			if macIdx < len(row) && row[macIdx] == record.MACAddress {
				return fmt.Errorf("%w: %s", ErrDuplicateMAC, record.MACAddress)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("store operation aborted: %w", err)
	}

	// The dedup scan read to EOF, so the writer appends.
	writer := csv.NewWriter(file)
	if empty {
		if err := writer.Write(model.Fields()); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := writer.Write(record.Values()); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush store: %w", err)
	}

	r.log.Debug().
		Str("mac_address", record.MACAddress).
		Bool("new_store", empty).
		Msg("Record appended")

	return nil
}

// Replace rewrites the stored row whose MAC address matches the record,
// mapping the record's fields through the store's own header order and
// preserving row order, row count, and any columns the record does not
// know. ErrRecordNotFound is returned when no row matches. This is the
// only operation that truncates and rewrites the file.
func (r *csvRecordRepository) Replace(ctx context.Context, record model.DeviceRecord) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	if errs := validation.ValidateRecord(record); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(errs, "; "))
	}

	file, err := os.OpenFile(r.path, os.O_RDWR, 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, record.MACAddress)
		}
		return openError(err, r.path)
	}
	defer file.Close()

	header, rows, err := readStore(file)
	if err != nil {
		return err
	}

	macIdx := findColumn(header, model.ColumnMACAddress)
	if macIdx < 0 {
		return fmt.Errorf("store %s has no %s column", r.path, model.ColumnMACAddress)
	}

	found := false
	for i, row := range rows {
		if macIdx < len(row) && row[macIdx] == record.MACAddress {
			rows[i] = mapThroughHeader(record, header, row)
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, record.MACAddress)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("store operation aborted: %w", err)
	}

	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate store: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind store: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to rewrite store: %w", err)
	}

	r.log.Debug().
		Str("mac_address", record.MACAddress).
		Int("rows", len(rows)).
		Msg("Record replaced in place")

	return nil
}

// List parses the store and returns its records in file order, mapped
// through the store's header. Columns a row lacks come back zero.
func (r *csvRecordRepository) List(ctx context.Context) ([]model.DeviceRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.Open(r.path)
	if err != nil {
		return nil, openError(err, r.path)
	}
	defer file.Close()

	header, rows, err := readStore(file)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("store operation aborted: %w", err)
	}

	records := make([]model.DeviceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, model.FromRow(header, row))
	}

	return records, nil
}

// readStore parses the whole file. The first row is the header; rows
// with a deviating cell count are tolerated, matching what permissive
// CSV writers produce.
func readStore(file *os.File) (header []string, rows [][]string, err error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse store: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, nil
	}

	return all[0], all[1:], nil
}

// mapThroughHeader lays the record's fields out in the store's column
// order, keeping cells for columns the record does not carry.
func mapThroughHeader(record model.DeviceRecord, header, oldRow []string) []string {
	row := make([]string, len(header))
	for j, col := range header {
		if j < len(oldRow) {
			row[j] = oldRow[j]
		}
		if value, ok := record.ValueByColumn(col); ok {
			row[j] = value
		}
	}
	return row
}

func findColumn(header []string, name string) int {
	for i, col := range header {
		if col == name {
			return i
		}
	}
	return -1
}

// openError classifies a store open failure. Permission problems get
// their own sentinel; everything else stays a generic I/O failure.
func openError(err error, path string) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	}
	return fmt.Errorf("failed to open store: %w", err)
}
