package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"customer-addressbook/internal/domain"
)

// RegionWriter upserts directory regions.
type RegionWriter interface {
	Upsert(ctx context.Context, r domain.Region) error
}

// CacheInvalidator evicts cached regions after they change.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, ids ...int) error
}

// CSVImporter reads region directory CSV exports and inserts/updates regions.
// Columns: region_id (or id), country_id, code, default_name (or name).
type CSVImporter struct {
	reader  *csv.Reader
	regions RegionWriter
	cache   CacheInvalidator
}

// NewCSVImporter creates an importer; cache may be nil.
func NewCSVImporter(r io.Reader, regions RegionWriter, cache CacheInvalidator) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:  csvr,
		regions: regions,
		cache:   cache,
	}
}

// Run parses CSV rows and upserts one region per row. Blank rows are skipped.
// Regions written before a failure are still evicted from the cache.
func (i *CSVImporter) Run(ctx context.Context) (count int, err error) {
	var imported []int
	defer func() {
		if i.cache == nil || len(imported) == 0 {
			return
		}
		if cerr := i.cache.Invalidate(ctx, imported...); cerr != nil {
			err = errors.Join(err, fmt.Errorf("invalidate region cache: %w", cerr))
		}
	}()

	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range [][]string{{"region_id", "id"}, {"country_id"}, {"code"}, {"default_name", "name"}} {
		if column(index, required...) < 0 {
			return 0, fmt.Errorf("missing column %q", required[0])
		}
	}

	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return len(imported), fmt.Errorf("read row %d: %w", line, err)
		}

		reg, ok, err := parseRow(record, index)
		if err != nil {
			return len(imported), fmt.Errorf("row %d: %w", line, err)
		}
		if !ok {
			continue
		}
		if err := i.regions.Upsert(ctx, reg); err != nil {
			return len(imported), fmt.Errorf("upsert region %d: %w", reg.ID, err)
		}
		imported = append(imported, reg.ID)
	}
	return len(imported), nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func column(index map[string]int, names ...string) int {
	for _, n := range names {
		if pos, ok := index[n]; ok {
			return pos
		}
	}
	return -1
}

func parseRow(record []string, index map[string]int) (domain.Region, bool, error) {
	idStr := pick(record, index, "region_id", "id")
	country := strings.ToUpper(pick(record, index, "country_id"))
	code := pick(record, index, "code")
	name := pick(record, index, "default_name", "name")

	if idStr == "" && country == "" && code == "" && name == "" {
		return domain.Region{}, false, nil
	}

	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return domain.Region{}, false, fmt.Errorf("invalid region id %q", idStr)
	}
	if len(country) != 2 {
		return domain.Region{}, false, fmt.Errorf("invalid country %q for region %d", country, id)
	}
	if code == "" || name == "" {
		return domain.Region{}, false, fmt.Errorf("region %d: code and name are required", id)
	}
	return domain.Region{ID: id, CountryID: country, Code: code, Name: name}, true, nil
}

func pick(record []string, index map[string]int, names ...string) string {
	pos := column(index, names...)
	if pos < 0 || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
