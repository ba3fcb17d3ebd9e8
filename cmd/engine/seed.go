package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/andresuchdata/supplychain-engine/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func runSeed(c *cli.Context) error {
	reg := appFrom(c).Registry
	caller := principal(c)

	suppliers, err := readCSV(c.String("suppliers"), parseSupplierRow)
	if err != nil {
		return err
	}
	for _, in := range suppliers {
		s, err := reg.RegisterSupplier(c.Context, caller, in)
		if err != nil {
			return fmt.Errorf("register supplier %q: %w", in.Name, err)
		}
		log.Info().Uint64("id", s.ID).Str("name", s.Name).Msg("seeded supplier")
	}

	products, err := readCSV(c.String("products"), parseProductRow)
	if err != nil {
		return err
	}
	for _, in := range products {
		p, err := reg.AddProduct(c.Context, caller, in)
		if err != nil {
			return fmt.Errorf("add product %q: %w", in.Name, err)
		}
		log.Info().Uint64("id", p.ID).Str("name", p.Name).Msg("seeded product")
	}

	log.Info().Int("suppliers", len(suppliers)).Int("products", len(products)).Msg("seed complete")
	return nil
}

// readCSV parses every row after the header with parse. A missing file
// yields no rows.
func readCSV[T any](path string, parse func([]string) (T, error)) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", path).Msg("seed file not found, skipping")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return parseCSV(f, parse)
}

func parseCSV[T any](r io.Reader, parse func([]string) (T, error)) ([]T, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var out []T
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row, err := parse(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func parseSupplierRow(record []string) (service.RegisterSupplierInput, error) {
	if len(record) < 5 {
		return service.RegisterSupplierInput{}, fmt.Errorf("expected 5 columns, got %d", len(record))
	}
	nums, err := parseUints(record[1:5])
	if err != nil {
		return service.RegisterSupplierInput{}, err
	}
	return service.RegisterSupplierInput{
		Name:                strings.TrimSpace(record[0]),
		Reliability:         nums[0],
		Quality:             nums[1],
		CostEfficiency:      nums[2],
		DeliveryPerformance: nums[3],
	}, nil
}

func parseProductRow(record []string) (service.AddProductInput, error) {
	if len(record) < 5 {
		return service.AddProductInput{}, fmt.Errorf("expected 5 columns, got %d", len(record))
	}
	nums, err := parseUints(record[2:5])
	if err != nil {
		return service.AddProductInput{}, err
	}
	return service.AddProductInput{
		Name:             strings.TrimSpace(record[0]),
		Category:         strings.TrimSpace(record[1]),
		InitialInventory: nums[0],
		UnitCost:         nums[1],
		SupplierID:       nums[2],
	}, nil
}

func parseUints(fields []string) ([]uint64, error) {
	out := make([]uint64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseUint(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", field, err)
		}
		out[i] = v
	}
	return out, nil
}
