// Package density builds and serves the consolidated zoning dataset: for
// every commune, its name and its tier per profession.
//
// The build side parses one delimited source file per profession and writes
// a single JSON file. The runtime side (Store) loads that file, or the
// published Postgres table, once and serves read-only lookups from memory.
package density

import (
	"bufio"
	"context"
	"densitymap/pkg/domain"
	"densitymap/pkg/logger"
	"densitymap/pkg/serrors"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// HeaderLines is the number of metadata lines preceding the data rows of a
// source file.
const HeaderLines = 3

// Source encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

// ParseReport counts what happened to the rows of one source file.
type ParseReport struct {
	Rows         int
	Kept         int
	NotAvailable int
	Incomplete   int
	UnknownTier  int
	Duplicates   int
}

func (r *ParseReport) add(o ParseReport) {
	r.Rows += o.Rows
	r.Kept += o.Kept
	r.NotAvailable += o.NotAvailable
	r.Incomplete += o.Incomplete
	r.UnknownTier += o.UnknownTier
	r.Duplicates += o.Duplicates
}

func (r ParseReport) fields() []zap.Field {
	return []zap.Field{
		zap.Int("rows", r.Rows),
		zap.Int("kept", r.Kept),
		zap.Int("notAvailable", r.NotAvailable),
		zap.Int("incomplete", r.Incomplete),
		zap.Int("unknownTier", r.UnknownTier),
		zap.Int("duplicates", r.Duplicates),
	}
}

// DecodeReader wraps r so that it yields UTF-8 for the given source encoding.
func DecodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", EncodingUTF8, "utf8":
		return r, nil
	case EncodingWindows1252, "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(r), nil
	default:
		return nil, serrors.With(serrors.ErrValidation, "unsupported source encoding %q", encoding)
	}
}

// ParseSource reads the zoning rows of one profession. The first
// HeaderLines lines are skipped; every other line is "code;name;tier;...".
//
// Rows with an empty code, name or tier, rows marked domain.NotAvailable and
// rows with an unknown tier are dropped. Only the first row of a code is
// kept. Unknown tiers and duplicates are logged.
func ParseSource(ctx context.Context, r io.Reader, profession domain.Profession) ([]domain.ZoningRecord, ParseReport, error) {
	var report ParseReport
	if !profession.Valid() {
		return nil, report, serrors.With(serrors.ErrValidation, "invalid profession %q", profession)
	}
	ctx = logger.WithFields(ctx, zap.String("profession", string(profession)))

	br := bufio.NewReader(r)
	for i := range HeaderLines {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				logger.Warn(ctx, "source ends within its header", zap.Int("lines", i))

				return nil, report, nil
			}

			return nil, report, serrors.Wrap(serrors.ErrSourceRead, err, "reading header")
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var records []domain.ZoningRecord
	seen := make(map[string]struct{})
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, report, serrors.Wrap(serrors.ErrSourceRead, err, "reading %s rows", profession)
		}
		report.Rows++
		if report.Rows%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, report, fmt.Errorf("parse interrupted: %w", err)
			}
		}
		line, _ := cr.FieldPos(0)
		line += HeaderLines

		if len(row) < 3 {
			report.Incomplete++

			continue
		}
		code := strings.TrimSpace(row[0])
		name := strings.TrimSpace(row[1])
		rawTier := strings.TrimSpace(row[2])
		switch {
		case rawTier == domain.NotAvailable:
			report.NotAvailable++

			continue
		case code == "" || name == "" || rawTier == "":
			report.Incomplete++

			continue
		}

		tier, err := domain.ParseTier(rawTier)
		if err != nil {
			report.UnknownTier++
			logger.Warn(ctx, "dropping row with unknown tier",
				zap.Int("line", line), zap.String("code", code), zap.String("tier", rawTier))

			continue
		}
		if _, dup := seen[code]; dup {
			report.Duplicates++
			logger.Warn(ctx, "dropping duplicate row, keeping the first",
				zap.Int("line", line), zap.String("code", code))

			continue
		}
		seen[code] = struct{}{}

		records = append(records, domain.ZoningRecord{
			Code:       code,
			Name:       name,
			Profession: profession,
			Tier:       tier,
		})
		report.Kept++
	}

	logger.Info(ctx, "parsed zoning source", report.fields()...)

	return records, report, nil
}
