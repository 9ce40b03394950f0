package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"strata/internal/adapters/clickhouse"
	"strata/internal/adapters/config"
	"strata/internal/domain/market_data"
	chrepo "strata/internal/repository/clickhouse"
	"strata/pkg/errors"
	"strata/pkg/logger"
)

const insertBatchSize = 1000

// Loads daily candles from a CSV export (Date,Open,High,Low,Close,Volume
// with a header row) into ClickHouse so the level engine has history to
// work with.
func main() {
	file := flag.String("file", "", "Path to CSV file with candles")
	symbol := flag.String("symbol", "SPX", "Symbol to store candles under")
	timeframe := flag.String("timeframe", "1d", "Timeframe of the candles")
	dryRun := flag.Bool("dry-run", false, "Parse and report without inserting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()

	if *file == "" {
		log.Fatal("Usage: seeder -file <candles.csv> [-symbol SPX] [-timeframe 1d]")
	}

	candles, err := loadCandles(*file, *symbol, *timeframe)
	if err != nil {
		log.Fatalf("Failed to load candles: %v", err)
	}

	log.Infow("Candles parsed",
		"file", *file,
		"symbol", *symbol,
		"timeframe", *timeframe,
		"count", len(candles),
	)

	if *dryRun {
		log.Info("Dry run, nothing inserted")
		return
	}

	chClient, err := clickhouse.NewClient(cfg.ClickHouse)
	if err != nil {
		log.Fatalf("Failed to connect to ClickHouse: %v", err)
	}
	defer chClient.Close()

	repo := chrepo.NewMarketDataRepository(chClient.Conn())
	ctx := context.Background()

	inserted := 0
	for start := 0; start < len(candles); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(candles) {
			end = len(candles)
		}
		if err := repo.InsertOHLCV(ctx, candles[start:end]); err != nil {
			log.Fatalf("Failed to insert batch at row %d: %v", start, err)
		}
		inserted += end - start
	}

	log.Infow("Seeding complete", "inserted", inserted)
}

// loadCandles parses a CSV export into OHLCV bars, skipping the header
func loadCandles(path, symbol, timeframe string) ([]market_data.OHLCV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var candles []market_data.OHLCV
	line := 1
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read line %d", line)
		}

		candle, err := parseCandle(record, cols, symbol, timeframe)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid candle at line %d", line)
		}
		candles = append(candles, candle)
	}

	if len(candles) == 0 {
		return nil, errors.Wrapf(errors.ErrNoCandles, "%s contains no data rows", path)
	}
	return candles, nil
}

type columns struct {
	date, open, high, low, close, volume int
}

func columnIndex(header []string) (columns, error) {
	idx := columns{date: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			idx.date = i
		case "open":
			idx.open = i
		case "high":
			idx.high = i
		case "low":
			idx.low = i
		case "close", "adj close":
			if idx.close == -1 {
				idx.close = i
			}
		case "volume":
			idx.volume = i
		}
	}

	if idx.date < 0 || idx.open < 0 || idx.high < 0 || idx.low < 0 || idx.close < 0 || idx.volume < 0 {
		return idx, errors.Wrapf(errors.ErrInvalidInput,
			"header must contain Date, Open, High, Low, Close, Volume; got %v", header)
	}
	return idx, nil
}

func parseCandle(record []string, cols columns, symbol, timeframe string) (market_data.OHLCV, error) {
	var c market_data.OHLCV

	openTime, err := time.Parse("2006-01-02", record[cols.date])
	if err != nil {
		return c, errors.Wrapf(err, "bad date %q", record[cols.date])
	}

	fields := []struct {
		dst *float64
		col int
	}{
		{&c.Open, cols.open},
		{&c.High, cols.high},
		{&c.Low, cols.low},
		{&c.Close, cols.close},
		{&c.Volume, cols.volume},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[f.col]), 64)
		if err != nil {
			return c, errors.Wrapf(err, "bad number %q", record[f.col])
		}
		*f.dst = v
	}

	c.Symbol = symbol
	c.Timeframe = timeframe
	c.OpenTime = openTime
	return c, nil
}
