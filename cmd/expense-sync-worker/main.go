package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cli"
	"expensetracker/internal/lib/sl"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets"
	gsheet "expensetracker/internal/sheets/google"
	"expensetracker/internal/sheets/memory"
	"expensetracker/internal/worker"
)

type rowSink interface {
	sheets.RowWriter
	sheets.RowLister
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting expense sync worker")

	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.ConfigureLogger(log.ComponentWorker, cfg)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration validation failed", sl.Err(err))
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	var sink rowSink
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", sl.Err(err))
			os.Exit(1)
		}
		if err := client.EnsureHeader(ctx); err != nil {
			logger.Error("Failed to prepare sheet header", sl.Err(err))
			os.Exit(1)
		}
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		sink = client
	} else {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, mirroring expenses in memory only")
		sink = memory.New()
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		if err := amqpClient.Close(); err != nil {
			logger.Error("Failed to close AMQP client", sl.Err(err))
		}
	}()

	syncWorker := worker.NewSyncWorker(sink, sink)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := amqpClient.ConsumeExpenseRecorded(gctx, syncWorker.HandleExpenseRecorded)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("Expense sync worker stopped")
}
