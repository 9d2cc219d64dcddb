package httpapi

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"storeroom/pkg/export"
	"storeroom/pkg/ledger"
)

func (s *Server) listItems(c *fiber.Ctx) error {
	return c.JSON(toItemResponses(s.ledger.Catalog().Items()))
}

func (s *Server) listUnits(c *fiber.Ctx) error {
	return c.JSON(ledger.Units())
}

// dashboard reports today's movements.
func (s *Server) dashboard(c *fiber.Ctx) error {
	ctx, cancel := s.callContext()
	defer cancel()

	activity, err := s.ledger.Daily(ctx)
	if err != nil {
		return s.fail(c, "dashboard failed", err)
	}
	return c.JSON(fiber.Map{
		"date":     s.ledger.Today(),
		"activity": activity,
	})
}

func (s *Server) inventorySummary(c *fiber.Ctx) error {
	ctx, cancel := s.callContext()
	defer cancel()

	summary, err := s.ledger.Summary(ctx)
	if err != nil {
		return s.fail(c, "inventory summary failed", err)
	}
	s.logger.Info("inventory summary served", slog.Int("items", len(summary.Items)))
	return c.JSON(summary)
}

// listTransactions serves the records view, flat or grouped by day.
func (s *Server) listTransactions(c *fiber.Ctx) error {
	start, err := ledger.ParseDate(c.Query("start"))
	if err != nil {
		return s.fail(c, "records rejected", err)
	}
	end, err := ledger.ParseDate(c.Query("end"))
	if err != nil {
		return s.fail(c, "records rejected", err)
	}
	filter := ledger.RecordFilter{
		Search: c.Query("search"),
		ItemID: c.Query("item"),
		Start:  start,
		End:    end,
	}

	ctx, cancel := s.callContext()
	defer cancel()

	txs, err := s.ledger.Records(ctx, filter)
	if err != nil {
		return s.fail(c, "records listing failed", err)
	}
	s.logger.Info("records served", slog.Int("count", len(txs)))

	if grouped, _ := strconv.ParseBool(c.Query("grouped")); grouped {
		return c.JSON(toDayGroupResponses(ledger.GroupByDate(txs)))
	}
	return c.JSON(toTransactionResponses(txs))
}

func (s *Server) createTransaction(c *fiber.Ctx) error {
	var entry ledger.Entry
	if err := c.BodyParser(&entry); err != nil {
		return s.badRequest(c, "transaction rejected: unable to decode payload", "invalid JSON")
	}

	ctx, cancel := s.callContext()
	defer cancel()

	tx, err := s.ledger.Append(ctx, entry)
	if err != nil {
		return s.fail(c, "transaction rejected", err)
	}
	s.logger.Info("transaction recorded",
		slog.String("id", tx.ID),
		slog.String("item", tx.ItemID),
		slog.Int("deposit", tx.Deposit),
		slog.Int("withdrawal", tx.Withdrawal),
		slog.Int("balance", tx.Balance),
	)
	return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(tx))
}

func (s *Server) reportFilter(c *fiber.Ctx) (ledger.ReportFilter, error) {
	start, err := ledger.ParseDate(c.Query("start"))
	if err != nil {
		return ledger.ReportFilter{}, err
	}
	end, err := ledger.ParseDate(c.Query("end"))
	if err != nil {
		return ledger.ReportFilter{}, err
	}
	return ledger.ReportFilter{ItemID: c.Query("item", ledger.AllItems), Start: start, End: end}, nil
}

// buildReport waits out the simulated generation delay before aggregating.
func (s *Server) buildReport(filter ledger.ReportFilter) (ledger.Report, error) {
	if err := s.latency.Wait(s.lifetime); err != nil {
		return ledger.Report{}, err
	}
	ctx, cancel := s.callContext()
	defer cancel()
	return s.ledger.Report(ctx, filter)
}

func (s *Server) report(c *fiber.Ctx) error {
	filter, err := s.reportFilter(c)
	if err != nil {
		return s.fail(c, "report rejected", err)
	}
	report, err := s.buildReport(filter)
	if err != nil {
		return s.fail(c, "report generation failed", err)
	}
	s.logger.Info("report generated",
		slog.String("title", report.Title),
		slog.Int("transactions", report.Summary.TransactionCount),
	)
	return c.JSON(report)
}

func (s *Server) exportReport(c *fiber.Ctx) error {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return s.badRequest(c, "export rejected", err.Error())
	}
	filter, err := s.reportFilter(c)
	if err != nil {
		return s.fail(c, "export rejected", err)
	}
	report, err := s.buildReport(filter)
	if err != nil {
		return s.fail(c, "export generation failed", err)
	}
	body, err := export.Render(format, report)
	if err != nil {
		return s.fail(c, "export rendering failed", err)
	}

	s.logger.Info("report exported",
		slog.String("format", string(format)),
		slog.String("title", report.Title),
		slog.Int("bytes", len(body)),
	)
	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+format.FileName(time.Now()))
	return c.Send(body)
}
