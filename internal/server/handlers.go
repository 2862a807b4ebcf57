package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pennywyse/pennywyse/internal/dedupe"
	"github.com/pennywyse/pennywyse/internal/export"
	"github.com/pennywyse/pennywyse/internal/model"
	"github.com/pennywyse/pennywyse/internal/pipeline"
	"github.com/pennywyse/pennywyse/internal/summary"
)

func (s *Server) healthz(c *gin.Context) {
	Success(c, gin.H{"status": "ok"})
}

// dateRange parses the optional from/to query parameters.
func dateRange(c *gin.Context) (from, to time.Time, err error) {
	if v := c.Query("from"); v != "" {
		if from, err = time.Parse(model.DateFormat, v); err != nil {
			return from, to, fmt.Errorf("from must be YYYY-MM-DD")
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = time.Parse(model.DateFormat, v); err != nil {
			return from, to, fmt.Errorf("to must be YYYY-MM-DD")
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return from, to, fmt.Errorf("to is before from")
	}
	return from, to, nil
}

// selected reads the ledger restricted to the request's date range.
func (s *Server) selected(c *gin.Context) ([]model.Transaction, bool) {
	from, to, err := dateRange(c)
	if err != nil {
		BadRequest(c, err.Error())
		return nil, false
	}
	txns, err := s.store.Read()
	if err != nil {
		s.log.Error().Err(err).Msg("reading ledger")
		InternalError(c, "could not read the ledger")
		return nil, false
	}
	return summary.Filter(txns, from, to), true
}

func (s *Server) listTransactions(c *gin.Context) {
	txns, ok := s.selected(c)
	if !ok {
		return
	}
	if cat := c.Query("category"); cat != "" {
		if !s.categories.Exists(cat) {
			BadRequest(c, fmt.Sprintf("unknown category %q", cat))
			return
		}
		txns = summary.ByCategory(txns, cat)
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	dedupe.SortNewestFirst(txns)
	Success(c, gin.H{"count": len(txns), "transactions": txns})
}

func (s *Server) getSummary(c *gin.Context) {
	txns, ok := s.selected(c)
	if !ok {
		return
	}
	Success(c, summary.Compute(txns))
}

func (s *Server) getMonthly(c *gin.Context) {
	txns, ok := s.selected(c)
	if !ok {
		return
	}
	Success(c, summary.Monthly(txns))
}

func (s *Server) listCategories(c *gin.Context) {
	cats := s.categories.All()
	if cats == nil {
		cats = []model.Category{}
	}
	Success(c, cats)
}

func (s *Server) ingest(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody+1))
	if err != nil {
		BadRequest(c, "could not read request body")
		return
	}
	if len(body) > maxBody {
		Error(c, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	dryRun := false
	if v := c.Query("dry_run"); v != "" {
		if dryRun, err = strconv.ParseBool(v); err != nil {
			BadRequest(c, "dry_run must be true or false")
			return
		}
	}
	source := c.DefaultQuery("source", "api")

	var report pipeline.Report
	if dryRun {
		report, err = s.pipeline.Preview(c.Request.Context(), source, string(body))
	} else {
		report, err = s.pipeline.Ingest(c.Request.Context(), source, string(body))
	}
	if err != nil {
		s.log.Error().Err(err).Str("source", source).Msg("ingest request failed")
		InternalError(c, "ingestion failed, nothing was saved")
		return
	}
	Success(c, report)
}

func (s *Server) export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	txns, ok := s.selected(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, txns); err != nil {
		s.log.Error().Err(err).Msg("export failed")
		InternalError(c, "export failed")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=transactions.%s", format))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
