package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"SignalScan/internal/analyzer"
	"SignalScan/internal/config"
	"SignalScan/internal/fetcher"
	"SignalScan/internal/model"
	"SignalScan/internal/watchlist"
)

const version = "1.0.0"

// Server exposes the analysis engine over HTTP.
type Server struct {
	cfg       *config.Config
	analyzer  *analyzer.Analyzer
	watchlist *watchlist.Manager
	engine    *gin.Engine
	started   time.Time
}

// NewServer wires all routes. Mode "release" silences gin's debug output.
func NewServer(cfg *config.Config, a *analyzer.Analyzer, wl *watchlist.Manager) *Server {
	gin.SetMode(cfg.Server.Mode)
	s := &Server{
		cfg:       cfg,
		analyzer:  a,
		watchlist: wl,
		engine:    gin.New(),
		started:   time.Now(),
	}
	s.engine.Use(gin.Recovery(), requestLogger())

	api := s.engine.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/config", s.handleConfig)
		api.GET("/stocks/:symbol", s.handleStock)
		api.GET("/portfolio", s.handlePortfolio)
		api.GET("/scan", s.handleScan)
		api.POST("/analyze", s.handleAnalyze)
		api.GET("/summary", s.handleSummary)
		api.GET("/stats", s.handleStats)
		api.POST("/purge", s.handlePurge)
	}
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return s
}

// Handler returns the underlying HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	if _, err := s.analyzer.StoreStats(); err != nil {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"version":   version,
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleConfig(c *gin.Context) {
	a := s.cfg.Analysis
	c.JSON(http.StatusOK, gin.H{
		"rsiPeriod":           a.RSIPeriod,
		"oversoldThreshold":   a.OversoldThreshold,
		"overboughtThreshold": a.OverboughtThreshold,
		"strongBuyThreshold":  a.StrongBuyThreshold,
		"strongSellThreshold": a.StrongSellThreshold,
		"macdFast":            a.MACDFast,
		"macdSlow":            a.MACDSlow,
		"macdSignal":          a.MACDSignal,
		"recentWindowDays":    a.RecentWindowDays,
		"historyDays":         a.HistoryDays,
		"storeBackend":        s.cfg.Store.Backend,
		"retentionDays":       s.cfg.Store.RetentionDays,
		"portfolioSize":       len(s.watchlist.Portfolio()),
		"scanListSize":        len(s.watchlist.ScanList()),
	})
}

func (s *Server) handleStock(c *gin.Context) {
	symbol := c.Param("symbol")
	res := s.analyzer.Analyze(c.Request.Context(), []string{symbol}, "")
	if len(res.Records) == 0 {
		status := http.StatusBadGateway
		detail := "analysis failed"
		if len(res.Errors) > 0 {
			detail = res.Errors[0].Err.Error()
			if errors.Is(res.Errors[0].Err, fetcher.ErrNoData) {
				status = http.StatusBadRequest
			}
		}
		c.JSON(status, gin.H{"symbol": symbol, "error": detail})
		return
	}
	c.JSON(http.StatusOK, res.Records[0])
}

func (s *Server) handlePortfolio(c *gin.Context) {
	s.respondBatch(c, s.watchlist.Portfolio())
}

// handleScan runs the market scan list but returns only actionable signals;
// a scan over hundreds of symbols is noise unless something calls for a trade.
func (s *Server) handleScan(c *gin.Context) {
	res := s.analyzer.Analyze(c.Request.Context(), s.watchlist.ScanList(), "")

	actionable := make([]*model.SignalRecord, 0)
	for _, rec := range res.Records {
		if rec.CurrentSignal.Actionable() {
			actionable = append(actionable, rec)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"date":         res.Date,
		"totalScanned": len(res.Records),
		"signalsFound": len(actionable),
		"signals":      actionable,
		"failed":       len(res.Errors),
	})
}

type analyzeRequest struct {
	Symbols []string `json:"symbols" binding:"required,min=1"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbols is required and must be non-empty"})
		return
	}
	s.respondBatch(c, req.Symbols)
}

func (s *Server) handleSummary(c *gin.Context) {
	res := s.analyzer.Analyze(c.Request.Context(), s.watchlist.Portfolio(), "")

	counts := make(map[string]int)
	var rsiSum float64
	var actionable []gin.H
	for _, rec := range res.Records {
		counts[string(rec.CurrentSignal)]++
		rsiSum += rec.CurrentRSI
		if rec.CurrentSignal.Actionable() {
			actionable = append(actionable, gin.H{
				"symbol":   rec.Symbol,
				"signal":   rec.CurrentSignal,
				"strength": rec.SignalStrength,
				"rsi":      rec.CurrentRSI,
			})
		}
	}
	var avgRSI float64
	if len(res.Records) > 0 {
		avgRSI = rsiSum / float64(len(res.Records))
	}
	c.JSON(http.StatusOK, gin.H{
		"date":       res.Date,
		"analyzed":   len(res.Records),
		"failed":     len(res.Errors),
		"bySignal":   counts,
		"averageRSI": avgRSI,
		"actionable": actionable,
	})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.analyzer.StoreStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handlePurge(c *gin.Context) {
	days := s.cfg.Store.RetentionDays
	if v, ok := c.GetQuery("days"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}
	deleted, err := s.analyzer.PurgeOlderThan(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "olderThanDays": days})
}

func (s *Server) respondBatch(c *gin.Context, symbols []string) {
	res := s.analyzer.Analyze(c.Request.Context(), symbols, "")

	errs := make([]gin.H, 0, len(res.Errors))
	for _, e := range res.Errors {
		errs = append(errs, gin.H{"symbol": e.Symbol, "error": e.Err.Error()})
	}
	c.JSON(http.StatusOK, gin.H{
		"date":      res.Date,
		"signals":   res.Records,
		"errors":    errs,
		"cached":    res.CachedCount,
		"generated": res.GeneratedCount,
	})
}
