package watchlist

import (
	"bufio"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Manager resolves the portfolio and market-scan symbol lists. Each list is a
// plain text file (one symbol per line, # comments allowed) with a configured
// fallback when the file is absent. Files are re-read on every call so edits
// take effect without a restart.
type Manager struct {
	portfolioFile string
	scanFile      string
	portfolio     []string
	scan          []string
}

// NewManager creates a Manager with file paths and config fallbacks.
func NewManager(portfolioFile, scanFile string, portfolio, scan []string) *Manager {
	return &Manager{
		portfolioFile: portfolioFile,
		scanFile:      scanFile,
		portfolio:     normalize(portfolio),
		scan:          normalize(scan),
	}
}

// Portfolio returns the portfolio symbols, preferring the file over config.
func (m *Manager) Portfolio() []string {
	if symbols, ok := readSymbolFile(m.portfolioFile); ok {
		return symbols
	}
	return append([]string(nil), m.portfolio...)
}

// ScanList returns the market-scan symbols with portfolio members excluded,
// so a scheduled scan never duplicates the portfolio analysis.
func (m *Manager) ScanList() []string {
	symbols, ok := readSymbolFile(m.scanFile)
	if !ok {
		symbols = append([]string(nil), m.scan...)
	}

	inPortfolio := make(map[string]struct{})
	for _, symbol := range m.Portfolio() {
		inPortfolio[symbol] = struct{}{}
	}

	var filtered []string
	for _, symbol := range symbols {
		if _, ok := inPortfolio[symbol]; !ok {
			filtered = append(filtered, symbol)
		}
	}
	return filtered
}

func readSymbolFile(path string) ([]string, bool) {
	if path == "" {
		return nil, false
	}
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("watchlist file unreadable, using configured list")
		}
		return nil, false
	}
	defer f.Close()

	var symbols []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		symbols = append(symbols, strings.ToUpper(line))
	}
	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("watchlist file read failed, using configured list")
		return nil, false
	}
	return symbols, true
}

func normalize(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol != "" {
			out = append(out, symbol)
		}
	}
	return out
}
