package services

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"seo-strategist-pipeline/internal/config"
	"seo-strategist-pipeline/internal/models"
	"seo-strategist-pipeline/internal/pkg/logger"
)

// CompetitorService scrapes competitor pages for their title and heading
// structure. Outlines feed the competitor-analysis prompt; a page that
// cannot be fetched is reported as such rather than failing the phase.
type CompetitorService struct {
	config config.ScraperConfig
	logger *logger.Logger
}

func NewCompetitorService(cfg config.ScraperConfig, log *logger.Logger) *CompetitorService {
	log.Info("Competitor service initialized",
		"user_agent", cfg.UserAgent,
		"timeout", cfg.RequestTimeout.String())

	return &CompetitorService{config: cfg, logger: log}
}

// FetchOutline scrapes one competitor page.
func (service *CompetitorService) FetchOutline(ctx context.Context, targetURL string) models.CompetitorOutline {
	startTime := time.Now()
	outline := models.CompetitorOutline{URL: targetURL}

	if _, err := url.ParseRequestURI(targetURL); err != nil {
		service.logger.Warn("Competitor URL is not parseable", "url", targetURL, "error", err)
		return outline
	}

	collector := colly.NewCollector(
		colly.UserAgent(service.config.UserAgent),
		colly.MaxDepth(1),
	)
	collector.SetRequestTimeout(service.config.RequestTimeout)

	var mu sync.Mutex

	collector.OnHTML("html", func(element *colly.HTMLElement) {
		mu.Lock()
		defer mu.Unlock()

		if outline.Title == "" {
			outline.Title = strings.TrimSpace(element.DOM.Find("title").First().Text())
		}

		element.DOM.Find("h1, h2").Each(func(_ int, selection *goquery.Selection) {
			heading := strings.TrimSpace(selection.Text())
			if heading == "" || len(outline.Headings) >= service.config.MaxHeadings {
				return
			}
			outline.Headings = append(outline.Headings, heading)
		})
	})

	var visitErr error
	collector.OnError(func(response *colly.Response, err error) {
		visitErr = err
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := collector.Visit(targetURL); err != nil {
			visitErr = err
		}
		collector.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		service.logger.Warn("Competitor scrape cancelled", "url", targetURL, "duration", time.Since(startTime).String())
		return outline
	}

	if visitErr != nil {
		service.logger.Warn("Competitor scrape failed", "url", targetURL, "error", visitErr)
		return outline
	}

	outline.Fetched = outline.Title != "" || len(outline.Headings) > 0

	service.logger.LogService("scraper", "fetch_outline", time.Since(startTime), map[string]interface{}{
		"url":      targetURL,
		"fetched":  outline.Fetched,
		"headings": len(outline.Headings),
	}, nil)

	return outline
}

// FetchOutlines scrapes every URL sequentially, preserving order.
func (service *CompetitorService) FetchOutlines(ctx context.Context, urls []string) []models.CompetitorOutline {
	outlines := make([]models.CompetitorOutline, 0, len(urls))
	for _, targetURL := range urls {
		if ctx.Err() != nil {
			break
		}
		outlines = append(outlines, service.FetchOutline(ctx, targetURL))
	}
	return outlines
}
