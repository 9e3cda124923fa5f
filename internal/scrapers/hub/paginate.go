package hub

import (
	"context"
	"fmt"
	"hubsync-backend/internal/browser"
	"regexp"
	"strconv"
)

const report_paginate = "paginate"

var pageInfoRegex = regexp.MustCompile(`Page\s+(\d+)\s+of\s+(\d+)`)

type PageInfo struct {
	Current int
	Total   int
}

func (p PageInfo) HasNext() bool {
	return p.Current < p.Total
}

// ParsePageInfo reads the "Page X of Y" indicator out of the page text, a
// page without one is a single page.
func ParsePageInfo(text string) PageInfo {
	match := pageInfoRegex.FindStringSubmatch(text)
	if match == nil {
		return PageInfo{Current: 1, Total: 1}
	}
	current, err := strconv.Atoi(match[1])
	if err != nil {
		return PageInfo{Current: 1, Total: 1}
	}
	total, err := strconv.Atoi(match[2])
	if err != nil {
		return PageInfo{Current: current, Total: current}
	}
	return PageInfo{Current: current, Total: total}
}

// nextPageChain finds the control that advances past info.Current.
func nextPageChain(info PageInfo) browser.Chain {
	return browser.Chain{
		browser.HasText("a", "Next"),
		browser.Sel("a[title*='Next']"),
		browser.TextIs("a", strconv.Itoa(info.Current+1)),
	}
}

type pageScraper[T any] func(ctx context.Context) ([]T, PageInfo, error)

// paginate scrapes the current page, then keeps advancing while the page
// says there is more, a next control exists and fewer than maxPages pages
// have been read. A missing next control ends pagination quietly. It returns
// every record in page order and the number of pages scraped.
func paginate[T any](ctx context.Context, s *Scraper, name string, maxPages int, scrape pageScraper[T]) ([]T, int, error) {
	var all []T
	pages := 0
	for {
		records, info, err := scrape(ctx)
		if err != nil {
			return all, pages, err
		}
		pages++
		all = append(all, records...)
		s.tel.ReportDebug(
			fmt.Sprintf("%s page %d/%d", name, info.Current, info.Total),
			len(records),
		)

		if !info.HasNext() || pages >= maxPages {
			break
		}

		next, d, ok, err := nextPageChain(info).First(ctx, s.page)
		if err != nil {
			return all, pages, err
		}
		if !ok {
			s.tel.ReportWarning(report_paginate, name, "no next control", info.Current, info.Total)
			break
		}
		s.tel.ReportDebug("advancing page", name, d.String())

		err = next.Click(ctx)
		if err != nil {
			return all, pages, timeoutErr(err, name+" next page")
		}
		err = s.waitSettled(ctx, s.cfg.PaginationTimeout, s.cfg.Settle.Pagination, name+" next page")
		if err != nil {
			return all, pages, err
		}
	}
	s.tel.ReportCount(report_paginate+"."+name, int64(pages))
	return all, pages, nil
}
